// Package upype applies a small snippet program to every record of its
// input streams.
//
// Each record (a line by default, or a chunk ending in a custom delimiter)
// is exposed to the snippet through a shared bundle named "_":
//
//	_.record      current text, mutable
//	_.record_end  delimiter stripped from the record
//	_.record_num  1-based record number across all inputs
//	_.fields      split fields when field splitting is configured
//	_.file        the input the record came from (name, index)
//	_.end         set to stop after the current record
//
// # Quick Start
//
//	out, err := upype.Run(`_.record = toupper(_.record)`, strings.NewReader("a\nb\n"),
//	    &upype.Config{PrintRecords: true})
//	// out: "A\nB\n"
//
// # Compiled Programs
//
// A Script carries the optional before and after snippets that run once
// around the records. Globals assigned in one snippet are visible to the
// others and persist across records:
//
//	prog, err := upype.CompileScript(upype.Script{
//	    Before: `n = 0`,
//	    Main:   `n += _.record`,
//	    After:  `print n`,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out, err := prog.Run(strings.NewReader("1\n2\n3\n"), nil)
//	// out: "6\n"
//
// # Error Handling
//
// Errors are returned as specific types:
//   - [ParseError]: syntax errors in a snippet
//   - [CompileError]: semantic errors and invalid regex literals
//   - [ConfigError]: bad configuration, unreadable inputs, unknown imports
//   - [RuntimeError]: failures while the snippets run
//   - [ExitError]: the snippet called exit with a non-zero status
//
// A Program is not safe for concurrent use by several Run calls sharing
// one Config, but each Run builds a fresh environment.
package upype
