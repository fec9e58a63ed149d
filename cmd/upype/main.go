// upype - apply a snippet to every record of the input
//
// Uses manual argument parsing rather than the flag package so that -F:,
// -i strings and --recordsep=, style flags all work, and so that -Bf is
// not read as -B with an attached value.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/kolkov/upype"
)

// Build information, set with
//
//	go build -ldflags "-X main.version=... -X main.commit=... -X main.date=..."
//
// Development builds report "dev".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const (
	shortUsage = "usage: upype [-p] [-n] [-i MODULE] [-r CHARS] [-F PATTERN] [-B CODE | -Bf FILE] [-A CODE | -Af FILE] (-c CODE | -f FILE) [file ...]"
	longUsage  = `Program:
  -c, --program-code CODE      snippet run once per record
  -f, --program-file FILE      read the per-record snippet from FILE
  -B, --run-before CODE        snippet run once before the first record
  -Bf, --run-file-before FILE  read the before snippet from FILE
  -A, --run-after CODE         snippet run once after the last record
  -Af, --run-file-after FILE   read the after snippet from FILE

Records:
  -r, --recordsep CHARS        record delimiter (default: \n, \r\n or \r);
                               an empty CHARS reads each input whole
  -l, --linesep CHARS          same as -r
  -n, --nostrip                keep the delimiter at the end of _.record
  -p, --printrecords           print _.record and _.record_end after each record
  -F, --fieldsplit PATTERN     split each record into _.fields on a regex
  --csv                        split each record into _.fields as CSV;
                               a one-character -F sets the separator

Environment:
  -i, --import MODULE[:MEMBER][@ALIAS]
                               bind a module or one of its members (repeatable)
  -v var=value                 set a global before any snippet runs (repeatable)

Modules: %s

Debugging:
  -d                           print the parsed snippets to stderr and exit

Other:
  -h, --help                   show this help message
  -version                     show upype version and exit
`
)

// Exit statuses.
const (
	exitRuntime = 1
	exitUsage   = 2
)

// options is the parsed command line.
type options struct {
	main, before, after string
	mainFile            string
	beforeFile          string
	afterFile           string
	mainSet             bool
	beforeSet           bool
	afterSet            bool

	imports      []string
	vars         []string
	fieldSep     string
	csv          bool
	recordSep    *string
	noStrip      bool
	printRecords bool

	debug   bool
	help    bool
	version bool

	files []string
}

// usageError is a malformed command line.
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usageErrorf(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

//nolint:gocyclo,funlen // CLI argument parsing is inherently complex
func parseArgs(args []string) (*options, error) {
	opts := &options{}

	// snippet records one of the mutually exclusive code sources.
	snippet := func(set *bool, code, file *string, name, value string, fromFile bool) error {
		if *set {
			return usageErrorf("only one %s snippet may be given", name)
		}
		*set = true
		if fromFile {
			*file = value
		} else {
			*code = value
		}
		return nil
	}

	var i int
	for i = 0; i < len(args); i++ {
		// Stop on explicit end of args or first arg not prefixed with "-"
		arg := args[i]
		if arg == "--" {
			i++
			break
		}
		if arg == "-" || !strings.HasPrefix(arg, "-") {
			break
		}

		// --name=value
		name, attached, hasAttached := arg, "", false
		if strings.HasPrefix(arg, "--") {
			if eq := strings.IndexByte(arg, '='); eq >= 0 {
				name, attached, hasAttached = arg[:eq], arg[eq+1:], true
			}
		}
		value := func() (string, error) {
			if hasAttached {
				return attached, nil
			}
			if i+1 >= len(args) {
				return "", usageErrorf("flag needs an argument: %s", name)
			}
			i++
			return args[i], nil
		}

		var err error
		var v string
		switch name {
		case "-c", "--program-code", "-f", "--program-file":
			if v, err = value(); err == nil {
				fromFile := name == "-f" || name == "--program-file"
				err = snippet(&opts.mainSet, &opts.main, &opts.mainFile, "main (-c/-f)", v, fromFile)
			}
		case "-B", "--run-before", "-Bf", "--run-file-before":
			if v, err = value(); err == nil {
				fromFile := name == "-Bf" || name == "--run-file-before"
				err = snippet(&opts.beforeSet, &opts.before, &opts.beforeFile, "before (-B/-Bf)", v, fromFile)
			}
		case "-A", "--run-after", "-Af", "--run-file-after":
			if v, err = value(); err == nil {
				fromFile := name == "-Af" || name == "--run-file-after"
				err = snippet(&opts.afterSet, &opts.after, &opts.afterFile, "after (-A/-Af)", v, fromFile)
			}
		case "-i", "--import":
			if v, err = value(); err == nil {
				opts.imports = append(opts.imports, v)
			}
		case "-v":
			if v, err = value(); err == nil {
				opts.vars = append(opts.vars, v)
			}
		case "-F", "--fieldsplit":
			if v, err = value(); err == nil {
				opts.fieldSep = v
			}
		case "-r", "--recordsep", "-l", "--linesep":
			if v, err = value(); err == nil {
				opts.recordSep = &v
			}
		case "--csv":
			opts.csv = true
		case "-n", "--nostrip":
			opts.noStrip = true
		case "-p", "--printrecords":
			opts.printRecords = true
		case "-d":
			opts.debug = true
		case "-h", "--help":
			opts.help = true
		case "-version", "--version":
			opts.version = true
		default:
			// Handle flags with no space: -F:, -r;, -istrings, -vx=1
			switch {
			case strings.HasPrefix(arg, "-F"):
				opts.fieldSep = arg[2:]
			case strings.HasPrefix(arg, "-r"), strings.HasPrefix(arg, "-l"):
				sep := arg[2:]
				opts.recordSep = &sep
			case strings.HasPrefix(arg, "-i"):
				opts.imports = append(opts.imports, arg[2:])
			case strings.HasPrefix(arg, "-v"):
				opts.vars = append(opts.vars, arg[2:])
			default:
				err = usageErrorf("flag provided but not defined: %s", arg)
			}
		}
		if err != nil {
			return nil, err
		}
	}

	// Remaining args are input files
	opts.files = args[i:]

	if !opts.help && !opts.version && !opts.mainSet {
		return nil, usageErrorf("%s", shortUsage)
	}
	return opts, nil
}

// script loads the snippets named on the command line.
func (o *options) script() (upype.Script, error) {
	s := upype.Script{Before: o.before, Main: o.main, After: o.after}
	load := func(path string, dst, name *string) error {
		if path == "" {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("cannot read program file %s: %v", path, err)
		}
		*dst = string(content)
		*name = path
		return nil
	}
	if err := load(o.beforeFile, &s.Before, &s.BeforeFile); err != nil {
		return s, err
	}
	if err := load(o.mainFile, &s.Main, &s.MainFile); err != nil {
		return s, err
	}
	if err := load(o.afterFile, &s.After, &s.AfterFile); err != nil {
		return s, err
	}
	return s, nil
}

// variables parses the -v var=value assignments.
func (o *options) variables() (map[string]string, error) {
	if len(o.vars) == 0 {
		return nil, nil
	}
	vars := make(map[string]string, len(o.vars))
	for _, v := range o.vars {
		name, value, ok := strings.Cut(v, "=")
		if !ok {
			return nil, fmt.Errorf("invalid variable assignment: %s (expected var=value)", v)
		}
		vars[name] = value
	}
	return vars, nil
}

func main() {
	interactive := term.IsTerminal(int(os.Stdout.Fd()))
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr, interactive))
}

// run executes the command line and returns the exit status. Interactive
// output is flushed after each record.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer, interactive bool) int {
	opts, err := parseArgs(args)
	if err != nil {
		return errorExit(stderr, exitUsage, err)
	}
	if opts.help {
		fmt.Fprintf(stdout, "upype %s - per-record snippet runner\n\n%s\n\n", version, shortUsage)
		fmt.Fprintf(stdout, longUsage, strings.Join(upype.Modules(), ", "))
		return 0
	}
	if opts.version {
		fmt.Fprintf(stdout, "upype version %s\n", version)
		fmt.Fprintf(stdout, "  commit: %s\n", commit)
		fmt.Fprintf(stdout, "  built:  %s\n", date)
		fmt.Fprintln(stdout, "  regex:  coregex")
		return 0
	}

	script, err := opts.script()
	if err != nil {
		return errorExit(stderr, exitUsage, err)
	}
	vars, err := opts.variables()
	if err != nil {
		return errorExit(stderr, exitUsage, err)
	}

	// Compile program
	prog, err := upype.CompileScript(script)
	if err != nil {
		return errorExit(stderr, exitUsage, err)
	}

	// Debug output mode
	if opts.debug {
		fmt.Fprint(stderr, prog.Format())
		return 0
	}

	// Build configuration with buffered output for performance
	out := bufio.NewWriter(stdout)
	defer out.Flush()

	config := &upype.Config{
		FieldSep:     opts.fieldSep,
		CSV:          opts.csv,
		RecordSep:    opts.recordSep,
		NoStrip:      opts.noStrip,
		PrintRecords: opts.printRecords,
		Imports:      opts.imports,
		Variables:    vars,
		Output:       out,
		Stderr:       stderr,
		Stdin:        stdin,
		Flush:        interactive,
	}

	err = prog.RunInputs(opts.files, config)
	if err == nil {
		return 0
	}
	// Check if it's a normal exit with non-zero code
	if code, ok := upype.IsExitError(err); ok {
		return code
	}
	out.Flush()
	var ce *upype.ConfigError
	if errors.As(err, &ce) {
		return errorExit(stderr, exitUsage, err)
	}
	return errorExit(stderr, exitRuntime, err)
}

// errorExitf prints a formatted error message and returns code.
func errorExitf(stderr io.Writer, code int, format string, args ...any) int {
	fmt.Fprintf(stderr, "upype: "+format+"\n", args...)
	return code
}

// errorExit prints err and returns code.
func errorExit(stderr io.Writer, code int, err error) int {
	return errorExitf(stderr, code, "%v", err)
}
