package upype

import "io"

// Config holds configuration options for a run.
type Config struct {
	// FieldSep is a regular expression splitting each record into _.fields.
	// Empty leaves _.fields null unless CSV is set.
	FieldSep string

	// CSV parses each record as a CSV line into _.fields. A single
	// character FieldSep replaces the comma.
	CSV bool

	// RecordSep is the record delimiter. Nil splits on "\n", "\r\n" and
	// "\r"; an empty string reads each input as one record.
	RecordSep *string

	// NoStrip keeps the delimiter in _.record instead of moving it to
	// _.record_end.
	NoStrip bool

	// PrintRecords echoes _.record and _.record_end after main runs for
	// each record.
	PrintRecords bool

	// Imports are MODULE[:MEMBER][@ALIAS] specs bound before any snippet
	// runs. Example: []string{"strings", "math:sqrt@root"}
	Imports []string

	// Variables contains pre-defined globals, set before the before
	// snippet runs. Values behave as numeric strings.
	// Example: map[string]string{"threshold": "100", "prefix": "LOG:"}
	Variables map[string]string

	// Output receives echoed records and print output.
	// If nil, output is captured and returned from Run.
	Output io.Writer

	// Stderr receives the error output of system() commands.
	// If nil, it is discarded.
	Stderr io.Writer

	// Stdin is read for the input path "-" and handed to system().
	// If nil, it is empty.
	Stdin io.Reader

	// Flush flushes Output after main runs for each record, print output
	// and echo alike, when Output has a Flush() error method as
	// bufio.Writer does.
	Flush bool
}

// applyDefaults fills in default values for unset Config fields.
func (c *Config) applyDefaults() {
	if c.Stderr == nil {
		c.Stderr = io.Discard
	}
	if c.Stdin == nil {
		c.Stdin = eofReader{}
	}
}

type eofReader struct{}

func (eofReader) Read([]byte) (int, error) { return 0, io.EOF }
