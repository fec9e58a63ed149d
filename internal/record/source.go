package record

import (
	"bufio"
	"io"
)

// StdinName is the name of the standard input source.
const StdinName = "-"

// ReadAhead is the most a source is read past the current record. A
// command run with system() that reads the same stdin starts after it.
const ReadAhead = 4096

// Source is one named input stream. Index is its 0-based position among
// the run's inputs.
type Source struct {
	Name   string
	Index  int
	Reader io.Reader

	closed bool
}

// NewSource creates a source.
func NewSource(name string, index int, r io.Reader) *Source {
	return &Source{Name: name, Index: index, Reader: r}
}

// Close closes the underlying reader if it is an io.Closer. Only the first
// call has an effect.
func (s *Source) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if c, ok := s.Reader.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Closed reports whether Close has been called.
func (s *Source) Closed() bool { return s.closed }

// Records iterates over the records of several sources in order. Each
// source is read to exhaustion before the next one starts. Sources are
// never rewound and never closed by the iterator.
//
//	recs := record.NewRecords(sources, record.Universal())
//	for recs.Next() {
//	    use(recs.Text(), recs.Source())
//	}
//	if err := recs.Err(); err != nil { ... }
type Records struct {
	sources []*Source
	delim   Delimiter

	next int
	cur  *Source
	br   *bufio.Reader

	text string
	err  error
}

// NewRecords creates an iterator over sources split by d.
func NewRecords(sources []*Source, d Delimiter) *Records {
	return &Records{sources: sources, delim: d}
}

// Next advances to the next record. It returns false when every source is
// exhausted or a read error occurred.
func (rs *Records) Next() bool {
	if rs.err != nil {
		return false
	}
	for {
		if rs.br == nil {
			if rs.next >= len(rs.sources) {
				rs.cur = nil
				rs.text = ""
				return false
			}
			rs.cur = rs.sources[rs.next]
			rs.next++
			rs.br = bufio.NewReaderSize(rs.cur.Reader, ReadAhead)
		}
		text, err := ReadRecord(rs.br, rs.delim)
		if err == io.EOF {
			rs.br = nil
			continue
		}
		if err != nil {
			rs.err = &ReadError{Source: rs.cur.Name, Err: err}
			rs.text = ""
			return false
		}
		rs.text = text
		return true
	}
}

// Text returns the current record, delimiter included.
func (rs *Records) Text() string { return rs.text }

// Source returns the source of the current record.
func (rs *Records) Source() *Source { return rs.cur }

// Err returns the first read error, if any.
func (rs *Records) Err() error { return rs.err }

// ReadError reports a failure while reading a source.
type ReadError struct {
	Source string
	Err    error
}

func (e *ReadError) Error() string {
	return "reading " + e.Source + ": " + e.Err.Error()
}

func (e *ReadError) Unwrap() error { return e.Err }
