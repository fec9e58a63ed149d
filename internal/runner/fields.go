package runner

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/kolkov/upype/internal/runtime"
)

// Splitter splits a record into fields.
type Splitter interface {
	Split(record string) ([]string, error)
}

// RegexSplitter splits on every match of a pattern. Empty fields are kept,
// so "a,b,,c" split on "," has four fields.
type RegexSplitter struct {
	Re *runtime.Regex
}

// Split implements Splitter.
func (s RegexSplitter) Split(record string) ([]string, error) {
	return s.Re.Split(record, -1), nil
}

// CSVSplitter parses a record as one line of CSV.
type CSVSplitter struct {
	Comma rune // 0 means ','
}

// Split implements Splitter. An empty record has no fields.
func (s CSVSplitter) Split(record string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(record))
	if s.Comma != 0 {
		r.Comma = s.Comma
	}
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	fields, err := r.Read()
	if errors.Is(err, io.EOF) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	return fields, nil
}
