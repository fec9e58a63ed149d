// Package record splits input streams into delimiter-terminated records.
package record

import "strconv"

// Mode selects how record boundaries are found.
type Mode int

const (
	// ModeUniversal treats "\n", "\r\n" and "\r" as record terminators.
	ModeUniversal Mode = iota
	// ModeSlurp reads the whole remaining stream as one record.
	ModeSlurp
	// ModeLiteral ends a record at the first occurrence of a fixed string.
	ModeLiteral
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeUniversal:
		return "universal"
	case ModeSlurp:
		return "slurp"
	case ModeLiteral:
		return "literal"
	}
	return "Mode(" + strconv.Itoa(int(m)) + ")"
}

// Delimiter describes record boundaries. The zero value is Universal.
type Delimiter struct {
	mode Mode
	lit  string
	// fail[i] is the length of the longest proper border of lit[:i+1].
	fail []int
}

// Universal returns the line-ending delimiter used when none is configured.
func Universal() Delimiter {
	return Delimiter{mode: ModeUniversal}
}

// Slurp returns the delimiter that reads each stream as a single record.
func Slurp() Delimiter {
	return Delimiter{mode: ModeSlurp}
}

// Literal returns a delimiter ending records at s. An empty s means Slurp.
func Literal(s string) Delimiter {
	if s == "" {
		return Slurp()
	}
	return Delimiter{mode: ModeLiteral, lit: s, fail: failureTable(s)}
}

// Mode returns the delimiter mode.
func (d Delimiter) Mode() Mode { return d.mode }

// Text returns the literal delimiter, or "" for the other modes.
func (d Delimiter) Text() string { return d.lit }

// String returns a printable form of the delimiter.
func (d Delimiter) String() string {
	if d.mode == ModeLiteral {
		return strconv.Quote(d.lit)
	}
	return d.mode.String()
}

// failureTable builds the KMP prefix function of pat.
func failureTable(pat string) []int {
	fail := make([]int, len(pat))
	k := 0
	for i := 1; i < len(pat); i++ {
		for k > 0 && pat[i] != pat[k] {
			k = fail[k-1]
		}
		if pat[i] == pat[k] {
			k++
		}
		fail[i] = k
	}
	return fail
}

// step advances the partial match state j by byte c and returns the new state.
// A state equal to len(d.lit) is a full match.
func (d *Delimiter) step(j int, c byte) int {
	for j > 0 && c != d.lit[j] {
		j = d.fail[j-1]
	}
	if c == d.lit[j] {
		j++
	}
	return j
}
