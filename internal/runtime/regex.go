// Package runtime provides regex and input support for snippet execution.
package runtime

import (
	"github.com/coregx/coregex"
)

// Regex wraps a compiled coregex pattern. Matching is leftmost-first and
// "." does not match a newline, so a record read with --nostrip keeps its
// terminator out of ".*".
type Regex struct {
	pattern string
	re      *coregex.Regexp
}

// Compile creates a new Regex from pattern.
func Compile(pattern string) (*Regex, error) {
	re, err := coregex.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &Regex{pattern: pattern, re: re}, nil
}

// MustCompile creates a Regex, panicking on error.
func MustCompile(pattern string) *Regex {
	re, err := Compile(pattern)
	if err != nil {
		panic(err)
	}
	return re
}

// Pattern returns the original pattern string.
func (r *Regex) Pattern() string {
	return r.pattern
}

// MatchString reports whether s contains any match.
func (r *Regex) MatchString(s string) bool {
	return r.re.MatchString(s)
}

// FindStringIndex returns the start and end of the first match, or nil.
func (r *Regex) FindStringIndex(s string) []int {
	return r.re.FindStringIndex(s)
}

// FindString returns the text of the first match, or "" with false.
func (r *Regex) FindString(s string) (string, bool) {
	loc := r.re.FindStringIndex(s)
	if loc == nil {
		return "", false
	}
	return s[loc[0]:loc[1]], true
}

// FindAllString returns the text of up to n matches (all when n < 0).
func (r *Regex) FindAllString(s string, n int) []string {
	locs := r.re.FindAllStringIndex(s, n)
	out := make([]string, len(locs))
	for i, loc := range locs {
		out[i] = s[loc[0]:loc[1]]
	}
	return out
}

// FindAllStringIndex returns all non-overlapping matches.
func (r *Regex) FindAllStringIndex(s string, n int) [][]int {
	return r.re.FindAllStringIndex(s, n)
}

// ReplaceAllString replaces all matches with repl, expanding $1-style
// group references.
func (r *Regex) ReplaceAllString(s, repl string) string {
	return r.re.ReplaceAllString(s, repl)
}

// ReplaceAllStringFunc replaces all matches using the function.
func (r *Regex) ReplaceAllStringFunc(s string, f func(string) string) string {
	return r.re.ReplaceAllStringFunc(s, f)
}

// ReplaceFirst replaces the first match using f and reports whether a
// match was found.
func (r *Regex) ReplaceFirst(s string, f func(string) string) (string, bool) {
	loc := r.re.FindStringIndex(s)
	if loc == nil {
		return s, false
	}
	return s[:loc[0]] + f(s[loc[0]:loc[1]]) + s[loc[1]:], true
}

// Split slices s into the substrings between matches. Empty fields are
// kept: "a,b,,c" split on "," is ["a" "b" "" "c"].
func (r *Regex) Split(s string, n int) []string {
	return r.re.Split(s, n)
}

// RegexCache caches compiled regexes with FIFO eviction. Snippets compile
// dynamic patterns on every record, so the cache keeps that off the hot path.
// It is not safe for concurrent use; a run has a single thread of control.
type RegexCache struct {
	cache   map[string]*Regex
	order   []string // FIFO order for eviction
	maxSize int
}

// NewRegexCache creates a cache holding at most maxSize patterns.
func NewRegexCache(maxSize int) *RegexCache {
	if maxSize <= 0 {
		maxSize = 100
	}
	return &RegexCache{
		cache:   make(map[string]*Regex, maxSize),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
	}
}

// Get returns a compiled regex, compiling and caching if needed.
func (c *RegexCache) Get(pattern string) (*Regex, error) {
	if re, ok := c.cache[pattern]; ok {
		return re, nil
	}

	re, err := Compile(pattern)
	if err != nil {
		return nil, err
	}

	c.cache[pattern] = re
	c.order = append(c.order, pattern)
	for len(c.order) > c.maxSize {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.cache, oldest)
	}
	return re, nil
}

// Len returns the number of cached regexes.
func (c *RegexCache) Len() int {
	return len(c.cache)
}

// Clear removes all cached regexes.
func (c *RegexCache) Clear() {
	clear(c.cache)
	c.order = c.order[:0]
}
