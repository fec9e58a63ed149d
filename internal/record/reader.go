package record

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// ReadRecord reads one record from r and returns exactly the bytes
// consumed, including the delimiter when one was found. A record that runs
// into the end of the stream is returned without error; ("", io.EOF) is
// returned only when the stream was already exhausted.
func ReadRecord(r *bufio.Reader, d Delimiter) (string, error) {
	switch d.mode {
	case ModeSlurp:
		return readAll(r)
	case ModeLiteral:
		return readLiteral(r, &d)
	default:
		return readLine(r)
	}
}

func readAll(r *bufio.Reader) (string, error) {
	var sb strings.Builder
	_, err := io.Copy(&sb, r)
	if err != nil {
		return sb.String(), err
	}
	if sb.Len() == 0 {
		return "", io.EOF
	}
	return sb.String(), nil
}

func readLine(r *bufio.Reader) (string, error) {
	var sb strings.Builder
	for {
		c, err := r.ReadByte()
		if err != nil {
			return finish(&sb, err)
		}
		sb.WriteByte(c)
		switch c {
		case '\n':
			return sb.String(), nil
		case '\r':
			next, err := r.ReadByte()
			if err != nil {
				// "\r" at the end of the stream still ends the record.
				if errors.Is(err, io.EOF) {
					return sb.String(), nil
				}
				return sb.String(), err
			}
			if next == '\n' {
				sb.WriteByte(next)
			} else if err := r.UnreadByte(); err != nil {
				return sb.String(), err
			}
			return sb.String(), nil
		}
	}
}

func readLiteral(r *bufio.Reader, d *Delimiter) (string, error) {
	var sb strings.Builder
	j := 0
	for {
		c, err := r.ReadByte()
		if err != nil {
			return finish(&sb, err)
		}
		sb.WriteByte(c)
		j = d.step(j, c)
		if j == len(d.lit) {
			return sb.String(), nil
		}
	}
}

// finish turns a read error into the result for a partial record.
func finish(sb *strings.Builder, err error) (string, error) {
	if errors.Is(err, io.EOF) {
		if sb.Len() == 0 {
			return "", io.EOF
		}
		return sb.String(), nil
	}
	return sb.String(), err
}

// Strip splits text into its content and the trailing delimiter. In
// universal mode the suffix is "\r\n", "\n" or "\r"; in literal mode it is
// the delimiter itself; slurp mode never strips. A record that does not end
// with a delimiter yields suffix "".
func Strip(text string, d Delimiter) (content, suffix string) {
	switch d.mode {
	case ModeUniversal:
		switch {
		case strings.HasSuffix(text, "\r\n"):
			suffix = "\r\n"
		case strings.HasSuffix(text, "\n"):
			suffix = "\n"
		case strings.HasSuffix(text, "\r"):
			suffix = "\r"
		}
	case ModeLiteral:
		if strings.HasSuffix(text, d.lit) {
			suffix = d.lit
		}
	}
	return text[:len(text)-len(suffix)], suffix
}
