package mse

import (
	"bufio"
	"errors"
	"io"
	"unicode/utf8"
)

// errInvalidUTF8 is reported by nextLine when a line holds an invalid byte
// sequence. The Reader wraps it into a ParseError with the line number.
var errInvalidUTF8 = errors.New("invalid UTF-8 sequence")

// lineScanner reads logical lines from a byte stream. It recognizes \n, \r
// and \r\n as a single terminator and never reads past the terminator, so
// the stream position always sits at the start of the next line.
type lineScanner struct {
	r   *bufio.Reader
	buf []byte // Reusable line buffer; grows geometrically via append.
}

func newLineScanner(r io.Reader) *lineScanner {
	return &lineScanner{
		r:   bufio.NewReader(r),
		buf: make([]byte, 0, 256),
	}
}

// eatBOM consumes a UTF-8 byte order mark at the start of the stream, if
// present. Called once, before the first nextLine.
func (s *lineScanner) eatBOM() {
	bom, err := s.r.Peek(3)
	if err == nil && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		s.r.Discard(3)
	}
}

// nextLine reads one logical line. eof reports whether the end of the stream
// was reached during this read; the returned text is still valid in that
// case (a final line without a terminator is returned alongside eof=true,
// and a read at the very end returns "" with eof=true).
func (s *lineScanner) nextLine() (text string, eof bool, err error) {
	s.buf = s.buf[:0]
	for {
		b, rerr := s.r.ReadByte()
		if rerr != nil {
			if rerr == io.EOF {
				eof = true
				break
			}
			return "", false, rerr
		}
		if b == '\n' {
			break
		}
		if b == '\r' {
			// Consume a following \n, but nothing else: a lone \r is a
			// complete terminator of its own.
			nb, rerr := s.r.ReadByte()
			if rerr == io.EOF {
				eof = true
			} else if rerr != nil {
				return "", false, rerr
			} else if nb != '\n' {
				s.r.UnreadByte()
			}
			break
		}
		s.buf = append(s.buf, b)
	}

	if !utf8.Valid(s.buf) {
		return "", eof, errInvalidUTF8
	}
	return string(s.buf), eof, nil
}
