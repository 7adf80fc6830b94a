package mse

import "fmt"

// ParseError is the fatal tier of the reader's diagnostics: an error that
// aborts the entire document read. Invalid byte encoding, unparsable
// date-times and points, and strict enum decoding all produce a ParseError.
// Recoverable problems are recorded as Warnings instead.
type ParseError struct {
	Msg  string
	Line int    // 1-based line number, 0 if unknown.
	File string // Logical filename, may be empty.
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	switch {
	case e.File != "" && e.Line > 0:
		return fmt.Sprintf("%s: line %d: %s", e.File, e.Line, e.Msg)
	case e.Line > 0:
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	default:
		return e.Msg
	}
}

// Warning is a single recoverable diagnostic, tagged with the line it refers
// to. Warnings accumulate on the Reader and are surfaced in one aggregated
// message by ShowWarnings.
type Warning struct {
	Line    int
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("On line %d:\t%s", w.Line, w.Message)
}
