package mse

import "fmt"

// EnumReader resolves the single value read from the cursor against a
// caller-supplied sequence of candidate tokens. Candidates are offered one
// by one with Case; when the caller is done offering, WarnIfNotDone or
// ErrorIfNotDone reports an unrecognized value, naming the literal text
// read and the first candidate as an example of what was expected.
type EnumReader struct {
	read  string // Literal text read from the document.
	first string // First candidate offered, for diagnostics.
	done  bool   // Whether any candidate matched.
}

// NewEnumReader consumes the current value and binds an EnumReader to it.
func NewEnumReader(r *Reader) (*EnumReader, error) {
	v, err := r.GetValue()
	if err != nil {
		return nil, err
	}
	return &EnumReader{read: v}, nil
}

// Case offers one candidate token. It reports true exactly once: for the
// first offered candidate equal to the text read.
func (er *EnumReader) Case(name string) bool {
	if er.first == "" {
		er.first = name
	}
	if !er.done && er.read == name {
		er.done = true
		return true
	}
	return false
}

// Done reports whether any offered candidate matched.
func (er *EnumReader) Done() bool { return er.done }

// Read returns the literal text that was read from the document.
func (er *EnumReader) Read() string { return er.read }

func (er *EnumReader) message() string {
	return fmt.Sprintf("Unrecognized value: '%s', expected e.g. '%s'", er.read, er.first)
}

// WarnIfNotDone records a warning on r if no candidate matched. This is the
// lenient decoding policy: the output keeps its prior value.
func (er *EnumReader) WarnIfNotDone(r *Reader) {
	if !er.done {
		r.Warn(er.message())
	}
}

// ErrorIfNotDone returns a fatal parse error if no candidate matched. This
// is the strict decoding policy.
func (er *EnumReader) ErrorIfNotDone(r *Reader) error {
	if er.done {
		return nil
	}
	err := &ParseError{Msg: er.message(), Line: r.previousLineNumber, File: r.filename}
	r.fail(err)
	return err
}

// HandleEnum assigns val to out when name matches the text read. It is a
// convenience over Case for the common offer-and-assign pattern.
func HandleEnum[T any](er *EnumReader, name string, val T, out *T) {
	if er.Case(name) {
		*out = val
	}
}
