// Package mse implements a streaming reader for the tab-indented,
// line-oriented text format used to persist set, card and style data.
//
// A document is a flat sequence of "key: value" lines whose tree structure
// is given entirely by leading tab characters. The Reader walks that
// sequence forward-only: callers enter and exit nested blocks, pull typed
// values, and receive recoverable problems as aggregated warnings rather
// than hard failures.
package mse

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// cursorState tracks what the Reader last did with the current key.
type cursorState int

const (
	// stateOutside is the initial state, before any line was read.
	stateOutside cursorState = iota
	// stateEntered means the cursor sits on a key whose block was just
	// opened; the next advance moves inside it.
	stateEntered
	// stateHandled means the current key's value has been consumed.
	stateHandled
	// stateUnhandled means a consumed value was put back for a second
	// read without advancing.
	stateUnhandled
)

func (s cursorState) String() string {
	switch s {
	case stateOutside:
		return "outside"
	case stateEntered:
		return "entered"
	case stateHandled:
		return "handled"
	case stateUnhandled:
		return "unhandled"
	default:
		return fmt.Sprintf("cursorState(%d)", int(s))
	}
}

// Reader reads one document from a byte stream. It is bound to the stream
// for its whole lifetime and presumes exclusive access to it; concurrent
// documents need independent Readers on independent streams.
type Reader struct {
	scan *lineScanner

	filename      string
	appVersion    Version
	fileVersion   Version
	ignoreInvalid bool
	pkg           any

	state          cursorState
	indent         int // Indentation of the current line; -1 when no line is available.
	expectedIndent int // Indentation required of lines inside the open block.
	line           string
	key            string
	value          string
	previousValue  string

	lineNumber         int
	previousLineNumber int
	eof                bool
	err                error // First fatal error; sticky.

	warnings []Warning
}

// Option configures a Reader at construction.
type Option func(*Reader)

// WithFilename sets the logical filename used in diagnostics.
func WithFilename(name string) Option {
	return func(r *Reader) { r.filename = name }
}

// WithAppVersion sets the running application's format version, compared
// against the version declared by the document.
func WithAppVersion(v Version) Option {
	return func(r *Reader) { r.appVersion = v }
}

// WithIgnoreInvalid enables leniency mode: formatting warnings are
// suppressed and unrecognized content is skipped silently, for best-effort
// reading of possibly damaged documents.
func WithIgnoreInvalid(ignore bool) Option {
	return func(r *Reader) { r.ignoreInvalid = ignore }
}

// WithPackage attaches an opaque package context for collaborators that
// resolve file references. The reader itself never interprets it.
func WithPackage(pkg any) Option {
	return func(r *Reader) { r.pkg = pkg }
}

// NewReader constructs a Reader bound to input. It strips a leading byte
// order mark, advances to the first usable line, and consumes the reserved
// version block before returning, so the first caller-visible key is real
// document content.
func NewReader(input io.Reader, opts ...Option) (*Reader, error) {
	r := &Reader{
		scan:   newLineScanner(input),
		state:  stateOutside,
		indent: -1,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.scan.eatBOM()
	r.moveNext()
	r.handleAppVersion()
	if r.err != nil {
		return nil, r.err
	}
	return r, nil
}

// Key returns the canonical form of the current key.
func (r *Reader) Key() string { return r.key }

// Value returns the raw (uncoerced, single-line) value of the current key.
// An empty result means the value, if any, lives on following indented
// lines; use GetValue to collect it.
func (r *Reader) Value() string { return r.value }

// AtEnd reports whether the document holds no further content.
func (r *Reader) AtEnd() bool { return r.indent < 0 }

// FileVersion returns the version declared by the document, or 0 if the
// document declared none.
func (r *Reader) FileVersion() Version { return r.fileVersion }

// Package returns the opaque package context, if one was attached.
func (r *Reader) Package() any { return r.pkg }

// Err returns the first fatal error encountered, if any.
func (r *Reader) Err() error { return r.err }

// EnterAnyBlock enters the block of the current key, whatever its name.
// It reports false without consuming anything when the current line is not
// at the expected nesting level.
func (r *Reader) EnterAnyBlock() bool {
	if r.err != nil {
		return false
	}
	if r.state == stateEntered {
		// On the key of the parent block; first move inside it.
		r.moveNext()
	}
	if r.indent != r.expectedIndent {
		return false
	}
	r.state = stateEntered
	r.expectedIndent++
	return true
}

// EnterBlock enters the block of the current key if that key equals name
// (compared in canonical form). On a mismatch no state changes and the line
// stays available for a different handler to try.
func (r *Reader) EnterBlock(name string) bool {
	if r.err != nil {
		return false
	}
	if r.state == stateEntered {
		r.moveNext()
	}
	if r.indent != r.expectedIndent {
		return false
	}
	if r.key != canonicalName(name) {
		return false
	}
	r.state = stateEntered
	r.expectedIndent++
	return true
}

// ExitBlock leaves the currently open block, discarding any keys of the
// block that were never consumed. The discard is silent: trailing fields a
// caller chose not to read do not warrant a diagnostic.
func (r *Reader) ExitBlock() error {
	if r.err != nil {
		return r.err
	}
	if r.expectedIndent <= 0 {
		return fmt.Errorf("reader: ExitBlock without matching EnterBlock")
	}
	if r.state == stateUnhandled {
		return fmt.Errorf("reader: ExitBlock with an unconsumed value")
	}
	r.expectedIndent--
	r.previousValue = ""
	if r.state == stateEntered {
		// Leave this key.
		r.moveNext()
	}
	for r.indent > r.expectedIndent && r.err == nil {
		r.moveNext()
	}
	r.state = stateHandled
	return r.err
}

// UnknownKey is the recovery path for a key no handler recognized. Outside
// leniency mode a key at or above the expected nesting level draws a
// warning; the key and everything nested under it are then skipped. A key
// below the expected level is left untouched, since the caller may want to
// reinterpret the same line as a nameless value at an outer level.
func (r *Reader) UnknownKey() error {
	if r.err != nil {
		return r.err
	}
	if r.ignoreInvalid {
		for {
			r.moveNext()
			if r.indent <= r.expectedIndent || r.err != nil {
				break
			}
		}
		return r.err
	}
	if r.indent >= r.expectedIndent {
		r.WarnAt("Unexpected key: '"+r.key+"'", 0, false)
		for {
			r.moveNext()
			if r.indent <= r.expectedIndent || r.err != nil {
				break
			}
		}
	}
	return r.err
}

// Unhandle puts the value read by the last GetValue back, so that the next
// GetValue returns the same text without advancing. Used when a lookahead
// decision must be undone and reprocessed by a different handler.
func (r *Reader) Unhandle() {
	if r.state == stateHandled {
		r.state = stateUnhandled
	}
}

// HandleIgnore skips the named block if the document predates end: callers
// use it to declare "this block only existed before version end" without
// knowing the block's contents.
func (r *Reader) HandleIgnore(end Version, name string) error {
	if r.fileVersion.Less(end) {
		if r.EnterBlock(name) {
			return r.ExitBlock()
		}
	}
	return r.err
}

// handleAppVersion consumes the reserved version block, conventionally the
// first content in a document. Absence is not an error: the document is
// then treated as version 0.
func (r *Reader) handleAppVersion() {
	if !r.EnterBlock("mse_version") {
		return
	}
	var v Version
	if err := r.Handle(&v); err != nil {
		return
	}
	r.fileVersion = v
	if r.appVersion.Less(v) {
		r.warnings = append(r.warnings, Warning{
			Line:    r.previousLineNumber,
			Message: fmt.Sprintf("This file was created by a newer version of the program (%s); some content may not be read correctly", v),
		})
	}
	r.ExitBlock()
}

// Warn records a recoverable diagnostic attributed to the previously read
// line. That is the right line for value coercions, which only discover a
// problem after the cursor advanced past the value.
func (r *Reader) Warn(msg string) {
	r.WarnAt(msg, 0, true)
}

// WarnAt records a recoverable diagnostic at an explicit offset from the
// current line, or from the previous successfully read line.
func (r *Reader) WarnAt(msg string, lineOffset int, onPreviousLine bool) {
	line := r.lineNumber
	if onPreviousLine {
		line = r.previousLineNumber
	}
	r.warnings = append(r.warnings, Warning{Line: line + lineOffset, Message: msg})
}

// Warnings returns the accumulated diagnostics without flushing them.
func (r *Reader) Warnings() []Warning {
	return r.warnings
}

// ShowWarnings flushes the accumulated diagnostics as one aggregated
// message tagged with the filename, or returns "" when there are none.
func (r *Reader) ShowWarnings() string {
	if len(r.warnings) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("Warnings while reading file:\n")
	sb.WriteString(r.filename)
	for _, w := range r.warnings {
		fmt.Fprintf(&sb, "\nOn line %d:\t%s", w.Line, w.Message)
	}
	r.warnings = nil
	return sb.String()
}

// moveNext advances to the next non-blank line, or to the end-of-stream
// sentinel (indent -1) when none remains.
func (r *Reader) moveNext() {
	r.previousLineNumber = r.lineNumber
	r.state = stateHandled
	r.key = ""
	r.indent = -1 // If no line is read it never has the expected indentation.
	for r.key == "" && !r.eof && r.err == nil {
		r.readLine(false)
	}
	if r.key == "" && (r.eof || r.err != nil) {
		r.lineNumber++
		r.indent = -1
	}
}

// readLine reads one physical line and splits it into indentation, key and
// raw value. inString suppresses the formatting warnings that do not apply
// inside multi-line text blocks.
func (r *Reader) readLine(inString bool) {
	if r.err != nil {
		return
	}
	r.lineNumber++
	text, eof, err := r.scan.nextLine()
	if eof {
		r.eof = true
	}
	if err != nil {
		if errors.Is(err, errInvalidUTF8) {
			err = &ParseError{Msg: err.Error(), Line: r.lineNumber, File: r.filename}
		}
		r.fail(err)
		return
	}
	r.line = text

	// Indentation is the count of leading tabs.
	indent := 0
	for indent < len(text) && text[indent] == '\t' {
		indent++
	}
	r.indent = indent

	// Blank lines and comments carry no key and are skipped by the cursor.
	if strings.Trim(text, " \t") == "" || text[indent] == '#' {
		r.key = ""
		return
	}

	rest := text[indent:]
	pos := strings.IndexByte(rest, ':')
	key := rest
	if pos >= 0 {
		key = rest[:pos]
	}
	if !r.ignoreInvalid && !inString && strings.HasPrefix(key, " ") {
		r.WarnAt("key: '"+key+"' starts with a space; only use TABs for indentation!", 0, false)
		// Best-effort repair: treat each run of 8 leading spaces as one
		// indentation level.
		for strings.HasPrefix(key, "        ") {
			key = key[8:]
			r.indent++
		}
	}
	r.key = canonicalName(strings.TrimSpace(key))
	if pos < 0 {
		if !r.ignoreInvalid && !inString {
			r.WarnAt("Missing ':'", 0, false)
		}
		r.value = ""
	} else {
		r.value = strings.TrimLeft(rest[pos+1:], " \t")
	}
	if r.key == "" && pos >= 0 {
		// Distinguish "empty key before a colon" from "no colon at all".
		r.key = " "
	}
}

// fail records the first fatal error; later operations become no-ops.
func (r *Reader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

// canonicalName normalizes a key for comparison: trimmed, lower-cased, with
// underscores treated as spaces.
func canonicalName(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", " "))
}
