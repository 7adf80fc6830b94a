package mse

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Tribool is a three-valued boolean. The zero value is indeterminate.
type Tribool int8

const (
	TriIndeterminate Tribool = iota
	TriFalse
	TriTrue
)

func (t Tribool) String() string {
	switch t {
	case TriTrue:
		return "true"
	case TriFalse:
		return "false"
	default:
		return "indeterminate"
	}
}

// Vector2D is a point or size in 2D space, persisted as "(x,y)".
type Vector2D struct {
	X, Y float64
}

func (v Vector2D) String() string {
	return fmt.Sprintf("(%g,%g)", v.X, v.Y)
}

// FileName references a file local to the document's package.
type FileName string

// FileNameFromReadString decodes the persisted form of a file reference.
// Path separators are normalized; resolving the reference against a package
// is left to the collaborator that owns the package.
func FileNameFromReadString(s string) FileName {
	return FileName(strings.ReplaceAll(s, "\\", "/"))
}

// Date-time values are written in a fixed set of layouts; the first one is
// the canonical output form of the writer.
var dateTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// GetValue returns the current key's value as text and advances past it.
//
// If the last value was put back with Unhandle, that value is returned
// again without advancing (one shot). If the raw value on the key's line is
// empty, the value is the following indented block: all lines indented at
// least to the expected nesting level are collected, that indentation
// stripped, and joined with newlines. Blank or under-indented interior
// lines become embedded newlines only when sufficiently indented content
// follows, so trailing blank lines are dropped rather than embedded.
func (r *Reader) GetValue() (string, error) {
	if r.err != nil {
		return "", r.err
	}
	switch {
	case r.state == stateHandled:
		return "", fmt.Errorf("reader: value of key '%s' was already consumed", r.key)
	case r.state == stateUnhandled:
		r.state = stateHandled
		return r.previousValue, nil
	case r.value == "":
		return r.getMultilineValue()
	default:
		r.previousValue = r.value
		r.moveNext()
		if r.err != nil {
			return "", r.err
		}
		return r.previousValue, nil
	}
}

// getMultilineValue collects a text block spanning the following lines.
func (r *Reader) getMultilineValue() (string, error) {
	var sb strings.Builder
	pendingNewlines := 0
	r.readLine(true)
	r.previousLineNumber = r.lineNumber
	for r.indent >= r.expectedIndent && !r.eof && r.err == nil {
		for ; pendingNewlines > 0; pendingNewlines-- {
			sb.WriteByte('\n')
		}
		// Strip exactly the expected indentation; deeper indentation is
		// content.
		sb.WriteString(r.line[r.expectedIndent:])
		for {
			r.readLine(true)
			pendingNewlines++
			// Skip blank lines that are not indented enough; they only
			// become embedded newlines if indented content follows.
			if !(strings.Trim(r.line, " \t") == "" && r.indent < r.expectedIndent && !r.eof && r.err == nil) {
				break
			}
		}
	}

	// Advance to the next key, without re-reading the line that ended the
	// block: it may itself be the next key.
	r.state = stateHandled
	for r.key == "" && !r.eof && r.err == nil {
		r.readLine(false)
	}
	if r.key == "" && (r.eof || r.err != nil) {
		r.lineNumber++
		r.indent = -1
	}
	if r.err != nil {
		return "", r.err
	}
	if r.indent >= r.expectedIndent {
		r.WarnAt("Blank line or comment in text block, that is insufficiently indented.\n"+
			"\t\tEither indent the comment/blank line, or add a 'key:' after it.\n"+
			"\t\tThis could cause more error messages.", -1, false)
	}
	r.previousValue = sb.String()
	return r.previousValue, nil
}

// Handle coerces the current value into the scalar pointed to by out. The
// closed set of supported kinds keeps the warning/fatal policy in one
// place: malformed text, integers, floats and booleans warn and substitute
// a default, malformed date-times and points abort the read.
func (r *Reader) Handle(out any) error {
	switch out.(type) {
	case *string, *int, *uint, *float64, *bool, *Tribool, *time.Time, *Vector2D, *FileName, *Version:
	default:
		return fmt.Errorf("reader: cannot handle values of type %T", out)
	}
	v, err := r.GetValue()
	if err != nil {
		return err
	}
	switch out := out.(type) {
	case *string:
		*out = v
	case *int:
		l, perr := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if perr != nil {
			r.Warn("Expected integer instead of '" + v + "'")
			l = 0
		}
		*out = int(l)
	case *uint:
		l, perr := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if perr != nil {
			r.Warn("Expected non-negative integer instead of '" + v + "'")
			l = 0
		} else if l < 0 {
			// Absolute value rather than wraparound: -1 coming out as a
			// huge positive number would look even stranger.
			r.Warn(fmt.Sprintf("Expected non-negative integer instead of %d", l))
			l = -l
		}
		*out = uint(l)
	case *float64:
		f, perr := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if perr != nil {
			r.Warn("Expected floating point number instead of '" + v + "'")
		} else {
			*out = f
		}
	case *bool:
		if b, ok := parseBoolToken(v); ok {
			*out = b
		} else {
			r.Warn("Expected boolean ('true' or 'false') instead of '" + v + "'")
		}
	case *Tribool:
		if b, ok := parseBoolToken(v); ok {
			if b {
				*out = TriTrue
			} else {
				*out = TriFalse
			}
		} else {
			r.Warn("Expected boolean ('true' or 'false') instead of '" + v + "'")
		}
	case *time.Time:
		t, ok := parseDateTime(v)
		if !ok {
			err := &ParseError{Msg: "Expected a date and time", Line: r.previousLineNumber, File: r.filename}
			r.fail(err)
			return err
		}
		*out = t
	case *Vector2D:
		var p Vector2D
		n, serr := fmt.Sscanf(v, "(%g,%g)", &p.X, &p.Y)
		if serr != nil || n < 2 {
			err := &ParseError{Msg: "Expected (x,y)", Line: r.previousLineNumber, File: r.filename}
			r.fail(err)
			return err
		}
		*out = p
	case *FileName:
		*out = FileNameFromReadString(v)
	case *Version:
		pv, perr := ParseVersion(v)
		if perr != nil {
			r.Warn("Expected version number instead of '" + v + "'")
			pv = 0
		}
		*out = pv
	}
	return nil
}

// parseBoolToken recognizes the exact boolean tokens of the format.
// Matching is case-sensitive.
func parseBoolToken(v string) (value, ok bool) {
	switch v {
	case "true", "1", "yes":
		return true, true
	case "false", "0", "no":
		return false, true
	}
	return false, false
}

func parseDateTime(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
