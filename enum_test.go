package mse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEnumReaderFor(t *testing.T, value string) (*Reader, *EnumReader) {
	t.Helper()
	r := newTestReader(t, "color: "+value+"\n")
	require.True(t, r.EnterBlock("color"))
	er, err := NewEnumReader(r)
	require.NoError(t, err)
	return r, er
}

func TestEnumMatch(t *testing.T) {
	r, er := newEnumReaderFor(t, "green")
	assert.False(t, er.Case("red"))
	assert.True(t, er.Case("green"))
	assert.False(t, er.Case("blue"))
	assert.True(t, er.Done())
	er.WarnIfNotDone(r)
	assert.Empty(t, r.Warnings())
}

func TestEnumMatchesOnlyOnce(t *testing.T) {
	_, er := newEnumReaderFor(t, "red")
	assert.True(t, er.Case("red"))
	assert.False(t, er.Case("red"))
}

func TestEnumUnrecognizedWarns(t *testing.T) {
	r, er := newEnumReaderFor(t, "purple")
	assert.False(t, er.Case("red"))
	assert.False(t, er.Case("green"))
	assert.False(t, er.Case("blue"))
	assert.False(t, er.Done())
	assert.Equal(t, "purple", er.Read())

	er.WarnIfNotDone(r)
	msgs := warningMessages(r)
	require.Len(t, msgs, 1)
	// The literal text read and the first known candidate, as an example
	// of what was expected.
	assert.Contains(t, msgs[0], "'purple'")
	assert.Contains(t, msgs[0], "'red'")
}

func TestEnumUnrecognizedStrict(t *testing.T) {
	r, er := newEnumReaderFor(t, "purple")
	er.Case("red")
	err := er.ErrorIfNotDone(r)
	require.Error(t, err)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Msg, "'purple'")
	assert.Error(t, r.Err())
}

func TestHandleEnum(t *testing.T) {
	type alignment int
	const (
		alignLeft alignment = iota
		alignCenter
		alignRight
	)

	r, er := newEnumReaderFor(t, "center")
	out := alignLeft
	HandleEnum(er, "left", alignLeft, &out)
	HandleEnum(er, "center", alignCenter, &out)
	HandleEnum(er, "right", alignRight, &out)
	er.WarnIfNotDone(r)

	assert.Equal(t, alignCenter, out)
	assert.Empty(t, r.Warnings())
}
