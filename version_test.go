package mse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in   string
		want Version
	}{
		{"2000000", 2000000},
		{"0", 0},
		{"2.0.0", 2000000},
		{"0.3.8", 30800},
		{"1.2", 1020000},
		{"0.3.5.1", 30501},
		{" 2.0.0 ", 2000000},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, err := ParseVersion(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
		})
	}

	for _, bad := range []string{"", "x", "1.x", "1.2.3.4.5", "-1"} {
		t.Run("bad "+bad, func(t *testing.T) {
			_, err := ParseVersion(bad)
			assert.Error(t, err)
		})
	}
}

func TestVersionString(t *testing.T) {
	assert.Equal(t, "2.0.0", Version(2000000).String())
	assert.Equal(t, "0.3.8", Version(30800).String())
	assert.Equal(t, "0.3.5.1", Version(30501).String())
	assert.Equal(t, "0.0.0", Version(0).String())
}

func TestVersionLess(t *testing.T) {
	assert.True(t, Version(30800).Less(2000000))
	assert.False(t, Version(2000000).Less(2000000))
}
