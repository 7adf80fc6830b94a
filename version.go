package mse

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a document format version, stored as a single comparable
// number. Dotted version strings fold into it component-wise, so "2.0.0"
// and "2000000" denote the same version.
type Version uint

// Component multipliers for the dotted form: major.minor.patch.build.
const (
	versionMajor = 1000000
	versionMinor = 10000
	versionPatch = 100
)

// ParseVersion reads a version from its textual form: either a plain
// number, or up to four dot-separated components.
func ParseVersion(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty version")
	}
	if !strings.Contains(s, ".") {
		n, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid version %q", s)
		}
		return Version(n), nil
	}

	parts := strings.Split(s, ".")
	if len(parts) > 4 {
		return 0, fmt.Errorf("invalid version %q", s)
	}
	mults := [4]uint{versionMajor, versionMinor, versionPatch, 1}
	var v uint
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 32)
		if err != nil || (i > 0 && n > 99) {
			return 0, fmt.Errorf("invalid version %q", s)
		}
		v += uint(n) * mults[i]
	}
	return Version(v), nil
}

// Less reports whether v precedes w.
func (v Version) Less(w Version) bool {
	return v < w
}

// String renders the dotted form, omitting a zero build component.
func (v Version) String() string {
	n := uint(v)
	major := n / versionMajor
	minor := (n / versionMinor) % 100
	patch := (n / versionPatch) % 100
	build := n % 100
	s := fmt.Sprintf("%d.%d.%d", major, minor, patch)
	if build != 0 {
		s += fmt.Sprintf(".%d", build)
	}
	return s
}
