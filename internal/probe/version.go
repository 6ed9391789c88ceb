package probe

import (
	"regexp"
	"strings"

	"github.com/hashicorp/go-version"
)

// versionPattern matches the first dotted numeric token in a version query
// output, e.g. "3.12.3" in "Python 3.12.3" or "22.3.0" in "v22.3.0".
var versionPattern = regexp.MustCompile(`\d+(\.\d+)*`)

// Extract returns the first version-looking token in output.
// The second return value is false when output contains no digits at all.
func Extract(output string) (string, bool) {
	m := versionPattern.FindString(output)
	return m, m != ""
}

// Parse parses a version string. Unparseable input yields version 0,
// which fails every non-empty minimum; this mirrors how the bootstrap
// has always treated exotic version formats.
func Parse(s string) *version.Version {
	v, err := version.NewVersion(strings.TrimSpace(s))
	if err != nil {
		return zero
	}
	return v
}

var zero = version.Must(version.NewVersion("0"))

// AtLeast reports whether found >= minimum. An empty minimum is satisfied
// by any parseable version; an unparseable found never satisfies a
// non-empty minimum.
func AtLeast(found, minimum string) bool {
	got := Parse(found)
	if strings.TrimSpace(minimum) == "" {
		return got != zero
	}
	return got.GreaterThanOrEqual(Parse(minimum))
}
