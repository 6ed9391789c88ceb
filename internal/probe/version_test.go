package probe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestExtract covers the version query formats of every managed tool.
func TestExtract(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   string
		found  bool
	}{
		{"python", "Python 3.12.3\n", "3.12.3", true},
		{"node", "v22.3.0\n", "22.3.0", true},
		{"uv", "uv 0.4.18 (7b55e9790 2024-10-01)\n", "0.4.18", true},
		{"pandoc", "pandoc 3.1.3\nFeatures: +server +lua\n", "3.1.3", true},
		{"xelatex", "XeTeX 3.141592653-2.6-0.999995 (TeX Live 2023/Debian)\n", "3.141592653", true},
		{"ubuntu release", "Ubuntu 24.04", "24.04", true},
		{"no digits", "command not found", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := Extract(tt.output)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestAtLeast covers threshold comparison, including the boundary and the
// unparseable-means-zero rule.
func TestAtLeast(t *testing.T) {
	tests := []struct {
		found   string
		minimum string
		want    bool
	}{
		{"3.12.3", "3.12", true},
		{"3.12", "3.12", true},
		{"3.11.9", "3.12", false},
		{"24.04", "24.04", true},
		{"24.03", "24.04", false},
		{"23.10", "24.04", false},
		{"22.3.0", "22", true},
		{"20.11.1", "22", false},
		{"0.4.18", "", true},
		{"garbage", "", false},
		{"garbage", "1", false},
		{"", "0.1", false},
	}

	for _, tt := range tests {
		t.Run(tt.found+">="+tt.minimum, func(t *testing.T) {
			assert.Equal(t, tt.want, AtLeast(tt.found, tt.minimum))
		})
	}
}
