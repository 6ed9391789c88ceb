package detect

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/spf13/afero"

	"github.com/shinji-kodama/envstrap/internal/model"
)

// unknownVersion is reported when os-release is missing or has no VERSION_ID.
// It compares below every real threshold.
const unknownVersion = "0"

// OSRelease reads /etc/os-release. A missing or unreadable file yields an
// unknown OS rather than an error.
func (d *Detector) OSRelease() model.OSRelease {
	data, err := afero.ReadFile(d.fs, OSReleaseFile)
	if err != nil {
		return model.OSRelease{VersionID: unknownVersion}
	}
	return ParseOSRelease(data)
}

// ParseOSRelease extracts ID and VERSION_ID from os-release content.
// Values may be double- or single-quoted; comments and blank lines are
// ignored.
func ParseOSRelease(data []byte) model.OSRelease {
	rel := model.OSRelease{VersionID: unknownVersion}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		switch key {
		case "ID":
			rel.ID = strings.ToLower(value)
		case "VERSION_ID":
			if value != "" {
				rel.VersionID = value
			}
		}
	}
	return rel
}
