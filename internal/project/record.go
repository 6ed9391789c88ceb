package project

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/shinji-kodama/envstrap/internal/model"
)

// RecordFile is the selection record name inside the cache directory.
const RecordFile = "optional-groups"

// DefaultCacheDir is the cache directory relative to the project root.
const DefaultCacheDir = ".cache/envstrap"

// Record persists the last group selection, sorted, one name per line.
// The record is informational: it is shown as a hint on the next run and
// never feeds a decision.
type Record struct {
	fs   afero.Fs
	path string
}

// NewRecord creates a Record under cacheDir. A relative cacheDir is
// resolved against the project root; an empty one means DefaultCacheDir.
func (p *Project) NewRecord(cacheDir string) *Record {
	if cacheDir == "" {
		cacheDir = DefaultCacheDir
	}
	if !filepath.IsAbs(cacheDir) {
		cacheDir = filepath.Join(p.Root, cacheDir)
	}
	return &Record{fs: p.fs, path: filepath.Join(cacheDir, RecordFile)}
}

// Path returns the record file path.
func (r *Record) Path() string {
	return r.path
}

// Read returns the recorded selection. The boolean is false when no record
// exists yet.
func (r *Record) Read() (model.GroupSelection, bool, error) {
	data, err := afero.ReadFile(r.fs, r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.GroupSelection{}, false, nil
		}
		return model.GroupSelection{}, false, fmt.Errorf("failed to read %s: %w", r.path, err)
	}

	var names []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		names = append(names, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return model.GroupSelection{}, false, fmt.Errorf("failed to read %s: %w", r.path, err)
	}
	return model.NewGroupSelection(names...), true, nil
}

// Write replaces the record with sel. An empty selection writes an empty
// file, so "nothing selected" is distinguishable from "never run".
func (r *Record) Write(sel model.GroupSelection) error {
	if err := r.fs.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(r.path), err)
	}

	var b strings.Builder
	for _, name := range sel.Sorted() {
		b.WriteString(name)
		b.WriteByte('\n')
	}

	if err := afero.WriteFile(r.fs, r.path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", r.path, err)
	}
	return nil
}
