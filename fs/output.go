// Package fs writes job output to the local file system.
package fs

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

var unsafeNameRE = regexp.MustCompile(`[^a-z0-9._-]+`)

// DirName derives an output directory name from a work's URL.
// Example: https://example.org/archive/marx/works/1849/wage-labour/index.htm → wage-labour
func DirName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "folio"
	}

	p := strings.TrimSuffix(u.Path, "/")
	base := path.Base(p)
	if strings.HasPrefix(strings.ToLower(base), "index.") {
		p = path.Dir(p)
		base = path.Base(p)
	}
	base = strings.TrimSuffix(base, path.Ext(base))

	name := strings.Trim(unsafeNameRE.ReplaceAllString(strings.ToLower(base), "-"), "-.")
	if name == "" {
		name = strings.Trim(unsafeNameRE.ReplaceAllString(strings.ToLower(u.Hostname()), "-"), "-.")
	}
	if name == "" {
		return "folio"
	}
	return name
}

// OutputDir writes files atomically. Files are staged in a hidden
// directory inside dir and moved into place on Commit, so a failed job
// never leaves half-written output next to an earlier result.
type OutputDir struct {
	dir    string
	staged []string
}

// NewOutputDir creates an OutputDir rooted at dir.
func NewOutputDir(dir string) *OutputDir {
	return &OutputDir{dir: dir}
}

func (o *OutputDir) tempDir() string {
	return filepath.Join(o.dir, ".folio.tmp")
}

// Path returns where name ends up after Commit.
func (o *OutputDir) Path(name string) string {
	return filepath.Join(o.dir, name)
}

// Create opens a staged file for writing.
func (o *OutputDir) Create(name string) (io.WriteCloser, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return nil, fmt.Errorf("invalid output file name %q", name)
	}
	if err := os.MkdirAll(o.tempDir(), 0755); err != nil {
		return nil, err
	}
	f, err := os.Create(filepath.Join(o.tempDir(), name))
	if err != nil {
		return nil, err
	}
	o.staged = append(o.staged, name)
	return f, nil
}

// WriteFile stages content under name.
func (o *OutputDir) WriteFile(name string, content []byte) error {
	w, err := o.Create(name)
	if err != nil {
		return err
	}
	if _, err := w.Write(content); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// Commit moves every staged file into place, replacing earlier versions.
func (o *OutputDir) Commit() error {
	for _, name := range o.staged {
		if err := os.Rename(filepath.Join(o.tempDir(), name), o.Path(name)); err != nil {
			return err
		}
	}
	o.staged = nil
	return os.RemoveAll(o.tempDir())
}

// Abort discards staged files.
func (o *OutputDir) Abort() error {
	o.staged = nil
	return os.RemoveAll(o.tempDir())
}
