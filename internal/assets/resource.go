// Package assets turns namespace roots into asset formulae: one entry per
// script file, naming the module path it is served under.
package assets

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// Resource is a source of newline-separated file names.
type Resource interface {
	Content() (string, error)
	IsFresh(timestamp time.Time) bool
	String() string
}

// FilenamesResource lists the files under Path, or Path itself when it is a
// file. Hidden files and directories are skipped.
type FilenamesResource struct {
	Path string
}

// NewFilenamesResource creates a resource for path.
func NewFilenamesResource(path string) *FilenamesResource {
	return &FilenamesResource{Path: path}
}

// Files returns the slash-separated paths of the files in the resource, in
// lexical order.
func (r *FilenamesResource) Files() ([]string, error) {
	info, err := os.Stat(r.Path)
	if err != nil {
		return nil, fmt.Errorf("cannot read resource %q: %w", r.Path, err)
	}
	if !info.IsDir() {
		return []string{filepath.ToSlash(r.Path)}, nil
	}

	var files []string
	err = doublestar.GlobWalk(os.DirFS(r.Path), "**", func(p string, d fs.DirEntry) error {
		if !d.IsDir() && !hidden(p) {
			files = append(files, filepath.ToSlash(filepath.Join(r.Path, p)))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cannot walk resource %q: %w", r.Path, err)
	}

	sort.Strings(files)
	return files, nil
}

// Content returns one file per line. A single-file resource has no trailing
// newline; a directory resource terminates every line.
func (r *FilenamesResource) Content() (string, error) {
	info, err := os.Stat(r.Path)
	if err == nil && !info.IsDir() {
		return filepath.ToSlash(r.Path), nil
	}

	files, err := r.Files()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, f := range files {
		sb.WriteString(f)
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

// IsFresh reports whether the resource root was not modified after
// timestamp.
func (r *FilenamesResource) IsFresh(timestamp time.Time) bool {
	info, err := os.Stat(r.Path)
	if err != nil {
		return false
	}
	return !info.ModTime().After(timestamp)
}

func (r *FilenamesResource) String() string {
	return filepath.ToSlash(r.Path)
}

func hidden(p string) bool {
	for _, seg := range strings.Split(p, "/") {
		if strings.HasPrefix(seg, ".") && seg != "." {
			return true
		}
	}
	return false
}
