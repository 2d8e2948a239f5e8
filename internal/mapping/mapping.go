// Package mapping resolves filesystem locations to RequireJS module paths.
//
// A Mapping holds an ordered table of namespaces. Each namespace is rooted at
// a canonical filesystem path (a directory, or a single script file), and every
// file beneath that root is exposed as basePath/namespace/<relative path>.
package mapping

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrPathNotFound is returned when a namespace target does not exist, with or
// without an appended ".js".
var ErrPathNotFound = errors.New("path not found")

var (
	separators = regexp.MustCompile(`[/\\]+`)
	coffeeExt  = regexp.MustCompile(`\.coffee$`)
)

// Entry is one registered namespace.
type Entry struct {
	Namespace string
	RealPath  string // canonical: absolute, symlinks resolved
	IsDir     bool
}

// Mapping is the namespace table. It is built once at startup; after that it
// is only read, so concurrent ModulePath calls need no locking.
type Mapping struct {
	basePath string
	entries  []Entry
}

// New creates an empty Mapping serving modules under basePath.
func New(basePath string) *Mapping {
	return &Mapping{basePath: basePath}
}

// BasePath returns the path modules are served under.
func (m *Mapping) BasePath() string { return m.basePath }

// RegisterNamespace maps namespace to path. If path+".js" is a regular file it
// is preferred, so script namespaces may be given without their extension.
//
// Registering a root that is already present replaces that entry in place;
// registering a namespace that is already present moves it to the new root.
func (m *Mapping) RegisterNamespace(namespace, path string) error {
	realPath, info, err := resolve(path)
	if err != nil {
		return fmt.Errorf("the path %q was not found: %w", path, ErrPathNotFound)
	}

	entry := Entry{Namespace: namespace, RealPath: realPath, IsDir: info.IsDir()}

	idx := -1
	kept := m.entries[:0:0]
	for _, e := range m.entries {
		if e.RealPath == realPath || e.Namespace == namespace {
			if idx == -1 {
				idx = len(kept)
				kept = append(kept, entry)
			}
			continue
		}
		kept = append(kept, e)
	}
	if idx == -1 {
		kept = append(kept, entry)
	}
	m.entries = kept

	return nil
}

// ModulePath returns the module path filename is served under. The boolean is
// false when filename does not exist or lies outside every registered root;
// callers treat that as "not a module", not as an error.
//
// Namespaces are tried in registration order and the first whose root
// contains filename wins. A ".coffee" extension is reported as ".js".
func (m *Mapping) ModulePath(filename string) (string, bool) {
	filePath, info, err := resolve(filename)
	if err != nil {
		return "", false
	}

	for _, e := range m.entries {
		rel, ok := relativeTo(e.RealPath, filePath)
		if !ok {
			continue
		}

		modulePath := m.basePath + "/" + e.Namespace
		switch {
		case info.Mode().IsRegular():
			modulePath += "/" + baseName(rel, filePath)
		case rel != "":
			modulePath += "/" + rel
		}

		modulePath = separators.ReplaceAllString(modulePath, "/")
		if len(modulePath) > 1 {
			modulePath = strings.TrimSuffix(modulePath, "/")
		}
		return modulePath, true
	}

	return "", false
}

// Namespaces returns a copy of the table in match order.
func (m *Mapping) Namespaces() []Entry {
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// baseName returns the served name of a file: its path relative to the
// namespace root, or its own base name when the file is the root itself.
func baseName(rel, filePath string) string {
	if rel == "" {
		rel = filepath.Base(filePath)
	}
	return coffeeExt.ReplaceAllString(rel, ".js")
}

// relativeTo reports whether p equals root or lies beneath it, comparing whole
// path segments, and returns the slash-separated remainder.
func relativeTo(root, p string) (string, bool) {
	if p == root {
		return "", true
	}

	prefix := root
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	if !strings.HasPrefix(p, prefix) {
		return "", false
	}
	return filepath.ToSlash(p[len(prefix):]), true
}

// resolve canonicalizes path, probing for a ".js" sibling first.
func resolve(path string) (string, os.FileInfo, error) {
	if info, err := os.Stat(path + ".js"); err == nil && info.Mode().IsRegular() {
		path += ".js"
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", nil, err
	}

	realPath, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", nil, err
	}

	info, err := os.Stat(realPath)
	if err != nil {
		return "", nil, err
	}
	return realPath, info, nil
}
