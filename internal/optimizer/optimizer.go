// Package optimizer drives the RequireJS r.js optimizer.
//
// A Filter collects the build configuration once at startup (path aliases,
// shim, optimizer modules, global excludes, externals and passthrough
// options). For each asset it generates a build profile, runs r.js in a
// subprocess and returns the optimized script. The configuration is read-only
// during builds, so one Filter may serve concurrent Optimize calls; every call
// works in its own temporary directory.
package optimizer

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/StinkyLord/rjs-builder/internal/model"
)

// DefaultTimeout bounds a single r.js run.
const DefaultTimeout = 60 * time.Second

type alias struct {
	name     string
	location string
}

type option struct {
	name  string
	value any
}

// Filter holds the r.js build configuration.
type Filter struct {
	// NodePath is the interpreter used to run r.js. When empty r.js is
	// executed directly.
	NodePath string

	// RPath is the path to r.js.
	RPath string

	// BaseURL is the r.js baseUrl; despite the name it is a filesystem path.
	BaseURL string

	// Timeout bounds each r.js run; zero disables it.
	Timeout time.Duration

	// DeclareModuleName names the generated module after the asset's own
	// module name instead of a hash, when the name can be determined.
	DeclareModuleName bool

	// TempDir is where per-build scratch directories are created. Empty
	// means os.TempDir().
	TempDir string

	Runner Runner
	Logger zerolog.Logger

	paths    []alias
	shim     map[string]model.Shim
	modules  map[string]*model.Module
	exclude  []string
	external []string
	options  []option
}

// New creates a Filter for the given interpreter, r.js script and base URL.
func New(nodePath, rPath, baseURL string) *Filter {
	return &Filter{
		NodePath: nodePath,
		RPath:    rPath,
		BaseURL:  baseURL,
		Timeout:  DefaultTimeout,
		Runner:   &ExecRunner{},
		Logger:   zerolog.Nop(),
		shim:     map[string]model.Shim{},
		modules:  map[string]*model.Module{},
	}
}

// AddExclude excludes module from every build.
func (f *Filter) AddExclude(module string) {
	f.exclude = append(f.exclude, module)
}

// AddExternal marks module as loaded by other means. It is mapped to
// "empty:" so r.js neither bundles nor resolves it.
func (f *Filter) AddExternal(module string) {
	f.external = append(f.external, module)
}

// AddOption sets a passthrough build option. Setting a name twice keeps the
// first position and the last value.
func (f *Filter) AddOption(name string, value any) {
	for i := range f.options {
		if f.options[i].name == name {
			f.options[i].value = value
			return
		}
	}
	f.options = append(f.options, option{name: name, value: value})
}

// AddPath registers a path alias for module.
func (f *Filter) AddPath(module, location string) {
	for i := range f.paths {
		if f.paths[i].name == module {
			f.paths[i].location = location
			return
		}
	}
	f.paths = append(f.paths, alias{name: module, location: location})
}

// SetShim replaces the shim configuration.
func (f *Filter) SetShim(shim map[string]model.Shim) {
	f.shim = make(map[string]model.Shim, len(shim))
	for name, s := range shim {
		f.shim[name] = s.Copy()
	}
}

// AddModule registers an optimizer module. A name may only be registered
// once.
func (f *Filter) AddModule(name string, include, exclude []string) error {
	if _, ok := f.modules[name]; ok {
		return fmt.Errorf("cannot handle module %q twice: %w", name, ErrDuplicateModule)
	}
	f.modules[name] = &model.Module{
		Name:    name,
		Include: append([]string(nil), include...),
		Exclude: append([]string(nil), exclude...),
	}
	return nil
}

// Modules returns the registered optimizer modules sorted by name.
func (f *Filter) Modules() []*model.Module {
	out := make([]*model.Module, 0, len(f.modules))
	for _, m := range f.modules {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ExcludedDependencies returns what a build of module must leave out beyond
// the global excludes: the module's own excludes, then everything those
// excluded modules include. Only one level is expanded. Unknown modules
// yield nil.
func (f *Filter) ExcludedDependencies(module string) []string {
	m, ok := f.modules[module]
	if !ok {
		return nil
	}

	var deps []string
	for _, excluded := range m.Exclude {
		if em, ok := f.modules[excluded]; ok {
			deps = append(deps, em.Include...)
		}
	}

	return unique(m.Exclude, deps)
}

// ModuleIncludes returns the modules explicitly bundled into module.
func (f *Filter) ModuleIncludes(module string) []string {
	m, ok := f.modules[module]
	if !ok {
		return nil
	}
	return append([]string(nil), m.Include...)
}

// ModuleName derives the module name of a source file: the path relative to
// the base URL, or to the location of the most specific path alias (prefixed
// by the alias name), without its ".js" extension. It reports false for
// files outside both.
func (f *Filter) ModuleName(sourceRoot, sourcePath string) (string, bool) {
	full := path.Clean(filepath.ToSlash(sourceRoot) + "/" + filepath.ToSlash(sourcePath))
	bare := strings.TrimSuffix(full, ".js")

	name, best := "", -1
	consider := func(prefix, location string) {
		location = strings.TrimSuffix(path.Clean(filepath.ToSlash(location)), "/")
		if len(location) <= best {
			return
		}
		switch {
		case bare == location && prefix != "":
			name, best = prefix, len(location)
		case strings.HasPrefix(bare, location+"/"):
			rel := bare[len(location)+1:]
			if prefix != "" {
				rel = prefix + "/" + rel
			}
			name, best = rel, len(location)
		}
	}

	if f.BaseURL != "" {
		consider("", f.BaseURL)
	}
	for _, a := range f.paths {
		consider(a.name, strings.TrimSuffix(a.location, ".js"))
	}

	return name, best >= 0
}

// unique concatenates lists, dropping repeats and keeping first occurrences.
// The result is never nil.
func unique(lists ...[]string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, list := range lists {
		for _, s := range list {
			if seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
