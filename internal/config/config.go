// Package config loads the rjs-builder project file.
//
// The file is YAML:
//
//	base_url: js
//	base_dir: assets/scripts
//	paths:
//	  jquery: { location: //code.jquery.com/jquery-1.10.2.min, external: true }
//	  app: assets/app
//	shim:
//	  backbone: { deps: [underscore, jquery], exports: Backbone }
//	optimizer:
//	  path: node_modules/requirejs/bin/r.js
//	  modules:
//	    app/main: { include: [app/router], exclude: [vendor] }
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"

	"github.com/StinkyLord/rjs-builder/internal/model"
)

const (
	DefaultRequireJSSrc = "//cdnjs.cloudflare.com/ajax/libs/require.js/2.1.8/require.min.js"
	DefaultBaseURL      = "js"
	DefaultTimeout      = 60 // seconds
)

// Environment variables that override optimizer.node_path, in priority order.
var nodePathEnv = []string{"RJS_NODE_PATH", "NODE_BIN"}

var (
	remoteLocation = regexp.MustCompile(`^(//|http|https)`)
	jsExt          = regexp.MustCompile(`\.js$`)
)

// Root is the top-level project configuration.
type Root struct {
	RequireJSSrc string                `yaml:"require_js_src"`
	BaseURL      string                `yaml:"base_url"`
	BaseDir      string                `yaml:"base_dir"`
	Paths        Paths                 `yaml:"paths"`
	Shim         map[string]model.Shim `yaml:"shim"`
	Options      Options               `yaml:"options"`
	Optimizer    *Optimizer            `yaml:"optimizer"`
}

// Optimizer configures r.js. A nil Optimizer disables optimization.
type Optimizer struct {
	Path                  string             `yaml:"path"`
	NodePath              string             `yaml:"node_path"`
	HideUnoptimizedAssets bool               `yaml:"hide_unoptimized_assets"`
	DeclareModuleName     bool               `yaml:"declare_module_name"`
	Exclude               []string           `yaml:"exclude"`
	Modules               map[string]*Module `yaml:"modules"`
	Options               Options            `yaml:"options"`
	Timeout               int                `yaml:"timeout"`
	AlmondPath            string             `yaml:"almond_path"`
}

// Module is an optimizer module declaration.
type Module struct {
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
}

// TimeoutDuration returns the optimizer timeout.
func (o *Optimizer) TimeoutDuration() time.Duration {
	return time.Duration(o.Timeout) * time.Second
}

// ModuleNames returns the declared module names sorted.
func (o *Optimizer) ModuleNames() []string {
	names := make([]string, 0, len(o.Modules))
	for name := range o.Modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Path is one RequireJS path. Locations holds one or more fallbacks; only
// the first is used for local namespaces.
type Path struct {
	Name      string
	Locations []string
	External  bool
}

// Paths keeps the declaration order of the paths section, which decides
// namespace match priority.
type Paths []*Path

// UnmarshalYAML accepts the short form `name: location` and the long form
// `name: {location: string|[string], external: bool}`.
func (p *Paths) UnmarshalYAML(bs []byte) error {
	var items yaml.MapSlice
	if err := yaml.Unmarshal(bs, &items); err != nil {
		return fmt.Errorf("failed to decode paths: %w", err)
	}

	out := make(Paths, 0, len(items))
	for _, item := range items {
		name := fmt.Sprint(item.Key)
		path, err := decodePath(name, item.Value)
		if err != nil {
			return err
		}
		out = append(out, path)
	}
	*p = out
	return nil
}

// Option is one passthrough option.
type Option struct {
	Name  string
	Value any
}

// Options keeps the declaration order of an options section; the generated
// documents list options in that order.
type Options []Option

// UnmarshalYAML decodes an options mapping in declaration order.
func (o *Options) UnmarshalYAML(bs []byte) error {
	var items yaml.MapSlice
	if err := yaml.Unmarshal(bs, &items); err != nil {
		return fmt.Errorf("failed to decode options: %w", err)
	}

	out := make(Options, 0, len(items))
	for _, item := range items {
		out = append(out, Option{Name: fmt.Sprint(item.Key), Value: item.Value})
	}
	*o = out
	return nil
}

// Get returns the value of the named option.
func (o Options) Get(name string) (any, bool) {
	for _, opt := range o {
		if opt.Name == name {
			return opt.Value, true
		}
	}
	return nil, false
}

func decodePath(name string, v any) (*Path, error) {
	if s, ok := v.(string); ok {
		return &Path{Name: name, Locations: []string{s}}, nil
	}

	var raw struct {
		Location any  `mapstructure:"location"`
		External bool `mapstructure:"external"`
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &raw,
		ErrorUnused: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(v); err != nil {
		return nil, fmt.Errorf("paths.%s: %w", name, err)
	}

	path := &Path{Name: name, External: raw.External}
	switch loc := raw.Location.(type) {
	case nil:
	case string:
		path.Locations = []string{loc}
	case []any:
		for _, l := range loc {
			s, ok := l.(string)
			if !ok {
				return nil, fmt.Errorf("paths.%s: location must be a string or a list of strings", name)
			}
			path.Locations = append(path.Locations, s)
		}
	default:
		return nil, fmt.Errorf("paths.%s: location must be a string or a list of strings", name)
	}
	return path, nil
}

// Load reads the project file at path, applies defaults and environment
// overrides, validates the result and resolves relative paths against the
// file's directory. A .env file next to the project file is loaded first if
// present; a malformed one is an error.
func Load(path string) (*Root, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config %q: %w", path, err)
	}

	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("cannot load %q: %w", filepath.Join(dir, ".env"), err)
	}

	return Parse(data, dir)
}

// Parse decodes a project file whose relative paths are relative to dir.
func Parse(data []byte, dir string) (*Root, error) {
	var root Root
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	root.applyDefaults()
	root.applyEnv()

	// Validated as written so messages quote the config file.
	if err := root.Validate(); err != nil {
		return nil, err
	}

	root.resolvePaths(dir)
	return &root, nil
}

func (r *Root) applyDefaults() {
	if r.RequireJSSrc == "" {
		r.RequireJSSrc = DefaultRequireJSSrc
	}
	if r.BaseURL == "" {
		r.BaseURL = DefaultBaseURL
	}
	if r.Shim == nil {
		r.Shim = map[string]model.Shim{}
	}
	if o := r.Optimizer; o != nil {
		if o.Timeout == 0 {
			o.Timeout = DefaultTimeout
		}
		for name, m := range o.Modules {
			if m == nil {
				o.Modules[name] = &Module{}
			}
		}
	}
}

func (r *Root) applyEnv() {
	if r.Optimizer == nil {
		return
	}
	for _, key := range nodePathEnv {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			r.Optimizer.NodePath = v
			return
		}
	}
}

func (r *Root) resolvePaths(dir string) {
	r.BaseDir = resolve(dir, r.BaseDir)
	for _, p := range r.Paths {
		for i, loc := range p.Locations {
			if !p.External {
				p.Locations[i] = resolve(dir, loc)
			}
		}
	}
	if o := r.Optimizer; o != nil {
		o.Path = resolve(dir, o.Path)
		o.AlmondPath = resolve(dir, o.AlmondPath)
		// A bare command name is looked up on PATH.
		if strings.ContainsRune(o.NodePath, filepath.Separator) || strings.Contains(o.NodePath, "/") {
			o.NodePath = resolve(dir, o.NodePath)
		}
	}
}

func resolve(dir, p string) string {
	if p == "" || filepath.IsAbs(p) || remoteLocation.MatchString(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// Validate reports every configuration error at once.
func (r *Root) Validate() error {
	var errs []error

	if r.BaseDir == "" {
		errs = append(errs, errors.New("base_dir: must not be empty"))
	}
	for _, p := range r.Paths {
		if len(p.Locations) == 0 {
			errs = append(errs, fmt.Errorf("paths.%s: location must not be empty", p.Name))
		}
		for _, loc := range p.Locations {
			if loc == "" {
				errs = append(errs, fmt.Errorf("paths.%s: location must not be empty", p.Name))
			}
			if jsExt.MatchString(loc) {
				errs = append(errs, fmt.Errorf("paths.%s: location %q must not end with .js", p.Name, loc))
			}
		}
	}
	if o := r.Optimizer; o != nil {
		if o.Path == "" {
			errs = append(errs, errors.New("optimizer.path: must not be empty"))
		}
		if o.Timeout < 0 {
			errs = append(errs, fmt.Errorf("optimizer.timeout: invalid number of seconds %d", o.Timeout))
		}
	}

	return errors.Join(errs...)
}
