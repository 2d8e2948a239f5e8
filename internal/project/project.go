// Package project wires a loaded configuration into the namespace mapping,
// the client configuration builder, the optimizer and the asset resources.
package project

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/StinkyLord/rjs-builder/internal/assets"
	"github.com/StinkyLord/rjs-builder/internal/config"
	"github.com/StinkyLord/rjs-builder/internal/mapping"
	"github.com/StinkyLord/rjs-builder/internal/model"
	"github.com/StinkyLord/rjs-builder/internal/optimizer"
	"github.com/StinkyLord/rjs-builder/internal/requirejs"
	"github.com/StinkyLord/rjs-builder/internal/scanner"
)

// ErrNoOptimizer is returned by optimizer operations when the configuration
// has no optimizer section.
var ErrNoOptimizer = errors.New("optimizer is not configured")

// Project is a fully wired configuration.
type Project struct {
	Config    *config.Root
	Mapping   *mapping.Mapping
	Builder   *requirejs.Builder
	Optimizer *optimizer.Filter // nil without an optimizer section
	Resources []assets.Resource

	logger zerolog.Logger
}

// New wires cfg. Every non-external path becomes a namespace, followed by the
// base directory as the empty namespace.
func New(cfg *config.Root, logger zerolog.Logger) (*Project, error) {
	p := &Project{
		Config:  cfg,
		Mapping: mapping.New(cfg.BaseURL),
		logger:  logger,
	}
	p.Builder = requirejs.NewBuilder(p.Mapping, cfg.BaseURL, cfg.Shim)

	if o := cfg.Optimizer; o != nil {
		f := optimizer.New(o.NodePath, o.Path, cfg.BaseDir)
		f.Timeout = o.TimeoutDuration()
		f.DeclareModuleName = o.DeclareModuleName
		f.Logger = logger.With().Str("component", "optimizer").Logger()
		f.SetShim(cfg.Shim)
		for _, exclude := range o.Exclude {
			f.AddExclude(exclude)
		}
		for _, name := range o.ModuleNames() {
			m := o.Modules[name]
			if err := f.AddModule(name, m.Include, m.Exclude); err != nil {
				return nil, err
			}
		}
		for _, opt := range o.Options {
			f.AddOption(opt.Name, opt.Value)
		}
		p.Optimizer = f

		p.Builder.UseAlmond(o.AlmondPath != "")
	}

	for _, opt := range cfg.Options {
		p.Builder.AddOption(opt.Name, opt.Value)
	}

	generateAssets := cfg.Optimizer == nil || !cfg.Optimizer.HideUnoptimizedAssets

	paths := make(config.Paths, 0, len(cfg.Paths)+1)
	for _, path := range cfg.Paths {
		if path.Name != "" {
			paths = append(paths, path)
		}
	}
	paths = append(paths, &config.Path{Name: "", Locations: []string{cfg.BaseDir}})

	for _, path := range paths {
		if path.External {
			p.addExternal(path)
			continue
		}
		if err := p.addNamespace(path.Name, path.Locations[0], generateAssets); err != nil {
			return nil, err
		}
	}

	return p, nil
}

func (p *Project) addExternal(path *config.Path) {
	p.Builder.SetPath(path.Name, path.Locations...)
	if p.Optimizer != nil {
		p.Optimizer.AddExternal(path.Name)
	}
}

func (p *Project) addNamespace(namespace, location string, generateAssets bool) error {
	if info, err := os.Stat(location + ".js"); err == nil && info.Mode().IsRegular() {
		location += ".js"
	}

	if err := p.Mapping.RegisterNamespace(namespace, location); err != nil {
		return fmt.Errorf("cannot register namespace %q: %w", namespace, err)
	}
	// The empty namespace is the base URL itself.
	if namespace != "" {
		p.Builder.SetPath(namespace, location)
	}
	if namespace != "" && p.Optimizer != nil {
		p.Optimizer.AddPath(namespace, strings.TrimSuffix(location, ".js"))
	}
	if generateAssets {
		p.Resources = append(p.Resources, assets.NewFilenamesResource(location))
	}

	p.logger.Debug().
		Str("namespace", namespace).
		Str("location", location).
		Bool("assets", generateAssets).
		Msg("registered namespace")
	return nil
}

// Formulae loads the asset formulae of every resource.
func (p *Project) Formulae(ctx context.Context) (*scanner.Result, error) {
	loader := &assets.ModuleFormulaLoader{Mapping: p.Mapping}
	return scanner.New(loader, p.Resources, p.logger).Scan(ctx)
}

// ModuleTree returns the include/exclude tree of the optimizer modules.
func (p *Project) ModuleTree() (*model.ModuleTree, error) {
	if p.Optimizer == nil {
		return nil, ErrNoOptimizer
	}
	return model.BuildModuleTree(p.Optimizer.Modules()), nil
}

// Profile returns the build profile for the module of that name, read from
// the base directory and written to output.
func (p *Project) Profile(module, output string) (*optimizer.Profile, error) {
	if p.Optimizer == nil {
		return nil, ErrNoOptimizer
	}
	input := filepath.Join(p.Config.BaseDir, filepath.FromSlash(module))
	return p.Optimizer.BuildProfile(input, output, module), nil
}

// OptimizeFile runs the optimizer over the script at filename.
func (p *Project) OptimizeFile(ctx context.Context, filename string) ([]byte, error) {
	if p.Optimizer == nil {
		return nil, ErrNoOptimizer
	}

	abs, err := filepath.Abs(filename)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("cannot read %q: %w", filename, err)
	}

	return p.Optimizer.Optimize(ctx, optimizer.Asset{
		Content:    content,
		SourceRoot: filepath.Dir(abs),
		SourcePath: filepath.Base(abs),
	})
}

// ClientConfiguration returns the require.config() document for ctx.
func (p *Project) ClientConfiguration(ctx requirejs.RequestContext) *orderedmap.OrderedMap[string, any] {
	return p.Builder.Configuration(ctx)
}
