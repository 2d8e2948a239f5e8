// Package requirejs builds the client-side require.config() document.
package requirejs

import (
	"regexp"
	"sort"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/StinkyLord/rjs-builder/internal/model"
)

var remoteLocation = regexp.MustCompile(`^(//|http|https)`)

// ModuleMapper resolves a file to the module path it is served under.
type ModuleMapper interface {
	ModulePath(filename string) (string, bool)
}

// RequestContext carries the per-request values the configuration depends
// on. The caller supplies them; nothing is looked up globally.
type RequestContext struct {
	// AssetsBaseURL is the URL prefix assets are served from, for example
	// "/app_dev.php" or "https://cdn.example.com/?v=3". A query string and
	// trailing slash are removed.
	AssetsBaseURL string
	Locale        string
	Debug         bool
}

// location is a configured path location: either used verbatim, or a module
// path to be prefixed with the assets base URL.
type location struct {
	value  string
	mapped bool
}

type pathEntry struct {
	name      string
	locations []location
}

// Builder accumulates paths and options for the client configuration.
type Builder struct {
	mapping   ModuleMapper
	baseURL   string
	shim      map[string]model.Shim
	paths     []pathEntry
	options   *orderedmap.OrderedMap[string, any]
	useAlmond bool
}

// NewBuilder creates a Builder. baseURL is the module root relative to the
// assets base URL.
func NewBuilder(mapping ModuleMapper, baseURL string, shim map[string]model.Shim) *Builder {
	return &Builder{
		mapping: mapping,
		baseURL: strings.TrimLeft(baseURL, "/"),
		shim:    shim,
		options: orderedmap.New[string, any](),
	}
}

// AddOption sets an extra top-level configuration value. Options override
// generated keys.
func (b *Builder) AddOption(name string, value any) {
	b.options.Set(name, value)
}

// UseAlmond enables the almond flag for non-debug configurations.
func (b *Builder) UseAlmond(enabled bool) {
	b.useAlmond = enabled
}

// SetPath configures the RequireJS path name. Remote locations are kept as
// they are; local locations that resolve through the mapping are served
// from their module path.
func (b *Builder) SetPath(name string, locations ...string) {
	entry := pathEntry{name: name}
	for _, loc := range locations {
		if !remoteLocation.MatchString(loc) {
			if modulePath, ok := b.mapping.ModulePath(loc); ok {
				entry.locations = append(entry.locations, location{
					value:  strings.TrimSuffix(modulePath, ".js"),
					mapped: true,
				})
				continue
			}
		}
		entry.locations = append(entry.locations, location{value: loc})
	}

	for i := range b.paths {
		if b.paths[i].name == name {
			b.paths[i] = entry
			return
		}
	}
	b.paths = append(b.paths, entry)
}

// Configuration returns the document passed to require.config().
func (b *Builder) Configuration(ctx RequestContext) *orderedmap.OrderedMap[string, any] {
	base := assetsBase(ctx.AssetsBaseURL)

	config := orderedmap.New[string, any]()
	config.Set("baseUrl", base+"/"+b.baseURL)
	config.Set("locale", ctx.Locale)

	if len(b.paths) > 0 {
		paths := orderedmap.New[string, any]()
		for _, p := range b.paths {
			values := make([]string, 0, len(p.locations))
			for _, loc := range p.locations {
				if loc.mapped {
					values = append(values, base+"/"+loc.value)
				} else {
					values = append(values, loc.value)
				}
			}
			if len(values) == 1 {
				paths.Set(p.name, values[0])
			} else {
				paths.Set(p.name, values)
			}
		}
		config.Set("paths", paths)
	}

	if len(b.shim) > 0 {
		names := make([]string, 0, len(b.shim))
		for name := range b.shim {
			names = append(names, name)
		}
		sort.Strings(names)

		shim := orderedmap.New[string, model.Shim]()
		for _, name := range names {
			shim.Set(name, b.shim[name].Copy())
		}
		config.Set("shim", shim)
	}

	if !ctx.Debug && b.useAlmond {
		config.Set("almond", true)
	}

	for pair := b.options.Oldest(); pair != nil; pair = pair.Next() {
		config.Set(pair.Key, pair.Value)
	}

	return config
}

func assetsBase(u string) string {
	if i := strings.IndexByte(u, '?'); i >= 0 {
		u = u[:i]
	}
	return strings.TrimRight(u, "/")
}
