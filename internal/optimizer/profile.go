package optimizer

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/StinkyLord/rjs-builder/internal/model"
)

// emptyPath is the r.js path value for modules that must not be bundled.
// See http://requirejs.org/docs/optimization.html#empty
const emptyPath = "empty:"

// insertRequireOption must name the generated module, so any configured
// value is replaced.
const insertRequireOption = "insertRequire"

// Profile is a generated r.js build profile. Key order is significant when
// options override generated keys, so the document is kept ordered.
type Profile struct {
	doc *orderedmap.OrderedMap[string, any]
}

// Get returns the value of a top-level key.
func (p *Profile) Get(key string) (any, bool) {
	return p.doc.Get(key)
}

// Name returns the generated module name.
func (p *Profile) Name() string {
	v, _ := p.doc.Get("name")
	s, _ := v.(string)
	return s
}

// Out returns the output file path.
func (p *Profile) Out() string {
	v, _ := p.doc.Get("out")
	s, _ := v.(string)
	return s
}

// Keys returns the top-level keys in document order.
func (p *Profile) Keys() []string {
	keys := make([]string, 0, p.doc.Len())
	for pair := p.doc.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// MarshalJSON encodes the profile as a JSON object in document order.
func (p *Profile) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.doc)
}

// Encode renders the profile as an r.js build file: a parenthesized object
// literal.
func (p *Profile) Encode() ([]byte, error) {
	data, err := json.Marshal(p.doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode build profile: %w", err)
	}
	out := make([]byte, 0, len(data)+2)
	out = append(out, '(')
	out = append(out, data...)
	out = append(out, ')')
	return out, nil
}

// GeneratedName returns the synthetic module name used for input. It is
// derived from the input path, which is unique per build, so it cannot
// collide with a real module name.
func GeneratedName(input string) string {
	sum := md5.Sum([]byte(input))
	return hex.EncodeToString(sum[:])
}

// BuildProfile assembles the build profile that optimizes the script at input
// (without its ".js" extension, as r.js appends it) into output. module is
// the asset's own module name; it selects the include/exclude rules that
// apply and may be empty.
func (f *Filter) BuildProfile(input, output, module string) *Profile {
	name := GeneratedName(input)
	if f.DeclareModuleName && module != "" {
		name = module
	}
	input = strings.TrimSuffix(input, ".js")

	doc := orderedmap.New[string, any]()
	doc.Set("baseUrl", f.BaseURL)

	paths := orderedmap.New[string, string]()
	for _, external := range f.external {
		paths.Set(external, emptyPath)
	}
	paths.Set(name, input)
	for _, a := range f.paths {
		paths.Set(a.name, a.location)
	}
	doc.Set("paths", paths)

	doc.Set("name", name)
	doc.Set("out", output)
	doc.Set("shim", f.copyShim())

	doc.Set("exclude", unique(f.exclude, f.ExcludedDependencies(module)))
	doc.Set("include", unique(f.ModuleIncludes(module)))

	for _, opt := range f.options {
		value := opt.value
		// See https://github.com/jrburke/requirejs/wiki/Upgrading-to-RequireJS-2.0#wiki-delayed
		if opt.name == insertRequireOption {
			value = name
		}
		doc.Set(opt.name, value)
	}

	return &Profile{doc: doc}
}

// copyShim duplicates the shim so a profile never aliases shared state.
func (f *Filter) copyShim() *orderedmap.OrderedMap[string, model.Shim] {
	names := make([]string, 0, len(f.shim))
	for name := range f.shim {
		names = append(names, name)
	}
	sort.Strings(names)

	shim := orderedmap.New[string, model.Shim]()
	for _, name := range names {
		shim.Set(name, f.shim[name].Copy())
	}
	return shim
}
