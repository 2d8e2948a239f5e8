package project

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StinkyLord/rjs-builder/internal/config"
	"github.com/StinkyLord/rjs-builder/internal/optimizer"
	"github.com/StinkyLord/rjs-builder/internal/requirejs"
)

const projectYAML = `
base_dir: scripts
paths:
  jquery:
    location: //code.jquery.com/jquery-1.10.2.min
    external: true
  app: bundles/app
  boot: bundles/boot
shim:
  backbone:
    deps: [jquery]
    exports: Backbone
options:
  waitSeconds: 15
optimizer:
  path: node_modules/requirejs/bin/r.js
  node_path: node
  exclude: [vendor]
  modules:
    app/main:
      include: [app/router]
      exclude: [app/common]
    app/common:
      include: [app/util]
  options:
    preserveLicenseComments: false
`

func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		p := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("define({});"), 0o644))
	}
}

func newProject(t *testing.T, yml string) (*Project, string) {
	t.Helper()
	t.Setenv("RJS_NODE_PATH", "")
	t.Setenv("NODE_BIN", "")

	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	writeTree(t, dir,
		"scripts/main.js",
		"scripts/lib/util.js",
		"bundles/app/main.js",
		"bundles/app/views/list.coffee",
		"bundles/boot.js",
	)

	cfg, err := config.Parse([]byte(yml), dir)
	require.NoError(t, err)

	p, err := New(cfg, zerolog.Nop())
	require.NoError(t, err)
	return p, dir
}

func TestNew_Namespaces(t *testing.T) {
	p, dir := newProject(t, projectYAML)

	var got []string
	for _, e := range p.Mapping.Namespaces() {
		got = append(got, e.Namespace+"="+e.RealPath)
	}
	assert.Equal(t, []string{
		"app=" + filepath.Join(dir, "bundles/app"),
		"boot=" + filepath.Join(dir, "bundles/boot.js"),
		"=" + filepath.Join(dir, "scripts"),
	}, got)

	modulePath, ok := p.Mapping.ModulePath(filepath.Join(dir, "scripts/lib/util.js"))
	require.True(t, ok)
	assert.Equal(t, "js/lib/util.js", modulePath)

	modulePath, ok = p.Mapping.ModulePath(filepath.Join(dir, "bundles/app/views/list.coffee"))
	require.True(t, ok)
	assert.Equal(t, "js/app/views/list.js", modulePath)

	assert.Len(t, p.Resources, 3)
}

func TestNew_HideUnoptimizedAssets(t *testing.T) {
	p, _ := newProject(t, projectYAML+"  hide_unoptimized_assets: true\n")
	assert.Empty(t, p.Resources)
}

func TestNew_MissingNamespace(t *testing.T) {
	cfg, err := config.Parse([]byte("base_dir: missing\n"), t.TempDir())
	require.NoError(t, err)

	_, err = New(cfg, zerolog.Nop())
	assert.ErrorContains(t, err, `cannot register namespace ""`)
}

func TestFormulae(t *testing.T) {
	p, _ := newProject(t, projectYAML)

	result, err := p.Formulae(context.Background())
	require.NoError(t, err)

	var outputs []string
	for _, f := range result.Sorted() {
		outputs = append(outputs, f.Output)
	}
	assert.Equal(t, []string{
		"js/app/main.js",
		"js/app/views/list.js",
		"js/boot/boot.js",
		"js/lib/util.js",
		"js/main.js",
	}, outputs)
}

func TestClientConfiguration(t *testing.T) {
	p, _ := newProject(t, projectYAML)

	data, err := json.Marshal(p.ClientConfiguration(requirejs.RequestContext{AssetsBaseURL: "/assets/", Locale: "en"}))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"baseUrl": "/assets/js",
		"locale": "en",
		"paths": {
			"jquery": "//code.jquery.com/jquery-1.10.2.min",
			"app": "/assets/js/app",
			"boot": "/assets/js/boot/boot"
		},
		"shim": {"backbone": {"deps": ["jquery"], "exports": "Backbone"}},
		"waitSeconds": 15
	}`, string(data))
}

func TestProfile(t *testing.T) {
	p, dir := newProject(t, projectYAML)

	profile, err := p.Profile("app/main", "/out/main.js")
	require.NoError(t, err)

	data, err := profile.MarshalJSON()
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))

	name := optimizer.GeneratedName(filepath.Join(dir, "scripts/app/main"))
	want := map[string]any{
		"baseUrl": filepath.Join(dir, "scripts"),
		"paths": map[string]any{
			"jquery": "empty:",
			name:     filepath.Join(dir, "scripts/app/main"),
			"app":    filepath.Join(dir, "bundles/app"),
			"boot":   filepath.Join(dir, "bundles/boot"),
		},
		"name":                    name,
		"out":                     "/out/main.js",
		"shim":                    map[string]any{"backbone": map[string]any{"deps": []any{"jquery"}, "exports": "Backbone"}},
		"exclude":                 []any{"vendor", "app/common", "app/util"},
		"include":                 []any{"app/router"},
		"preserveLicenseComments": false,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("profile mismatch (-want +got):\n%s", diff)
	}
}

func TestModuleTree(t *testing.T) {
	p, _ := newProject(t, projectYAML)

	tree, err := p.ModuleTree()
	require.NoError(t, err)
	require.Len(t, tree.Roots, 2)
	assert.Equal(t, "app/common", tree.Roots[0].Name)
	assert.Equal(t, "app/main", tree.Roots[1].Name)
}

func TestNoOptimizer(t *testing.T) {
	p, _ := newProject(t, "base_dir: scripts\n")

	_, err := p.Profile("main", "out.js")
	assert.ErrorIs(t, err, ErrNoOptimizer)
	_, err = p.ModuleTree()
	assert.ErrorIs(t, err, ErrNoOptimizer)
	_, err = p.OptimizeFile(context.Background(), "main.js")
	assert.ErrorIs(t, err, ErrNoOptimizer)
}

type recordingRunner struct {
	args []string
}

func (r *recordingRunner) Run(_ context.Context, cmd optimizer.Command) (*optimizer.Result, error) {
	r.args = cmd.Args
	data, err := os.ReadFile(cmd.Args[len(cmd.Args)-1])
	if err != nil {
		return nil, err
	}
	var profile map[string]any
	if err := json.Unmarshal(data[1:len(data)-1], &profile); err != nil {
		return nil, err
	}
	if err := os.WriteFile(profile["out"].(string), []byte("optimized:"+profile["name"].(string)), 0o644); err != nil {
		return nil, err
	}
	return &optimizer.Result{}, nil
}

func TestOptimizeFile(t *testing.T) {
	p, dir := newProject(t, projectYAML+"  declare_module_name: true\n")
	runner := &recordingRunner{}
	p.Optimizer.Runner = runner
	p.Optimizer.TempDir = t.TempDir()

	out, err := p.OptimizeFile(context.Background(), filepath.Join(dir, "bundles/app/main.js"))
	require.NoError(t, err)
	assert.Equal(t, "optimized:app/main", string(out))
	assert.Equal(t, "node", runner.args[0])
	assert.Equal(t, filepath.Join(dir, "node_modules/requirejs/bin/r.js"), runner.args[1])

	entries, err := os.ReadDir(p.Optimizer.TempDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestOptimizeFile_Missing(t *testing.T) {
	p, dir := newProject(t, projectYAML)
	_, err := p.OptimizeFile(context.Background(), filepath.Join(dir, "nope.js"))
	assert.ErrorContains(t, err, "cannot read")
}

func TestOptionsKeepDeclarationOrder(t *testing.T) {
	p, _ := newProject(t, `
base_dir: scripts
options:
  waitSeconds: 15
  urlArgs: v=2
  enforceDefine: true
optimizer:
  path: r.js
  options:
    skipModuleInsertion: true
    optimize: none
    findNestedDependencies: true
`)

	var keys []string
	config := p.ClientConfiguration(requirejs.RequestContext{})
	for pair := config.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	assert.Equal(t, []string{"baseUrl", "locale", "waitSeconds", "urlArgs", "enforceDefine"}, keys)

	profile, err := p.Profile("main", "out.js")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"baseUrl", "paths", "name", "out", "shim", "exclude", "include",
		"skipModuleInsertion", "optimize", "findNestedDependencies",
	}, profile.Keys())
}
