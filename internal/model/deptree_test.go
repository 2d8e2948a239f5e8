package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildModuleTree_IncludeAndExcludeEdges(t *testing.T) {
	tree := BuildModuleTree([]*Module{
		{Name: "app", Include: []string{"lib"}, Exclude: []string{"vendor"}},
		{Name: "lib", Include: []string{"util"}},
	})

	require.Len(t, tree.Roots, 2)
	app := tree.Roots[0]
	assert.Equal(t, "app", app.Name)
	assert.Equal(t, RelationRoot, app.Relation)

	require.Len(t, app.Children, 2)
	assert.Equal(t, "lib", app.Children[0].Name)
	assert.Equal(t, RelationInclude, app.Children[0].Relation)
	assert.True(t, app.Children[0].Declared)

	assert.Equal(t, "vendor", app.Children[1].Name)
	assert.Equal(t, RelationExclude, app.Children[1].Relation)
	assert.False(t, app.Children[1].Declared, "vendor is referenced but never declared")

	// lib's own include is expanded beneath app -> lib.
	require.Len(t, app.Children[0].Children, 1)
	assert.Equal(t, "util", app.Children[0].Children[0].Name)
}

func TestBuildModuleTree_CycleBroken(t *testing.T) {
	tree := BuildModuleTree([]*Module{
		{Name: "a", Exclude: []string{"b"}},
		{Name: "b", Include: []string{"a"}},
	})

	require.Len(t, tree.Roots, 2)
	a := tree.Roots[0]
	require.Len(t, a.Children, 1)
	b := a.Children[0]
	require.Len(t, b.Children, 1)

	back := b.Children[0]
	assert.Equal(t, "a", back.Name)
	assert.True(t, back.Cycle)
	assert.Empty(t, back.Children)
}

func TestBuildModuleTree_SelfReference(t *testing.T) {
	tree := BuildModuleTree([]*Module{{Name: "self", Include: []string{"self"}}})

	require.Len(t, tree.Roots, 1)
	require.Len(t, tree.Roots[0].Children, 1)
	assert.True(t, tree.Roots[0].Children[0].Cycle)
}

func TestBuildModuleTree_DuplicateNamesKeepFirst(t *testing.T) {
	first := &Module{Name: "m", Include: []string{"x"}}
	tree := BuildModuleTree([]*Module{first, {Name: "m", Include: []string{"y"}}})

	assert.Same(t, first, tree.ByName["m"])
	require.Len(t, tree.Roots, 1)
	assert.Equal(t, "x", tree.Roots[0].Children[0].Name)
}

func TestShimCopy(t *testing.T) {
	s := Shim{Deps: []string{"jquery"}, Exports: "Backbone"}
	c := s.Copy()
	c.Deps[0] = "zepto"

	assert.Equal(t, "jquery", s.Deps[0])
	assert.Equal(t, "Backbone", c.Exports)
}
