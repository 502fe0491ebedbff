package gen

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/nodetypeobjects/compiler/load"
)

var phpRoot = PackageRoot{Key: "Vendor.Example", Namespace: `Vendor\Example`, Path: "/pkg/", Separator: `\`}

func TestResolve(t *testing.T) {
	t.Run("derives all names", func(t *testing.T) {
		spec, err := Resolve("Vendor.Example:Foo.Bar", phpRoot, false)
		require.NoError(t, err)
		assert.Equal(t, NameSpec{
			QualifiedName:               "Vendor.Example:Foo.Bar",
			LocalName:                   "Bar",
			Namespace:                   `Vendor\Example\NodeTypes\Foo\Bar`,
			Separator:                   `\`,
			Directory:                   filepath.Join("/pkg", "NodeTypes", "Foo", "Bar"),
			ClassName:                   "BarNodeObject",
			InterfaceName:               "BarNodeInterface",
			FullyQualifiedClassName:     `Vendor\Example\NodeTypes\Foo\Bar\BarNodeObject`,
			FullyQualifiedInterfaceName: `Vendor\Example\NodeTypes\Foo\Bar\BarNodeInterface`,
			EmitClass:                   true,
			EmitInterface:               true,
		}, spec)
		assert.True(t, spec.HasClass())
		assert.True(t, spec.HasInterface())
	})

	t.Run("abstract node types have no class", func(t *testing.T) {
		spec, err := Resolve("Vendor.Example:Mixin.Title", phpRoot, true)
		require.NoError(t, err)
		assert.Empty(t, spec.ClassName)
		assert.Empty(t, spec.FullyQualifiedClassName)
		assert.False(t, spec.HasClass())
		assert.Equal(t, "TitleNodeInterface", spec.InterfaceName)
	})

	t.Run("single segment", func(t *testing.T) {
		spec, err := Resolve("Vendor.Example:Document", phpRoot, false)
		require.NoError(t, err)
		assert.Equal(t, `Vendor\Example\NodeTypes\Document`, spec.Namespace)
		assert.Equal(t, filepath.Join("/pkg", "NodeTypes", "Document"), spec.Directory)
	})

	t.Run("go separator", func(t *testing.T) {
		root := PackageRoot{Key: "site", Namespace: "example.com/site", Path: "/src/site", Separator: "/"}
		spec, err := Resolve("site:Content.Text", root, false)
		require.NoError(t, err)
		assert.Equal(t, "example.com/site/NodeTypes/Content/Text", spec.Namespace)
		assert.Equal(t, "example.com/site/NodeTypes/Content/Text/TextNodeObject", spec.FullyQualifiedClassName)
	})

	t.Run("rejects other packages", func(t *testing.T) {
		_, err := Resolve("Other.Package:Foo", phpRoot, false)
		require.Error(t, err)
		assert.True(t, IsSchemaError(err))
		assert.ErrorIs(t, err, ErrInvalidSchema)
	})

	t.Run("rejects malformed names", func(t *testing.T) {
		for _, name := range []string{"NoColon", ":Foo", "Vendor.Example:", "Vendor.Example:Foo..Bar", "Vendor.Example:A:B"} {
			_, err := Resolve(name, PackageRoot{Separator: `\`}, false)
			assert.Error(t, err, name)
		}
	})
}

func TestResolveNodeType(t *testing.T) {
	t.Run("applies options", func(t *testing.T) {
		nt := &load.NodeType{
			Name:    "Vendor.Example:Foo",
			Options: load.Options{GenerateClass: false, GenerateInterface: true},
		}
		spec, err := ResolveNodeType(nt, phpRoot)
		require.NoError(t, err)
		assert.Equal(t, "FooNodeObject", spec.ClassName)
		assert.False(t, spec.HasClass())
		assert.True(t, spec.HasInterface())
	})

	t.Run("abstract ignores generateClass", func(t *testing.T) {
		nt := &load.NodeType{Name: "Vendor.Example:Foo", Abstract: true, Options: load.DefaultOptions}
		spec, err := ResolveNodeType(nt, phpRoot)
		require.NoError(t, err)
		assert.False(t, spec.EmitClass)
		assert.True(t, spec.EmitInterface)
	})

	t.Run("without interface", func(t *testing.T) {
		nt := &load.NodeType{Name: "Vendor.Example:Foo", Options: load.Options{GenerateClass: true}}
		spec, err := ResolveNodeType(nt, phpRoot)
		require.NoError(t, err)
		assert.True(t, spec.HasClass())
		assert.False(t, spec.HasInterface())
	})
}

func TestNameRegistry(t *testing.T) {
	foo, err := Resolve("Vendor.Example:Foo", phpRoot, false)
	require.NoError(t, err)
	bar, err := Resolve("Vendor.Example:Bar", phpRoot, true)
	require.NoError(t, err)

	t.Run("add is idempotent", func(t *testing.T) {
		reg, err := NewNameRegistry(foo, bar, foo)
		require.NoError(t, err)
		assert.Equal(t, 2, reg.Len())
		assert.Equal(t, []string{"Vendor.Example:Bar", "Vendor.Example:Foo"}, reg.Names())
	})

	t.Run("rejects conflicts", func(t *testing.T) {
		reg, err := NewNameRegistry(foo)
		require.NoError(t, err)
		changed := foo
		changed.Namespace = "Other"
		err = reg.Add(changed)
		require.Error(t, err)
		assert.True(t, IsSchemaError(err))
		got, ok := reg.Lookup(foo.QualifiedName)
		require.True(t, ok)
		assert.Equal(t, foo, got)
	})

	t.Run("join drops misses and duplicates", func(t *testing.T) {
		reg, err := NewNameRegistry(foo, bar)
		require.NoError(t, err)
		joined := reg.Join([]string{"Vendor.Example:Bar", "Vendor.Example:Missing", "Vendor.Example:Foo", "Vendor.Example:Bar"})
		assert.Equal(t, []NameSpec{bar, foo}, joined)
		assert.Empty(t, reg.Join(nil))
		assert.Equal(t, []string{"Vendor.Example:Missing"}, reg.Missing([]string{"Vendor.Example:Foo", "Vendor.Example:Missing", "Vendor.Example:Missing"}))
	})

	t.Run("build skips packages without root", func(t *testing.T) {
		types := []*load.NodeType{
			{Name: "Vendor.Example:Foo", Options: load.DefaultOptions},
			{Name: "Other.Package:Foo", Options: load.DefaultOptions},
		}
		reg, err := BuildNameRegistry(types, map[string]PackageRoot{"Vendor.Example": phpRoot})
		require.NoError(t, err)
		assert.Equal(t, []string{"Vendor.Example:Foo"}, reg.Names())
	})

	t.Run("build propagates malformed names", func(t *testing.T) {
		types := []*load.NodeType{{Name: "Vendor.Example:"}}
		_, err := BuildNameRegistry(types, map[string]PackageRoot{"Vendor.Example": phpRoot})
		require.Error(t, err)
	})
}
