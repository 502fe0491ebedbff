// Package golang renders node type objects as Go structs and interfaces
// wrapping node.Node values.
//
// Every node type becomes a package below the NodeTypes directory of its Go
// module. The package holds a struct with a FromNode constructor and one
// accessor per property, and an interface listing the accessors:
//
//	text.FromNode(n)          // *TextNodeObject, error
//	obj.GetTitle()            // *string, nil when unset
//	obj.GetInternalHidden()   // bool, the default when unset
//
// Go interfaces are satisfied structurally. A supertype interface is
// asserted only when the node type returns the same types for all of its
// accessors. Overriding a default may turn *T into T.
package golang

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dave/jennifer/jen"
	"github.com/go-openapi/inflect"
	"golang.org/x/tools/imports"

	"github.com/syssam/nodetypeobjects/compiler/gen"
	"github.com/syssam/nodetypeobjects/compiler/load"
)

// NodePackage is the import path of the node runtime used by generated code.
const NodePackage = "github.com/syssam/nodetypeobjects/node"

var header = []string{
	"Code generated by nodetypeobjects, DO NOT EDIT.",
	"Run `nodetypeobjects build --target go` to regenerate this.",
}

// Dialect generates Go code.
type Dialect struct {
	TypeMapper
}

var (
	_ gen.Dialect   = (*Dialect)(nil)
	_ gen.Formatter = (*Dialect)(nil)
)

// NewDialect creates the Go dialect.
func NewDialect() *Dialect {
	return &Dialect{}
}

// Name implements gen.Dialect.
func (*Dialect) Name() string { return "go" }

// Separator implements gen.Dialect.
func (*Dialect) Separator() string { return "/" }

// RootNamespace returns the module path declared in the go.mod of pkg.
func (*Dialect) RootNamespace(pkg *load.Package) (string, error) {
	if pkg.GoModule == "" {
		return "", gen.NewConfigError("packages", pkg.Key, "no module path is declared in "+load.GoManifest)
	}
	return pkg.GoModule, nil
}

// FileName implements gen.Dialect.
func (*Dialect) FileName(typeName string) string {
	return strings.ToLower(typeName) + ".go"
}

// Suffixes implements gen.Dialect.
func (*Dialect) Suffixes() []string {
	return []string{strings.ToLower(gen.ClassSuffix) + ".go", strings.ToLower(gen.InterfaceSuffix) + ".go"}
}

// Format implements gen.Formatter.
func (*Dialect) Format(path string, src []byte) ([]byte, error) {
	return imports.Process(path, src, nil)
}

// PackageName returns the Go package name of a node type.
//
//	"Vendor.Site:Content.Two-Column" => "twocolumn"
func PackageName(names gen.NameSpec) string {
	return strings.ToLower(inflect.Camelize(names.LocalName))
}

// MethodName returns the exported Go accessor name of a property.
//
//	"title"         => "GetTitle"
//	"_hiddenInMenu" => "GetInternalHiddenInMenu"
func MethodName(p *gen.PropertySpec) string {
	return inflect.Camelize(p.AccessorName)
}

// RenderClass implements gen.Renderer.
func (*Dialect) RenderClass(spec *gen.EntitySpec) ([]byte, bool, error) {
	if !spec.Names.HasClass() {
		return nil, false, nil
	}
	f, err := classFile(spec)
	if err != nil {
		return nil, false, err
	}
	src, err := render(f)
	return src, err == nil, err
}

// RenderInterface implements gen.Renderer.
func (*Dialect) RenderInterface(spec *gen.EntitySpec) ([]byte, bool, error) {
	if !spec.Names.HasInterface() {
		return nil, false, nil
	}
	src, err := render(interfaceFile(spec))
	return src, err == nil, err
}

func newFile(spec *gen.EntitySpec) *jen.File {
	f := jen.NewFilePathName(spec.Names.Namespace, PackageName(spec.Names))
	for _, line := range header {
		f.HeaderComment(line)
	}
	f.ImportName(NodePackage, "node")
	return f
}

func render(f *jen.File) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// classFile builds the struct wrapping nodes of the node type.
func classFile(spec *gen.EntitySpec) (*jen.File, error) {
	names := spec.Names
	name := names.ClassName
	f := newFile(spec)

	f.Commentf("%s wraps nodes of type %s.", name, names.QualifiedName)
	if supers := spec.SuperInterfaces(); len(supers) > 0 {
		f.Comment("")
		f.Comment("It provides the accessors of:")
		for _, s := range supers {
			f.Commentf("  - %s", s.FullyQualifiedInterfaceName)
		}
	}
	f.Type().Id(name).Struct(
		jen.Id("node").Qual(NodePackage, "Node"),
	)
	if names.HasInterface() {
		f.Var().Id("_").Id(names.InterfaceName).Op("=").Parens(jen.Op("*").Id(name)).Call(jen.Nil())
	}
	for _, super := range spec.SuperInterfaces() {
		props, ok := spec.SuperProperties[super.QualifiedName]
		if !ok || !implementsAll(spec.Properties, props) {
			continue
		}
		f.Var().Id("_").Qual(super.Namespace, super.InterfaceName).Op("=").Parens(jen.Op("*").Id(name)).Call(jen.Nil())
	}

	f.Commentf("FromNode wraps n. It fails if n is not of type %s.", names.QualifiedName)
	f.Func().Id("FromNode").Params(jen.Id("n").Qual(NodePackage, "Node")).Params(jen.Op("*").Id(name), jen.Error()).Block(
		jen.If(jen.Err().Op(":=").Qual(NodePackage, "Check").Call(jen.Id("n"), jen.Lit(names.QualifiedName)), jen.Err().Op("!=").Nil()).Block(
			jen.Return(jen.Nil(), jen.Err()),
		),
		jen.Return(jen.Op("&").Id(name).Values(jen.Dict{jen.Id("node"): jen.Id("n")}), jen.Nil()),
	)

	f.Comment("Node returns the wrapped node.")
	f.Func().Params(jen.Id("o").Op("*").Id(name)).Id("Node").Params().Qual(NodePackage, "Node").Block(
		jen.Return(jen.Id("o").Dot("node")),
	)

	for _, p := range accessors(spec) {
		body, err := accessorBody(p)
		if err != nil {
			return nil, gen.NewSchemaError(names.QualifiedName, p.Name, "invalid default value", err)
		}
		f.Func().Params(jen.Id("o").Op("*").Id(name)).Id(MethodName(p)).Params().Add(returnCode(p)).Block(body...)
	}
	return f, nil
}

// implementsAll reports whether props has an accessor with the same result
// type for each property of super.
func implementsAll(props, super gen.PropertySpecSet) bool {
	for _, sp := range super {
		p, ok := props.Lookup(sp.Name)
		if !ok || p.StorageType != sp.StorageType || byPointer(p) != byPointer(sp) {
			return false
		}
	}
	return true
}

// accessors lists the public properties followed by the internal ones.
func accessors(spec *gen.EntitySpec) []*gen.PropertySpec {
	return append(spec.Properties.Public(), spec.Properties.Internal()...)
}

// accessorBody reads the property and falls back to its default when the
// value is missing or of another type.
func accessorBody(p *gen.PropertySpec) ([]jen.Code, error) {
	def, err := defaultCode(p)
	if err != nil {
		return nil, err
	}
	value := jen.Id("o").Dot("node").Dot("Property").Call(jen.Lit(p.Name))
	if isAny(p) {
		return []jen.Code{
			jen.If(jen.Id("v").Op(":=").Add(value), jen.Id("v").Op("!=").Nil()).Block(
				jen.Return(jen.Id("v")),
			),
			jen.Return(def),
		}, nil
	}
	ret := jen.Id("v")
	if byPointer(p) {
		ret = jen.Op("&").Id("v")
	}
	return []jen.Code{
		jen.If(jen.List(jen.Id("v"), jen.Id("ok")).Op(":=").Add(value).Assert(typeCode(p)), jen.Id("ok")).Block(
			jen.Return(ret),
		),
		jen.Return(def),
	}, nil
}

// interfaceFile builds the interface listing the accessors of the node type.
func interfaceFile(spec *gen.EntitySpec) *jen.File {
	names := spec.Names
	f := newFile(spec)
	f.Commentf("%s provides the properties of %s.", names.InterfaceName, names.QualifiedName)
	f.Type().Id(names.InterfaceName).InterfaceFunc(func(g *jen.Group) {
		for _, p := range accessors(spec) {
			m := g.Id(MethodName(p)).Params().Add(returnCode(p))
			if p.AnnotationType != "" {
				m.Comment(fmt.Sprintf("elements: %s", p.AnnotationType))
			}
		}
	})
	return f
}
