// Package php renders node type objects as PHP classes and interfaces for
// the Neos content repository.
package php

import (
	"github.com/syssam/nodetypeobjects/compiler/gen"
	"github.com/syssam/nodetypeobjects/compiler/load"
)

// Dialect generates PHP code.
type Dialect struct {
	TypeMapper
}

var _ gen.Dialect = (*Dialect)(nil)

// NewDialect creates the PHP dialect.
func NewDialect() *Dialect {
	return &Dialect{}
}

// Name implements gen.Dialect.
func (*Dialect) Name() string { return "php" }

// Separator implements gen.Dialect.
func (*Dialect) Separator() string { return `\` }

// RootNamespace returns the namespace registered for the NodeTypes folder
// of the package in its composer.json.
func (*Dialect) RootNamespace(pkg *load.Package) (string, error) {
	if pkg.PHPNamespace == "" {
		return "", gen.NewConfigError("packages", pkg.Key,
			"No PSR4-NodeTypes namespace for the NodeTypes folder is registered via composer")
	}
	return pkg.PHPNamespace, nil
}

// FileName implements gen.Dialect.
func (*Dialect) FileName(typeName string) string { return typeName + ".php" }

// Suffixes implements gen.Dialect.
func (*Dialect) Suffixes() []string {
	return []string{gen.ClassSuffix + ".php", gen.InterfaceSuffix + ".php"}
}

// RenderClass implements gen.Renderer.
func (*Dialect) RenderClass(spec *gen.EntitySpec) ([]byte, bool, error) {
	if !spec.Names.HasClass() {
		return nil, false, nil
	}
	data, err := newFileData(spec, spec.Names.ClassName)
	if err != nil {
		return nil, false, err
	}
	if spec.Names.HasInterface() {
		data.Implements = append(data.Implements, spec.Names.InterfaceName)
	}
	for _, s := range spec.SuperInterfaces() {
		data.Implements = append(data.Implements, `\`+s.FullyQualifiedInterfaceName)
	}
	src, err := execute("class", data)
	return src, err == nil, err
}

// RenderInterface implements gen.Renderer.
func (*Dialect) RenderInterface(spec *gen.EntitySpec) ([]byte, bool, error) {
	if !spec.Names.HasInterface() {
		return nil, false, nil
	}
	data, err := newFileData(spec, spec.Names.InterfaceName)
	if err != nil {
		return nil, false, err
	}
	src, err := execute("interface", data)
	return src, err == nil, err
}

func newFileData(spec *gen.EntitySpec, name string) (*fileData, error) {
	data := &fileData{
		Namespace:    spec.Names.Namespace,
		Name:         name,
		NodeTypeName: Quote(spec.Names.QualifiedName),
	}
	for _, p := range spec.Properties {
		a, err := newAccessor(p)
		if err != nil {
			return nil, gen.NewSchemaError(spec.Names.QualifiedName, p.Name, "invalid default value", err)
		}
		if p.Internal {
			data.Internal = append(data.Internal, a)
		} else {
			data.Public = append(data.Public, a)
		}
	}
	return data, nil
}

func newAccessor(p *gen.PropertySpec) (*accessor, error) {
	def, err := DefaultReturn(p)
	if err != nil {
		return nil, err
	}
	a := &accessor{
		Property:      Quote(p.Name),
		Method:        p.AccessorName,
		ReturnType:    p.StorageType,
		Annotation:    p.AnnotationType,
		TypeCheck:     TypeCheck(p),
		DefaultReturn: def,
	}
	if p.Nullable {
		a.ReturnType = "?" + a.ReturnType
		if a.Annotation != "" {
			a.Annotation = "?" + a.Annotation
		}
	}
	return a, nil
}

// RenderSignature renders the interface method of a property.
func RenderSignature(p *gen.PropertySpec) (string, error) {
	return renderProperty("signature", p)
}

// RenderMethod renders the class method of a property.
func RenderMethod(p *gen.PropertySpec) (string, error) {
	return renderProperty("method", p)
}

func renderProperty(name string, p *gen.PropertySpec) (string, error) {
	a, err := newAccessor(p)
	if err != nil {
		return "", err
	}
	src, err := execute(name, a)
	return string(src), err
}
