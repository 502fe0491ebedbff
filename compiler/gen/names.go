package gen

import (
	"path/filepath"
	"strings"

	"github.com/syssam/nodetypeobjects/compiler/load"
)

// Naming constants of the generated artifacts.
const (
	// NodeTypesSegment is the namespace segment and directory holding
	// all generated artifacts of a package.
	NodeTypesSegment = "NodeTypes"
	// ClassSuffix is appended to the local name to form class names.
	ClassSuffix = "NodeObject"
	// InterfaceSuffix is appended to the local name to form interface names.
	InterfaceSuffix = "NodeInterface"
)

// PackageRoot holds the naming roots of one package for a dialect.
type PackageRoot struct {
	// Key is the package key, the part of qualified names before ':'.
	Key string
	// Namespace is the root namespace (PHP) or module path (Go).
	Namespace string
	// Path is the package root directory.
	Path string
	// Separator joins namespace segments.
	Separator string
}

// NameSpec holds the resolved names of one node type. It is created once
// during the first pass and never modified.
type NameSpec struct {
	// QualifiedName is the node type name, <package>:<dotted.local.name>.
	QualifiedName string
	// LocalName is the last dotted segment of the qualified name.
	LocalName string
	// Namespace of the generated artifacts.
	Namespace string
	// Separator used in Namespace.
	Separator string
	// Directory the artifacts are written to.
	Directory string
	// ClassName is empty for abstract node types.
	ClassName string
	// InterfaceName is always set.
	InterfaceName string
	// FullyQualifiedClassName is empty for abstract node types.
	FullyQualifiedClassName string
	// FullyQualifiedInterfaceName is always set.
	FullyQualifiedInterfaceName string
	// EmitClass reports whether a class artifact is generated. Always
	// false for abstract node types.
	EmitClass bool
	// EmitInterface reports whether an interface artifact is generated.
	EmitInterface bool
}

// HasClass reports whether a class is generated for the node type.
func (n NameSpec) HasClass() bool { return n.ClassName != "" && n.EmitClass }

// HasInterface reports whether an interface is generated for the node type.
func (n NameSpec) HasInterface() bool { return n.InterfaceName != "" && n.EmitInterface }

// SplitName splits a qualified node type name into its package key and
// its dotted local segments.
func SplitName(qualified string) (string, []string, error) {
	key, local, ok := strings.Cut(qualified, ":")
	switch {
	case !ok:
		return "", nil, NewSchemaError(qualified, "", "name must have the form <package>:<name>", nil)
	case key == "":
		return "", nil, NewSchemaError(qualified, "", "empty package key", nil)
	case strings.Contains(local, ":"):
		return "", nil, NewSchemaError(qualified, "", "name contains more than one ':'", nil)
	}
	segments := strings.Split(local, ".")
	for _, s := range segments {
		if s == "" {
			return "", nil, NewSchemaError(qualified, "", "empty name segment", nil)
		}
	}
	return key, segments, nil
}

// Resolve computes the names of a node type relative to the given package
// root. Node types of other packages are rejected.
//
//	Resolve("Vendor.Example:Foo.Bar", PackageRoot{Namespace: `Vendor\Example`, Path: "/pkg/", Separator: `\`}, false)
//
// yields the namespace Vendor\Example\NodeTypes\Foo\Bar, the directory
// /pkg/NodeTypes/Foo/Bar, the class BarNodeObject and the interface
// BarNodeInterface.
func Resolve(qualified string, root PackageRoot, abstract bool) (NameSpec, error) {
	key, segments, err := SplitName(qualified)
	if err != nil {
		return NameSpec{}, err
	}
	if root.Key != "" && key != root.Key {
		return NameSpec{}, NewSchemaError(qualified, "", "only node types of package "+root.Key+" can be resolved", nil)
	}
	sep := root.Separator
	local := segments[len(segments)-1]

	parts := make([]string, 0, len(segments)+2)
	if ns := strings.Trim(root.Namespace, sep); ns != "" {
		parts = append(parts, ns)
	}
	parts = append(parts, NodeTypesSegment)
	parts = append(parts, segments...)
	namespace := strings.Join(parts, sep)

	dirs := append([]string{root.Path, NodeTypesSegment}, segments...)
	spec := NameSpec{
		QualifiedName:               qualified,
		LocalName:                   local,
		Namespace:                   namespace,
		Separator:                   sep,
		Directory:                   filepath.Join(dirs...),
		InterfaceName:               local + InterfaceSuffix,
		FullyQualifiedInterfaceName: namespace + sep + local + InterfaceSuffix,
		EmitClass:                   !abstract,
		EmitInterface:               true,
	}
	if !abstract {
		spec.ClassName = local + ClassSuffix
		spec.FullyQualifiedClassName = namespace + sep + spec.ClassName
	}
	return spec, nil
}

// ResolveNodeType resolves the names of a loaded node type and applies its
// artifact options.
func ResolveNodeType(nt *load.NodeType, root PackageRoot) (NameSpec, error) {
	spec, err := Resolve(nt.Name, root, nt.Abstract)
	if err != nil {
		return NameSpec{}, err
	}
	spec.EmitClass = spec.EmitClass && nt.Options.GenerateClass
	spec.EmitInterface = nt.Options.GenerateInterface
	return spec, nil
}
