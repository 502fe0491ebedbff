package gen

import "github.com/syssam/nodetypeobjects/compiler/load"

// Renderer turns an entity spec into source text.
// Both methods are pure: the same spec always renders to the same bytes.
type Renderer interface {
	// RenderClass renders the class of the entity. It reports false when
	// no class is generated (abstract node types, generateClass: false).
	RenderClass(spec *EntitySpec) ([]byte, bool, error)
	// RenderInterface renders the interface of the entity. It reports false
	// only when the entity disables interface generation.
	RenderInterface(spec *EntitySpec) ([]byte, bool, error)
}

// MinimalDialect is the minimum a target language must implement.
//
// Architecture:
//
//	┌──────────────────────────────────────────────┐
//	│                  Pipeline                    │
//	│  (two passes, worker pool, file writing)     │
//	└──────────────────────┬───────────────────────┘
//	                       │ uses
//	                       ▼
//	┌──────────────────────────────────────────────┐
//	│                   Dialect                    │
//	│  (type mapping, naming roots, rendering)     │
//	└──────────────────────┬───────────────────────┘
//	                       │ implemented by
//	             ┌─────────┴─────────┐
//	             ▼                   ▼
//	      ┌─────────────┐     ┌──────────────┐
//	      │ php.Dialect │     │golang.Dialect│
//	      │ (gen/php)   │     │ (gen/golang) │
//	      └─────────────┘     └──────────────┘
type MinimalDialect interface {
	// Name returns the dialect name (e.g., "php", "go").
	Name() string
	TypeMapper
	Renderer
	// Separator joins namespace segments of the target language.
	Separator() string
	// RootNamespace returns the root namespace of a package in the target
	// language, or a ConfigError if the package does not declare one.
	RootNamespace(pkg *load.Package) (string, error)
	// FileName returns the file name of a generated class or interface.
	FileName(typeName string) string
	// Suffixes returns the file name suffixes of generated artifacts.
	// Clean deletes every file under a NodeTypes directory that has one.
	Suffixes() []string
}

// Dialect is implemented by every target language.
type Dialect = MinimalDialect

// Formatter is optionally implemented by dialects that post-process
// rendered sources before they are written, e.g. goimports for Go.
type Formatter interface {
	Format(path string, src []byte) ([]byte, error)
}

// PackageRootOf returns the naming root of a package for the dialect.
func PackageRootOf(d Dialect, pkg *load.Package) (PackageRoot, error) {
	ns, err := d.RootNamespace(pkg)
	if err != nil {
		return PackageRoot{}, err
	}
	return PackageRoot{
		Key:       pkg.Key,
		Namespace: ns,
		Path:      pkg.Path,
		Separator: d.Separator(),
	}, nil
}
