package load

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
)

// DefaultSchemaFiles are the schema file patterns read from every package,
// relative to the package root.
var DefaultSchemaFiles = []string{
	"Configuration/NodeTypes.*.yaml",
	"NodeTypes/**/*.yaml",
}

// PackageLister lists all known packages. Implemented by Locator.
type PackageLister interface {
	Packages() ([]*Package, error)
}

// Repository loads the node types of all packages.
type Repository struct {
	fs       afero.Fs
	packages PackageLister
	patterns []string
}

// NewRepository creates a repository reading the schema files matching
// patterns from every package. Without patterns DefaultSchemaFiles is used.
func NewRepository(fs afero.Fs, packages PackageLister, patterns ...string) *Repository {
	if len(patterns) == 0 {
		patterns = DefaultSchemaFiles
	}
	return &Repository{fs: fs, packages: packages, patterns: patterns}
}

// NodeTypes reads, merges and resolves the schema files of all packages.
// Files are merged package by package in key order, and within a package
// in lexical path order.
func (r *Repository) NodeTypes(ctx context.Context) ([]*NodeType, error) {
	pkgs, err := r.packages.Packages()
	if err != nil {
		return nil, err
	}
	decls := NewDeclarations()
	for _, pkg := range pkgs {
		files, err := r.SchemaFiles(pkg)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			data, err := afero.ReadFile(r.fs, f)
			if err != nil {
				return nil, fmt.Errorf("read schema: %w", err)
			}
			if err := decls.Add(f, data); err != nil {
				return nil, err
			}
		}
	}
	return decls.NodeTypes()
}

// SchemaFiles returns the schema files of a package in lexical order.
func (r *Repository) SchemaFiles(pkg *Package) ([]string, error) {
	fsys := afero.NewIOFS(afero.NewBasePathFs(r.fs, pkg.Path))
	var files []string
	for _, pattern := range r.patterns {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("invalid schema pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			files = append(files, filepath.Join(pkg.Path, filepath.FromSlash(m)))
		}
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}
