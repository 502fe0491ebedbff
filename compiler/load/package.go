package load

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
	"github.com/tidwall/gjson"
	"golang.org/x/mod/modfile"
)

// Manifest file names that mark a package root.
const (
	ComposerManifest = "composer.json"
	GoManifest       = "go.mod"
)

// nodeTypesNamespace is the suffix of the PSR-4 namespace that must map
// to the NodeTypes directory of a package.
const nodeTypesNamespace = `\NodeTypes\`

// Sentinel errors of package selection.
var (
	// ErrUnknownPackage indicates a selector naming a package that does not exist.
	ErrUnknownPackage = errors.New("load: unknown package")
	// ErrNoPackages indicates a selector that matches no package.
	ErrNoPackages = errors.New("load: no package selected")
)

// Package is a directory declaring node types.
type Package struct {
	// Key prefixes the names of the node types of the package.
	Key string
	// Path is the package root directory.
	Path string
	// PHPNamespace is the root namespace registered for the NodeTypes
	// directory in composer.json, without the NodeTypes segment.
	PHPNamespace string
	// GoModule is the module path from go.mod.
	GoModule string
}

// Locator discovers packages below a root directory.
type Locator struct {
	fs   afero.Fs
	root string
}

// NewLocator creates a locator for the packages below root.
func NewLocator(fs afero.Fs, root string) *Locator {
	return &Locator{fs: fs, root: root}
}

// skipDirs are never searched for packages.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
}

// Packages returns all packages below the root, sorted by key. A directory
// containing a composer.json or go.mod is a package; its subdirectories
// are not searched.
func (l *Locator) Packages() ([]*Package, error) {
	var pkgs []*Package
	err := afero.Walk(l.fs, l.root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if path != l.root && skipDirs[info.Name()] {
			return filepath.SkipDir
		}
		pkg, ok, err := l.readPackage(path)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		pkgs = append(pkgs, pkg)
		return filepath.SkipDir
	})
	if err != nil {
		return nil, fmt.Errorf("discover packages in %s: %w", l.root, err)
	}
	slices.SortFunc(pkgs, func(a, b *Package) int { return strings.Compare(a.Key, b.Key) })
	return pkgs, nil
}

// readPackage reads the manifests of dir. It reports false if dir has none.
func (l *Locator) readPackage(dir string) (*Package, bool, error) {
	pkg := &Package{Key: filepath.Base(dir), Path: dir}
	found := false
	if data, err := afero.ReadFile(l.fs, filepath.Join(dir, ComposerManifest)); err == nil {
		found = true
		if !gjson.ValidBytes(data) {
			return nil, false, fmt.Errorf("%s: invalid json", filepath.Join(dir, ComposerManifest))
		}
		if key := gjson.GetBytes(data, "extra.neos.package-key").String(); key != "" {
			pkg.Key = key
		}
		pkg.PHPNamespace = nodeTypesNamespaceOf(data)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, false, err
	}
	if data, err := afero.ReadFile(l.fs, filepath.Join(dir, GoManifest)); err == nil {
		found = true
		pkg.GoModule = modfile.ModulePath(data)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, false, err
	}
	return pkg, found, nil
}

// nodeTypesNamespaceOf returns the root namespace of the PSR-4 mapping whose
// namespace ends in \NodeTypes\ and whose path is the NodeTypes directory.
//
//	"autoload": {"psr-4": {"Vendor\\Site\\NodeTypes\\": "NodeTypes"}}
//
// yields Vendor\Site.
func nodeTypesNamespaceOf(composer []byte) string {
	var ns string
	gjson.GetBytes(composer, "autoload.psr-4").ForEach(func(key, value gjson.Result) bool {
		namespace := key.String()
		if !strings.HasSuffix(namespace, nodeTypesNamespace) {
			return true
		}
		paths := []gjson.Result{value}
		if value.IsArray() {
			paths = value.Array()
		}
		for _, p := range paths {
			if dir := p.String(); dir == "NodeTypes" || dir == "NodeTypes/" {
				ns = strings.TrimSuffix(namespace, nodeTypesNamespace)
				return false
			}
		}
		return true
	})
	return ns
}

// Locate returns the packages matching a comma separated selector. Each
// element is an exact package key or a glob pattern, e.g. "Vendor.*".
// Unknown exact keys and selectors matching nothing are errors.
func (l *Locator) Locate(selector string) ([]*Package, error) {
	pkgs, err := l.Packages()
	if err != nil {
		return nil, err
	}
	return Select(pkgs, selector)
}

// Select filters packages by selector. The result is sorted by key.
func Select(pkgs []*Package, selector string) ([]*Package, error) {
	var (
		out  []*Package
		seen = make(map[string]bool)
	)
	add := func(p *Package) {
		if !seen[p.Key] {
			seen[p.Key] = true
			out = append(out, p)
		}
	}
	for _, s := range strings.Split(selector, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if !strings.ContainsAny(s, "*?[{") {
			i := slices.IndexFunc(pkgs, func(p *Package) bool { return p.Key == s })
			if i < 0 {
				return nil, fmt.Errorf("%w: %s", ErrUnknownPackage, s)
			}
			add(pkgs[i])
			continue
		}
		if !doublestar.ValidatePattern(s) {
			return nil, fmt.Errorf("invalid package pattern %q: %w", s, doublestar.ErrBadPattern)
		}
		for _, p := range pkgs {
			if ok, _ := doublestar.Match(s, p.Key); ok {
				add(p)
			}
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoPackages, selector)
	}
	slices.SortFunc(out, func(a, b *Package) int { return strings.Compare(a.Key, b.Key) })
	return out, nil
}
