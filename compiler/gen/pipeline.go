package gen

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/syssam/nodetypeobjects/compiler/load"
)

// SchemaSource provides the node type schemas of all known packages.
// Implemented by load.Repository.
type SchemaSource interface {
	NodeTypes(ctx context.Context) ([]*load.NodeType, error)
}

// PackageLocator resolves a package selector to packages.
// Implemented by load.Locator.
type PackageLocator interface {
	Locate(selector string) ([]*load.Package, error)
}

// ArtifactKind names the kind of a generated file.
type ArtifactKind string

// Artifact kinds.
const (
	ArtifactClass     ArtifactKind = "class"
	ArtifactInterface ArtifactKind = "interface"
)

// Artifact describes one generated file.
type Artifact struct {
	Kind ArtifactKind
	// Name is the class or interface name.
	Name string
	// QualifiedName is Name including its namespace.
	QualifiedName string
	Path          string
}

// EntityReport lists the artifacts written for one node type.
type EntityReport struct {
	Name      string
	Artifacts []Artifact
}

// Report is the outcome of a Build or Clean run.
type Report struct {
	// Entities in qualified name order. Empty for Clean.
	Entities []EntityReport
	// Deleted files in lexical order. Empty for Build.
	Deleted []string
}

// Files returns the paths of all written artifacts.
func (r *Report) Files() []string {
	var files []string
	for _, e := range r.Entities {
		for _, a := range e.Artifacts {
			files = append(files, a.Path)
		}
	}
	return files
}

// Pipeline generates and removes node type objects.
//
// Example:
//
//	p, err := gen.NewPipeline(
//	    gen.WithDialect(php.NewDialect()),
//	    gen.WithLocator(load.NewLocator(fs, "Packages")),
//	    gen.WithSource(load.NewRepository(fs, locator)),
//	    gen.WithWriter(gen.NewFSWriter(fs)),
//	)
//	report, err := p.Build(ctx, "Vendor.Site")
type Pipeline struct {
	cfg       *Config
	formatter Formatter
}

// NewPipeline creates a pipeline with the given options.
func NewPipeline(opts ...Option) (*Pipeline, error) {
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	return NewPipelineFromConfig(cfg)
}

// NewPipelineFromConfig creates a pipeline from a complete config.
func NewPipelineFromConfig(cfg *Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Pipeline{cfg: cfg}
	// Detect optional capabilities via type assertion
	if f, ok := cfg.Dialect.(Formatter); ok {
		p.formatter = f
	}
	return p, nil
}

// meteredWriter is implemented by writers that count their activity.
type meteredWriter interface {
	Metrics() WriterMetrics
}

// writerMetrics returns the metrics of the writer, zero if it keeps none.
func (p *Pipeline) writerMetrics() WriterMetrics {
	if w, ok := p.cfg.Writer.(meteredWriter); ok {
		return w.Metrics()
	}
	return WriterMetrics{}
}

// scope resolves the selector and the naming roots of the selected packages.
func (p *Pipeline) scope(selector string) ([]*load.Package, map[string]PackageRoot, error) {
	pkgs, err := p.cfg.Locator.Locate(selector)
	if err != nil {
		return nil, nil, &ConfigError{Option: "packages", Value: selector, Message: "cannot locate packages", Cause: err}
	}
	if len(pkgs) == 0 {
		return nil, nil, NewConfigError("packages", selector, "no package matches")
	}
	roots := make(map[string]PackageRoot, len(pkgs))
	for _, pkg := range pkgs {
		root, err := PackageRootOf(p.cfg.Dialect, pkg)
		if err != nil {
			return nil, nil, err
		}
		roots[pkg.Key] = root
	}
	return pkgs, roots, nil
}

// Build regenerates all artifacts of the selected packages. Node types of
// all known packages are loaded so inherited properties resolve, but only
// those of the selected packages are generated and referenced.
func (p *Pipeline) Build(ctx context.Context, selector string) (*Report, error) {
	log := p.cfg.Logger
	before := p.writerMetrics()
	_, roots, err := p.scope(selector)
	if err != nil {
		return nil, err
	}
	all, err := p.cfg.Source.NodeTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("load node types: %w", err)
	}
	var types []*load.NodeType
	for _, nt := range all {
		if _, ok := roots[nt.PackageKey()]; ok {
			types = append(types, nt)
		}
	}
	slices.SortFunc(types, func(a, b *load.NodeType) int { return strings.Compare(a.Name, b.Name) })
	log.Debug("node types in scope", "selector", selector, "loaded", len(all), "scoped", len(types))

	// Pass 1: resolve the names of every node type in scope.
	reg, err := BuildNameRegistry(types, roots)
	if err != nil {
		return nil, err
	}
	log.Debug("resolved node type names", "count", reg.Len(), "names", reg.Names())
	if p.cfg.StrictSuperTypes {
		for _, nt := range types {
			if missing := reg.Missing(nt.SuperTypes); len(missing) > 0 {
				return nil, NewSchemaError(nt.Name, "", "unknown supertypes "+strings.Join(missing, ", "), nil)
			}
		}
	}

	// Pass 2: entities are independent once the registry is complete.
	results := make([]EntityReport, len(types))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(p.cfg.Workers)
	for i, nt := range types {
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			r, err := p.generate(nt, reg)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	report := &Report{Entities: results}
	m := p.writerMetrics().Since(before)
	log.Info("generated node type objects", "types", len(results), "files", len(report.Files()),
		"bytes", m.TotalBytes, "write_time", time.Duration(m.WriteTime))
	return report, nil
}

// generate renders and writes the artifacts of one node type.
func (p *Pipeline) generate(nt *load.NodeType, reg *NameRegistry) (EntityReport, error) {
	d := p.cfg.Dialect
	spec, err := NewEntitySpec(nt, reg, d)
	if err != nil {
		return EntityReport{}, err
	}
	report := EntityReport{Name: nt.Name}
	steps := []struct {
		kind   ArtifactKind
		name   string
		fqn    string
		render func(*EntitySpec) ([]byte, bool, error)
	}{
		{ArtifactClass, spec.Names.ClassName, spec.Names.FullyQualifiedClassName, d.RenderClass},
		{ArtifactInterface, spec.Names.InterfaceName, spec.Names.FullyQualifiedInterfaceName, d.RenderInterface},
	}
	for _, s := range steps {
		src, ok, err := s.render(spec)
		if err != nil {
			return EntityReport{}, NewGenerationError("render", "", fmt.Sprintf("%s of %s", s.kind, nt.Name), err)
		}
		if !ok {
			continue
		}
		if len(report.Artifacts) == 0 {
			if err := p.cfg.Writer.EnsureDir(spec.Names.Directory); err != nil {
				return EntityReport{}, NewGenerationError("write", spec.Names.Directory, "", err)
			}
		}
		path := filepath.Join(spec.Names.Directory, d.FileName(s.name))
		if p.formatter != nil {
			if src, err = p.formatter.Format(path, src); err != nil {
				return EntityReport{}, NewGenerationError("format", path, "", err)
			}
		}
		if err := p.cfg.Writer.WriteFile(path, src); err != nil {
			return EntityReport{}, NewGenerationError("write", path, "", err)
		}
		p.cfg.Logger.Debug("wrote artifact", "type", nt.Name, "kind", s.kind, "path", path)
		report.Artifacts = append(report.Artifacts, Artifact{Kind: s.kind, Name: s.name, QualifiedName: s.fqn, Path: path})
	}
	return report, nil
}

// Clean removes every generated artifact below the NodeTypes directory of
// the selected packages. Other files are left untouched.
func (p *Pipeline) Clean(ctx context.Context, selector string) (*Report, error) {
	pkgs, _, err := p.scope(selector)
	if err != nil {
		return nil, err
	}
	before := p.writerMetrics()
	report := &Report{}
	for _, pkg := range pkgs {
		dir := filepath.Join(pkg.Path, NodeTypesSegment)
		files, err := p.cfg.Writer.ListFiles(dir, p.cfg.Dialect.Suffixes()...)
		if err != nil {
			return nil, NewGenerationError("clean", dir, "", err)
		}
		for _, f := range files {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := p.cfg.Writer.DeleteFile(f); err != nil {
				return nil, NewGenerationError("clean", f, "", err)
			}
			report.Deleted = append(report.Deleted, f)
		}
		p.cfg.Logger.Debug("cleaned package", "package", pkg.Key, "files", len(files))
	}
	slices.Sort(report.Deleted)
	m := p.writerMetrics().Since(before)
	p.cfg.Logger.Info("removed node type objects", "files", len(report.Deleted), "deleted", m.FilesDeleted)
	return report, nil
}
