package gen

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/nodetypeobjects/compiler/load"
	"github.com/syssam/nodetypeobjects/internal/logger"
)

// textDialect renders a line based description of each artifact.
type textDialect struct {
	renderErr error
	formatted atomic.Int32
}

func (*textDialect) Name() string      { return "text" }
func (*textDialect) Separator() string { return `\` }

func (*textDialect) MapType(t PropertyType) (string, string) {
	if t.Kind == KindList {
		return "array", t.ElemAnnotation()
	}
	return t.Schema, ""
}

func (*textDialect) RootNamespace(pkg *load.Package) (string, error) {
	if pkg.PHPNamespace == "" {
		return "", NewConfigError("packages", pkg.Key, "no NodeTypes namespace registered")
	}
	return pkg.PHPNamespace, nil
}

func (*textDialect) FileName(name string) string { return name + ".txt" }
func (*textDialect) Suffixes() []string         { return []string{"NodeObject.txt", "NodeInterface.txt"} }

func (d *textDialect) RenderClass(spec *EntitySpec) ([]byte, bool, error) {
	if !spec.Names.HasClass() {
		return nil, false, nil
	}
	if d.renderErr != nil {
		return nil, false, d.renderErr
	}
	var b strings.Builder
	fmt.Fprintf(&b, "class %s implements %s\n", spec.Names.FullyQualifiedClassName, strings.Join(spec.Implements(), ", "))
	for _, p := range spec.Properties {
		fmt.Fprintf(&b, "%s(): %s\n", p.AccessorName, p.StorageType)
	}
	return []byte(b.String()), true, nil
}

func (*textDialect) RenderInterface(spec *EntitySpec) ([]byte, bool, error) {
	if !spec.Names.HasInterface() {
		return nil, false, nil
	}
	return []byte("interface " + spec.Names.FullyQualifiedInterfaceName + "\n"), true, nil
}

func (d *textDialect) Format(_ string, src []byte) ([]byte, error) {
	d.formatted.Add(1)
	return src, nil
}

// staticSource serves fixed node types.
type staticSource []*load.NodeType

func (s staticSource) NodeTypes(context.Context) ([]*load.NodeType, error) { return s, nil }

type failingSource struct{}

func (failingSource) NodeTypes(context.Context) ([]*load.NodeType, error) {
	return nil, errors.New("boom")
}

func testPackages() []*load.Package {
	return []*load.Package{
		{Key: "Vendor.Site", Path: "/pkgs/Vendor.Site", PHPNamespace: `Vendor\Site`},
		{Key: "Vendor.Blog", Path: "/pkgs/Vendor.Blog", PHPNamespace: `Vendor\Blog`},
		{Key: "Vendor.Bare", Path: "/pkgs/Vendor.Bare"},
	}
}

type staticLocator []*load.Package

func (l staticLocator) Locate(selector string) ([]*load.Package, error) {
	return load.Select(l, selector)
}

func testTypes() staticSource {
	return staticSource{
		{
			Name:       "Vendor.Site:Document",
			SuperTypes: []string{"Vendor.Site:Mixin.Title", "Vendor.Blog:Post", "Vendor.Site:Missing"},
			Properties: []*load.Property{
				{Name: "title", Type: "string"},
				{Name: "_hidden", Type: "boolean", Default: false},
			},
			Options: load.DefaultOptions,
		},
		{
			Name:       "Vendor.Site:Mixin.Title",
			Abstract:   true,
			Properties: []*load.Property{{Name: "title", Type: "string"}},
			Options:    load.DefaultOptions,
		},
		{Name: "Vendor.Blog:Post", Options: load.DefaultOptions},
		{Name: "Vendor.Site:Content.Text", Options: load.Options{GenerateClass: true}},
	}
}

// recordingLogger keeps the key values of every message.
type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

type logEntry struct {
	msg     string
	keyvals []any
}

func (l *recordingLogger) record(msg string, keyvals []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{msg: msg, keyvals: keyvals})
}

func (l *recordingLogger) Debug(msg string, keyvals ...any) { l.record(msg, keyvals) }
func (l *recordingLogger) Info(msg string, keyvals ...any)  { l.record(msg, keyvals) }
func (l *recordingLogger) Warn(msg string, keyvals ...any)  { l.record(msg, keyvals) }
func (l *recordingLogger) Error(msg string, keyvals ...any) { l.record(msg, keyvals) }
func (l *recordingLogger) With(...any) logger.Logger       { return l }

// find returns the key values of the last message msg, nil if none.
func (l *recordingLogger) find(msg string) map[string]any {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := len(l.entries) - 1; i >= 0; i-- {
		if l.entries[i].msg != msg {
			continue
		}
		kv := l.entries[i].keyvals
		out := make(map[string]any, len(kv)/2)
		for j := 0; j+1 < len(kv); j += 2 {
			out[kv[j].(string)] = kv[j+1]
		}
		return out
	}
	return nil
}

func newTestPipeline(t *testing.T, fs afero.Fs, d *textDialect, opts ...Option) *Pipeline {
	t.Helper()
	p, err := NewPipeline(append([]Option{
		WithDialect(d),
		WithLocator(staticLocator(testPackages())),
		WithSource(testTypes()),
		WithWriter(NewFSWriter(fs)),
		WithWorkers(2),
	}, opts...)...)
	require.NoError(t, err)
	return p
}

func readFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, filepath.FromSlash(path))
	require.NoError(t, err)
	return string(data)
}

func TestPipelineBuild(t *testing.T) {
	t.Run("writes artifacts of the selected package", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		d := &textDialect{}
		p := newTestPipeline(t, fs, d)

		report, err := p.Build(context.Background(), "Vendor.Site")
		require.NoError(t, err)

		var names []string
		for _, e := range report.Entities {
			names = append(names, e.Name)
		}
		assert.Equal(t, []string{"Vendor.Site:Content.Text", "Vendor.Site:Document", "Vendor.Site:Mixin.Title"}, names)

		doc := report.Entities[1]
		require.Len(t, doc.Artifacts, 2)
		assert.Equal(t, ArtifactClass, doc.Artifacts[0].Kind)
		assert.Equal(t, "DocumentNodeObject", doc.Artifacts[0].Name)
		assert.Equal(t, `Vendor\Site\NodeTypes\Document\DocumentNodeObject`, doc.Artifacts[0].QualifiedName)
		assert.Equal(t, filepath.FromSlash("/pkgs/Vendor.Site/NodeTypes/Document/DocumentNodeObject.txt"), doc.Artifacts[0].Path)
		assert.Equal(t, ArtifactInterface, doc.Artifacts[1].Kind)

		// Vendor.Blog is out of scope, Vendor.Site:Missing is unknown.
		assert.Equal(t,
			"class Vendor\\Site\\NodeTypes\\Document\\DocumentNodeObject implements "+
				"Vendor\\Site\\NodeTypes\\Document\\DocumentNodeInterface, "+
				"Vendor\\Site\\NodeTypes\\Mixin\\Title\\TitleNodeInterface\n"+
				"getTitle(): string\n"+
				"getInternalHidden(): boolean\n",
			readFile(t, fs, "/pkgs/Vendor.Site/NodeTypes/Document/DocumentNodeObject.txt"))

		// Abstract node types only get an interface.
		title := report.Entities[2]
		require.Len(t, title.Artifacts, 1)
		assert.Equal(t, ArtifactInterface, title.Artifacts[0].Kind)
		exists, err := afero.Exists(fs, filepath.FromSlash("/pkgs/Vendor.Site/NodeTypes/Mixin/Title/TitleNodeObject.txt"))
		require.NoError(t, err)
		assert.False(t, exists)

		// generateInterface: false
		text := report.Entities[0]
		require.Len(t, text.Artifacts, 1)
		assert.Equal(t, ArtifactClass, text.Artifacts[0].Kind)
		assert.Equal(t, "class Vendor\\Site\\NodeTypes\\Content\\Text\\TextNodeObject implements \n",
			readFile(t, fs, "/pkgs/Vendor.Site/NodeTypes/Content/Text/TextNodeObject.txt"))

		assert.Len(t, report.Files(), 4)
		assert.Equal(t, int32(4), d.formatted.Load())
		exists, err = afero.DirExists(fs, filepath.FromSlash("/pkgs/Vendor.Blog/NodeTypes"))
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("resolves supertypes across selected packages", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		p := newTestPipeline(t, fs, &textDialect{})
		_, err := p.Build(context.Background(), "Vendor.Site,Vendor.Blog")
		require.NoError(t, err)
		assert.Contains(t,
			readFile(t, fs, "/pkgs/Vendor.Site/NodeTypes/Document/DocumentNodeObject.txt"),
			`Vendor\Site\NodeTypes\Mixin\Title\TitleNodeInterface, Vendor\Blog\NodeTypes\Post\PostNodeInterface`)
	})

	t.Run("is idempotent", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		p := newTestPipeline(t, fs, &textDialect{})
		first, err := p.Build(context.Background(), "Vendor.Site,Vendor.Blog")
		require.NoError(t, err)
		contents := make(map[string]string)
		for _, f := range first.Files() {
			contents[f] = readFile(t, fs, f)
		}
		second, err := p.Build(context.Background(), "Vendor.Site,Vendor.Blog")
		require.NoError(t, err)
		require.Equal(t, first.Files(), second.Files())
		for _, f := range second.Files() {
			assert.Equal(t, contents[f], readFile(t, fs, f))
		}
	})

	t.Run("strict supertypes", func(t *testing.T) {
		p := newTestPipeline(t, afero.NewMemMapFs(), &textDialect{}, WithStrictSuperTypes(true))
		_, err := p.Build(context.Background(), "Vendor.Site,Vendor.Blog")
		require.Error(t, err)
		assert.True(t, IsSchemaError(err))
		assert.Contains(t, err.Error(), "Vendor.Site:Missing")
	})

	t.Run("configuration errors", func(t *testing.T) {
		p := newTestPipeline(t, afero.NewMemMapFs(), &textDialect{})
		for _, selector := range []string{"Unknown.Package", "Nothing.*", "Vendor.Bare"} {
			_, err := p.Build(context.Background(), selector)
			require.Error(t, err, selector)
			assert.True(t, IsConfigError(err), selector)
			assert.ErrorIs(t, err, ErrMissingConfig)
		}
		_, err := p.Build(context.Background(), "Unknown.Package")
		assert.ErrorIs(t, err, load.ErrUnknownPackage)
	})

	t.Run("render errors", func(t *testing.T) {
		p := newTestPipeline(t, afero.NewMemMapFs(), &textDialect{renderErr: errors.New("bad template")})
		_, err := p.Build(context.Background(), "Vendor.Site")
		require.Error(t, err)
		assert.True(t, IsGenerationError(err))
		assert.Contains(t, err.Error(), "bad template")
		var ge *GenerationError
		require.ErrorAs(t, err, &ge)
		assert.Equal(t, "render", ge.Phase)
		assert.Empty(t, ge.File)
		assert.Contains(t, ge.Message, "class of Vendor.Site:")
	})

	t.Run("skips directories without artifacts", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		source := staticSource{
			{Name: "Vendor.Site:Mixin.Hidden", Abstract: true, Options: load.Options{GenerateClass: true}},
			{Name: "Vendor.Site:Document", Options: load.DefaultOptions},
		}
		p := newTestPipeline(t, fs, &textDialect{}, WithSource(source))
		report, err := p.Build(context.Background(), "Vendor.Site")
		require.NoError(t, err)
		require.Len(t, report.Entities, 2)
		assert.Empty(t, report.Entities[1].Artifacts)

		exists, err := afero.DirExists(fs, filepath.FromSlash("/pkgs/Vendor.Site/NodeTypes/Mixin/Hidden"))
		require.NoError(t, err)
		assert.False(t, exists)
		exists, err = afero.DirExists(fs, filepath.FromSlash("/pkgs/Vendor.Site/NodeTypes/Document"))
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("logs writer metrics", func(t *testing.T) {
		log := &recordingLogger{}
		fs := afero.NewMemMapFs()
		p := newTestPipeline(t, fs, &textDialect{}, WithLogger(log))
		report, err := p.Build(context.Background(), "Vendor.Site")
		require.NoError(t, err)
		var size int64
		for _, f := range report.Files() {
			size += int64(len(readFile(t, fs, f)))
		}
		built := log.find("generated node type objects")
		require.NotNil(t, built)
		assert.Equal(t, size, built["bytes"])
		assert.Contains(t, built, "write_time")

		// Metrics cover one run only.
		_, err = p.Build(context.Background(), "Vendor.Site")
		require.NoError(t, err)
		assert.Equal(t, size, log.find("generated node type objects")["bytes"])

		cleaned, err := p.Clean(context.Background(), "Vendor.Site")
		require.NoError(t, err)
		removed := log.find("removed node type objects")
		require.NotNil(t, removed)
		assert.Equal(t, len(cleaned.Deleted), removed["deleted"])
	})

	t.Run("source errors", func(t *testing.T) {
		p := newTestPipeline(t, afero.NewMemMapFs(), &textDialect{}, WithSource(failingSource{}))
		_, err := p.Build(context.Background(), "Vendor.Site")
		require.ErrorContains(t, err, "boom")
	})

	t.Run("write errors", func(t *testing.T) {
		p := newTestPipeline(t, afero.NewReadOnlyFs(afero.NewMemMapFs()), &textDialect{})
		_, err := p.Build(context.Background(), "Vendor.Site")
		require.Error(t, err)
		assert.True(t, IsGenerationError(err))
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		p := newTestPipeline(t, afero.NewMemMapFs(), &textDialect{})
		_, err := p.Build(ctx, "Vendor.Site")
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestPipelineClean(t *testing.T) {
	fs := afero.NewMemMapFs()
	p := newTestPipeline(t, fs, &textDialect{})
	built, err := p.Build(context.Background(), "Vendor.Site")
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, filepath.FromSlash("/pkgs/Vendor.Site/NodeTypes/Document/Custom.txt"), []byte("keep"), 0o644))
	require.NoError(t, afero.WriteFile(fs, filepath.FromSlash("/pkgs/Vendor.Site/Classes/OtherNodeObject.txt"), []byte("keep"), 0o644))

	report, err := p.Clean(context.Background(), "Vendor.Site")
	require.NoError(t, err)
	assert.ElementsMatch(t, built.Files(), report.Deleted)
	assert.Empty(t, report.Entities)

	for _, f := range built.Files() {
		exists, err := afero.Exists(fs, f)
		require.NoError(t, err)
		assert.False(t, exists, f)
	}
	assert.Equal(t, "keep", readFile(t, fs, "/pkgs/Vendor.Site/NodeTypes/Document/Custom.txt"))
	assert.Equal(t, "keep", readFile(t, fs, "/pkgs/Vendor.Site/Classes/OtherNodeObject.txt"))

	t.Run("nothing to clean", func(t *testing.T) {
		report, err := p.Clean(context.Background(), "Vendor.Blog")
		require.NoError(t, err)
		assert.Empty(t, report.Deleted)
	})

	t.Run("unknown package", func(t *testing.T) {
		_, err := p.Clean(context.Background(), "Unknown")
		assert.True(t, IsConfigError(err))
	})
}

func TestNewPipeline(t *testing.T) {
	t.Run("requires all collaborators", func(t *testing.T) {
		_, err := NewPipeline(WithDialect(&textDialect{}))
		require.Error(t, err)
		assert.True(t, IsConfigError(err))
	})

	t.Run("rejects invalid options", func(t *testing.T) {
		_, err := NewPipeline(WithWorkers(0))
		require.Error(t, err)
	})
}
