// Package gen generates typed accessor classes and interfaces from node type
// schemas.
//
// A node is a generic property bag carrying the name of its node type. For
// each node type of a package the generator emits a class that wraps such a
// node and exposes one typed accessor per declared property, plus an
// interface holding the accessor signatures.
//
// # Architecture
//
// Generation runs in two passes:
//
//	Schema source (load.Repository)
//	        ↓
//	   Pass 1: Resolve each node type in scope → NameRegistry
//	        ↓
//	   Pass 2: EntitySpec per node type (supertypes joined on the registry)
//	        ↓
//	   Dialect renderer (php, golang)
//	        ↓
//	   FileWriter (<package>/NodeTypes/<Path>/<Name>/...)
//
// The registry is complete before any entity is rendered, so the order in
// which node types are loaded never affects the output. Pass 2 runs on a
// bounded errgroup worker pool.
//
// # Naming
//
// The node type Vendor.Site:Content.Text of a package with the root
// namespace Vendor\Site yields
//
//	namespace  Vendor\Site\NodeTypes\Content\Text
//	directory  <package>/NodeTypes/Content/Text
//	class      TextNodeObject     (not for abstract node types)
//	interface  TextNodeInterface
//
// Property accessors are named get<Name>; properties starting with an
// underscore are internal and get getInternal<Name>.
//
// # Error Handling
//
//   - SchemaError: malformed node type names, unknown supertypes in strict mode
//   - ConfigError: unknown packages, missing namespace mappings, invalid options
//   - GenerationError: rendering, formatting and file system failures
//
// Example error handling:
//
//	report, err := p.Build(ctx, "Vendor.Site")
//	if gen.IsConfigError(err) {
//	    // Handle configuration problem
//	}
//
// # Configuration
//
// Configuration is done via the functional options pattern:
//
//	p, err := gen.NewPipeline(
//	    gen.WithDialect(php.NewDialect()),
//	    gen.WithLocator(locator),
//	    gen.WithSource(repository),
//	    gen.WithWriter(gen.NewFSWriter(afero.NewOsFs())),
//	    gen.WithWorkers(4),
//	)
//
// # Code Organization
//
//   - dialect.go: Dialect and Renderer interfaces
//   - entity.go: EntitySpec
//   - errors.go: Structured error types
//   - names.go: Name resolution
//   - option.go: Functional option pattern for configuration
//   - pipeline.go: Build and Clean
//   - property.go: PropertySpec and accessor naming
//   - registry.go: NameRegistry
//   - typemap.go: Schema type parsing and the TypeMapper interface
//   - writer.go: afero backed FileWriter
package gen
