// Package cli implements the nodetypeobjects command line.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/syssam/nodetypeobjects/compiler/gen"
	"github.com/syssam/nodetypeobjects/compiler/gen/golang"
	"github.com/syssam/nodetypeobjects/compiler/gen/php"
	"github.com/syssam/nodetypeobjects/compiler/load"
	"github.com/syssam/nodetypeobjects/internal/config"
	"github.com/syssam/nodetypeobjects/internal/logger"
)

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"packages-dir": "packages",
	"log-level":    "log.level",
	"log-json":     "log.json",
	"target":       "target",
	"workers":      "workers",
	"strict":       "strict_supertypes",
	"debounce":     "watch.debounce",
}

// app carries what every command needs once flags are parsed. The logger
// travels in the command context.
type app struct {
	fs  afero.Fs
	cfg *config.Config
}

// RootCmd returns the nodetypeobjects command operating on the OS filesystem.
func RootCmd() *cobra.Command {
	return NewRootCmd(afero.NewOsFs())
}

// NewRootCmd returns the nodetypeobjects command operating on fs.
func NewRootCmd(fs afero.Fs) *cobra.Command {
	a := &app{fs: fs}
	root := &cobra.Command{
		Use:   "nodetypeobjects",
		Short: "Generate typed node objects from node type schemas",
		Long: "nodetypeobjects reads the node type schemas of a set of packages and writes\n" +
			"one class and one interface per node type into the NodeTypes folder of\n" +
			"the owning package.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", config.FileName, "Path to the config file")
	root.PersistentFlags().String("packages-dir", "", "Directory searched for packages")
	root.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error, disabled)")
	root.PersistentFlags().Bool("log-json", false, "Log as JSON")

	root.AddCommand(
		buildCmd(a),
		cleanCmd(a),
		watchCmd(a),
		packagesCmd(a),
	)
	return root
}

// setup loads the configuration and creates the logger. Flags set on the
// command line override every other source.
func (a *app) setup(cmd *cobra.Command) error {
	overrides := make(map[string]any)
	cmd.Flags().Visit(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return
		}
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			overrides[key] = sv.GetSlice()
			return
		}
		overrides[key] = f.Value.String()
	})
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	cfg, err := config.NewLoader(a.fs).Load(path, cmd.Flags().Changed("config"), overrides)
	if err != nil {
		return err
	}
	a.cfg = cfg
	log := logger.NewLogger(&logger.Config{
		Level:      logger.LogLevel(cfg.Log.Level),
		Output:     cmd.ErrOrStderr(),
		JSON:       cfg.Log.JSON,
		TimeFormat: "15:04:05",
	})
	cmd.SetContext(logger.ContextWithLogger(cmd.Context(), log))
	return nil
}

// dialect returns the dialect of the configured target.
func dialect(target string) (gen.Dialect, error) {
	switch target {
	case "php":
		return php.NewDialect(), nil
	case "go":
		return golang.NewDialect(), nil
	}
	return nil, gen.NewConfigError("target", target, "unknown target")
}

func (a *app) locator() *load.Locator {
	return load.NewLocator(a.fs, a.cfg.Packages)
}

// pipeline creates the generation pipeline for the given schema set. It
// logs through the logger of ctx.
func (a *app) pipeline(ctx context.Context, schemaSet string) (*gen.Pipeline, error) {
	d, err := dialect(a.cfg.Target)
	if err != nil {
		return nil, err
	}
	patterns, err := a.cfg.SchemaSet(schemaSet)
	if err != nil {
		return nil, gen.NewConfigError("schema-set", schemaSet, err.Error())
	}
	locator := a.locator()
	return gen.NewPipeline(
		gen.WithDialect(d),
		gen.WithLocator(locator),
		gen.WithSource(load.NewRepository(a.fs, locator, patterns...)),
		gen.WithWriter(gen.NewFSWriter(a.fs)),
		gen.WithWorkers(a.cfg.Workers),
		gen.WithStrictSuperTypes(a.cfg.StrictSuperTypes),
		gen.WithLogger(logger.FromContext(ctx)),
	)
}

// selector returns the package selector argument.
func selector(args []string) (string, error) {
	if len(args) == 0 || args[0] == "" {
		return "", fmt.Errorf("no packages selected")
	}
	return args[0], nil
}
