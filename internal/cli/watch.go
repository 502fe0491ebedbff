package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/syssam/nodetypeobjects/internal/logger"
)

var errWatcherClosed = errors.New("file watcher closed unexpectedly")

// ignoredDirs are never watched.
var ignoredDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	".idea":        true,
	".vscode":      true,
}

func watchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <packages>",
		Short: "Rebuild node type objects whenever a schema file changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			sel, err := selector(args)
			if err != nil {
				return err
			}
			set, err := cmd.Flags().GetString("schema-set")
			if err != nil {
				return err
			}
			p, err := a.pipeline(cmd.Context(), set)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			rebuild := func(ctx context.Context) error {
				report, err := p.Build(ctx, sel)
				if err != nil {
					return err
				}
				printBuild(out, report)
				return nil
			}
			if err := rebuild(cmd.Context()); err != nil {
				return err
			}
			return a.watch(cmd.Context(), rebuild)
		},
	}
	addGenerateFlags(cmd)
	cmd.Flags().Duration("debounce", 0, "Quiet period after a change before rebuilding")
	return cmd
}

// watch rebuilds on schema changes below the packages directory until ctx
// is done.
func (a *app) watch(ctx context.Context, rebuild func(context.Context) error) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fsw.Close()

	log := logger.FromContext(ctx)
	dirs, err := watchDirs(a.fs, a.cfg.Packages)
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			log.Warn("failed to watch directory", "path", dir, "error", err)
		}
	}
	log.Info("watching for schema changes", "directories", len(dirs), "debounce", a.cfg.Watch.Debounce)

	w := &schemaWatcher{
		events:   fsw.Events,
		errors:   fsw.Errors,
		debounce: a.cfg.Watch.Debounce,
		rebuild:  rebuild,
		log:      log,
		onEvent: func(ev fsnotify.Event) {
			// New directories may hold schema files later on.
			if !ev.Has(fsnotify.Create) || ignoredDirs[filepath.Base(ev.Name)] {
				return
			}
			if fi, err := a.fs.Stat(ev.Name); err == nil && fi.IsDir() {
				if err := fsw.Add(ev.Name); err != nil {
					log.Warn("failed to watch directory", "path", ev.Name, "error", err)
				}
			}
		},
	}
	return w.run(ctx)
}

// watchDirs returns root and all directories below it that are not ignored.
func watchDirs(fs afero.Fs, root string) ([]string, error) {
	var dirs []string
	err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if path != root && ignoredDirs[info.Name()] {
			return filepath.SkipDir
		}
		dirs = append(dirs, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return dirs, nil
}

// isSchemaEvent reports whether ev touches a YAML file.
func isSchemaEvent(ev fsnotify.Event) bool {
	switch filepath.Ext(ev.Name) {
	case ".yaml", ".yml":
	default:
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)
}

// schemaWatcher batches schema events and rebuilds once the debounce period
// passed without further events. Rebuild errors are logged, not returned.
type schemaWatcher struct {
	events   <-chan fsnotify.Event
	errors   <-chan error
	debounce time.Duration
	rebuild  func(context.Context) error
	onEvent  func(fsnotify.Event)
	log      logger.Logger
}

func (w *schemaWatcher) run(ctx context.Context) error {
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.events:
			if !ok {
				return errWatcherClosed
			}
			if w.onEvent != nil {
				w.onEvent(ev)
			}
			if !isSchemaEvent(ev) {
				continue
			}
			w.log.Debug("schema changed", "file", ev.Name, "op", ev.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			if err := w.rebuild(ctx); err != nil {
				w.log.Error("rebuild failed", "error", err)
			}
		case err, ok := <-w.errors:
			if !ok {
				return errWatcherClosed
			}
			w.log.Warn("file watcher error", "error", err)
		}
	}
}
