package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/conneroisu/formstate/internal/config"
	formerrors "github.com/conneroisu/formstate/internal/errors"
	"github.com/conneroisu/formstate/internal/logging"
	"github.com/conneroisu/formstate/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:     "watch [data-file...]",
	Aliases: []string{"w"},
	Short:   "Re-check data documents whenever they or the definition change",
	Long: `Check the data documents once, then watch them and the definition file
and check again after every change. Changes are debounced by watch.debounce.

Examples:
  formstate watch -d signup.yml data.yml
  formstate watch -d signup.yml data.yml -o json`,
	Args: cobra.MatchAll(cobra.MinimumNArgs(1), existingFiles),
	RunE: runWatch,
}

var (
	watchDefinition string
	watchFlags      *OutputFlags
)

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVarP(&watchDefinition, "definition", "d", "form.yml", "Field definition file")
	watchFlags = AddOutputFlags(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := newLogger(cfg, cmd.ErrOrStderr())

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return watchFiles(ctx, cfg, logger, cmd.OutOrStdout(), watchDefinition, args)
}

// watchFiles checks once and then after every debounced change until ctx
// is done. Check failures are printed, they do not end the watch.
func watchFiles(ctx context.Context, cfg *config.Config, logger logging.Logger, out io.Writer, defPath string, dataPaths []string) error {
	handler := formerrors.NewErrorHandler(logger)
	recheck := func() error {
		reports, err := checkFiles(ctx, cfg, logger, defPath, dataPaths)
		if err != nil {
			handler.Handle(ctx, err)
			fmt.Fprintf(out, "error: %s\n", formerrors.FormatError(err))
		}
		if len(reports) == 0 {
			return nil
		}
		if err := writeReports(out, watchFlags.Resolve(cfg), reports); err != nil {
			return err
		}
		if watchFlags.Dump {
			dumpReports(out, reports)
		}
		return nil
	}

	if err := recheck(); err != nil {
		return err
	}

	fileWatcher, err := watcher.NewFileWatcher(cfg.Watch.Debounce, logger)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fileWatcher.Stop()

	paths := append([]string{defPath}, dataPaths...)
	for _, path := range paths {
		if err := fileWatcher.AddFile(path); err != nil {
			return err
		}
	}

	fileWatcher.AddFilter(watcher.NoHiddenFilter)
	fileWatcher.AddFilter(watcher.DataFilter)
	fileWatcher.AddFilter(watcher.PathsFilter(paths...))

	fileWatcher.AddHandler(func(events []watcher.ChangeEvent) error {
		for _, event := range events {
			logger.Info(ctx, "File changed", "path", event.Path, "type", event.Type.String())
		}
		fmt.Fprintf(out, "%d file(s) changed\n", len(events))
		return recheck()
	})

	if err := fileWatcher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}
	logger.Info(ctx, "Watching", "files", len(paths))

	<-ctx.Done()
	return nil
}
