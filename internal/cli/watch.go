package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/orrery/pkg/pipeline"
)

// watchDebounce is how long the input must stay quiet before a rerun.
const watchDebounce = 100 * time.Millisecond

// watchLayout runs the layout once and again after every change to input,
// until ctx is cancelled. Failed runs are reported and do not stop the watch.
func (c *CLI) watchLayout(ctx context.Context, input, output string, opts pipeline.Options, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	target, err := filepath.Abs(input)
	if err != nil {
		return err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer fw.Close()

	// Editors often replace files on save, so watch the directory.
	if err := fw.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", input, err)
	}

	logger := loggerFromContext(ctx)
	rerun := func() {
		p := newProgress(logger)
		if err := c.layoutOnce(ctx, runner, input, output, opts); err != nil {
			if ctx.Err() == nil {
				printError("%v", err)
			}
			return
		}
		p.done("Updated " + output)
	}
	rerun()
	printInfo("Watching %s for changes (ctrl+c to stop)", input)

	var pending time.Time
	ticker := time.NewTicker(watchDebounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				pending = time.Now()
			}

		case <-ticker.C:
			if !pending.IsZero() && time.Since(pending) >= watchDebounce {
				pending = time.Time{}
				logger.Debug("input changed", "file", input)
				rerun()
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "err", err)
		}
	}
}
