package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vk/flowdeploy/internal/ctxlog"
	"github.com/vk/flowdeploy/internal/generator"
	"github.com/vk/flowdeploy/internal/report"
	"github.com/vk/flowdeploy/internal/taskprep"
	"github.com/vk/flowdeploy/internal/watcher"
)

// Run executes the main application logic.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.cfg.TasksPath != "" {
		return a.runTasks(ctx)
	}

	if err := a.generate(ctx); err != nil {
		return err
	}

	if !a.cfg.Watch {
		a.logger.Debug("App.Run method finished.")
		return nil
	}

	w, err := watcher.New(a.model.Paths.LocalRoot, func(ctx context.Context) {
		// A failing pass must not kill watch mode; the next change gets
		// another chance.
		if err := a.generate(ctx); err != nil {
			a.logger.Error("Regeneration failed.", "error", err)
		}
	})
	if err != nil {
		return err
	}

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("watch mode failed: %w", err)
	}
	a.logger.Info("Watch mode stopped.")
	return nil
}

// generate performs one scan-and-write pass and prints the summary table.
func (a *App) generate(ctx context.Context) error {
	gen := generator.New(a.model, generator.WithForce(a.cfg.Force))

	results, err := gen.Run(ctx)
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	report.Summary(a.outW, results)
	return nil
}

// runTasks loads the task config, stamps it, and prints the stamped list.
func (a *App) runTasks(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	tasks, err := taskprep.Prepare(a.cfg.TasksPath, time.Now())
	if err != nil {
		return fmt.Errorf("task preparation failed: %w", err)
	}
	logger.Info("Tasks stamped.", "count", len(tasks), "config", a.cfg.TasksPath)

	out, err := taskprep.Encode(tasks)
	if err != nil {
		return err
	}
	_, err = a.outW.Write(out)
	return err
}
