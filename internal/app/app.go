package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/flowdeploy/internal/config"
	"github.com/vk/flowdeploy/internal/ctxlog"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	cfg    *Config
	model  *config.Model
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger. A configuration
// that cannot be loaded or that fails validation is a fatal startup error
// and panics; the entrypoint recovers it into a clean exit.
func NewApp(outW io.Writer, appCfg *Config, loader config.Loader) *App {
	logger := newLogger(appCfg.LogLevel, appCfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	a := &App{
		outW:   outW,
		logger: logger,
		cfg:    appCfg,
	}

	// Task preparation needs no scan configuration.
	if appCfg.TasksPath != "" {
		return a
	}

	model, err := loader.Load(ctx, appCfg.ConfigPath)
	if err != nil {
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	logger.Debug("Configuration loaded.")

	if appCfg.RootPath != "" {
		model.Paths.LocalRoot = appCfg.RootPath
	}
	if appCfg.OutputDir != "" {
		model.Paths.OutputDir = appCfg.OutputDir
	}

	if err := model.Validate(); err != nil {
		panic(fmt.Errorf("invalid configuration: %w", err))
	}
	logger.Debug("Configuration validation passed.")

	a.model = model
	return a
}

// Model returns the merged scan configuration. This is primarily for testing.
func (a *App) Model() *config.Model {
	return a.model
}
