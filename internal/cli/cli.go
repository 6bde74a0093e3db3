package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/vk/flowdeploy/internal/app"
)

// defaultConfigFile is picked up from the working directory when no -config
// flag is given.
const defaultConfigFile = "flowdeploy.hcl"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("flowdeploy", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
flowdeploy - Prefect deployment manifest generator.

Walks a flow source tree and writes one <deployment>-deploy.yaml per flow
script found in directories named "src" (configurable).

Usage:
  flowdeploy [options] [ROOT_PATH]

Arguments:
  ROOT_PATH
    Directory tree to scan. Overrides paths.local_root from the config file.

Options:
`)
		flagSet.PrintDefaults()
	}

	configFlag := flagSet.String("config", "", "Path to the flowdeploy.hcl config file.")
	cFlag := flagSet.String("c", "", "Path to the flowdeploy.hcl config file (shorthand).")
	outputFlag := flagSet.String("output", "", "Output directory for manifests. Overrides paths.output_dir.")
	oFlag := flagSet.String("o", "", "Output directory for manifests (shorthand).")
	tasksFlag := flagSet.String("tasks", "", "Stamp the task config at this path instead of generating manifests.")
	envFileFlag := flagSet.String("env-file", ".env", "Environment file loaded before reading configuration.")
	watchFlag := flagSet.Bool("watch", false, "Stay alive and regenerate when the source tree changes.")
	forceFlag := flagSet.Bool("force", false, "Overwrite on deployment name collisions instead of failing.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	// An explicit env file must exist; the default one is best effort.
	if err := loadEnvFile(*envFileFlag, *envFileFlag != ".env"); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	rootPath := ""
	if flagSet.NArg() > 0 {
		rootPath = flagSet.Arg(0)
	}

	configPath := ""
	if *configFlag != "" {
		configPath = *configFlag
	} else if *cFlag != "" {
		configPath = *cFlag
	} else if _, err := os.Stat(defaultConfigFile); err == nil {
		configPath = defaultConfigFile
	}
	slog.Debug("Config path determined.", "path", configPath)

	outputDir := *outputFlag
	if outputDir == "" {
		outputDir = *oFlag
	}

	if rootPath == "" && configPath == "" && *tasksFlag == "" {
		slog.Debug("Nothing to do, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		RootPath:   rootPath,
		ConfigPath: configPath,
		OutputDir:  outputDir,
		TasksPath:  *tasksFlag,
		LogFormat:  logFormat,
		LogLevel:   logLevel,
		Watch:      *watchFlag,
		Force:      *forceFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

// loadEnvFile loads a dotenv file into the process environment so HCL
// expressions can reference its values through `env`.
func loadEnvFile(path string, required bool) error {
	if _, err := os.Stat(path); err != nil {
		if required {
			return fmt.Errorf("env file %s: %w", path, err)
		}
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading env file %s: %w", path, err)
	}
	slog.Debug("Env file loaded.", "path", path)
	return nil
}
