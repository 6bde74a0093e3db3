package config

import "context"

// Loader is the interface for a format-specific configuration loader. Load
// reads the file at path and returns a Model with file values merged over
// the built-in defaults.
type Loader interface {
	Load(ctx context.Context, path string) (*Model, error)
}
