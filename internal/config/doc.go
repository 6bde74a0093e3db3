// Package config defines the format-agnostic configuration model for the
// manifest generator, along with the Loader interface for reading it from a
// concrete format. The `config.Model` is the single source of truth for the
// scanner and generator packages; the HCL implementation lives in the
// hclconf package.
package config
