// Package hclconf is the HCL implementation of the config.Loader interface.
// It parses a single flowdeploy.hcl file with hclparse, decodes its blocks
// with gohcl, and merges the result over the built-in defaults. Expressions
// are evaluated against an `env` variable exposing the process environment,
// so paths can be written as e.g. `local_root = "${env.HOME}/etl/src"`.
package hclconf
