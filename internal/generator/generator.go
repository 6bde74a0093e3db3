package generator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/flowdeploy/internal/config"
	"github.com/vk/flowdeploy/internal/ctxlog"
	"github.com/vk/flowdeploy/internal/manifest"
	"github.com/vk/flowdeploy/internal/scanner"
)

// Result records one written manifest.
type Result struct {
	Unit       scanner.Unit
	Entrypoint string
	// OutFile is the path of the written manifest.
	OutFile string
}

// Generator converts a source tree into manifest files.
type Generator struct {
	cfg  *config.Model
	scan *scanner.Scanner

	// force restores last-write-wins behaviour on deployment name
	// collisions instead of failing the run.
	force bool
}

// Option configures a Generator.
type Option func(*Generator)

// WithForce makes name collisions overwrite instead of erroring.
func WithForce(force bool) Option {
	return func(g *Generator) { g.force = force }
}

// WithScanner replaces the default scanner, e.g. to install a custom
// directory predicate.
func WithScanner(s *scanner.Scanner) Option {
	return func(g *Generator) { g.scan = s }
}

// New builds a Generator for a validated configuration model.
func New(cfg *config.Model, opts ...Option) *Generator {
	g := &Generator{
		cfg:  cfg,
		scan: scanner.New(cfg.Source),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Run performs one full generation pass. The output directory is created
// even when no unit is discovered.
func (g *Generator) Run(ctx context.Context) ([]Result, error) {
	logger := ctxlog.FromContext(ctx)

	units, err := g.scan.Scan(ctx, g.cfg.Paths.LocalRoot)
	if err != nil {
		return nil, err
	}

	outDir := g.cfg.Paths.OutputDir
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory %s: %w", outDir, err)
	}

	seen := make(map[string]scanner.Unit, len(units))
	results := make([]Result, 0, len(units))

	for _, unit := range units {
		if prev, dup := seen[unit.Name]; dup {
			if !g.force {
				return nil, fmt.Errorf("deployment name collision: %q produced by both %s and %s", unit.Name, prev.Path, unit.Path)
			}
			logger.Warn("Deployment name collision, overwriting earlier manifest.", "name", unit.Name, "kept", unit.Path, "discarded", prev.Path)
		}
		seen[unit.Name] = unit

		result, err := g.write(ctx, unit)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	logger.Info("Generation pass complete.", "units", len(units), "output_dir", outDir)
	return results, nil
}

func (g *Generator) write(ctx context.Context, unit scanner.Unit) (Result, error) {
	logger := ctxlog.FromContext(ctx)

	entrypoint := Entrypoint(g.cfg.Paths.LocalRoot, g.cfg.Paths.RemoteRoot, unit.Path, unit.Name)

	d := &manifest.Descriptor{
		Project:        unit.Project,
		Name:           unit.Name,
		Entrypoint:     entrypoint,
		PrefectVersion: g.cfg.Defaults.PrefectVersion,
		WorkingDir:     g.cfg.Paths.RemoteRoot,
		WorkPool:       g.cfg.Defaults.WorkPool,
		Schedule:       g.cfg.Schedule,
	}

	body, err := d.Render()
	if err != nil {
		return Result{}, err
	}

	outFile := filepath.Join(g.cfg.Paths.OutputDir, d.FileName())
	if err := os.WriteFile(outFile, body, 0o644); err != nil {
		return Result{}, fmt.Errorf("writing manifest %s: %w", outFile, err)
	}

	logger.Info("Creating deployment.", "deployment", unit.Name, "project", unit.Project, "file", outFile)
	return Result{Unit: unit, Entrypoint: entrypoint, OutFile: outFile}, nil
}

// Entrypoint derives a flow reference from a script path: the local root
// prefix is swapped for the remote root, separators are normalised to
// forward slashes, and the callable name (same as the deployment name) is
// appended after a colon.
func Entrypoint(localRoot, remoteRoot, path, name string) string {
	p := filepath.ToSlash(path)
	local := filepath.ToSlash(localRoot)
	remote := filepath.ToSlash(remoteRoot)
	return strings.Replace(p, local, remote, 1) + ":" + name
}
