package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/flowdeploy/internal/config"
	"github.com/vk/flowdeploy/internal/ctxlog"
)

// Unit is a single discovered flow script.
type Unit struct {
	// Path is the script's location under the scan root.
	Path string
	// Project is the name of the directory containing the matched container
	// directory.
	Project string
	// Name is the script's base name with the extension stripped. It doubles
	// as the deployment name and the flow callable name.
	Name string
}

// Scanner walks a tree and collects source units. The zero value is not
// usable; construct it with New.
type Scanner struct {
	// MatchDir decides whether a directory is a deployment container. The
	// match is purely name-based, so any directory with a matching name at
	// any depth qualifies, including one nested inside another container.
	MatchDir func(name string) bool

	extension string
}

// New builds a Scanner from the source configuration, matching container
// directories by exact name.
func New(src config.Source) *Scanner {
	return &Scanner{
		MatchDir:  func(name string) bool { return name == src.DirName },
		extension: src.Extension,
	}
}

// Scan walks root and returns every discovered unit in lexical traversal
// order. A missing or unreadable root is an error.
func (s *Scanner) Scan(ctx context.Context, root string) ([]Unit, error) {
	logger := ctxlog.FromContext(ctx)

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scan root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan root %s is not a directory", root)
	}

	var units []Unit
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() || !s.MatchDir(d.Name()) {
			return nil
		}

		found, err := s.collect(path)
		if err != nil {
			return err
		}
		logger.Debug("Matched container directory.", "dir", path, "units", len(found))
		units = append(units, found...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	logger.Debug("Scan complete.", "root", root, "units", len(units))
	return units, nil
}

// collect enumerates the immediate files of one container directory.
// Subdirectories are left to the outer walk.
func (s *Scanner) collect(dir string) ([]Unit, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading container %s: %w", dir, err)
	}

	project := filepath.Base(filepath.Dir(dir))

	var units []Unit
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), s.extension) {
			continue
		}
		units = append(units, Unit{
			Path:    filepath.Join(dir, e.Name()),
			Project: project,
			Name:    strings.TrimSuffix(e.Name(), s.extension),
		})
	}
	return units, nil
}
