package cli

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/toyz/dyntypes/internal/errors"
)

// ManifestScanner resolves CLI arguments into manifest files
type ManifestScanner struct {
	skipDirs map[string]bool
}

// NewManifestScanner creates a new manifest scanner
func NewManifestScanner() *ManifestScanner {
	return &ManifestScanner{
		skipDirs: map[string]bool{
			"vendor":       true,
			"node_modules": true,
			"testdata":     true,
		},
	}
}

// IsManifest reports whether name has a YAML extension
func IsManifest(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

// Scan returns the manifest files named by paths, sorted and without
// duplicates. Files are taken as given; directories contribute their YAML
// files, recursively for Go-style "dir/..." patterns.
func (s *ManifestScanner) Scan(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, arg := range paths {
		recursive := false
		root := arg
		if strings.HasSuffix(arg, "/...") {
			recursive = true
			root = strings.TrimSuffix(arg, "/...")
			if root == "" {
				root = "."
			}
		}

		info, err := os.Stat(root)
		if err != nil {
			return nil, errors.WrapConfigurationError(arg, "scan", err)
		}
		if !info.IsDir() {
			add(filepath.Clean(root))
			continue
		}

		found, err := s.scanDir(root, recursive)
		if err != nil {
			return nil, errors.WrapConfigurationError(arg, "scan", err)
		}
		for _, f := range found {
			add(f)
		}
	}

	sort.Strings(files)
	return files, nil
}

func (s *ManifestScanner) scanDir(root string, recursive bool) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == root {
				return nil
			}
			if !recursive || s.skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if IsManifest(d.Name()) {
			files = append(files, filepath.Clean(path))
		}
		return nil
	})
	return files, err
}

func (s *ManifestScanner) skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || s.skipDirs[name]
}
