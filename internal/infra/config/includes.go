package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Includes may nest, but only this deep.
const maxIncludeDepth = 10

// includeLoader walks the include graph of a config file, overlaying each
// referenced file onto the target Config. seen holds absolute paths already
// merged, which catches circular includes.
type includeLoader struct {
	cfg  *Config
	seen map[string]bool
}

// processIncludes merges every file named by cfg.Includes into cfg.
// Patterns are resolved relative to baseDir, the directory of the file
// that declared them.
func processIncludes(cfg *Config, baseDir string, seen map[string]bool, depth int) error {
	if seen == nil {
		seen = make(map[string]bool)
	}
	ld := &includeLoader{cfg: cfg, seen: seen}
	return ld.expand(baseDir, depth)
}

func (ld *includeLoader) expand(baseDir string, depth int) error {
	if depth > maxIncludeDepth {
		return fmt.Errorf("config includes: max depth %d exceeded", maxIncludeDepth)
	}

	for _, pattern := range ld.cfg.Includes {
		paths, err := expandPattern(pattern, baseDir)
		if err != nil {
			return err
		}
		for _, p := range paths {
			abs, err := filepath.Abs(p)
			if err != nil {
				return fmt.Errorf("config includes: abs path %q: %w", p, err)
			}
			if ld.seen[abs] {
				return fmt.Errorf("config includes: circular include detected for %q", abs)
			}
			ld.seen[abs] = true

			if err := ld.overlay(abs, depth); err != nil {
				return err
			}
		}
	}

	// Includes are consumed here; a later unmarshal pass must not replay them.
	ld.cfg.Includes = nil
	return nil
}

// overlay parses one included file onto the config, then recurses into any
// includes that file declares.
func (ld *includeLoader) overlay(path string, depth int) error {
	if err := validatePermissions(path); err != nil {
		return fmt.Errorf("config includes: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config includes: read %q: %w", path, err)
	}
	if len(data) == 0 {
		return nil
	}

	// Reset so only includes declared by this file survive the unmarshal.
	ld.cfg.Includes = nil

	if err := yaml.Unmarshal(data, ld.cfg); err != nil {
		return fmt.Errorf("config includes: parse %q: %w", path, err)
	}

	if len(ld.cfg.Includes) > 0 {
		return ld.expand(filepath.Dir(path), depth+1)
	}
	return nil
}

// expandPattern resolves one include pattern against baseDir. Relative
// patterns must stay inside the config directory. A glob that matches
// nothing is not an error; a literal path that does not exist is left for
// the read to report.
func expandPattern(pattern, baseDir string) ([]string, error) {
	if !filepath.IsAbs(pattern) {
		pattern = filepath.Join(baseDir, pattern)
	}
	pattern = filepath.Clean(pattern)

	if rel, err := filepath.Rel(baseDir, pattern); err == nil && strings.HasPrefix(rel, "..") {
		return nil, fmt.Errorf("config includes: path %q escapes config directory", pattern)
	}

	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("config includes: glob %q: %w", pattern, err)
	}
	if len(matches) == 0 && !strings.ContainsAny(pattern, "*?[") {
		return []string{pattern}, nil
	}
	return matches, nil
}
