// Package project locates and loads the cinder.toml manifest.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ManifestName is the file the manifest search looks for.
const ManifestName = "cinder.toml"

// Manifest is a located, parsed cinder.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Config mirrors the cinder.toml schema.
type Config struct {
	Package  PackageConfig  `toml:"package"`
	Optimize OptimizeConfig `toml:"optimize"`
}

// PackageConfig is the [package] table.
type PackageConfig struct {
	Name string `toml:"name"`
}

// OptimizeConfig is the [optimize] table. Entry names the function the
// global collector must never remove; AssumePure lists declared extern
// functions the purity analysis may trust.
type OptimizeConfig struct {
	Entry          string   `toml:"entry"`
	CollectGlobals int      `toml:"collect_globals"`
	AssumePure     []string `toml:"assume_pure"`
	Emit           string   `toml:"emit"`
}

// Find walks from startDir toward the filesystem root looking for a
// cinder.toml. Returns ok=false when none exists.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load finds and parses the nearest manifest above startDir.
func Load(startDir string) (*Manifest, bool, error) {
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{
		Path:   path,
		Root:   filepath.Dir(path),
		Config: cfg,
	}, true, nil
}

// LoadConfig parses and validates one manifest file. Required keys must be
// present; optional [optimize] keys fall back to defaults.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return Config{}, fmt.Errorf("%s: missing [package]", path)
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return Config{}, fmt.Errorf("%s: missing [package].name", path)
	}
	if cfg.Optimize.Entry == "" {
		cfg.Optimize.Entry = "main"
	}
	if !meta.IsDefined("optimize", "collect_globals") {
		cfg.Optimize.CollectGlobals = 1
	}
	if cfg.Optimize.CollectGlobals < 0 {
		return Config{}, fmt.Errorf("%s: [optimize].collect_globals must be >= 0", path)
	}
	switch cfg.Optimize.Emit {
	case "":
		cfg.Optimize.Emit = "text"
	case "text", "none":
	default:
		return Config{}, fmt.Errorf("%s: [optimize].emit must be \"text\" or \"none\", got %q", path, cfg.Optimize.Emit)
	}
	return cfg, nil
}
