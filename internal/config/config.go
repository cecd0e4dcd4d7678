// Package config loads ffigen.toml, the per-project settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"

	"ffigen/internal/layout"
	"ffigen/internal/mangle"
	"ffigen/internal/outfmt"
	"ffigen/internal/snapshot"
)

// FileName is the name searched for by Find.
const FileName = "ffigen.toml"

// Config is the decoded ffigen.toml. Zero values mean "use the default".
type Config struct {
	// Path is the file the configuration was read from; empty for defaults.
	Path string `toml:"-"`

	Mangle   mangle.Config  `toml:"mangle"`
	Output   OutputConfig   `toml:"output"`
	Frontend FrontendConfig `toml:"frontend"`
	Target   TargetConfig   `toml:"target"`
	Run      RunConfig      `toml:"run"`
}

type OutputConfig struct {
	Driver      string `toml:"driver"`
	ToNamespace string `toml:"to_namespace"`
}

type FrontendConfig struct {
	// ProducerVersion is a semver constraint on the snapshot producer.
	ProducerVersion string `toml:"producer_version"`
}

type TargetConfig struct {
	// Triple overrides the target recorded in the snapshot.
	Triple string `toml:"triple"`
}

type RunConfig struct {
	FailOnError bool `toml:"fail_on_error"`
	Jobs        int  `toml:"jobs"`
}

// Default returns the configuration used when no file is found.
func Default() Config {
	return Config{
		Mangle:   mangle.DefaultConfig(),
		Output:   OutputConfig{Driver: "json"},
		Frontend: FrontendConfig{ProducerVersion: snapshot.DefaultProducerConstraint},
	}
}

// Find walks from startDir up to the filesystem root looking for
// ffigen.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
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

// Load reads path, or the file Find discovers from the working directory
// when path is empty. Without a file it returns Default.
func Load(path string) (Config, error) {
	if path == "" {
		found, ok, err := Find(".")
		if err != nil {
			return Config{}, err
		}
		if !ok {
			return Default(), nil
		}
		path = found
	}
	return LoadFile(path)
}

// LoadFile decodes and validates the file at path.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.Path = path
	cfg.Mangle = cfg.Mangle.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that can be checked without a snapshot.
func (c Config) Validate() error {
	if c.Output.Driver != "" {
		known := false
		for _, n := range outfmt.Names() {
			if n == c.Output.Driver {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("[output].driver: unknown driver %q (have %s)", c.Output.Driver, strings.Join(outfmt.Names(), ", "))
		}
	}
	if c.Target.Triple != "" {
		if _, ok := layout.LookupTarget(c.Target.Triple); !ok {
			return fmt.Errorf("[target].triple: unknown target %q (have %s)", c.Target.Triple, strings.Join(layout.Targets(), ", "))
		}
	}
	if c.Frontend.ProducerVersion != "" {
		if _, err := semver.NewConstraint(c.Frontend.ProducerVersion); err != nil {
			return fmt.Errorf("[frontend].producer_version: %w", err)
		}
	}
	if c.Run.Jobs < 0 {
		return fmt.Errorf("[run].jobs must not be negative")
	}
	return nil
}
