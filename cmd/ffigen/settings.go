package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ffigen/internal/config"
	"ffigen/internal/driver"
	"ffigen/internal/layout"
	"ffigen/internal/outfmt"
)

// addGenFlags registers the flags shared by gen and watch.
func addGenFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("driver", "d", "", "output driver ("+strings.Join(outfmt.Names(), "|")+"; default from ffigen.toml, else json)")
	f.StringP("output", "o", "", "output file, or directory when several snapshots are given (default: stdout)")
	f.String("source-out", "", "C++ source output of the clib driver (default: output with .cpp)")
	f.StringP("to-namespace", "N", "", "namespace announced before the declarations")
	f.String("target", "", "target triple overriding the snapshot ("+strings.Join(layout.Targets(), "|")+")")
	f.String("producer-version", "", "semver constraint on the snapshot producer")
	f.Bool("fail-on-error", false, "write nothing for a snapshot with errors")
	f.IntP("jobs", "j", 0, "max parallel snapshots (0=auto)")
	f.String("ui", "auto", "progress UI (auto|on|off)")
	f.Bool("cache", false, "cache decoded JSON snapshots on disk")
}

// resolveOptions loads ffigen.toml and applies the flags the user set on
// top of it. Flags the command does not define are left alone.
func resolveOptions(cmd *cobra.Command) (driver.Options, error) {
	root := cmd.Root().PersistentFlags()
	cfgPath, err := root.GetString("config")
	if err != nil {
		return driver.Options{}, err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return driver.Options{}, err
	}
	opts := driver.OptionsFromConfig(cfg)

	if opts.MaxDiagnostics, err = root.GetInt("max-diagnostics"); err != nil {
		return driver.Options{}, err
	}
	if opts.Timings, err = root.GetBool("timings"); err != nil {
		return driver.Options{}, err
	}

	f := cmd.Flags()
	strFlags := []struct {
		name string
		dst  *string
	}{
		{"driver", &opts.Driver},
		{"output", &opts.Output},
		{"source-out", &opts.SourceOutput},
		{"to-namespace", &opts.ToNamespace},
		{"target", &opts.Target},
		{"producer-version", &opts.ProducerVersion},
	}
	for _, sf := range strFlags {
		if !f.Changed(sf.name) {
			continue
		}
		if *sf.dst, err = f.GetString(sf.name); err != nil {
			return driver.Options{}, err
		}
	}
	if f.Changed("fail-on-error") {
		if opts.FailOnError, err = f.GetBool("fail-on-error"); err != nil {
			return driver.Options{}, err
		}
	}
	if f.Changed("jobs") {
		if opts.Jobs, err = f.GetInt("jobs"); err != nil {
			return driver.Options{}, err
		}
	}
	if opts.Driver == "" {
		opts.Driver = "json"
	}

	// Flags bypass the checks LoadFile applies to the file.
	check := cfg
	check.Output.Driver, check.Target.Triple, check.Frontend.ProducerVersion = opts.Driver, opts.Target, opts.ProducerVersion
	check.Run.Jobs = opts.Jobs
	if err := check.Validate(); err != nil {
		return driver.Options{}, fmt.Errorf("invalid flags: %w", err)
	}

	if f.Lookup("cache") == nil {
		return opts, nil
	}
	useCache, err := f.GetBool("cache")
	if err != nil {
		return driver.Options{}, err
	}
	if useCache {
		if opts.Cache, err = driver.OpenDiskCache("ffigen"); err != nil {
			return driver.Options{}, fmt.Errorf("open cache: %w", err)
		}
	}
	return opts, nil
}
