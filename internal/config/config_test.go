package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), `
[mangle]
root_prefix = "lib_"
c_separator = "__"

[output]
driver = "clib"
to_namespace = "libfoo"

[frontend]
producer_version = ">=1.0.0, <3.0.0"

[target]
triple = "aarch64-linux-gnu"

[run]
fail_on_error = true
jobs = 4
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Path != path {
		t.Fatalf("path = %q", cfg.Path)
	}
	if cfg.Mangle.RootPrefix != "lib_" || cfg.Mangle.CSeparator != "__" {
		t.Fatalf("mangle overrides lost: %+v", cfg.Mangle)
	}
	// Keys absent from the file keep their defaults.
	if cfg.Mangle.Ctor != "_new" || cfg.Mangle.CppSeparator != "::" {
		t.Fatalf("mangle defaults lost: %+v", cfg.Mangle)
	}
	if cfg.Output.Driver != "clib" || cfg.Output.ToNamespace != "libfoo" {
		t.Fatalf("output = %+v", cfg.Output)
	}
	if cfg.Target.Triple != "aarch64-linux-gnu" || !cfg.Run.FailOnError || cfg.Run.Jobs != 4 {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestLoadFileRejectsBadValues(t *testing.T) {
	cases := []struct {
		name, body, want string
	}{
		{"driver", "[output]\ndriver = \"yaml\"\n", "[output].driver"},
		{"target", "[target]\ntriple = \"pdp11-unix\"\n", "[target].triple"},
		{"constraint", "[frontend]\nproducer_version = \"not a range\"\n", "[frontend].producer_version"},
		{"jobs", "[run]\njobs = -1\n", "[run].jobs"},
		{"unknown key", "[output]\nformat = \"json\"\n", "unknown keys: output.format"},
		{"syntax", "[output\n", "failed to parse TOML"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), tc.body)
			_, err := LoadFile(path)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "[output]\ndriver = \"sexp\"\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	found, ok, err := Find(nested)
	if err != nil || !ok {
		t.Fatalf("find: ok=%v err=%v", ok, err)
	}
	want, _ := filepath.Abs(path)
	if found != want {
		t.Fatalf("found %q, want %q", found, want)
	}
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Path != "" || cfg.Output.Driver != "json" || cfg.Mangle.RootPrefix != "upp_" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}
