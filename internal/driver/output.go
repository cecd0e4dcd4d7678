package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var driverExt = map[string]string{
	"json": ".json",
	"sexp": ".lisp",
	"clib": ".h",
}

// outputPaths resolves where the output of input goes. With several inputs
// Output names a directory and each input gets a file named after it.
// Empty paths mean standard output.
func outputPaths(input string, opts Options, batch bool) (out, src string) {
	if opts.Output == "" {
		return "", ""
	}
	ext := driverExt[opts.Driver]
	if batch {
		stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
		out = filepath.Join(opts.Output, stem+ext)
		if opts.Driver == "clib" {
			src = filepath.Join(opts.Output, stem+".cpp")
		}
		return out, src
	}
	out = opts.Output
	if opts.Driver == "clib" {
		src = opts.SourceOutput
		if src == "" {
			src = strings.TrimSuffix(out, filepath.Ext(out)) + ".cpp"
		}
	}
	return out, src
}

// writeFileAtomic writes data to path through a temporary file in the same
// directory.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".ffigen-*")
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return err
	}
	return os.Rename(f.Name(), path)
}
