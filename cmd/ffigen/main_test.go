package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"

	"ffigen/internal/diag"
	"ffigen/internal/diagfmt"
	"ffigen/internal/driver"
	"ffigen/internal/irgen"
	"ffigen/internal/layout"
	"ffigen/internal/mangle"
	"ffigen/internal/native"
	"ffigen/internal/snapshot"
	"ffigen/internal/source"
)

var setupRoot sync.Once

func resetFlags(fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
}

// executeCLI runs the root command with every flag back at its default.
func executeCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	setupRoot.Do(func() {
		registerGlobalFlags(rootCmd)
		rootCmd.AddCommand(genCmd, packCmd, identCmd, watchCmd, versionCmd)
	})
	resetFlags(rootCmd.PersistentFlags())
	for _, sub := range rootCmd.Commands() {
		resetFlags(sub.Flags())
	}
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func writeSnapshot(t *testing.T, tu *native.TranslationUnit) string {
	t.Helper()
	data, err := snapshot.Marshal(snapshot.Encode(tu), snapshot.EncodingJSON)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := filepath.Join(t.TempDir(), "api.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

// apiUnit declares "namespace geo { struct Point { double norm() const; }; }",
// "int puts(const char *)" and a function in an anonymous namespace.
func apiUnit() *native.TranslationUnit {
	tu := native.NewTranslationUnit(native.LangCXX11, "x86_64-linux-gnu")
	tu.MainFile = "api.hpp"
	file := tu.Files.Add("api.hpp", 0)
	at := func(line uint32) source.Pos { return source.Pos{File: file, Line: line, Col: 1} }

	geo := &native.NamespaceDecl{DeclBase: native.DeclBase{Ident: "geo", Loc: at(1)}}
	point := &native.RecordDecl{
		DeclBase:     native.DeclBase{Ident: "Point", Context: geo, Loc: at(2)},
		Tag:          native.TagStruct,
		CXX:          true,
		IsDefinition: true,
	}
	norm := &native.MethodDecl{
		FunctionDecl: native.FunctionDecl{
			DeclBase: native.DeclBase{Ident: "norm", Context: point, Loc: at(3), Visibility: native.AccessPublic},
			Result:   &native.BuiltinType{Kind: native.BuiltinDouble},
		},
		Const: true,
	}
	point.Methods = []*native.MethodDecl{norm}
	point.Decls = []native.Decl{norm}
	geo.Decls = []native.Decl{point}

	s := &native.ParamDecl{DeclBase: native.DeclBase{Ident: "s"}, Type: &native.PointerType{Pointee: &native.BuiltinType{Kind: native.BuiltinCharS}}}
	puts := &native.FunctionDecl{
		DeclBase: native.DeclBase{Ident: "puts", Loc: at(5)},
		Result:   &native.BuiltinType{Kind: native.BuiltinInt},
		Params:   []*native.ParamDecl{s},
	}
	s.Context = puts

	anon := &native.NamespaceDecl{DeclBase: native.DeclBase{Loc: at(6)}}
	hidden := &native.FunctionDecl{
		DeclBase: native.DeclBase{Ident: "hidden", Context: anon, Loc: at(7)},
		Result:   &native.BuiltinType{Kind: native.BuiltinVoid},
	}
	anon.Decls = []native.Decl{hidden}

	tu.Decls = []native.Decl{geo, puts, anon}
	return tu
}

func TestGenCommand(t *testing.T) {
	path := writeSnapshot(t, apiUnit())
	out, errOut, err := executeCLI(t, "gen", "--color", "off", "--ui", "off", "-d", "sexp", path)
	if err != nil {
		t.Fatalf("gen: %v\n%s", err, errOut)
	}
	if !strings.Contains(out, `(function "puts" (("s" (:pointer :char))) :int)`) {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestPackThenGen(t *testing.T) {
	in := writeSnapshot(t, apiUnit())
	packed := filepath.Join(t.TempDir(), "api.astpack")
	if _, errOut, err := executeCLI(t, "pack", "--color", "off", in, packed); err != nil {
		t.Fatalf("pack: %v\n%s", err, errOut)
	}
	fromJSON, _, err := executeCLI(t, "gen", "--color", "off", "--ui", "off", "-d", "json", in)
	if err != nil {
		t.Fatalf("gen json: %v", err)
	}
	fromPack, _, err := executeCLI(t, "gen", "--color", "off", "--ui", "off", "-d", "json", packed)
	if err != nil {
		t.Fatalf("gen astpack: %v", err)
	}
	if fromJSON != fromPack {
		t.Fatalf("packed snapshot generates different output")
	}
}

func TestIdentCommand(t *testing.T) {
	path := writeSnapshot(t, apiUnit())
	out, errOut, err := executeCLI(t, "ident", "--color", "off", path)
	if err != nil {
		t.Fatalf("ident: %v\n%s", err, errOut)
	}
	for _, want := range []string{"geo::Point -> upp_geo_Point", "geo::Point::norm -> upp_geo_Point_norm", "puts -> upp_puts"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
	if !strings.Contains(errOut, "hidden") {
		t.Fatalf("the anonymous-namespace function should be reported:\n%s", errOut)
	}
}

func TestIdentJSONDiagnostics(t *testing.T) {
	tu := apiUnit()
	tu.Target = "pdp11-unknown-none"
	path := writeSnapshot(t, tu)
	_, errOut, err := executeCLI(t, "ident", "--color", "off", "--diag-format", "json", path)
	if err == nil {
		t.Fatalf("expected an unknown target to fail the snapshot")
	}
	start := strings.Index(errOut, "{")
	if start < 0 {
		t.Fatalf("no JSON in stderr:\n%s", errOut)
	}
	var decoded map[string]diagfmt.DiagnosticsOutput
	if err := json.NewDecoder(strings.NewReader(errOut[start:])).Decode(&decoded); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, errOut)
	}
	out, ok := decoded[path]
	if !ok || out.Count == 0 {
		t.Fatalf("missing diagnostics for %s: %+v", path, decoded)
	}
	if out.Diagnostics[0].Code != diag.TargetUnknown.ID() {
		t.Fatalf("unexpected diagnostics %+v", out.Diagnostics)
	}
}

func TestVersionJSON(t *testing.T) {
	out, _, err := executeCLI(t, "version", "--color", "off", "--format", "json")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	var payload versionPayload
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("not JSON: %v\n%s", err, out)
	}
	if payload.Tool != "ffigen" || payload.Schema != snapshot.SchemaVersion || len(payload.Drivers) != 3 {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestIdentLines(t *testing.T) {
	tu := apiUnit()
	h := irgen.New(tu, layout.New(layout.X86_64LinuxGNU()), diag.NopReporter{})
	unit, err := h.Run(context.Background())
	if err != nil {
		t.Fatalf("harvest: %v", err)
	}
	lines := identLines(unit, mangle.New(mangle.DefaultConfig()))
	var ok, failed []string
	for _, l := range lines {
		if l.Err != nil {
			if !errors.Is(l.Err, mangle.ErrAnonymousNamespace) {
				t.Fatalf("unexpected error %v", l.Err)
			}
			failed = append(failed, l.Cpp)
			continue
		}
		ok = append(ok, l.C)
	}
	if strings.Join(ok, ",") != "upp_geo_Point,upp_geo_Point_norm,upp_puts" {
		t.Fatalf("identifiers = %v", ok)
	}
	if len(failed) != 1 {
		t.Fatalf("expected one failure, got %v", failed)
	}
}

func TestPrintDiagnostics(t *testing.T) {
	defer func(v bool) { color.NoColor = v }(color.NoColor)
	color.NoColor = true

	fs := source.NewFileSet()
	file := fs.Add("api.hpp", 0)
	bag := diag.NewBag(10)
	bag.Add(diag.New(diag.SevWarning, diag.TypeUnsupported, source.Pos{File: file, Line: 4, Col: 2}, "vector type reduced"))
	bag.Add(diag.NewError(diag.FrontendError, source.Pos{File: file, Line: 2, Col: 1}, "unknown type name"))
	bag.Add(diag.New(diag.SevInfo, diag.ObsTimings, source.Pos{}, "timings"))
	res := &driver.Result{Path: "api.json", Files: fs, Bag: bag}

	var buf bytes.Buffer
	printDiagnostics(&buf, res, false)
	want := "api.hpp:2:1: error [FE4001] unknown type name\n" +
		"api.hpp:4:2: warning [TYP2001] vector type reduced\n"
	if buf.String() != want {
		t.Fatalf("got:\n%s\nwant:\n%s", buf.String(), want)
	}

	buf.Reset()
	printDiagnostics(&buf, res, true)
	if strings.Contains(buf.String(), "warning") {
		t.Fatalf("quiet output kept a warning:\n%s", buf.String())
	}
}

func TestReadUIMode(t *testing.T) {
	for in, want := range map[string]uiMode{"": uiAuto, "AUTO": uiAuto, "on": uiOn, " off ": uiOff} {
		got, err := readUIMode(in)
		if err != nil || got != want {
			t.Fatalf("readUIMode(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := readUIMode("sometimes"); err == nil {
		t.Fatalf("expected an error")
	}
	cases := []struct {
		mode      uiMode
		snapshots int
		toFiles   bool
		tty       bool
		want      bool
	}{
		{uiAuto, 3, true, true, true},
		{uiAuto, 3, false, true, false},
		{uiAuto, 1, true, true, false},
		{uiAuto, 3, true, false, false},
		{uiOn, 1, false, false, true},
		{uiOff, 3, true, true, false},
	}
	for _, tc := range cases {
		if got := tc.mode.draws(tc.snapshots, tc.toFiles, tc.tty); got != tc.want {
			t.Errorf("%+v: draws = %v", tc, got)
		}
	}
}

func TestWatchLoopDebounces(t *testing.T) {
	dir := t.TempDir()
	a, b := filepath.Join(dir, "a.json"), filepath.Join(dir, "b.json")
	events := make(chan fsnotify.Event)
	errs := make(chan error)
	calls := make(chan []string, 4)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- watchLoop(ctx, events, errs, []string{a, b}, func(changed []string) { calls <- changed })
	}()

	events <- fsnotify.Event{Name: b, Op: fsnotify.Write}
	events <- fsnotify.Event{Name: filepath.Join(dir, "other.json"), Op: fsnotify.Write}
	events <- fsnotify.Event{Name: b, Op: fsnotify.Chmod}
	events <- fsnotify.Event{Name: b, Op: fsnotify.Create}

	select {
	case changed := <-calls:
		if len(changed) != 1 || changed[0] != b {
			t.Fatalf("changed = %v", changed)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("regenerate was not called")
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("watch loop: %v", err)
	}
}
