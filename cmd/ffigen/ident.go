package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"ffigen/internal/driver"
	"ffigen/internal/ir"
	"ffigen/internal/mangle"
	"ffigen/internal/native"
)

var identCmd = &cobra.Command{
	Use:   "ident [flags] SNAPSHOT...",
	Short: "Print the flat C identifier of every emitted declaration",
	Long: `Harvest each snapshot and print "qualified -> flat" for every named
declaration, using the [mangle] settings of ffigen.toml. Declarations that
cannot be given a flat name are listed on stderr.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIdent,
}

func init() {
	identCmd.Flags().String("target", "", "target triple overriding the snapshot")
}

type identLine struct {
	Cpp string
	C   string
	Err error
}

// identLines mangles every named declaration of unit once, in tree order.
func identLines(unit *ir.Unit, m *mangle.Mangler) []identLine {
	var lines []identLine
	seen := make(map[native.Decl]bool)
	for _, top := range unit.Decls {
		ir.Walk(top, func(n ir.Node) bool {
			d, ok := n.(ir.Decl)
			if !ok {
				return true
			}
			b := d.Base()
			if b.Orig == nil || b.Name == "" || seen[b.Orig] {
				return true
			}
			seen[b.Orig] = true
			if _, isNS := d.(*ir.CXXNamespaceDecl); isNS {
				return true
			}
			id, err := m.Identifier(b.Orig)
			if err != nil {
				lines = append(lines, identLine{Cpp: native.QualifiedName(b.Orig), Err: err})
				return true
			}
			lines = append(lines, identLine{Cpp: id.Cpp, C: id.C})
			return true
		})
	}
	return lines
}

func printIdentLines(out, errOut io.Writer, lines []identLine) {
	for _, l := range lines {
		if l.Err != nil {
			fmt.Fprintf(errOut, "%s: %s\n", l.Cpp, l.Err)
			continue
		}
		fmt.Fprintf(out, "%s -> %s\n", l.Cpp, l.C)
	}
}

func runIdent(cmd *cobra.Command, args []string) error {
	opts, err := resolveIdentOptions(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	sink, err := newDiagSink(cmd)
	if err != nil {
		return err
	}
	failed := 0
	for _, path := range args {
		res := driver.Harvest(ctx, path, opts)
		sink.add(res)
		if res.Unit == nil {
			failed++
			continue
		}
		// One mangler per snapshot; identities do not carry over.
		m := mangle.New(opts.Mangle)
		printIdentLines(cmd.OutOrStdout(), cmd.ErrOrStderr(), identLines(res.Unit, m))
		if res.Err != nil {
			failed++
		}
	}
	if err := sink.flush(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d snapshots failed", failed, len(args))
	}
	return nil
}

func resolveIdentOptions(cmd *cobra.Command) (driver.Options, error) {
	opts, err := resolveOptions(cmd)
	if err != nil {
		return driver.Options{}, err
	}
	opts.Output = ""
	return opts, nil
}
