package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ffigen/internal/snapshot"
)

var packCmd = &cobra.Command{
	Use:   "pack [flags] IN OUT",
	Short: "Convert a snapshot between JSON and the binary .astpack form",
	Long: `Read a snapshot, check that it decodes, and write it in the encoding chosen by
the output extension (.json or .astpack) or by --to.`,
	Args: cobra.ExactArgs(2),
	RunE: runPack,
}

func init() {
	packCmd.Flags().String("to", "auto", "output encoding (auto|json|msgpack)")
	packCmd.Flags().Bool("no-check", false, "skip decoding the snapshot before writing it")
}

func runPack(cmd *cobra.Command, args []string) error {
	in, out := args[0], args[1]
	to, err := cmd.Flags().GetString("to")
	if err != nil {
		return err
	}
	noCheck, err := cmd.Flags().GetBool("no-check")
	if err != nil {
		return err
	}
	enc, err := packEncoding(to, out)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(in)
	if err != nil {
		return err
	}
	snap, err := snapshot.Unmarshal(data, snapshot.DetectEncoding(in, data))
	if err != nil {
		return fmt.Errorf("%s: %w", in, err)
	}
	if !noCheck {
		if _, err := snapshot.Decode(snap, snapshot.Options{}); err != nil {
			return fmt.Errorf("%s: %w", in, err)
		}
	}
	packed, err := snapshot.Marshal(snap, enc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, packed, 0o644); err != nil {
		return err
	}
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	if !quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "packed %s -> %s (%s, %d bytes)\n", in, out, enc, len(packed))
	}
	return nil
}

func packEncoding(to, out string) (snapshot.Encoding, error) {
	switch to {
	case "json":
		return snapshot.EncodingJSON, nil
	case "msgpack":
		return snapshot.EncodingMsgpack, nil
	case "auto", "":
		// Sniffing needs data; an unknown extension means the binary form.
		return snapshot.DetectEncoding(out, nil), nil
	default:
		return snapshot.EncodingAuto, fmt.Errorf("invalid --to value %q (expected auto|json|msgpack)", to)
	}
}
