package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vtree-dev/vtree/pkg/htmltree"
	"github.com/vtree-dev/vtree/pkg/wire"
)

func diffCmd() *cobra.Command {
	var (
		output string
		seq    uint64
	)

	cmd := &cobra.Command{
		Use:   "diff <old.html> <new.html>",
		Short: "Diff two HTML files",
		Long: `Diff two HTML files and emit the patch sequence that
transforms the first into the second.

With --format=text (the default) each patch prints on one line.
With --format=binary an encoded patch frame is written to the file
given by --out, or to stdout.

Examples:
  vtree diff old.html new.html
  vtree diff old.html new.html --format=binary --out=patch.frame`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			return runDiff(args[0], args[1], format, output, seq)
		},
	}

	cmd.Flags().String("format", "text", "Output format: text or binary")
	cmd.Flags().StringVarP(&output, "out", "o", "", "Output file (default stdout)")
	cmd.Flags().Uint64Var(&seq, "seq", 1, "Sequence number for binary frames")

	return cmd
}

func runDiff(oldPath, newPath, format, output string, seq uint64) error {
	oldTree, err := parseFile(oldPath)
	if err != nil {
		return err
	}
	newTree, err := parseFile(newPath)
	if err != nil {
		return err
	}
	patches := htmltree.Diff(oldTree, newTree)

	switch format {
	case "text":
		out := os.Stdout
		if output != "" {
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		for _, p := range patches {
			fmt.Fprintln(out, p.String())
		}
		fmt.Fprintf(os.Stderr, "%d patches\n", len(patches))
		return nil

	case "binary":
		buf := wire.EncodeFrame(&wire.Frame{Seq: seq, Patches: patches})
		if output == "" {
			_, err := os.Stdout.Write(buf)
			return err
		}
		if err := os.WriteFile(output, buf, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "%d patches, %d bytes -> %s\n", len(patches), len(buf), output)
		return nil

	default:
		return fmt.Errorf("unknown format %q (want text or binary)", format)
	}
}

func parseFile(path string) (*htmltree.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return htmltree.Parse(f)
}
