package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vtree-dev/vtree/pkg/htmltree"
	"github.com/vtree-dev/vtree/pkg/wire"
)

func applyCmd() *cobra.Command {
	var (
		output string
		verify string
	)

	cmd := &cobra.Command{
		Use:   "apply <doc.html> <patch.frame>",
		Short: "Apply an encoded patch frame to an HTML file",
		Long: `Apply a binary patch frame (produced by "vtree diff
--format=binary") to an HTML document and print the result.

With --verify the result is also compared against the given HTML
file; a mismatch exits non-zero.

Examples:
  vtree apply old.html patch.frame
  vtree apply old.html patch.frame --verify new.html -o out.html`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(args[0], args[1], output, verify)
		},
	}

	cmd.Flags().StringVarP(&output, "out", "o", "", "Output file (default stdout)")
	cmd.Flags().StringVar(&verify, "verify", "", "HTML file the result must equal")

	return cmd
}

func runApply(docPath, framePath, output, verify string) error {
	tree, err := parseFile(docPath)
	if err != nil {
		return err
	}
	buf, err := os.ReadFile(framePath)
	if err != nil {
		return err
	}
	frame, err := wire.DecodeFrame(buf)
	if err != nil {
		return err
	}
	result, err := htmltree.Apply(tree, frame.Patches)
	if err != nil {
		return err
	}

	if verify != "" {
		want, err := parseFile(verify)
		if err != nil {
			return err
		}
		if !result.Equals(want) {
			return fmt.Errorf("applied document does not match %s", verify)
		}
		fmt.Fprintf(os.Stderr, "verified against %s\n", verify)
	}

	out := os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	if err := htmltree.Render(out, result); err != nil {
		return err
	}
	fmt.Fprintln(out)
	return nil
}
