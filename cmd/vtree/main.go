package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "vtree",
		Short: "Structural diffing and patching for HTML trees",
		Long: `vtree computes the minimal patch sequence between two HTML
documents and applies patch frames back onto a document.

Keyed children (elements with a "key" attribute) are reconciled by
key, so reordering a list produces moves instead of rewrites.

Commands:
  diff    Diff two HTML files and print or encode the patches
  apply   Apply an encoded patch frame to an HTML file
  serve   Watch an HTML file and stream patches to browsers
  version Print version information`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		diffCmd(),
		applyCmd(),
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
