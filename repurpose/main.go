// Command repurpose rewrites texts for a new purpose and highlights what changed.
package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
	"repurpose.znkr.io/repurpose/purpose"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	rootCmd := &cobra.Command{
		Use:          "repurpose [command]",
		Short:        "Rewrite texts for a new purpose and highlight the changes",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(diffCmd())
	rootCmd.AddCommand(rewriteCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadCatalog loads the catalog in file, or the built-in catalog if file is empty.
func loadCatalog(file string) (*purpose.Catalog, error) {
	if file == "" {
		return purpose.Default(), nil
	}
	return purpose.Load(file)
}
