package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/wixport/internal/cli"
	"github.com/example/wixport/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "wixport",
		Short:   "wixport - migrate Wix blog content into a local content store",
		Version: version.String(),
		Long: `wixport extracts categories, tags, and posts from the Wix content API,
converts rich content to HTML, imports referenced media, and writes
everything into a local sqlite store. Runs are resumable: already
migrated items are updated in place instead of duplicated.`,
	}

	// Add subcommands
	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.AuthCmd())
	rootCmd.AddCommand(cli.MigrateCmd())
	rootCmd.AddCommand(cli.RetryCmd())
	rootCmd.AddCommand(cli.FailuresCmd())
	rootCmd.AddCommand(cli.StatusCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
