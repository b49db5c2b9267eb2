package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "linkvault",
	Short: "Save and organize web links from the command line",
	Long: `linkvault is a bookmark manager on a SQLite backend. Save links,
organize them into folders and tags, fetch page metadata, export portable
JSON backups, and merge one store into another.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to database file (overrides LINKVAULT_DB_PATH)")
}
