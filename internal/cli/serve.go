package cli

import (
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the quick-save HTTP server",
	Long: `Run the HTTP server that accepts quick-save requests from other
applications. Metadata and images for saved links are fetched in the
background.`,
	RunE: runServe,
}

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	dbPath := ""
	if flag := cmd.Flag("db"); flag != nil {
		dbPath = flag.Value.String()
	}
	return ServeDaemon(DaemonOptions{Addr: serveAddr, DBPath: dbPath})
}
