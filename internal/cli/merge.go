package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mowens/linkvault/internal/db"
	"github.com/mowens/linkvault/internal/merge"
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge another link store into this one",
	Long: `Merge a source database into the current database, as happens when
switching sync modes. Folders and tags are matched by name, links by URL;
the current database wins on conflict. The merge is all-or-nothing: on any
failure the current database is left untouched.`,
	RunE: runMerge,
}

var (
	mergeSourceDB   string
	mergeReportPath string
)

func init() {
	rootCmd.AddCommand(mergeCmd)

	mergeCmd.Flags().StringVar(&mergeSourceDB, "source", "", "Source database path (required)")
	mergeCmd.Flags().StringVar(&mergeReportPath, "report", "", "Write JSON report to path")
	mergeCmd.MarkFlagRequired("source")
}

func runMerge(cmd *cobra.Command, args []string) error {
	env, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	source, err := db.Open(mergeSourceDB)
	if err != nil {
		return fmt.Errorf("failed to open source database: %w", err)
	}
	defer source.Close()

	if err := source.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate source database: %w", err)
	}

	report, err := merge.Merge(source, env.database)
	if err != nil {
		return err
	}

	if mergeReportPath != "" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(mergeReportPath, append(data, '\n'), 0644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(),
		"merged: %d folders created (%d matched), %d tags created (%d matched), %d links created (%d skipped)\n",
		report.FoldersCreated, report.FoldersMatched,
		report.TagsCreated, report.TagsMatched,
		report.LinksCreated, report.LinksSkipped,
	)
	return nil
}
