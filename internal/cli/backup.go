package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mowens/linkvault/internal/backup"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export, import, and diff backup files",
}

var backupExportCmd = &cobra.Command{
	Use:   "export <path>",
	Short: "Write the full store to a backup file",
	Args:  cobra.ExactArgs(1),
	RunE:  runBackupExport,
}

var backupImportCmd = &cobra.Command{
	Use:   "import <path>",
	Short: "Restore records from a backup file",
	Long: `Import a backup file into the current store. Records already present
(matched by name for folders and tags, by URL for links) are skipped; the
import never overwrites or deletes existing data.`,
	Args: cobra.ExactArgs(1),
	RunE: runBackupImport,
}

var backupDiffCmd = &cobra.Command{
	Use:   "diff <a> <b>",
	Short: "Show a unified diff between two backup files",
	Args:  cobra.ExactArgs(2),
	RunE:  runBackupDiff,
}

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.AddCommand(backupExportCmd)
	backupCmd.AddCommand(backupImportCmd)
	backupCmd.AddCommand(backupDiffCmd)
}

func runBackupExport(cmd *cobra.Command, args []string) error {
	env, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	doc, err := backup.Export(env.database, args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "exported %d folders, %d tags, %d links to %s\n",
		len(doc.Folders), len(doc.Tags), len(doc.Links), args[0])
	return nil
}

func runBackupImport(cmd *cobra.Command, args []string) error {
	env, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	report, err := backup.ImportFile(env.database, args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(),
		"imported: %d folders (%d skipped), %d tags (%d skipped), %d links (%d skipped)\n",
		report.FoldersCreated, report.FoldersSkipped,
		report.TagsCreated, report.TagsSkipped,
		report.LinksCreated, report.LinksSkipped,
	)
	return nil
}

func runBackupDiff(cmd *cobra.Command, args []string) error {
	diff, err := backup.DiffFiles(args[0], args[1])
	if err != nil {
		return err
	}
	if diff == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "backups are identical")
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), diff)
	return nil
}
