package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:   "rm <uuid-or-url>",
	Short: "Delete a link",
	Long: `Delete a link by UUID or URL. The link's stored favicon and preview
image are removed with it.`,
	Args: cobra.ExactArgs(1),
	RunE: runRm,
}

func init() {
	rootCmd.AddCommand(rmCmd)
}

func runRm(cmd *cobra.Command, args []string) error {
	env, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	link, err := resolveLink(env.store, args[0])
	if err != nil {
		return err
	}

	if err := env.store.Links.Delete(link.UUID); err != nil {
		return err
	}
	if err := env.assets.DeleteLinkDir(link.UUID); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: failed to delete assets: %v\n", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", link.URL)
	return nil
}
