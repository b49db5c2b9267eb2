package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mowens/linkvault/internal/store"
)

var folderCmd = &cobra.Command{
	Use:   "folder",
	Short: "Manage folders",
}

var folderAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a folder",
	Args:  cobra.ExactArgs(1),
	RunE:  runFolderAdd,
}

var folderLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List folders",
	RunE:  runFolderLs,
}

var folderRmCmd = &cobra.Command{
	Use:   "rm <name-or-uuid>",
	Short: "Delete a folder (member links are kept, unfiled)",
	Args:  cobra.ExactArgs(1),
	RunE:  runFolderRm,
}

var folderMvCmd = &cobra.Command{
	Use:   "mv <link-uuid-or-url> <folder-name>",
	Short: "Move a link into a folder (\"-\" removes it from its folder)",
	Args:  cobra.ExactArgs(2),
	RunE:  runFolderMv,
}

var folderReorderCmd = &cobra.Command{
	Use:   "reorder <name-or-uuid>...",
	Short: "Set folder sort order to the given sequence",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFolderReorder,
}

var folderIcon string

func init() {
	rootCmd.AddCommand(folderCmd)
	folderCmd.AddCommand(folderAddCmd)
	folderCmd.AddCommand(folderLsCmd)
	folderCmd.AddCommand(folderRmCmd)
	folderCmd.AddCommand(folderMvCmd)
	folderCmd.AddCommand(folderReorderCmd)

	folderAddCmd.Flags().StringVar(&folderIcon, "icon", "folder", "Icon name")
}

func runFolderAdd(cmd *cobra.Command, args []string) error {
	env, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	folder, err := env.store.Folders.Create(store.FolderCreateParams{
		Name:     args[0],
		IconName: folderIcon,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "created folder %s (%s)\n", folder.Name, folder.UUID)
	return nil
}

func runFolderLs(cmd *cobra.Command, args []string) error {
	env, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	folders, err := env.store.Folders.List()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "UUID\tNAME\tICON\tLINKS")
	for _, folder := range folders {
		links, err := env.store.Links.List(store.LinkListOptions{FolderUUID: folder.UUID})
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", folder.UUID, folder.Name, folder.IconName, len(links))
	}
	return w.Flush()
}

func runFolderRm(cmd *cobra.Command, args []string) error {
	env, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	folder, err := resolveFolder(env.store, args[0])
	if err != nil {
		return err
	}
	if err := env.store.Folders.Delete(folder.UUID); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "deleted folder %s\n", folder.Name)
	return nil
}

func runFolderMv(cmd *cobra.Command, args []string) error {
	env, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	link, err := resolveLink(env.store, args[0])
	if err != nil {
		return err
	}

	params := store.LinkUpdateParams{SetFolder: true}
	if args[1] != "-" {
		folder, err := resolveFolder(env.store, args[1])
		if err != nil {
			return err
		}
		params.FolderUUID = &folder.UUID
	}

	return env.store.Links.Update(link.UUID, params)
}

func runFolderReorder(cmd *cobra.Command, args []string) error {
	env, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	var ordered []string
	for _, arg := range args {
		folder, err := resolveFolder(env.store, arg)
		if err != nil {
			return err
		}
		ordered = append(ordered, folder.UUID)
	}

	return env.store.Folders.Reorder(ordered)
}
