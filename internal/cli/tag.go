package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mowens/linkvault/internal/store"
)

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Manage tags",
}

var tagAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a tag",
	Args:  cobra.ExactArgs(1),
	RunE:  runTagAdd,
}

var tagLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List tags",
	RunE:  runTagLs,
}

var tagRmCmd = &cobra.Command{
	Use:   "rm <name-or-uuid>",
	Short: "Delete a tag (tagged links are kept)",
	Args:  cobra.ExactArgs(1),
	RunE:  runTagRm,
}

var tagSetCmd = &cobra.Command{
	Use:   "set <link-uuid-or-url> <tag-name>...",
	Short: "Replace a link's tags (missing tags are created)",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTagSet,
}

var tagColor string

func init() {
	rootCmd.AddCommand(tagCmd)
	tagCmd.AddCommand(tagAddCmd)
	tagCmd.AddCommand(tagLsCmd)
	tagCmd.AddCommand(tagRmCmd)
	tagCmd.AddCommand(tagSetCmd)

	tagAddCmd.Flags().StringVar(&tagColor, "color", "", "Hex color like #FF8800 (invalid values fall back to the default blue)")
}

func runTagAdd(cmd *cobra.Command, args []string) error {
	env, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	tag, err := env.store.Tags.Create(store.TagCreateParams{
		Name:     args[0],
		ColorHex: tagColor,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "created tag %s %s (%s)\n", tag.Name, tag.ColorHex, tag.UUID)
	return nil
}

func runTagLs(cmd *cobra.Command, args []string) error {
	env, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	tags, err := env.store.Tags.List()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "UUID\tNAME\tCOLOR\tLINKS")
	for _, tag := range tags {
		count, err := env.store.Tags.LinkCount(tag.UUID)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", tag.UUID, tag.Name, tag.ColorHex, count)
	}
	return w.Flush()
}

func runTagRm(cmd *cobra.Command, args []string) error {
	env, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	tag, err := resolveTag(env.store, args[0])
	if err != nil {
		return err
	}
	if err := env.store.Tags.Delete(tag.UUID); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "deleted tag %s\n", tag.Name)
	return nil
}

func runTagSet(cmd *cobra.Command, args []string) error {
	env, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	link, err := resolveLink(env.store, args[0])
	if err != nil {
		return err
	}

	var tagUUIDs []string
	for _, name := range args[1:] {
		tag, err := resolveOrCreateTag(env.store, name)
		if err != nil {
			return err
		}
		tagUUIDs = append(tagUUIDs, tag.UUID)
	}

	return env.store.Links.Update(link.UUID, store.LinkUpdateParams{
		SetTags:  true,
		TagUUIDs: tagUUIDs,
	})
}
