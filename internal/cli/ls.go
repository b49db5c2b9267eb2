package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mowens/linkvault/internal/domain"
	"github.com/mowens/linkvault/internal/store"
)

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List saved links",
	RunE:  runLs,
}

var (
	lsFolder    string
	lsTag       string
	lsFavorites bool
	lsPinned    bool
	lsJSON      bool
)

func init() {
	rootCmd.AddCommand(lsCmd)

	lsCmd.Flags().StringVar(&lsFolder, "folder", "", "Only links in this folder (name or UUID)")
	lsCmd.Flags().StringVar(&lsTag, "tag", "", "Only links with this tag (name or UUID)")
	lsCmd.Flags().BoolVar(&lsFavorites, "favorites", false, "Only favorite links")
	lsCmd.Flags().BoolVar(&lsPinned, "pinned", false, "Only pinned links")
	lsCmd.Flags().BoolVar(&lsJSON, "json", false, "Output as JSON")
}

func runLs(cmd *cobra.Command, args []string) error {
	env, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	opts := store.LinkListOptions{
		FavoritesOnly: lsFavorites,
		PinnedOnly:    lsPinned,
	}

	if lsFolder != "" {
		folder, err := resolveFolder(env.store, lsFolder)
		if err != nil {
			return err
		}
		opts.FolderUUID = folder.UUID
	}
	if lsTag != "" {
		tag, err := resolveTag(env.store, lsTag)
		if err != nil {
			return err
		}
		opts.TagUUID = tag.UUID
	}

	links, err := env.store.Links.List(opts)
	if err != nil {
		return err
	}

	if lsJSON {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(links)
	}

	tags, err := env.store.Tags.List()
	if err != nil {
		return err
	}
	tagNameByUUID := make(map[string]string, len(tags))
	for _, t := range tags {
		tagNameByUUID[t.UUID] = t.Name
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "UUID\tTITLE\tURL\tTAGS\tFLAGS")
	for i := range links {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			links[i].UUID,
			truncate(links[i].DisplayTitle(), 40),
			truncate(links[i].URL, 50),
			tagList(&links[i], tagNameByUUID),
			flags(&links[i]),
		)
	}
	return w.Flush()
}

func tagList(link *domain.Link, names map[string]string) string {
	var parts []string
	for _, tagUUID := range link.TagUUIDs {
		if name, ok := names[tagUUID]; ok {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, ",")
}

func flags(link *domain.Link) string {
	var out string
	if link.IsPinned {
		out += "P"
	}
	if link.IsFavorite {
		out += "F"
	}
	return out
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
