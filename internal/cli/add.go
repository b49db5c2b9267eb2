package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mowens/linkvault/internal/metadata"
	"github.com/mowens/linkvault/internal/norm"
	"github.com/mowens/linkvault/internal/store"
)

var addCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Save a link",
	Long: `Save a web link. The URL is normalized (https:// is assumed when no
scheme is given) and rejected if it duplicates an existing link.`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

var (
	addTitle    string
	addNotes    string
	addFolder   string
	addTags     []string
	addFavorite bool
	addPin      bool
	addFetch    bool
)

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().StringVar(&addTitle, "title", "", "Title for the link")
	addCmd.Flags().StringVar(&addNotes, "notes", "", "Notes for the link")
	addCmd.Flags().StringVar(&addFolder, "folder", "", "Folder name (created if missing)")
	addCmd.Flags().StringArrayVar(&addTags, "tag", nil, "Tag name (repeatable, created if missing)")
	addCmd.Flags().BoolVar(&addFavorite, "favorite", false, "Mark as favorite")
	addCmd.Flags().BoolVar(&addPin, "pin", false, "Pin the link")
	addCmd.Flags().BoolVar(&addFetch, "fetch", false, "Fetch page metadata immediately")
}

func runAdd(cmd *cobra.Command, args []string) error {
	env, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	canonical, ok := norm.URL(args[0])
	if !ok {
		return fmt.Errorf("not a valid web URL: %s", args[0])
	}

	params := store.LinkCreateParams{
		URL:        canonical,
		IsFavorite: addFavorite,
		IsPinned:   addPin,
	}
	if addTitle != "" {
		params.Title = &addTitle
	}
	if addNotes != "" {
		params.Notes = &addNotes
	}

	if addFolder != "" {
		folder, err := env.store.Folders.GetByName(addFolder)
		if err != nil {
			folder, err = env.store.Folders.Create(store.FolderCreateParams{Name: addFolder})
			if err != nil {
				return err
			}
		}
		params.FolderUUID = &folder.UUID
	}

	for _, tagName := range addTags {
		tag, err := resolveOrCreateTag(env.store, tagName)
		if err != nil {
			return err
		}
		params.TagUUIDs = append(params.TagUUIDs, tag.UUID)
	}

	link, err := env.store.Links.Create(params)
	if err != nil {
		return err
	}

	if addFetch {
		fetcher := metadata.NewFetcher(env.assets, env.log, time.Duration(env.cfg.FetchTimeoutSecs)*time.Second)
		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()
		if err := fetcher.FetchAndStore(ctx, env.store, link); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: metadata fetch failed: %v\n", err)
		} else {
			link, _ = env.store.Links.GetByUUID(link.UUID)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "saved %s (%s)\n", link.DisplayTitle(), link.UUID)
	return nil
}
