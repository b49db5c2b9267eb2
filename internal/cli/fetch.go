package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mowens/linkvault/internal/domain"
	"github.com/mowens/linkvault/internal/metadata"
	"github.com/mowens/linkvault/internal/store"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [uuid-or-url]",
	Short: "Fetch page metadata and images for links",
	Long: `Fetch titles, descriptions, favicons, and preview images. With an
argument, fetches for that link only; without, fetches for every link that
has not been fetched yet. Failed attempts are stamped so a later run can
retry them explicitly with --all.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFetch,
}

var fetchAll bool

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().BoolVar(&fetchAll, "all", false, "Refetch links that already have metadata")
}

func runFetch(cmd *cobra.Command, args []string) error {
	env, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	timeout := time.Duration(env.cfg.FetchTimeoutSecs) * time.Second
	fetcher := metadata.NewFetcher(env.assets, env.log, timeout)

	var links []*domain.Link
	if len(args) == 1 {
		link, err := resolveLink(env.store, args[0])
		if err != nil {
			return err
		}
		links = []*domain.Link{link}
	} else {
		opts := store.LinkListOptions{NeedsMetadata: !fetchAll}
		listed, err := env.store.Links.List(opts)
		if err != nil {
			return err
		}
		for i := range listed {
			links = append(links, &listed[i])
		}
	}

	if len(links) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "nothing to fetch")
		return nil
	}

	var failed int
	for _, link := range links {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout+10*time.Second)
		err := fetcher.FetchAndStore(ctx, env.store, link)
		cancel()
		if err != nil {
			failed++
			fmt.Fprintf(cmd.OutOrStdout(), "failed  %s: %v\n", link.URL, err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "fetched %s\n", link.URL)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "done: %d fetched, %d failed\n", len(links)-failed, failed)
	return nil
}
