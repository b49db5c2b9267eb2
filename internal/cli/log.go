package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mowens/linkvault/internal/domain"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show recent store events",
	RunE:  runLog,
}

var (
	logLimit int
	logJSON  bool
)

func init() {
	rootCmd.AddCommand(logCmd)

	logCmd.Flags().IntVarP(&logLimit, "limit", "n", 50, "Maximum events to show")
	logCmd.Flags().BoolVar(&logJSON, "json", false, "Output as JSON")
}

func runLog(cmd *cobra.Command, args []string) error {
	env, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	events, err := env.store.Events().List(logLimit)
	if err != nil {
		return err
	}

	if logJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(events)
	}

	if len(events) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no events")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tRESOURCE\tEVENT\tUUID")
	for _, ev := range events {
		uuid := ""
		if ev.ResourceUUID != nil {
			uuid = *ev.ResourceUUID
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			ev.Timestamp.Format(domain.TimeLayout), ev.ResourceType, ev.EventType, uuid)
	}
	return w.Flush()
}
