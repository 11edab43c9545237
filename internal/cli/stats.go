package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Kavirubc/ticketrag/internal/tickets"
)

func newStatsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show ticket counts by status, priority and category",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			a, err := newApp(ctx, appOptions{})
			if err != nil {
				return err
			}
			defer a.close()

			c, err := a.loadCorpus(ctx)
			if err != nil {
				return err
			}

			st := tickets.ComputeStats(c.Store, c.Index.Len())
			cats := tickets.NewCategorizer(a.cfg.Categories).Count(c.Store)

			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, struct {
					tickets.Stats
					Categories []tickets.CategoryCount `json:"categories"`
				}{st, cats})
			}

			headingStyle.Fprintf(out, "Corpus: %s\n", c.Source)
			fmt.Fprintf(out, "Tickets: %d (%d indexed)\n", st.Total, st.Indexed)

			printCounts(cmd, "By status", st.ByStatus)
			printCounts(cmd, "By priority", st.ByPriority)

			fmt.Fprintln(out, "\nCategories:")
			for _, cat := range cats {
				fmt.Fprintf(out, "  %s %-24s %d\n", cat.Icon, cat.Name, cat.Count)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print statistics as JSON")

	return cmd
}

func printCounts(cmd *cobra.Command, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n%s:\n", title)

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	for _, k := range keys {
		fmt.Fprintf(out, "  %-24s %d\n", k, counts[k])
	}
}
