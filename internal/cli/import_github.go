package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Kavirubc/ticketrag/internal/github"
	"github.com/Kavirubc/ticketrag/internal/logging"
	"github.com/Kavirubc/ticketrag/internal/tickets"
)

func newImportGitHubCmd() *cobra.Command {
	var (
		repo     string
		state    string
		limit    int
		comments bool
		output   string
		token    string
	)

	cmd := &cobra.Command{
		Use:   "import-github",
		Short: "Import repository issues as ticket records",
		Long: `Fetch issues from a GitHub repository and write them in the ticket CSV
format, ready for clean and index. Pull requests are skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger, err := logging.New(&cfg.Logging)
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			owner, name, err := github.ParseRepo(repo)
			if err != nil {
				return err
			}

			if token == "" {
				token = os.Getenv("GH_TOKEN")
			}
			var client *github.Client
			if token != "" {
				client, err = github.NewClientWithToken(token)
			} else {
				client, err = github.NewClient()
			}
			if err != nil {
				return fmt.Errorf("failed to create GitHub client: %w", err)
			}
			defer client.Close()

			records, err := github.NewImporter(client, logger).Import(ctx, owner, name, github.ImportOptions{
				State:        state,
				Limit:        limit,
				WithComments: comments,
			})
			if err != nil {
				return fmt.Errorf("import failed: %w", err)
			}

			if output == "" {
				output = cfg.Data.TicketsCSV
			}
			if err := tickets.WriteCSV(output, records); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d issues from %s -> %s\n", len(records), repo, output)
			return nil
		},
	}

	cmd.Flags().StringVar(&repo, "repo", "", "repository to import (owner/repo)")
	cmd.Flags().StringVar(&state, "state", "all", "issue state: open, closed or all")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum issues to import (0 for no limit)")
	cmd.Flags().BoolVar(&comments, "comments", false, "fetch each issue's last comment")
	cmd.Flags().StringVar(&output, "output", "", "CSV to write (default: data.tickets_csv)")
	cmd.Flags().StringVar(&token, "token", "", "GitHub token (default: GH_TOKEN or gh auth)")
	_ = cmd.MarkFlagRequired("repo")

	return cmd
}
