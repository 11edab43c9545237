package cli

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "ticketrag",
	Short: "Question answering over incident tickets",
	Long: `ticketrag cleans an incident ticket export, embeds it into a similarity
index, and answers questions grounded in the most similar tickets.

Typical flow: inspect -> clean -> index -> ask / chat / serve, or all at once with run.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// a missing .env is fine; real env vars still apply
		_ = godotenv.Load()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newInspectCmd())
	rootCmd.AddCommand(newCleanCmd())
	rootCmd.AddCommand(newIndexCmd())
	rootCmd.AddCommand(newSearchCmd())
	rootCmd.AddCommand(newAskCmd())
	rootCmd.AddCommand(newChatCmd())
	rootCmd.AddCommand(newInsightsCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newImportGitHubCmd())
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ticketrag version %s\n", version)
		},
	}
}
