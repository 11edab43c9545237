package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// pipelineSteps lists the run steps in execution order
var pipelineSteps = []string{"inspect", "clean", "index", "insights", "chat"}

func newRunCmd() *cobra.Command {
	var (
		steps  string
		input  string
		focus  string
		noChat bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run inspect, clean, index, insights and chat in order",
		Long: `Run the whole flow from a raw ticket export to an interactive session.
--steps selects a subset; steps always run in pipeline order and the run stops
at the first failure. The insights step needs --focus and is skipped without it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			selected, err := selectSteps(steps)
			if err != nil {
				return err
			}
			if noChat {
				delete(selected, "chat")
			}

			var plan []string
			for _, name := range pipelineSteps {
				if selected[name] {
					plan = append(plan, name)
				}
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			out := cmd.OutOrStdout()
			for i, name := range plan {
				headingStyle.Fprintf(out, "\nSTEP %d/%d: %s\n", i+1, len(plan), name)

				sub, subArgs := stepCommand(name, input, focus)
				if sub == nil {
					fmt.Fprintln(out, "Skipping insights (no --focus given)")
					continue
				}

				sub.SetIn(cmd.InOrStdin())
				sub.SetOut(out)
				sub.SetErr(cmd.ErrOrStderr())
				sub.SetArgs(subArgs)
				if err := sub.ExecuteContext(ctx); err != nil {
					return fmt.Errorf("pipeline stopped at %s: %w", name, err)
				}
			}

			fmt.Fprintln(out, "\nPipeline complete")
			return nil
		},
	}

	cmd.Flags().StringVar(&steps, "steps", "", "comma-separated steps to run (default: "+strings.Join(pipelineSteps, ",")+")")
	cmd.Flags().StringVar(&input, "input", "", "raw ticket CSV (default: data.tickets_csv)")
	cmd.Flags().StringVar(&focus, "focus", "", "focus area for the insights step")
	cmd.Flags().BoolVar(&noChat, "no-chat", false, "skip the interactive chat step")

	return cmd
}

func selectSteps(list string) (map[string]bool, error) {
	selected := make(map[string]bool, len(pipelineSteps))
	if strings.TrimSpace(list) == "" {
		for _, name := range pipelineSteps {
			selected[name] = true
		}
		return selected, nil
	}

	known := make(map[string]bool, len(pipelineSteps))
	for _, name := range pipelineSteps {
		known[name] = true
	}
	for _, name := range strings.Split(list, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if !known[name] {
			return nil, fmt.Errorf("unknown step %q (want %s)", name, strings.Join(pipelineSteps, ", "))
		}
		selected[name] = true
	}
	return selected, nil
}

// stepCommand returns a fresh command for a step with its arguments. Args are
// never nil so cobra does not fall back to os.Args. A nil command means skip.
func stepCommand(name, input, focus string) (*cobra.Command, []string) {
	args := []string{}
	switch name {
	case "inspect":
		if input != "" {
			args = append(args, input)
		}
		return newInspectCmd(), args
	case "clean":
		if input != "" {
			args = append(args, "--input", input)
		}
		return newCleanCmd(), args
	case "index":
		return newIndexCmd(), args
	case "insights":
		if focus == "" {
			return nil, nil
		}
		return newInsightsCmd(), append(args, focus)
	case "chat":
		return newChatCmd(), args
	}
	return nil, nil
}
