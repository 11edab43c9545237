package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Kavirubc/ticketrag/internal/pipeline"
	"github.com/Kavirubc/ticketrag/internal/retrieval"
)

var exitWords = map[string]bool{"quit": true, "exit": true, "q": true, "bye": true}

func newChatCmd() *cobra.Command {
	var topK int

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Ask questions interactively",
		Long:  `Start an interactive session. Type quit, exit, q or bye to leave.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			a, err := newApp(ctx, appOptions{generator: true})
			if err != nil {
				return err
			}
			defer a.close()

			proc, err := a.openProcessor(ctx)
			if err != nil {
				return err
			}

			if topK <= 0 {
				topK = a.cfg.Retrieval.TopK
			}

			return chatLoop(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), proc, topK)
		},
	}

	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "number of tickets to retrieve (default: retrieval.top_k)")

	return cmd
}

// chatLoop answers one question per input line until EOF or an exit word.
// Per-question failures are printed and the loop continues.
func chatLoop(ctx context.Context, in io.Reader, out io.Writer, proc *pipeline.Processor, topK int) error {
	headingStyle.Fprintln(out, "Ticket assistant ready. Ask about past incidents (quit to exit).")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\n> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if exitWords[strings.ToLower(question)] {
			fmt.Fprintln(out, "Goodbye!")
			return nil
		}

		res, err := proc.Answer(ctx, question, topK)
		switch {
		case errors.Is(err, retrieval.ErrInvalidQuery):
			continue
		case err != nil:
			warnStyle.Fprintf(out, "Error: %v\n", err)
			continue
		}
		fmt.Fprintln(out)
		printAnswer(out, res, false)
	}
}
