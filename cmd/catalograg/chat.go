package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newChatCmd(opts *rootOptions) *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Ask follow-up questions that keep the product category in context",
		Long: `Starts an interactive loop. Every turn runs a search under the same session,
so follow-ups like "something cheaper" stay within the category found earlier.
Type "exit" or press Ctrl-D to leave.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.bootstrap(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if sessionID == "" {
				sessionID = "chat-" + uuid.NewString()
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, newStyles(out).muted.Render("session "+sessionID))

			return chatLoop(cmd, func(line string) {
				res, err := a.pipeline.SearchWithContext(cmd.Context(), line, sessionID)
				if err != nil {
					fmt.Fprintln(out, errorLine(out, err))
					return
				}
				renderSearch(out, &res)
			})
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "resume a session id (default: a new random id)")
	return cmd
}

// chatLoop reads lines until EOF, "exit" or cancellation and hands each non-empty one to turn.
func chatLoop(cmd *cobra.Command, turn func(line string)) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	done := make(chan struct{})
	defer close(done)

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(cmd.InOrStdin())
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		fmt.Fprint(out, promptLine(out))

		var (
			line string
			ok   bool
		)
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		case line, ok = <-lines:
		}
		if !ok {
			fmt.Fprintln(out)
			select {
			case err := <-scanErr:
				return err
			default:
				return nil
			}
		}

		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case "exit", "quit", ":q":
			return nil
		}

		turn(line)
		fmt.Fprintln(out)
	}
}
