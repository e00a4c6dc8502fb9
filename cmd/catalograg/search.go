package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/catalograg/internal/domain/session"
	chiTransport "github.com/kailas-cloud/catalograg/internal/transport/chi"
)

func newSearchCmd(opts *rootOptions) *cobra.Command {
	var (
		sessionID string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Answer a single product question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.bootstrap(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.pipeline.SearchWithContext(cmd.Context(), strings.Join(args, " "), sessionID)
			if err != nil {
				return err
			}

			if asJSON {
				data, err := json.MarshalIndent(chiTransport.NewSearchResponse(&res, sessionID), "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal result: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			renderSearch(cmd.OutOrStdout(), &res)
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", session.DefaultID.String(), "session whose category context is used")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output the result as JSON")
	return cmd
}
