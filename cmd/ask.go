package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	contractx "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/contract"
)

func newAskCmd() *cobra.Command {
	var (
		sessionID string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: "Handle a single turn and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := wireApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if sessionID == "" {
				sessionID = uuid.NewString()
			}
			res, err := a.orchestrator.HandleTurn(cmd.Context(), sessionID, contractx.TurnRequest{
				Message: strings.Join(args, " "),
			})
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), res.Response)
			return err
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "session id (default: a new random id)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full turn result as JSON")

	return cmd
}
