package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	contractx "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/contract"
	toolx "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/tool"
)

func newChatCmd() *cobra.Command {
	var (
		sessionID string
		showTools bool
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive conversation bound to one session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := wireApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if sessionID == "" {
				sessionID = uuid.NewString()
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "session %s (type /quit to leave, /breakers for tool health)\n", sessionID)

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(out, "> ")
				if !scanner.Scan() {
					fmt.Fprintln(out)
					return scanner.Err()
				}

				line := strings.TrimSpace(scanner.Text())
				switch line {
				case "":
					continue
				case "/quit", "/exit":
					return nil
				case "/breakers":
					if err := printBreakers(out, a.gateway); err != nil {
						return err
					}
					continue
				}

				res, err := a.orchestrator.HandleTurn(cmd.Context(), sessionID, contractx.TurnRequest{Message: line})
				if err != nil {
					fmt.Fprintf(out, "error: %v\n", err)
					continue
				}
				fmt.Fprintln(out, res.Response)
				if showTools {
					for _, call := range res.ToolCalls {
						fmt.Fprintf(out, "  [%s] input=%v success=%t\n", call.Tool, call.Input, call.Output.Success)
					}
				}
			}
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "session id (default: a new random id)")
	cmd.Flags().BoolVar(&showTools, "show-tools", false, "print the tool calls of every turn")

	return cmd
}

func printBreakers(w io.Writer, gateway *toolx.Gateway) error {
	states := map[string]toolx.BreakerState{}
	for _, name := range []string{toolx.ToolCalculator, toolx.ToolProducts, toolx.ToolOutlets} {
		states[name] = gateway.BreakerState(name)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(states)
}
