// Package cmd is the command-line front end of the dialogue orchestrator.
package cmd

import (
	"github.com/spf13/cobra"
	configx "github.com/tanpawarit/Chative-Dialogue-Orchestrator/pkg/config"
	logx "github.com/tanpawarit/Chative-Dialogue-Orchestrator/pkg/logger"
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	var envFile string

	rootCmd := &cobra.Command{
		Use:           "dialogue",
		Short:         "Task-oriented dialogue orchestrator for calculator, product and outlet questions",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			configx.SetEnvFile(envFile)
			logCfg, err := configx.New[logx.Config]("LOG")
			if err != nil {
				return err
			}
			logx.Init(*logCfg)
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "path to .env file (default ./.env when present)")

	rootCmd.AddCommand(
		newChatCmd(),
		newAskCmd(),
	)

	return rootCmd
}
