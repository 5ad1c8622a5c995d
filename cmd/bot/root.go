package main

import (
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "citrine",
		Short:         "Social bot runtime with pluggable modules and chat commands",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default ./configs/$APP_ENV.yaml)")

	cmd.AddCommand(
		newServeCmd(opts),
		newConsoleCmd(opts, "exec", "Run a command as an ordinary user", false),
		newConsoleCmd(opts, "sudo", "Run a command as the administrator", true),
		newMigrateCmd(opts),
	)

	return cmd
}
