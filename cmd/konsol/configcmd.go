package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"pkt.systems/konsol"
	"pkt.systems/pslog"
)

// NewConfigCommand builds the config command group.
func NewConfigCommand(loader *konsol.Loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and initialize configuration",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loader.Load()
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration to disk",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := pslog.LoggerFromContext(cmd.Context())
			path, err := konsol.Bootstrap(konsol.DefaultConfig(), logger)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.AddCommand(showCmd)
	cmd.AddCommand(initCmd)
	return cmd
}
