package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string

	ctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:           "clipforge",
		Short:         "Timeline-aware video export pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if shouldSkipConfig(cmd) {
			return nil
		}
		_, err := ctx.ensureConfig()
		return err
	}
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	for _, sub := range []*cobra.Command{
		newExportCommand(ctx),
		newProbeCommand(ctx),
		newJobsCommand(ctx),
		newConfigCommand(ctx),
		newVersionCommand(ctx),
	} {
		rootCmd.AddCommand(sub)
	}

	return rootCmd
}
