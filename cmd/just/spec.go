package main

import (
	"github.com/spf13/cobra"
)

// NewSpecCommand creates the spec command
func NewSpecCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "spec",
		Short: "Export tool spec (built-ins and extensions) for AI/agents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(GlobalConfig.FormatStr)
			if err != nil {
				return err
			}
			return env.W.WriteOK(format, env.App.BuildSpec(env.Registry.Extensions()))
		},
	}
}
