// Package config implements commands that inspect and create configuration.
package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cropsevai/cropsevai-hub/internal/conf"
	"github.com/cropsevai/cropsevai-hub/internal/runtime"
)

// DefaultInitPath is where config init writes when no path is given.
const DefaultInitPath = "config.yaml"

// Command creates the config command. skipLoad is the annotation the root
// command checks to skip loading configuration.
func Command(rt *runtime.Context, skipLoad string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := rt.Settings.MaskedYAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:         "init [path]",
		Short:       "Write the default config.yaml",
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{skipLoad: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := DefaultInitPath
			if len(args) == 1 {
				path = args[0]
			}
			if err := conf.WriteDefaultConfig(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", path)
			return nil
		},
	})

	return cmd
}
