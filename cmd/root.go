// Package cmd wires the cropsevai command line interface.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	configcmd "github.com/cropsevai/cropsevai-hub/cmd/config"
	"github.com/cropsevai/cropsevai-hub/cmd/migrate"
	"github.com/cropsevai/cropsevai-hub/cmd/seed"
	"github.com/cropsevai/cropsevai-hub/cmd/serve"
	"github.com/cropsevai/cropsevai-hub/internal/buildinfo"
	"github.com/cropsevai/cropsevai-hub/internal/runtime"
)

// SkipLoadAnnotation marks commands that run without loading configuration.
const SkipLoadAnnotation = "skipLoad"

// RootCommand creates and returns the root command
func RootCommand(info *buildinfo.Context) *cobra.Command {
	rt := runtime.New(info)
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "cropsevai",
		Short:         "CropSevai Hub crop advisory server",
		Version:       info.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	// Set up the global flags for the root command.
	if err := setupFlags(rootCmd, &configFile); err != nil {
		panic(err)
	}

	serveCmd := serve.Command(rt)
	rootCmd.AddCommand(
		serveCmd,
		migrate.Command(rt),
		seed.Command(rt),
		configcmd.Command(rt, SkipLoadAnnotation),
	)

	// Running the binary without a subcommand starts the server.
	rootCmd.RunE = serveCmd.RunE
	rootCmd.Flags().AddFlagSet(serveCmd.Flags())

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if _, skip := cmd.Annotations[SkipLoadAnnotation]; skip {
			return nil
		}
		if err := rt.Load(configFile); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return nil
	}

	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return rt.Close()
	}

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, configFile *string) error {
	rootCmd.PersistentFlags().StringVarP(configFile, "config", "c", "", "Path to config.yaml (default: search ., ~/.config/cropsevai, /etc/cropsevai)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug output")

	if err := viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}
	return nil
}
