// Package migrate implements the migrate command.
package migrate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cropsevai/cropsevai-hub/internal/logger"
	"github.com/cropsevai/cropsevai-hub/internal/runtime"
)

// Command creates the migrate command.
func Command(rt *runtime.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := rt.OpenDatastore(nil)
			if err != nil {
				return fmt.Errorf("failed to open datastore: %w", err)
			}
			defer func() {
				if err := ds.Close(); err != nil {
					rt.Logger.Warn("Failed to close datastore", logger.Error(err))
				}
			}()

			if err := ds.Migrate(cmd.Context()); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date")
			return nil
		},
	}
}
