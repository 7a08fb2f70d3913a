// Package seed implements the seed command that loads demo reference data.
package seed

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cropsevai/cropsevai-hub/internal/logger"
	"github.com/cropsevai/cropsevai-hub/internal/runtime"
)

// Command creates the seed command. The schema is migrated first so seed
// works against an empty database.
func Command(rt *runtime.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load demo crops, diseases and treatments into an empty database",
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

			ctx := cmd.Context()
			if err := ds.Migrate(ctx); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			if err := ds.Seed(ctx); err != nil {
				return fmt.Errorf("seed failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Demo data loaded")
			return nil
		},
	}
}
