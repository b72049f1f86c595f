package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/youpredict/you-predict-core/internal/warehouse"
)

func newBootstrapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bootstrap",
		Short: "Creates every warehouse table that does not exist yet",
		Long: `Creates the full warehouse schema: monitoring tables, dimensions,
facts, feature tables and operational logs. Existing tables are left
untouched, so re-running against a live dataset is safe.`,
		RunE: runBootstrapCommand,
	}
}

func runBootstrapCommand(cmd *cobra.Command, _ []string) error {
	a, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}

	names := make([]string, 0, len(warehouse.Registry))
	for name := range warehouse.Registry {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := a.Warehouse.CreateTable(cmd.Context(), name, warehouse.Registry[name]); err != nil {
			return fmt.Errorf("create table %s: %w", name, err)
		}
		a.Logger.Info("table ready", zap.String("table", name))
	}

	a.Logger.Info("bootstrap complete", zap.Int("tables", len(names)))
	return nil
}
