package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/youpredict/you-predict-core/internal/discovery"
)

func newSubscribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "subscribe",
		Short: "Subscribes the push feed for every tracked channel",
		Long: `Requests a push subscription from the hub for each active tracked
channel, pointing at this service's webhook. Run it once after seeding;
the serve process renews leases daily from then on.`,
		RunE: runSubscribeCommand,
	}
}

func runSubscribeCommand(cmd *cobra.Command, _ []string) error {
	a, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}

	engine := discovery.NewEngine(a.Warehouse, a.Config.Monitoring.WindowHours, a.Logger)
	ids, err := engine.GetTrackedChannelIDs(cmd.Context())
	if err != nil {
		return fmt.Errorf("list tracked channels: %w", err)
	}
	if len(ids) == 0 {
		return fmt.Errorf("no tracked channels; run seed-channels first")
	}

	failed := 0
	for _, id := range ids {
		if err := a.Hub.Subscribe(cmd.Context(), id); err != nil {
			a.Logger.Warn("subscription failed", zap.String("channel_id", id), zap.Error(err))
			failed++
			continue
		}
		a.Logger.Info("subscription requested", zap.String("channel_id", id))
	}
	if failed == len(ids) {
		return fmt.Errorf("all %d subscriptions failed", failed)
	}

	a.Logger.Info("subscribe complete",
		zap.Int("requested", len(ids)-failed),
		zap.Int("failed", failed))
	return nil
}
