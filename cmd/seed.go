package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/youpredict/you-predict-core/internal/warehouse"
)

const seedChannelSQL = `
MERGE ` + "`{project}.{dataset}.tracked_channels`" + ` T
USING (SELECT @channel_id AS channel_id, @notes AS notes) S
ON T.channel_id = S.channel_id
WHEN MATCHED THEN UPDATE SET
  is_active = TRUE,
  notes = S.notes
WHEN NOT MATCHED THEN
  INSERT (channel_id, added_at, is_active, notes)
  VALUES (S.channel_id, CURRENT_TIMESTAMP(), TRUE, S.notes)`

func newSeedChannelsCmd() *cobra.Command {
	var file string
	var notes string

	cmd := &cobra.Command{
		Use:   "seed-channels [channel_id...]",
		Short: "Registers channels for tracking",
		Long: `Upserts channel ids into the tracked channel roster. Ids come from
arguments, or one per line from --file (blank lines and # comments are
skipped). Re-seeding an existing channel reactivates it and keeps its
original added_at.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeedChannels(cmd, args, file, notes)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "file with one channel id per line")
	cmd.Flags().StringVar(&notes, "notes", "", "note stored with each seeded channel")
	return cmd
}

func runSeedChannels(cmd *cobra.Command, args []string, file, notes string) error {
	a, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}

	ids := append([]string(nil), args...)
	if file != "" {
		fromFile, err := readChannelFile(file)
		if err != nil {
			return err
		}
		ids = append(ids, fromFile...)
	}
	if len(ids) == 0 {
		return fmt.Errorf("no channel ids given")
	}

	for _, id := range ids {
		if _, err := a.Warehouse.RunMerge(cmd.Context(), seedChannelSQL,
			warehouse.Param{Name: "channel_id", Value: id},
			warehouse.Param{Name: "notes", Value: notes},
		); err != nil {
			return fmt.Errorf("seed channel %s: %w", id, err)
		}
		a.Logger.Info("channel seeded", zap.String("channel_id", id))
	}

	a.Logger.Info("seeding complete", zap.Int("channels", len(ids)))
	return nil
}

func readChannelFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open channel file: %w", err)
	}
	defer f.Close()

	var ids []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read channel file: %w", err)
	}
	return ids, nil
}
