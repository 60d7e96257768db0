package admin

import (
	"context"
	"fmt"
	"log"

	"github.com/cloo-solutions/snowbot/internal/config"
	"github.com/cloo-solutions/snowbot/internal/servicenow"
	"github.com/spf13/cobra"
)

// SnapshotCmd returns the snapshot command
func SnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Export the incident snapshot without serving",
		Long:  "Fetch incidents from ServiceNow and write the snapshot CSV, or restore one from the archive",
		RunE:  runSnapshot,
	}

	cmd.Flags().String("restore", "", "Restore the snapshot from the given archive key instead of exporting")

	return cmd
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return err
	}

	restoreKey, _ := cmd.Flags().GetString("restore")
	if restoreKey != "" {
		if !cfg.HasS3() {
			return fmt.Errorf("--restore requires S3 archive configuration")
		}
		if err := store.Restore(ctx, restoreKey); err != nil {
			return fmt.Errorf("failed to restore snapshot %q: %w", restoreKey, err)
		}
		log.Printf("restored %q to %s", restoreKey, store.Path())
		return nil
	}

	snowClient := servicenow.NewClient(servicenow.Config{
		Instance:     cfg.SnowInstance,
		ClientID:     cfg.SnowClientID,
		ClientSecret: cfg.SnowClientSecret,
		Username:     cfg.SnowUsername,
		Password:     cfg.SnowPassword,
		BaseURL:      cfg.SnowBaseURL,
	})

	records, err := snowClient.Export(ctx)
	if err != nil {
		return fmt.Errorf("failed to export incidents: %w", err)
	}

	if err := store.Save(ctx, records); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	log.Printf("wrote %d incidents to %s", len(records), store.Path())
	return nil
}
