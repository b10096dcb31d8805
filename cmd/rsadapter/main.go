// Command rsadapter inspects Redshift schemas through the dialect adapter,
// serves them over HTTP and keeps snapshots in object storage.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/koustreak/rsadapter/internal/config"
	"github.com/koustreak/rsadapter/internal/database"
	"github.com/koustreak/rsadapter/internal/filestore/minio"
	"github.com/koustreak/rsadapter/internal/logger"
	_ "github.com/koustreak/rsadapter/internal/redshift"
	"github.com/koustreak/rsadapter/internal/schema"
	"github.com/spf13/cobra"
)

var (
	Version = "0.1.0"

	configPath string

	cfg *config.Config
	log *logger.Logger
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "rsadapter",
		Short:         "Redshift dialect adapter toolkit",
		Version:       Version,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			cfg = loaded
			log = logger.New(&cfg.Logger)
			logger.SetGlobal(log)
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/adapter.yaml", "path to the configuration file")

	root.AddCommand(
		newColumnsCommand(),
		newCapabilitiesCommand(),
		newServeCommand(),
		newSnapshotCommand(),
	)
	return root
}

// openAdapter opens the configured adapter through the registry.
func openAdapter(ctx context.Context) (*database.Adapter, error) {
	return database.Open(ctx, &cfg.Database, log)
}

// openSnapshots connects to the snapshot store.
func openSnapshots(ctx context.Context) (*schema.SnapshotStore, error) {
	store, err := minio.New(ctx, &cfg.Snapshot)
	if err != nil {
		return nil, err
	}
	return schema.NewSnapshotStore(store, cfg.Snapshot.Bucket, cfg.Snapshot.Prefix, log), nil
}

func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
