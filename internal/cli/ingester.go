package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/qepting91/corpus-pipeline/internal/config"
	"github.com/qepting91/corpus-pipeline/internal/ingest"
	"github.com/qepting91/corpus-pipeline/internal/server"
	"github.com/qepting91/corpus-pipeline/internal/storage"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewIngesterCommand creates the ingestion server command.
func NewIngesterCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "ingester",
		Short:         "Receive scrape results over HTTP and persist them",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store, err := openStore(ctx, cfg, logger)
			if err != nil {
				return err
			}

			// Interfaces stay nil when no store is configured so the
			// service and dashboard report it instead of panicking.
			var persister ingest.Persister
			var reporter storage.Reporter
			if store != nil {
				defer store.Close()
				persister, reporter = store, store
			}

			service := ingest.NewService(persister, ingest.Options{
				SourceID:    cfg.Ingest.SourceID,
				PostIDField: cfg.Ingest.PostIDField,
			}, logger)

			return server.New(*cfg, service, reporter, logger).Run(ctx)
		},
	}

	opts.bind(cmd)
	return cmd
}

// openStore connects and creates the schema once. A missing database
// location is logged and yields a nil store.
func openStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (storage.Store, error) {
	store, err := storage.Open(ctx, cfg.Storage, logger)
	if errors.Is(err, storage.ErrNotConfigured) {
		logger.Warn("storage not configured; ingestion requests will fail")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}
