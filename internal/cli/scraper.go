package cli

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/qepting91/corpus-pipeline/internal/collector"
	"github.com/qepting91/corpus-pipeline/internal/domain"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewScraperCommand creates the command that runs one scrape cycle and
// submits every result to the ingester.
func NewScraperCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "scraper",
		Short:         "Scrape subreddit listings and submit them to the ingester",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			cc := cfg.Collector

			targets, err := collector.LoadTargets(cc.Targets)
			if err != nil {
				return err
			}
			keywords, err := collector.LoadKeywords(cc.Keywords)
			if err != nil {
				return err
			}

			client, err := collector.NewCollector(cc)
			if err != nil {
				return err
			}
			logger.WithField("mode", cc.Mode).Info("collector initialized")

			// Go slower for public JSON
			workers := cc.Workers
			if cc.Mode == "public" && workers > 2 {
				workers = 2
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			results := make(chan domain.ScrapeResult, len(targets))
			submitter := collector.NewSubmitter(cc.IngesterURL, cc.Spool, logger)
			var submitWg sync.WaitGroup
			submitWg.Add(1)
			go submitter.Start(ctx, &submitWg, results)

			logger.WithFields(logrus.Fields{"targets": len(targets), "workers": workers}).Info("starting scrape cycle")
			collector.RunPool(ctx, client, targets, collector.PoolOptions{
				Workers:  workers,
				Limit:    cc.Limit,
				Keywords: keywords,
			}, results, logger)

			close(results)
			submitWg.Wait()
			logger.Info("scrape cycle complete")
			return nil
		},
	}

	opts.bind(cmd)
	return cmd
}
