// Package cli holds the cobra commands behind the ingester, preprocess and
// scraper binaries.
package cli

import (
	"github.com/qepting91/corpus-pipeline/internal/config"
	"github.com/qepting91/corpus-pipeline/internal/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// RootOptions holds flags shared by every command.
type RootOptions struct {
	ConfigPath string
}

func (o *RootOptions) bind(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&o.ConfigPath, "config", "c", "", "config file (default ./config.yaml or ./config/config.yaml)")
}

// load reads the config and builds the logger it describes.
func (o *RootOptions) load() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
