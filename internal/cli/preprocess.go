package cli

import (
	"fmt"
	"path/filepath"

	"github.com/qepting91/corpus-pipeline/internal/anonymize"
	"github.com/qepting91/corpus-pipeline/internal/config"
	"github.com/qepting91/corpus-pipeline/internal/reshape"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Datasets accepted by the preprocess command, in run order for "all".
var Datasets = []string{"forum", "social", "microblog"}

type PreprocessOptions struct {
	RootOptions
	Root string
}

// NewPreprocessCommand creates the preprocess command.
func NewPreprocessCommand() *cobra.Command {
	opts := &PreprocessOptions{}

	cmd := &cobra.Command{
		Use:   "preprocess [forum|social|microblog|all]",
		Short: "Anonymize and reshape raw scraped datasets",
		Long: `Reads the raw forum, social and microblog exports, hashes identifiers
with the configured salt, normalizes timestamps and writes the cleaned
datasets. With no argument every dataset is processed.`,
		Args:          cobra.MaximumNArgs(1),
		ValidArgs:     append([]string{"all"}, Datasets...),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			which := "all"
			if len(args) == 1 {
				which = args[0]
			}
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			if opts.Root != "" {
				cfg.Reshape.Root = opts.Root
			}
			_, err = runPreprocess(cfg, which, logger)
			return err
		},
	}

	opts.bind(cmd)
	cmd.Flags().StringVar(&opts.Root, "root", "", "base directory for relative dataset paths (overrides reshape.root)")

	return cmd
}

func runPreprocess(cfg *config.Config, which string, logger *logrus.Logger) ([]reshape.Result, error) {
	selected, err := selectDatasets(which)
	if err != nil {
		return nil, err
	}

	hasher, err := anonymize.NewHasher([]byte(cfg.Anonymize.Salt))
	if err != nil {
		return nil, fmt.Errorf("anonymize.salt: %w", err)
	}

	rc := cfg.Reshape
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(rc.Root, p)
	}

	var results []reshape.Result
	for _, name := range selected {
		var res reshape.Result
		switch name {
		case "forum":
			repair, err := reshape.NewRepairer(rc.Forum.Repair, rc.Forum.Seed)
			if err != nil {
				return results, err
			}
			res, err = reshape.Forum{Hasher: hasher, Repair: repair}.
				Run(resolve(rc.Forum.Input), resolve(rc.Forum.Output))
			if err != nil {
				return results, fmt.Errorf("forum: %w", err)
			}
		case "social":
			res, err = reshape.Social{Hasher: hasher, Delimiter: rc.Social.Delimiter}.
				Run(resolve(rc.Social.Posts), resolve(rc.Social.Comments), resolve(rc.Social.Output))
			if err != nil {
				return results, fmt.Errorf("social: %w", err)
			}
		case "microblog":
			shards := make([]string, len(rc.Microblog.Shards))
			for i, s := range rc.Microblog.Shards {
				shards[i] = resolve(s)
			}
			res, err = reshape.Microblog{Hasher: hasher}.Run(shards, resolve(rc.Microblog.Output))
			if err != nil {
				return results, fmt.Errorf("microblog: %w", err)
			}
		}

		logger.WithFields(logrus.Fields{
			"dataset":    res.Dataset,
			"in":         res.In,
			"out":        res.Out,
			"dropped":    res.Dropped,
			"duplicates": res.Duplicates,
		}).Info("dataset written")
		results = append(results, res)
	}
	return results, nil
}

func selectDatasets(which string) ([]string, error) {
	if which == "all" {
		return Datasets, nil
	}
	for _, d := range Datasets {
		if d == which {
			return []string{d}, nil
		}
	}
	return nil, fmt.Errorf("unknown dataset %q: must be one of %v or all", which, Datasets)
}
