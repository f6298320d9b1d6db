package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/qepting91/corpus-pipeline/internal/config"
	"github.com/qepting91/corpus-pipeline/internal/domain"
	"github.com/qepting91/corpus-pipeline/internal/ingest"
	"github.com/sirupsen/logrus"
)

// ErrNotConfigured means no database location was given.
var ErrNotConfigured = errors.New("storage: no database configured")

// Reporter summarizes stored rows per task.
type Reporter interface {
	Stats(ctx context.Context) ([]domain.TaskStat, error)
}

// Store is the persistence collaborator used by the ingester.
type Store interface {
	ingest.Persister
	Reporter
	Close() error
}

// Open connects to the configured backend. It does not create tables;
// callers run EnsureSchema once at startup.
func Open(ctx context.Context, cfg config.StorageConfig, logger *logrus.Logger) (Store, error) {
	switch cfg.Driver {
	case "sqlite", "":
		if cfg.Path == "" {
			return nil, ErrNotConfigured
		}
		logger.WithField("path", cfg.Path).Info("opening sqlite store")
		s, err := OpenSQLite(cfg.Path, cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "mongo":
		if cfg.MongoURI == "" {
			return nil, ErrNotConfigured
		}
		logger.WithField("database", cfg.MongoDatabase).Info("opening mongo store")
		m, err := OpenMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("storage: unknown driver %q (use 'sqlite' or 'mongo')", cfg.Driver)
	}
}

// mergeStats joins per-task row and error counts, ordered by task id.
func mergeStats(rows, errs map[string]int64) []domain.TaskStat {
	byTask := make(map[string]*domain.TaskStat)
	get := func(id string) *domain.TaskStat {
		s, ok := byTask[id]
		if !ok {
			s = &domain.TaskStat{TaskID: id}
			byTask[id] = s
		}
		return s
	}
	for id, n := range rows {
		get(id).Rows = n
	}
	for id, n := range errs {
		get(id).Errors = n
	}

	out := make([]domain.TaskStat, 0, len(byTask))
	for _, s := range byTask {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TaskID < out[j].TaskID })
	return out
}
