// Package ingest validates scrape results and hands them to storage.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/qepting91/corpus-pipeline/internal/domain"
	"github.com/sirupsen/logrus"
)

var (
	// ErrStorageNotConfigured is a server-side fault, not a client error.
	ErrStorageNotConfigured = errors.New("storage not configured")
	ErrSuccessDataMissing   = errors.New("success data missing")
	ErrErrorDataMissing     = errors.New("error data missing")
	ErrInvalidContentItem   = errors.New("invalid content item")
)

// Persister is the storage collaborator. EnsureSchema runs once at startup.
type Persister interface {
	PersistSuccessRows(ctx context.Context, rows []domain.ScraperRecord) error
	PersistError(ctx context.Context, row domain.ScraperErrorRecord) error
	EnsureSchema(ctx context.Context) error
}

type Options struct {
	SourceID    string
	PostIDField string
}

type Service struct {
	store  Persister
	opts   Options
	logger *logrus.Logger
}

// NewService accepts a nil store; every Ingest then fails with
// ErrStorageNotConfigured.
func NewService(store Persister, opts Options, logger *logrus.Logger) *Service {
	if opts.SourceID == "" {
		opts.SourceID = "twitter"
	}
	if opts.PostIDField == "" {
		opts.PostIDField = "id_str"
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{store: store, opts: opts, logger: logger}
}

// Ingest validates r and forwards it. It returns the number of rows written.
func (s *Service) Ingest(ctx context.Context, r domain.ScrapeResult) (int, error) {
	if s.store == nil {
		return 0, ErrStorageNotConfigured
	}
	if r.Success {
		if r.Data == nil {
			return 0, ErrSuccessDataMissing
		}
		return s.processSuccess(ctx, r)
	}
	if r.Error == nil {
		return 0, ErrErrorDataMissing
	}
	return 1, s.processError(ctx, r)
}

func (s *Service) processSuccess(ctx context.Context, r domain.ScrapeResult) (int, error) {
	items := r.Data.ContentItems
	s.logger.WithFields(logrus.Fields{
		"task_id":   r.TaskID,
		"timestamp": r.Timestamp,
		"length":    len(items),
	}).Info("received results")

	rows := make([]domain.ScraperRecord, 0, len(items))
	for i, item := range items {
		postID, ok := itemID(item[s.opts.PostIDField])
		if !ok {
			return 0, fmt.Errorf("%w: item %d has no %s", ErrInvalidContentItem, i, s.opts.PostIDField)
		}
		blob, err := json.Marshal(item)
		if err != nil {
			return 0, fmt.Errorf("%w: item %d: %v", ErrInvalidContentItem, i, err)
		}
		rows = append(rows, domain.ScraperRecord{
			PostID:   postID,
			SourceID: s.opts.SourceID,
			TaskID:   r.TaskID,
			PostBlob: string(blob),
		})
	}

	if err := s.store.PersistSuccessRows(ctx, rows); err != nil {
		return 0, fmt.Errorf("persist rows for %s: %w", r.TaskID, err)
	}
	return len(rows), nil
}

func (s *Service) processError(ctx context.Context, r domain.ScrapeResult) error {
	s.logger.WithFields(logrus.Fields{
		"task_id":   r.TaskID,
		"timestamp": r.Timestamp,
		"message":   r.Error.Message,
	}).Info("received error")

	err := s.store.PersistError(ctx, domain.ScraperErrorRecord{
		SourceID: s.opts.SourceID,
		TaskID:   r.TaskID,
		Message:  r.Error.Message,
	})
	if err != nil {
		return fmt.Errorf("persist error for %s: %w", r.TaskID, err)
	}
	return nil
}

// IsClientError reports whether err was caused by the request body.
func IsClientError(err error) bool {
	return errors.Is(err, ErrSuccessDataMissing) ||
		errors.Is(err, ErrErrorDataMissing) ||
		errors.Is(err, ErrInvalidContentItem)
}

func itemID(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, x != ""
	case json.Number:
		return x.String(), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	default:
		return "", false
	}
}
