package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/qepting91/corpus-pipeline/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const insertBatchSize = 500

type scraperData struct {
	ID        string `gorm:"primaryKey;size:36"`
	PostID    string `gorm:"index;size:64"`
	SourceID  string `gorm:"size:32"`
	TaskID    string `gorm:"index"`
	PostBlob  string `gorm:"type:text"`
	CreatedAt time.Time
}

func (scraperData) TableName() string { return "scraper_data" }

type scraperError struct {
	ID        string `gorm:"primaryKey;size:36"`
	SourceID  string `gorm:"size:32"`
	TaskID    string `gorm:"index"`
	Message   string `gorm:"type:text"`
	CreatedAt time.Time
}

func (scraperError) TableName() string { return "scraper_errors" }

// SQLiteStore keeps scrape results in a single SQLite file.
type SQLiteStore struct {
	db *gorm.DB
}

func OpenSQLite(path, logLevel string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(gormLogLevel(logLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	// SQLite only supports one writer at a time
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping sqlite: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func gormLogLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&scraperData{}, &scraperError{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) PersistSuccessRows(ctx context.Context, rows []domain.ScraperRecord) error {
	if len(rows) == 0 {
		return nil
	}
	now := time.Now().UTC()
	records := make([]scraperData, len(rows))
	for i, r := range rows {
		records[i] = scraperData{
			ID:        uuid.NewString(),
			PostID:    r.PostID,
			SourceID:  r.SourceID,
			TaskID:    r.TaskID,
			PostBlob:  r.PostBlob,
			CreatedAt: now,
		}
	}
	return s.db.WithContext(ctx).CreateInBatches(records, insertBatchSize).Error
}

func (s *SQLiteStore) PersistError(ctx context.Context, row domain.ScraperErrorRecord) error {
	return s.db.WithContext(ctx).Create(&scraperError{
		ID:        uuid.NewString(),
		SourceID:  row.SourceID,
		TaskID:    row.TaskID,
		Message:   row.Message,
		CreatedAt: time.Now().UTC(),
	}).Error
}

type taskCount struct {
	TaskID string
	N      int64
}

func (s *SQLiteStore) Stats(ctx context.Context) ([]domain.TaskStat, error) {
	rows, err := s.countByTask(ctx, &scraperData{})
	if err != nil {
		return nil, err
	}
	errs, err := s.countByTask(ctx, &scraperError{})
	if err != nil {
		return nil, err
	}
	return mergeStats(rows, errs), nil
}

func (s *SQLiteStore) countByTask(ctx context.Context, model any) (map[string]int64, error) {
	var counts []taskCount
	err := s.db.WithContext(ctx).Model(model).
		Select("task_id, count(*) AS n").
		Group("task_id").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count by task: %w", err)
	}
	out := make(map[string]int64, len(counts))
	for _, c := range counts {
		out[c.TaskID] = c.N
	}
	return out, nil
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
