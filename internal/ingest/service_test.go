package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/qepting91/corpus-pipeline/internal/domain"
	"github.com/qepting91/corpus-pipeline/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	rowCalls  [][]domain.ScraperRecord
	errorRows []domain.ScraperErrorRecord
	fail      error
}

func (f *fakeStore) PersistSuccessRows(_ context.Context, rows []domain.ScraperRecord) error {
	f.rowCalls = append(f.rowCalls, rows)
	return f.fail
}

func (f *fakeStore) PersistError(_ context.Context, row domain.ScraperErrorRecord) error {
	f.errorRows = append(f.errorRows, row)
	return f.fail
}

func (f *fakeStore) EnsureSchema(context.Context) error { return nil }

func (f *fakeStore) calls() int { return len(f.rowCalls) + len(f.errorRows) }

func newService(store Persister) *Service {
	return NewService(store, Options{}, logging.Discard())
}

var ts = time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)

func TestIngestSuccessForwardsOneRowPerItem(t *testing.T) {
	store := &fakeStore{}
	svc := newService(store)

	items := []map[string]any{
		{"id_str": "100", "text": "a"},
		{"id_str": "101", "text": "b"},
		{"id_str": json.Number("102")},
	}
	n, err := svc.Ingest(context.Background(), domain.ScrapeResult{
		TaskID: "task-1", Timestamp: ts, Success: true,
		Data: &domain.SuccessData{ContentItems: items},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.Len(t, store.rowCalls, 1)
	rows := store.rowCalls[0]
	require.Len(t, rows, 3)
	for i, row := range rows {
		assert.Equal(t, "task-1", row.TaskID)
		assert.Equal(t, "twitter", row.SourceID)

		dec := json.NewDecoder(strings.NewReader(row.PostBlob))
		dec.UseNumber()
		var blob map[string]any
		require.NoError(t, dec.Decode(&blob))
		assert.Equal(t, row.PostID, fmt.Sprint(blob["id_str"]), "row %d", i)
	}
	assert.Equal(t, []string{"100", "101", "102"}, []string{rows[0].PostID, rows[1].PostID, rows[2].PostID})
}

func TestIngestEmptyItemList(t *testing.T) {
	store := &fakeStore{}
	n, err := newService(store).Ingest(context.Background(), domain.ScrapeResult{
		TaskID: "t", Success: true, Data: &domain.SuccessData{},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	require.Len(t, store.rowCalls, 1)
	assert.Empty(t, store.rowCalls[0])
}

func TestIngestRejections(t *testing.T) {
	tests := []struct {
		name    string
		result  domain.ScrapeResult
		wantErr error
	}{
		{
			name:    "success_without_data",
			result:  domain.ScrapeResult{TaskID: "t", Success: true},
			wantErr: ErrSuccessDataMissing,
		},
		{
			name:    "success_with_error_only",
			result:  domain.ScrapeResult{TaskID: "t", Success: true, Error: &domain.ErrorData{Message: "x"}},
			wantErr: ErrSuccessDataMissing,
		},
		{
			name:    "failure_without_error",
			result:  domain.ScrapeResult{TaskID: "t", Success: false},
			wantErr: ErrErrorDataMissing,
		},
		{
			name:    "failure_with_data_only",
			result:  domain.ScrapeResult{TaskID: "t", Data: &domain.SuccessData{}},
			wantErr: ErrErrorDataMissing,
		},
		{
			name: "item_without_id",
			result: domain.ScrapeResult{TaskID: "t", Success: true, Data: &domain.SuccessData{
				ContentItems: []map[string]any{{"id_str": "1"}, {"text": "no id"}},
			}},
			wantErr: ErrInvalidContentItem,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{}
			_, err := newService(store).Ingest(context.Background(), tt.result)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, IsClientError(err))
			assert.Zero(t, store.calls(), "no persistence call on rejection")
		})
	}
}

func TestIngestErrorResult(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, Options{SourceID: "reddit"}, logging.Discard())

	n, err := svc.Ingest(context.Background(), domain.ScrapeResult{
		TaskID: "task-9", Timestamp: ts, Error: &domain.ErrorData{Message: "rate limited"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []domain.ScraperErrorRecord{{SourceID: "reddit", TaskID: "task-9", Message: "rate limited"}}, store.errorRows)
}

func TestIngestWithoutStorage(t *testing.T) {
	_, err := newService(nil).Ingest(context.Background(), domain.ScrapeResult{TaskID: "t", Success: true})
	assert.ErrorIs(t, err, ErrStorageNotConfigured)
	assert.False(t, IsClientError(err))
}

func TestIngestStoreFailure(t *testing.T) {
	boom := errors.New("disk full")
	store := &fakeStore{fail: boom}
	_, err := newService(store).Ingest(context.Background(), domain.ScrapeResult{
		TaskID: "t", Success: true, Data: &domain.SuccessData{ContentItems: []map[string]any{{"id_str": "1"}}},
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, IsClientError(err))
}

func TestCustomPostIDField(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, Options{PostIDField: "id"}, logging.Discard())
	_, err := svc.Ingest(context.Background(), domain.ScrapeResult{
		TaskID: "t", Success: true, Data: &domain.SuccessData{ContentItems: []map[string]any{{"id": float64(7)}}},
	})
	require.NoError(t, err)
	assert.Equal(t, "7", store.rowCalls[0][0].PostID)
}
