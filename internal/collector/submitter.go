package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/qepting91/corpus-pipeline/internal/domain"
	"github.com/sirupsen/logrus"
)

// Submitter delivers scrape results to the ingester.
type Submitter struct {
	URL        string
	SpoolPath  string
	HTTPClient *http.Client
	Logger     *logrus.Logger
}

func NewSubmitter(url, spool string, logger *logrus.Logger) *Submitter {
	return &Submitter{
		URL:        url,
		SpoolPath:  spool,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Logger:     logger,
	}
}

// Submit POSTs one result. Any non-2xx response is an error carrying the
// ingester's detail message.
func (s *Submitter) Submit(ctx context.Context, res domain.ScrapeResult) error {
	body, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode result %s: %w", res.TaskID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("submit %s: %w", res.TaskID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		var reply struct {
			Detail string `json:"detail"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		_ = json.Unmarshal(raw, &reply)
		return fmt.Errorf("submit %s: status %d: %s", res.TaskID, resp.StatusCode, reply.Detail)
	}
	return nil
}

// Start drains input until it is closed, submitting each result and
// appending it to the spool file as NDJSON. A single goroutine owns the
// spool file.
func (s *Submitter) Start(ctx context.Context, wg *sync.WaitGroup, input <-chan domain.ScrapeResult) {
	defer wg.Done()

	var enc *json.Encoder
	if s.SpoolPath != "" {
		f, err := openSpool(s.SpoolPath)
		if err != nil {
			s.Logger.WithError(err).Warn("spool disabled")
		} else {
			defer f.Close()
			enc = json.NewEncoder(f)
		}
	}

	for res := range input {
		entry := s.Logger.WithField("task_id", res.TaskID)
		if enc != nil {
			if err := enc.Encode(res); err != nil {
				entry.WithError(err).Warn("spool write failed")
			}
		}
		if err := s.Submit(ctx, res); err != nil {
			entry.WithError(err).Error("submit failed")
			continue
		}
		entry.WithField("success", res.Success).Info("result submitted")
	}
}

func openSpool(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
}
