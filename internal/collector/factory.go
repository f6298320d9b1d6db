package collector

import (
	"fmt"
	"time"

	"github.com/loganintech/go-reddit/v2/reddit"
	"github.com/qepting91/corpus-pipeline/internal/config"
	"github.com/qepting91/corpus-pipeline/internal/domain"
)

const mockLatency = 500 * time.Millisecond

// NewCollector selects the implementation named by cfg.Mode.
func NewCollector(cfg config.CollectorConfig) (domain.Collector, error) {
	switch cfg.Mode {
	case "api":
		return NewAPIClient(reddit.Credentials{
			ID:       cfg.ClientID,
			Secret:   cfg.ClientSecret,
			Username: cfg.Username,
			Password: cfg.Password,
		}, cfg.UserAgent)
	case "public":
		return NewPublicClient(cfg.UserAgent)
	case "mock":
		return NewMockClient(mockLatency, time.Now().UnixNano()), nil
	default:
		return nil, fmt.Errorf("unknown collector mode: %q (use 'api', 'public', or 'mock')", cfg.Mode)
	}
}
