package collector

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/qepting91/corpus-pipeline/internal/domain"
)

// Scrape fetches one target and reports it as a ScrapeResult. Posts are kept
// when they reach the target's MinScore or mention a keyword.
func Scrape(ctx context.Context, c domain.Collector, t domain.Target, limit int, keywords []string) domain.ScrapeResult {
	res := domain.ScrapeResult{
		TaskID:    t.Subreddit + "-" + uuid.NewString(),
		Timestamp: time.Now().UTC(),
	}

	posts, err := c.FetchNewPosts(ctx, t.Subreddit, limit)
	if err != nil {
		res.Error = &domain.ErrorData{Message: err.Error()}
		return res
	}

	items := make([]map[string]any, 0, len(posts))
	for _, p := range posts {
		title := strings.ToLower(p.Title)
		for _, k := range keywords {
			if strings.Contains(title, k) {
				p.KeywordsHit = append(p.KeywordsHit, k)
			}
		}
		if p.Score >= t.MinScore || len(p.KeywordsHit) > 0 {
			items = append(items, p.ContentItem())
		}
	}

	res.Success = true
	res.Data = &domain.SuccessData{ContentItems: items}
	return res
}
