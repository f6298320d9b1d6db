package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/loganintech/go-reddit/v2/reddit"
	"github.com/qepting91/corpus-pipeline/internal/domain"
	"golang.org/x/time/rate"
)

// maxListing is the most posts Reddit returns for one listing page.
const maxListing = 100

// APIClient reads subreddit listings through the authenticated Reddit API.
type APIClient struct {
	client  *reddit.Client
	limiter *rate.Limiter
}

func NewAPIClient(creds reddit.Credentials, userAgent string) (*APIClient, error) {
	client, err := reddit.NewClient(creds, reddit.WithUserAgent(userAgent))
	if err != nil {
		return nil, fmt.Errorf("reddit client: %w", err)
	}

	// ~60 reqs/min leaves headroom under the OAuth quota
	limiter := rate.NewLimiter(rate.Every(1*time.Second), 1)

	return &APIClient{client: client, limiter: limiter}, nil
}

func (ac *APIClient) FetchNewPosts(ctx context.Context, sub string, limit int) ([]domain.Post, error) {
	if err := ac.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	listing, _, err := ac.client.Subreddit.NewPosts(ctx, sub, &reddit.ListOptions{Limit: clampLimit(limit)})
	if err != nil {
		return nil, fmt.Errorf("r/%s: authenticated api error: %w", sub, err)
	}
	return postsFromAPI(listing), nil
}

// postsFromAPI maps listing entries onto domain posts. Entries without a
// creation time get CreatedUTC 0, which the ingester stores as-is.
func postsFromAPI(listing []*reddit.Post) []domain.Post {
	posts := make([]domain.Post, 0, len(listing))
	for _, p := range listing {
		if p == nil {
			continue
		}
		post := domain.Post{
			ID:           p.ID,
			Title:        p.Title,
			Subreddit:    p.SubredditNamePrefixed,
			Author:       p.Author,
			URL:          p.URL,
			Score:        p.Score,
			CommentCount: p.NumberOfComments,
		}
		if p.Created != nil {
			post.CreatedUTC = float64(p.Created.Time.Unix())
		}
		posts = append(posts, post)
	}
	return posts
}

func clampLimit(limit int) int {
	switch {
	case limit < 1:
		return 1
	case limit > maxListing:
		return maxListing
	default:
		return limit
	}
}
