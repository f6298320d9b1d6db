package collector

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/qepting91/corpus-pipeline/internal/domain"
)

// MockClient implements domain.Collector with generated posts.
type MockClient struct {
	// Latency simulates network delay per call.
	Latency time.Duration
	rng     *rand.Rand
}

func NewMockClient(latency time.Duration, seed int64) *MockClient {
	return &MockClient{Latency: latency, rng: rand.New(rand.NewSource(seed))}
}

func (mc *MockClient) FetchNewPosts(ctx context.Context, sub string, limit int) ([]domain.Post, error) {
	if mc.Latency > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(mc.Latency):
		}
	}

	now := float64(time.Now().Unix())
	posts := make([]domain.Post, 0, limit)
	for i := 0; i < limit; i++ {
		posts = append(posts, domain.Post{
			ID:           fmt.Sprintf("mock_%s_%d", sub, i),
			Title:        fmt.Sprintf("[%s] Simulated post #%d", sub, i),
			Subreddit:    "r/" + sub,
			Author:       fmt.Sprintf("simulated_user_%d", mc.rng.Intn(20)),
			URL:          "http://localhost/mock-url",
			Score:        mc.rng.Intn(500),
			CommentCount: mc.rng.Intn(50),
			CreatedUTC:   now,
		})
	}
	return posts, nil
}
