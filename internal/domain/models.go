package domain

import (
	"context"
	"strconv"
	"time"
)

// ScrapeResult is what a scraper reports for one task
type ScrapeResult struct {
	TaskID    string       `json:"task_id"`
	Timestamp time.Time    `json:"timestamp"`
	Success   bool         `json:"success"`
	Data      *SuccessData `json:"data,omitempty"`
	Error     *ErrorData   `json:"error,omitempty"`
}

type SuccessData struct {
	ContentItems []map[string]any `json:"content_items"`
}

type ErrorData struct {
	Message string `json:"message"`
}

// ScraperRecord is persisted once per content item of a successful task
type ScraperRecord struct {
	PostID   string `json:"post_id"`
	SourceID string `json:"source_id"`
	TaskID   string `json:"task_id"`
	PostBlob string `json:"post_blob"`
}

// ScraperErrorRecord is persisted for a failed task
type ScraperErrorRecord struct {
	SourceID string `json:"source_id"`
	TaskID   string `json:"task_id"`
	Message  string `json:"message"`
}

// TaskStat summarizes what has been stored for one task
type TaskStat struct {
	TaskID string `json:"task_id"`
	Rows   int64  `json:"rows"`
	Errors int64  `json:"errors"`
}

// RecordType distinguishes posts from comments in cleaned output
type RecordType string

const (
	TypePost    RecordType = "Post"
	TypeComment RecordType = "Comment"
)

// Target represents a scraping task
type Target struct {
	Subreddit string
	MinScore  int
}

// Post is what a collector returns for one subreddit listing entry
type Post struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Subreddit    string   `json:"subreddit"`
	Author       string   `json:"author"`
	URL          string   `json:"url"`
	Score        int      `json:"score"`
	CommentCount int      `json:"comment_count"`
	CreatedUTC   float64  `json:"created_utc"`
	KeywordsHit  []string `json:"keywords_hit,omitempty"`
}

// ContentItem renders the post as an ingestion content item keyed by id_str
func (p Post) ContentItem() map[string]any {
	item := map[string]any{
		"id_str":        p.ID,
		"title":         p.Title,
		"subreddit":     p.Subreddit,
		"author":        p.Author,
		"url":           p.URL,
		"score":         p.Score,
		"comment_count": p.CommentCount,
		"created_utc":   strconv.FormatFloat(p.CreatedUTC, 'f', -1, 64),
	}
	if len(p.KeywordsHit) > 0 {
		item["keywords_hit"] = p.KeywordsHit
	}
	return item
}

// Collector defines the interface for data fetching
type Collector interface {
	FetchNewPosts(ctx context.Context, subreddit string, limit int) ([]Post, error)
}
