package collector

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/loganintech/go-reddit/v2/reddit"
	"github.com/qepting91/corpus-pipeline/internal/config"
	"github.com/qepting91/corpus-pipeline/internal/domain"
	"github.com/qepting91/corpus-pipeline/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCollector struct {
	posts []domain.Post
	err   error
}

func (s stubCollector) FetchNewPosts(context.Context, string, int) ([]domain.Post, error) {
	return s.posts, s.err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestMockClient(t *testing.T) {
	mc := NewMockClient(0, 1)
	posts, err := mc.FetchNewPosts(context.Background(), "golang", 3)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, "mock_golang_0", posts[0].ID)
	assert.Equal(t, "r/golang", posts[2].Subreddit)
}

func TestMockClientCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMockClient(time.Minute, 1).FetchNewPosts(ctx, "golang", 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewCollector(t *testing.T) {
	c, err := NewCollector(config.CollectorConfig{Mode: "mock"})
	require.NoError(t, err)
	assert.IsType(t, &MockClient{}, c)

	_, err = NewCollector(config.CollectorConfig{Mode: "public"})
	assert.Error(t, err, "public mode needs a user agent")

	c, err = NewCollector(config.CollectorConfig{Mode: "public", UserAgent: "test/1.0"})
	require.NoError(t, err)
	assert.IsType(t, &PublicClient{}, c)

	_, err = NewCollector(config.CollectorConfig{Mode: "carrier-pigeon"})
	assert.Error(t, err)
}

func TestPublicClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/r/golang/new.json", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		assert.Equal(t, "test/1.0", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"data":{"children":[{"data":{"id":"abc","title":"Hello","subreddit_name_prefixed":"r/golang","score":42,"num_comments":3,"created_utc":1672531200}}]}}`))
	}))
	defer srv.Close()

	pc, err := NewPublicClient("test/1.0")
	require.NoError(t, err)
	pc.baseURL = srv.URL

	posts, err := pc.FetchNewPosts(context.Background(), "golang", 5)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "abc", posts[0].ID)
	assert.Equal(t, 42, posts[0].Score)
	assert.Equal(t, float64(1672531200), posts[0].CreatedUTC)
}

func TestPublicClientStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	pc, err := NewPublicClient("test/1.0")
	require.NoError(t, err)
	pc.baseURL = srv.URL

	_, err = pc.FetchNewPosts(context.Background(), "golang", 5)
	assert.ErrorContains(t, err, "429")
}

func TestLoadTargets(t *testing.T) {
	path := writeFile(t, "subreddits.csv", "\ufeffsubreddit,min_score\ngolang,10\nx,5\n  netsec ,abc\nbad name!,1\n")

	targets, err := LoadTargets(path)
	require.NoError(t, err)
	assert.Equal(t, []domain.Target{
		{Subreddit: "golang", MinScore: 10},
		{Subreddit: "netsec", MinScore: 0},
	}, targets)
}

func TestLoadKeywords(t *testing.T) {
	path := writeFile(t, "keywords.csv", "keyword\nZero-Day\n\n  CVE \n")

	kws, err := LoadKeywords(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"zero-day", "cve"}, kws)

	kws, err = LoadKeywords(filepath.Join(t.TempDir(), "missing.csv"))
	require.NoError(t, err)
	assert.Empty(t, kws)
}

func TestScrape(t *testing.T) {
	c := stubCollector{posts: []domain.Post{
		{ID: "a", Title: "Low score", Score: 1},
		{ID: "b", Title: "High score", Score: 50},
		{ID: "c", Title: "New CVE published", Score: 0},
	}}

	res := Scrape(context.Background(), c, domain.Target{Subreddit: "netsec", MinScore: 10}, 25, []string{"cve"})

	assert.True(t, res.Success)
	assert.Nil(t, res.Error)
	assert.True(t, strings.HasPrefix(res.TaskID, "netsec-"))
	require.NotNil(t, res.Data)
	require.Len(t, res.Data.ContentItems, 2)
	assert.Equal(t, "b", res.Data.ContentItems[0]["id_str"])
	assert.Equal(t, "c", res.Data.ContentItems[1]["id_str"])
	assert.Equal(t, []string{"cve"}, res.Data.ContentItems[1]["keywords_hit"])
}

func TestScrapeFailure(t *testing.T) {
	res := Scrape(context.Background(), stubCollector{err: errors.New("forbidden")}, domain.Target{Subreddit: "netsec"}, 25, nil)

	assert.False(t, res.Success)
	assert.Nil(t, res.Data)
	require.NotNil(t, res.Error)
	assert.Equal(t, "forbidden", res.Error.Message)
}

func TestSubmitter(t *testing.T) {
	var got []map[string]any
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		mu.Lock()
		got = append(got, body)
		mu.Unlock()
		if body["success"] == false {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"detail":"error data missing"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	s := NewSubmitter(srv.URL, "", logging.Discard())
	ok := domain.ScrapeResult{TaskID: "t1", Success: true, Timestamp: time.Now(), Data: &domain.SuccessData{ContentItems: []map[string]any{{"id_str": "1"}}}}
	require.NoError(t, s.Submit(context.Background(), ok))

	err := s.Submit(context.Background(), domain.ScrapeResult{TaskID: "t2", Timestamp: time.Now()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "error data missing")

	require.Len(t, got, 2)
	assert.Equal(t, "t1", got[0]["task_id"])
	assert.NotNil(t, got[0]["data"])
	assert.Nil(t, got[1]["data"])
}

func TestSubmitterStartSpools(t *testing.T) {
	var calls int
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		mu.Unlock()
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	spool := filepath.Join(t.TempDir(), "data", "current.json")
	s := NewSubmitter(srv.URL, spool, logging.Discard())

	input := make(chan domain.ScrapeResult, 2)
	input <- domain.ScrapeResult{TaskID: "t1", Success: true, Data: &domain.SuccessData{}}
	input <- domain.ScrapeResult{TaskID: "t2", Error: &domain.ErrorData{Message: "x"}}
	close(input)

	var wg sync.WaitGroup
	wg.Add(1)
	s.Start(context.Background(), &wg, input)
	wg.Wait()

	assert.Equal(t, 2, calls)

	f, err := os.Open(spool)
	require.NoError(t, err)
	defer f.Close()
	var ids []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var res domain.ScrapeResult
		require.NoError(t, json.Unmarshal(sc.Bytes(), &res))
		ids = append(ids, res.TaskID)
	}
	assert.Equal(t, []string{"t1", "t2"}, ids)
}

func TestRunPool(t *testing.T) {
	targets := []domain.Target{
		{Subreddit: "golang"}, {Subreddit: "netsec"}, {Subreddit: "rust"},
	}
	results := make(chan domain.ScrapeResult, len(targets))

	RunPool(context.Background(), NewMockClient(0, 1), targets, PoolOptions{Workers: 2, Limit: 2}, results, logging.Discard())
	close(results)

	seen := map[string]int{}
	for res := range results {
		require.True(t, res.Success)
		seen[strings.SplitN(res.TaskID, "-", 2)[0]] = len(res.Data.ContentItems)
	}
	assert.Equal(t, map[string]int{"golang": 2, "netsec": 2, "rust": 2}, seen)
}

func TestRunPoolCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results := make(chan domain.ScrapeResult, 1)

	RunPool(ctx, NewMockClient(0, 1), []domain.Target{{Subreddit: "golang"}}, PoolOptions{Workers: 1, Limit: 1}, results, logging.Discard())
	close(results)

	assert.Empty(t, results)
}

func TestPostsFromAPI(t *testing.T) {
	created := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	posts := postsFromAPI([]*reddit.Post{
		{ID: "abc", Title: "Hello", SubredditNamePrefixed: "r/golang", Author: "gopher", Score: 7, NumberOfComments: 2, Created: &reddit.Timestamp{Time: created}},
		nil,
		{ID: "def", Title: "No time"},
	})

	require.Len(t, posts, 2)
	assert.Equal(t, domain.Post{
		ID: "abc", Title: "Hello", Subreddit: "r/golang", Author: "gopher",
		Score: 7, CommentCount: 2, CreatedUTC: float64(created.Unix()),
	}, posts[0])
	assert.Equal(t, "def", posts[1].ID)
	assert.Zero(t, posts[1].CreatedUTC)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 1, clampLimit(0))
	assert.Equal(t, 25, clampLimit(25))
	assert.Equal(t, 100, clampLimit(500))
}
