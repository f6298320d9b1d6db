package collector

import (
	"errors"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/qepting91/corpus-pipeline/internal/dataset"
	"github.com/qepting91/corpus-pipeline/internal/domain"
)

// Regex for valid subreddit names
var subNameRegex = regexp.MustCompile(`^[A-Za-z0-9_]{3,21}$`)

// LoadTargets reads subreddit,min_score rows. Invalid names are skipped and
// an unparsable min_score counts as 0.
func LoadTargets(path string) ([]domain.Target, error) {
	t, err := dataset.ReadCSV(path)
	if err != nil {
		return nil, err
	}

	var targets []domain.Target
	for _, row := range t.Rows {
		sub, _ := row.Get("subreddit")
		sub = strings.TrimSpace(sub)
		if !subNameRegex.MatchString(sub) {
			continue
		}
		raw, _ := row.Get("min_score")
		score, _ := strconv.Atoi(strings.TrimSpace(raw))

		targets = append(targets, domain.Target{
			Subreddit: sub,
			MinScore:  score,
		})
	}
	return targets, nil
}

// LoadKeywords reads the first column of a headed CSV, lowercased.
// A missing file yields no keywords.
func LoadKeywords(path string) ([]string, error) {
	t, err := dataset.ReadCSV(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(t.Columns) == 0 {
		return nil, nil
	}

	var kws []string
	for _, row := range t.Rows {
		if kw, ok := row.Get(t.Columns[0]); ok {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				kws = append(kws, kw)
			}
		}
	}
	return kws, nil
}
