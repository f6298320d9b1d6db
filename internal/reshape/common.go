// Package reshape cleans the three raw corpora into anonymized, uniformly
// shaped records.
package reshape

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/qepting91/corpus-pipeline/internal/anonymize"
	"github.com/qepting91/corpus-pipeline/internal/dataset"
)

// TimeLayout is the format of every created_at value written out.
const TimeLayout = "2006-01-02 15:04:05"

// Plain numbers at or above this are read as Unix seconds; smaller ones
// (a bare year, say) go through the date parser.
const minEpoch = 1e8

// Result counts what one reshape pass consumed and produced. Dropped
// counts rows with unparseable timestamps; Duplicates counts rows removed
// as repeats.
type Result struct {
	Dataset    string
	In         int
	Out        int
	Dropped    int
	Duplicates int
}

// NormalizeTimestamp parses raw and renders it in UTC as TimeLayout.
// It reports false when raw is empty or cannot be parsed.
func NormalizeTimestamp(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	if f, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) && math.Abs(f) >= minEpoch {
		sec, frac := math.Modf(f)
		return time.Unix(int64(sec), int64(frac*1e9)).UTC().Format(TimeLayout), true
	}

	for _, layout := range []string{time.RFC3339Nano, TimeLayout} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC().Format(TimeLayout), true
		}
	}

	t, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil {
		return "", false
	}
	return t.UTC().Format(TimeLayout), true
}

// Metric reads an engagement counter. Absent, unparseable and negative
// values count as zero; fractional text such as "12.0" is truncated.
func Metric(row dataset.Row, cols ...string) int64 {
	v, ok := row.First(cols...)
	if !ok {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return int64(f)
}

func setMetric(row dataset.Row, col string, n int64) {
	row[col] = strconv.FormatInt(n, 10)
}

// hashCell applies hash to a present cell and stores the digest under dst.
// A null source cell leaves dst null.
func hashCell(dst dataset.Row, col string, src string, ok bool, hash func(any) anonymize.Digest) {
	if !ok {
		delete(dst, col)
		return
	}
	v, valid := hash(src).Value()
	dst.Set(col, v, valid)
}

// copyCell copies a cell from src to dst under a possibly different name.
func copyCell(dst, src dataset.Row, to, from string) {
	v, ok := src.Get(from)
	dst.Set(to, v, ok)
}
