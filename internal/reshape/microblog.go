package reshape

import (
	"github.com/qepting91/corpus-pipeline/internal/anonymize"
	"github.com/qepting91/corpus-pipeline/internal/dataset"
)

// Microblog reshapes Twitter API v2 NDJSON shards. Tweets arrive already
// linked, so only identity fields are hashed and created_at reformatted.
type Microblog struct {
	Hasher *anonymize.Hasher
}

// Reshape rewrites one tweet's data object in place. It reports false when
// the tweet must be dropped.
func (m Microblog) Reshape(data map[string]any) bool {
	for _, field := range []string{"id", "author_id"} {
		if v, ok := data[field]; ok {
			data[field] = digestValue(m.Hasher.Random(v))
		}
	}

	if v, ok := data["created_at"]; ok {
		raw, isString := v.(string)
		if !isString {
			return false
		}
		created, ok := NormalizeTimestamp(raw)
		if !ok {
			return false
		}
		data["created_at"] = created
	}
	return true
}

// Run reads every shard in order and writes all surviving tweets as one JSON
// array. Lines without a data object are skipped. Tweets are decoded into
// maps, so each object is written with its keys in sorted order rather than
// the order of the source line.
func (m Microblog) Run(shards []string, output string) (Result, error) {
	res := Result{Dataset: "microblog"}
	tweets := make([]map[string]any, 0)

	for _, shard := range shards {
		err := dataset.ReadNDJSON(shard, func(obj map[string]any) error {
			data, ok := obj["data"].(map[string]any)
			if !ok {
				return nil
			}
			res.In++
			if !m.Reshape(data) {
				res.Dropped++
				return nil
			}
			tweets = append(tweets, data)
			return nil
		})
		if err != nil {
			return res, err
		}
	}

	res.Out = len(tweets)
	return res, dataset.WriteJSON(output, tweets)
}

func digestValue(d anonymize.Digest) any {
	if v, ok := d.Value(); ok {
		return v
	}
	return nil
}
