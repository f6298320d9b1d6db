package reshape

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/qepting91/corpus-pipeline/internal/dataset"
)

// Repairer fills in a comment's missing post reference. Implementations
// return new rows and leave their input untouched.
type Repairer interface {
	Repair(comments []dataset.Row, postIDs []string) []dataset.Row
}

// RandomAssignment links each comment to a post drawn uniformly, with
// replacement, from the known post ids. It fabricates links and is only
// suitable for anonymized sample corpora.
type RandomAssignment struct {
	Rand *rand.Rand
}

func (r RandomAssignment) Repair(comments []dataset.Row, postIDs []string) []dataset.Row {
	out := make([]dataset.Row, len(comments))
	for i, c := range comments {
		row := c.Clone()
		if len(postIDs) > 0 {
			row["post_id"] = postIDs[r.Rand.Intn(len(postIDs))]
		}
		out[i] = row
	}
	return out
}

// KeepExisting leaves whatever post reference the raw data carried.
type KeepExisting struct{}

func (KeepExisting) Repair(comments []dataset.Row, _ []string) []dataset.Row {
	out := make([]dataset.Row, len(comments))
	for i, c := range comments {
		out[i] = c.Clone()
	}
	return out
}

// NewRepairer resolves a strategy name from config. A zero seed seeds from
// the clock.
func NewRepairer(name string, seed int64) (Repairer, error) {
	switch name {
	case "random", "":
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		return RandomAssignment{Rand: rand.New(rand.NewSource(seed))}, nil
	case "none":
		return KeepExisting{}, nil
	default:
		return nil, fmt.Errorf("unknown repair strategy %q (use 'random' or 'none')", name)
	}
}
