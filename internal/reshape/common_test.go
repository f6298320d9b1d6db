package reshape

import (
	"math/rand"
	"testing"

	"github.com/qepting91/corpus-pipeline/internal/anonymize"
	"github.com/qepting91/corpus-pipeline/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHasher(t *testing.T) *anonymize.Hasher {
	t.Helper()
	h, err := anonymize.NewHasher([]byte("test-salt"))
	require.NoError(t, err)
	return h
}

func TestNormalizeTimestamp(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   string
		wantOK bool
	}{
		{name: "layout", raw: "2016-11-18 00:15:02", want: "2016-11-18 00:15:02", wantOK: true},
		{name: "rfc3339_millis", raw: "2023-01-01T12:34:56.000Z", want: "2023-01-01 12:34:56", wantOK: true},
		{name: "offset_converted_to_utc", raw: "2016-11-18T22:00:00+01:00", want: "2016-11-18 21:00:00", wantOK: true},
		{name: "epoch_seconds", raw: "1672531200", want: "2023-01-01 00:00:00", wantOK: true},
		{name: "epoch_float", raw: "1672531200.0", want: "2023-01-01 00:00:00", wantOK: true},
		{name: "padded", raw: "  2016-11-18 00:15:02 ", want: "2016-11-18 00:15:02", wantOK: true},
		{name: "empty", raw: "", wantOK: false},
		{name: "garbage", raw: "garbage", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeTimestamp(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestMetric(t *testing.T) {
	row := dataset.Row{"ups": "12.0", "downs": "-3", "bad": "many", "likes": "7"}

	assert.Equal(t, int64(12), Metric(row, "ups"))
	assert.Equal(t, int64(0), Metric(row, "downs"))
	assert.Equal(t, int64(0), Metric(row, "bad"))
	assert.Equal(t, int64(0), Metric(row, "absent"))
	assert.Equal(t, int64(7), Metric(row, "react_like", "likes"))
}

func TestRandomAssignment(t *testing.T) {
	comments := []dataset.Row{{"id": "c1"}, {"id": "c2", "post_id": "old"}, {"id": "c3"}}
	postIDs := []string{"p1", "p2"}

	r := RandomAssignment{Rand: rand.New(rand.NewSource(1))}
	out := r.Repair(comments, postIDs)

	require.Len(t, out, 3)
	for _, row := range out {
		assert.Contains(t, postIDs, row["post_id"])
	}
	_, touched := comments[0]["post_id"]
	assert.False(t, touched, "input rows must not be mutated")
	assert.Equal(t, "old", comments[1]["post_id"])
}

func TestRandomAssignmentWithoutPosts(t *testing.T) {
	r := RandomAssignment{Rand: rand.New(rand.NewSource(1))}
	out := r.Repair([]dataset.Row{{"id": "c1", "post_id": "keep"}}, nil)
	assert.Equal(t, "keep", out[0]["post_id"])
}

func TestKeepExisting(t *testing.T) {
	in := []dataset.Row{{"id": "c1", "post_id": "p9"}, {"id": "c2"}}
	out := KeepExisting{}.Repair(in, []string{"p1"})
	assert.Equal(t, in, out)
}

func TestNewRepairer(t *testing.T) {
	r, err := NewRepairer("random", 42)
	require.NoError(t, err)
	assert.IsType(t, RandomAssignment{}, r)

	r, err = NewRepairer("none", 0)
	require.NoError(t, err)
	assert.IsType(t, KeepExisting{}, r)

	_, err = NewRepairer("guess", 0)
	assert.Error(t, err)
}
