package reshape

import (
	"github.com/qepting91/corpus-pipeline/internal/anonymize"
	"github.com/qepting91/corpus-pipeline/internal/dataset"
	"github.com/qepting91/corpus-pipeline/internal/domain"
)

// ForumColumns is the output header of the forum (Reddit) dataset.
var ForumColumns = []string{
	"id", "title", "parent_id", "post_id", "text", "author_name_hash",
	"type", "created_at", "upvotes", "downvotes",
}

// Forum reshapes a Reddit export where posts and comments share one table.
type Forum struct {
	Hasher *anonymize.Hasher
	Repair Repairer
}

func (f Forum) Reshape(raw dataset.Table) ([]dataset.Row, Result) {
	res := Result{Dataset: "forum", In: len(raw.Rows)}

	posts := raw.Filter(isType(domain.TypePost))
	comments := raw.Filter(isType(domain.TypeComment))

	var postIDs []string
	for _, p := range posts {
		if id, ok := p.Get("id"); ok {
			postIDs = append(postIDs, id)
		}
	}
	repair := f.Repair
	if repair == nil {
		repair = KeepExisting{}
	}
	comments = repair.Repair(comments, postIDs)

	var out []dataset.Row
	for _, row := range append(append([]dataset.Row{}, posts...), comments...) {
		rawTime, _ := row.Get("created_utc")
		created, ok := NormalizeTimestamp(rawTime)
		if !ok {
			res.Dropped++
			continue
		}

		o := dataset.Row{
			"type":       row["type"],
			"created_at": created,
		}
		copyCell(o, row, "title", "title")
		text, hasText := row.First("body", "selftext")
		o.Set("text", text, hasText)

		id, hasID := row.Get("id")
		hashCell(o, "id", id, hasID, f.Hasher.Static)
		postID, hasPost := row.Get("post_id")
		hashCell(o, "post_id", postID, hasPost, f.Hasher.Static)
		parent, hasParent := row.Get("parent_id")
		hashCell(o, "parent_id", parent, hasParent, f.Hasher.Random)
		author, hasAuthor := row.Get("author")
		hashCell(o, "author_name_hash", author, hasAuthor, f.Hasher.Random)

		setMetric(o, "upvotes", Metric(row, "ups"))
		setMetric(o, "downvotes", Metric(row, "downs"))

		out = append(out, o)
	}

	res.Out = len(out)
	return out, res
}

// Run reads input, reshapes it and writes the CSV output.
func (f Forum) Run(input, output string) (Result, error) {
	raw, err := dataset.ReadCSV(input)
	if err != nil {
		return Result{Dataset: "forum"}, err
	}
	rows, res := f.Reshape(raw)
	return res, dataset.WriteCSV(output, ForumColumns, rows)
}

func isType(t domain.RecordType) func(dataset.Row) bool {
	return func(r dataset.Row) bool {
		v, _ := r.Get("type")
		return v == string(t)
	}
}
