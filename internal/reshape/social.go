package reshape

import (
	"strings"

	"github.com/qepting91/corpus-pipeline/internal/anonymize"
	"github.com/qepting91/corpus-pipeline/internal/dataset"
	"github.com/qepting91/corpus-pipeline/internal/domain"
)

// SocialColumns is the output header of the social (Facebook) dataset.
var SocialColumns = []string{
	"id", "parent_id", "post_id", "text", "author_name_hash", "type", "created_at",
	"like", "love", "haha", "wow", "sad", "angry", "comments", "shares",
}

// reactions maps output metric columns to the raw columns that may carry them.
var reactions = []struct {
	out string
	in  []string
}{
	{"like", []string{"react_like", "like"}},
	{"love", []string{"react_love", "love"}},
	{"haha", []string{"react_haha", "haha"}},
	{"wow", []string{"react_wow", "wow"}},
	{"sad", []string{"react_sad", "sad"}},
	{"angry", []string{"react_angry", "angry"}},
	{"shares", []string{"shares"}},
}

// Social reshapes Facebook page posts and their comments, which arrive as two
// tables linked only through composite keys.
//
// A post's post_id is "<page>_<post>"; a comment's post_name is
// "<post>_<comment>". Splitting both on Delimiter yields the shared post
// identifier, which is hashed with the static hasher on both sides. The
// export has no reply links, so parent_id is always null.
//
// Only comments are deduplicated, on (message, post). Posts that repeat a
// message are distinct page posts and are all kept.
type Social struct {
	Hasher    *anonymize.Hasher
	Delimiter string
}

// linked is a raw row with its relational fields resolved.
type linked struct {
	row     dataset.Row
	typ     domain.RecordType
	id      string
	hasID   bool
	postRef string
	hasRef  bool
	author  string
	hasAuth bool
}

func (s Social) delimiter() string {
	if s.Delimiter == "" {
		return "_"
	}
	return s.Delimiter
}

func (s Social) linkPost(row dataset.Row) linked {
	l := linked{row: row, typ: domain.TypePost}
	if key, ok := row.Get("post_id"); ok {
		page, post, split := strings.Cut(key, s.delimiter())
		if !split {
			page, post = "", key
		}
		l.id, l.hasID = post, true
		l.postRef, l.hasRef = post, true
		if page != "" {
			l.author, l.hasAuth = page, true
		}
	}
	if pageID, ok := row.Get("page_id"); ok {
		l.author, l.hasAuth = pageID, true
	}
	return l
}

func (s Social) linkComment(row dataset.Row) linked {
	l := linked{row: row, typ: domain.TypeComment}
	if key, ok := row.Get("post_name"); ok {
		post, comment, split := strings.Cut(key, s.delimiter())
		l.postRef, l.hasRef = post, true
		if split {
			l.id, l.hasID = comment, true
		} else {
			l.id, l.hasID = key, true
		}
	}
	l.author, l.hasAuth = row.Get("from_id")
	return l
}

func (s Social) Reshape(posts, comments dataset.Table) ([]dataset.Row, Result) {
	res := Result{Dataset: "social", In: len(posts.Rows) + len(comments.Rows)}

	var records []linked
	for _, row := range posts.Rows {
		records = append(records, s.linkPost(row))
	}

	type dupKey struct {
		text, ref       string
		hasText, hasRef bool
	}
	seen := make(map[dupKey]bool)
	commentCount := make(map[string]int64)
	for _, row := range comments.Rows {
		l := s.linkComment(row)
		text, hasText := row.Get("message")
		k := dupKey{text: text, ref: l.postRef, hasText: hasText, hasRef: l.hasRef}
		if seen[k] {
			res.Duplicates++
			continue
		}
		seen[k] = true
		if l.hasRef {
			commentCount[l.postRef]++
		}
		records = append(records, l)
	}

	var out []dataset.Row
	for _, l := range records {
		rawTime, _ := l.row.Get("created_time")
		created, ok := NormalizeTimestamp(rawTime)
		if !ok {
			res.Dropped++
			continue
		}

		o := dataset.Row{
			"type":       string(l.typ),
			"created_at": created,
		}
		copyCell(o, l.row, "text", "message")
		hashCell(o, "id", l.id, l.hasID, s.Hasher.Static)
		hashCell(o, "post_id", l.postRef, l.hasRef, s.Hasher.Static)
		hashCell(o, "author_name_hash", l.author, l.hasAuth, s.Hasher.Random)

		for _, m := range reactions {
			setMetric(o, m.out, Metric(l.row, m.in...))
		}
		var n int64
		if l.typ == domain.TypePost && l.hasRef {
			n = commentCount[l.postRef]
		}
		setMetric(o, "comments", n)

		out = append(out, o)
	}

	res.Out = len(out)
	return out, res
}

// Run reads both input tables, reshapes them and writes the CSV output.
func (s Social) Run(postsPath, commentsPath, output string) (Result, error) {
	posts, err := dataset.ReadCSV(postsPath)
	if err != nil {
		return Result{Dataset: "social"}, err
	}
	comments, err := dataset.ReadCSV(commentsPath)
	if err != nil {
		return Result{Dataset: "social"}, err
	}
	rows, res := s.Reshape(posts, comments)
	return res, dataset.WriteCSV(output, SocialColumns, rows)
}
