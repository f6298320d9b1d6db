package dataset

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// maxLineSize bounds a single NDJSON line. Tweet payloads with expansions
// run well past bufio's 64KB default.
const maxLineSize = 16 << 20

// ReadCSV loads a CSV file with a header row.
func ReadCSV(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, err
	}
	defer f.Close()

	t, err := DecodeCSV(f)
	if err != nil {
		return Table{}, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// DecodeCSV parses CSV with a header row. Empty cells are left out of the
// row so they read as null; short rows are allowed.
func DecodeCSV(r io.Reader) (Table, error) {
	// Wrap in BOM stripper
	cr := csv.NewReader(stripBOM(r))
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return Table{}, nil
	}
	if err != nil {
		return Table{}, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	t := Table{Columns: header}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Table{}, err
		}

		row := make(Row, len(header))
		for i, v := range record {
			if i >= len(header) || v == "" {
				continue
			}
			row[header[i]] = v
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// ReadNDJSON calls fn for every non-blank line of a line-delimited JSON
// file. Numbers decode as json.Number so ids keep their exact text.
// A line that is not a JSON object aborts the read.
func ReadNDJSON(path string, fn func(obj map[string]any) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(stripBOM(f))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var obj map[string]any
		if err := dec.Decode(&obj); err != nil {
			return fmt.Errorf("%s:%d: %w", path, line, err)
		}
		if err := fn(obj); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func stripBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	rdr, _, err := br.ReadRune()
	if err != nil {
		return br
	}
	if rdr != '\uFEFF' {
		br.UnreadRune()
	}
	return br
}
