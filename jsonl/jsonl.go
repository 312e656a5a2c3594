// Package jsonl reads and writes record collections as line-delimited
// JSON: one object per line, each a mapping of field name to string
// value. It is the default record-pair source the evaluator consumes;
// any producer of ordered string-valued records works equally well.
package jsonl

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/datar-psa/tageval/api"
)

// Load reads every record from a JSONL file, preserving line order.
func Load(path string) ([]api.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open records file: %w", err)
	}
	defer f.Close()

	records, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// Read decodes records from r, one JSON object per line. Blank lines
// are skipped. Non-string values are rejected: the data model is a
// string-valued mapping.
func Read(r io.Reader) ([]api.Record, error) {
	var records []api.Record

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var rec api.Record
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}

	return records, nil
}

// Write serializes records to path as JSONL, one record per line, in
// slice order.
func Write(path string, records []api.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create records file: %w", err)
	}

	if err := WriteTo(f, records); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

// WriteTo serializes records to w as JSONL.
func WriteTo(w io.Writer, records []api.Record) error {
	enc := json.NewEncoder(w)
	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	return nil
}
