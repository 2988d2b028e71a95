package taskstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/runoshun/todo/internal/domain"
)

// Encode serializes tasks as a JSON array of {id, text, done}.
// A nil collection encodes as "[]".
func Encode(tasks []domain.Task) ([]byte, error) {
	if tasks == nil {
		tasks = []domain.Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return nil, fmt.Errorf("marshal tasks: %w", err)
	}
	return data, nil
}

// Decode parses a stored blob.
// The blob must be a JSON array; anything else is an error. Entries that do
// not have the task shape, have a non-positive ID or a blank text, or repeat
// an earlier ID are skipped and counted in dropped.
func Decode(data []byte) (tasks []domain.Task, dropped int, err error) {
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, 0, fmt.Errorf("parse tasks: %w", err)
	}
	if entries == nil {
		// "null"
		return nil, 0, fmt.Errorf("parse tasks: not an array")
	}

	tasks = make([]domain.Task, 0, len(entries))
	seen := make(map[int64]bool, len(entries))
	for _, raw := range entries {
		task, ok := decodeEntry(raw)
		if !ok || seen[task.ID] {
			dropped++
			continue
		}
		seen[task.ID] = true
		tasks = append(tasks, task)
	}
	return tasks, dropped, nil
}

// decodeEntry decodes one array element, reporting false for a mismatched shape.
func decodeEntry(raw json.RawMessage) (domain.Task, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil || fields == nil {
		return domain.Task{}, false
	}

	num, ok := fields["id"].(json.Number)
	if !ok {
		return domain.Task{}, false
	}
	id, err := num.Int64()
	if err != nil || id <= 0 {
		return domain.Task{}, false
	}

	text, ok := fields["text"].(string)
	if !ok {
		return domain.Task{}, false
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Task{}, false
	}

	done := false
	if v, present := fields["done"]; present && v != nil {
		b, ok := v.(bool)
		if !ok {
			return domain.Task{}, false
		}
		done = b
	}

	return domain.Task{ID: id, Text: text, Done: done}, true
}
