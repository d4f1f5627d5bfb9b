package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/sandeepkv93/studyplan/internal/model"
)

// Decode parses a JSON array of task objects. Elements are normalized; an
// unparseable due date inside an element is treated as absent.
func Decode(raw []byte) ([]model.Task, error) {
	var elems []json.RawMessage
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrNotSequence
	}
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotSequence, err)
	}
	out := make([]model.Task, 0, len(elems))
	for i, elem := range elems {
		elem = bytes.TrimSpace(elem)
		if len(elem) == 0 || elem[0] != '{' {
			return nil, fmt.Errorf("%w: index %d", ErrNotTask, i)
		}
		var t model.Task
		if err := json.Unmarshal(elem, &t); err != nil {
			return nil, fmt.Errorf("%w: index %d: %v", ErrNotTask, i, err)
		}
		out = append(out, t.Normalize())
	}
	return out, nil
}

// EncodeIndent renders tasks as a pretty-printed JSON array.
func EncodeIndent(tasks []model.Task) ([]byte, error) {
	if tasks == nil {
		tasks = []model.Task{}
	}
	return json.MarshalIndent(tasks, "", "  ")
}
