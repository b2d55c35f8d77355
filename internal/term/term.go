// Package term reads glossary term records, the dataset behind the graph view.
package term

import (
	"encoding/json"
	"fmt"
)

// Record is one glossary term as stored in the hierarchy dataset.
type Record struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Children   ChildList `json:"children"`
	Slug       string    `json:"slug,omitempty"`
	Summary    string    `json:"summary,omitempty"`
	Categories []string  `json:"categories,omitempty"`
	Featured   bool      `json:"featured,omitempty"`
}

// ChildList holds the ids of a term's child terms.
//
// Older hierarchy exports store children as objects ({"id": ..., "similarity": ...});
// both forms decode to plain ids.
type ChildList []string

// UnmarshalJSON accepts either an array of ids or an array of {"id": ...} objects.
func (c *ChildList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("children must be an array: %w", err)
	}
	if raw == nil {
		*c = nil
		return nil
	}

	ids := make([]string, 0, len(raw))
	for i, item := range raw {
		var id string
		if err := json.Unmarshal(item, &id); err == nil {
			ids = append(ids, id)
			continue
		}
		var obj struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(item, &obj); err != nil {
			return fmt.Errorf("child %d: expected id string or object: %w", i, err)
		}
		ids = append(ids, obj.ID)
	}
	*c = ids
	return nil
}
