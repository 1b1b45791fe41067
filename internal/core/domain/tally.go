package domain

import (
	"encoding/json"
	"fmt"
)

const (
	MinOptions = 2
	MaxOptions = 10

	tallyVersion = 1
)

// OptionCount is a single entry of a poll's tally.
type OptionCount struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// Tally is the ordered mapping from option label to vote count. The
// option set is fixed at creation time; entry order is display order
// and survives serialization.
type Tally struct {
	entries []OptionCount
}

// NewTally builds a zeroed tally from labels, preserving their order.
// Returns ErrInvalidOptions if fewer than 2 or more than 10 labels are
// given, or if any label is empty or repeated.
func NewTally(labels []string) (Tally, error) {
	if len(labels) < MinOptions || len(labels) > MaxOptions {
		return Tally{}, ErrInvalidOptions
	}

	seen := make(map[string]struct{}, len(labels))
	entries := make([]OptionCount, 0, len(labels))
	for _, label := range labels {
		if label == "" {
			return Tally{}, ErrInvalidOptions
		}
		if _, dup := seen[label]; dup {
			return Tally{}, ErrInvalidOptions
		}
		seen[label] = struct{}{}
		entries = append(entries, OptionCount{Label: label})
	}

	return Tally{entries: entries}, nil
}

// Increment adds one vote to the given option. Returns ErrUnknownOption
// if the label is not part of the tally.
func (t *Tally) Increment(label string) error {
	for i := range t.entries {
		if t.entries[i].Label == label {
			t.entries[i].Count++
			return nil
		}
	}
	return ErrUnknownOption
}

// Count returns the vote count for label, or -1 if the label is not
// part of the tally.
func (t *Tally) Count(label string) int64 {
	for _, e := range t.entries {
		if e.Label == label {
			return e.Count
		}
	}
	return -1
}

// Total is the sum of all option counts.
func (t *Tally) Total() int64 {
	var total int64
	for _, e := range t.entries {
		total += e.Count
	}
	return total
}

// Options returns the entries in display order. The returned slice is
// a copy.
func (t *Tally) Options() []OptionCount {
	out := make([]OptionCount, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of options.
func (t *Tally) Len() int {
	return len(t.entries)
}

// tallyDoc is the persisted form of a Tally. The explicit version field
// makes the storage contract checkable when the schema evolves.
type tallyDoc struct {
	Version int           `json:"version"`
	Options []OptionCount `json:"options"`
}

func (t Tally) MarshalJSON() ([]byte, error) {
	return json.Marshal(tallyDoc{Version: tallyVersion, Options: t.entries})
}

func (t *Tally) UnmarshalJSON(data []byte) error {
	var doc tallyDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to decode tally: %w", err)
	}
	if doc.Version != tallyVersion {
		return fmt.Errorf("unsupported tally version %d", doc.Version)
	}
	t.entries = doc.Options
	return nil
}
