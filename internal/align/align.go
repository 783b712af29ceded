package align

import (
	"fmt"
	"sort"
)

// Status is the status of one base line relative to a variant.
type Status int

// Statuses of a BaseRow.
const (
	StatusEqual Status = iota
	StatusChange
	StatusDelete
)

var statusNames = [...]string{
	StatusEqual:  "equal",
	StatusChange: "change",
	StatusDelete: "delete",
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return statusNames[s]
}

// MarshalText encodes s by name so alignments serialize as readable JSON.
func (s Status) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(statusNames) {
		return nil, fmt.Errorf("align: invalid status %d", int(s))
	}
	return []byte(statusNames[s]), nil
}

// UnmarshalText decodes a status name produced by MarshalText.
func (s *Status) UnmarshalText(b []byte) error {
	for i, name := range statusNames {
		if name == string(b) {
			*s = Status(i)
			return nil
		}
	}
	return fmt.Errorf("align: unknown status %q", string(b))
}

// BaseRow is the alignment of one base line.
//
// For StatusDelete, Text is "" and LineNumber is 0 (the variant has no counterpart). Otherwise Text is the variant line and LineNumber its 1-based number in the variant.
type BaseRow struct {
	Status     Status `json:"status"`
	BaseText   string `json:"baseText"`
	Text       string `json:"text,omitempty"`
	LineNumber int    `json:"lineNumber,omitempty"`
}

// HasVariant reports whether the row carries a variant line.
func (r BaseRow) HasVariant() bool {
	return r.Status != StatusDelete
}

// InsertedLine is a variant-only line.
type InsertedLine struct {
	Text       string `json:"text"`
	LineNumber int    `json:"lineNumber"` // 1-based line number in the variant.
}

// InsertionBatch is the list of variant-only lines anchored after base line Position (0 means before the first base line).
type InsertionBatch struct {
	Position int            `json:"position"`
	Lines    []InsertedLine `json:"lines"`
}

// LineAlignment is a base-anchored alignment of one variant against a base. See the package doc for invariants.
type LineAlignment struct {
	BaseRows  []BaseRow              `json:"baseRows"`
	InsertsAt map[int][]InsertedLine `json:"insertsAt,omitempty"` // nil when the variant adds nothing.
}

// Inserts returns the insertion batches ordered by position.
func (la LineAlignment) Inserts() []InsertionBatch {
	if len(la.InsertsAt) == 0 {
		return nil
	}
	batches := make([]InsertionBatch, 0, len(la.InsertsAt))
	for p, lines := range la.InsertsAt {
		batches = append(batches, InsertionBatch{Position: p, Lines: lines})
	}
	sort.Slice(batches, func(i, j int) bool { return batches[i].Position < batches[j].Position })
	return batches
}

// Variant reconstructs the variant sequence from la.
func (la LineAlignment) Variant() []string {
	var out []string
	la.walkVariant(func(text string, _ int) {
		out = append(out, text)
	})
	return out
}

// walkVariant calls fn for every variant line in reconstruction order (insertions at p, then base row p).
func (la LineAlignment) walkVariant(fn func(text string, lineNumber int)) {
	for p := 0; p <= len(la.BaseRows); p++ {
		for _, ins := range la.InsertsAt[p] {
			fn(ins.Text, ins.LineNumber)
		}
		if p < len(la.BaseRows) && la.BaseRows[p].HasVariant() {
			fn(la.BaseRows[p].Text, la.BaseRows[p].LineNumber)
		}
	}
}

// Stats counts lines by outcome.
type Stats struct {
	Equal   int `json:"equal"`
	Changed int `json:"changed"`
	Deleted int `json:"deleted"`
	Added   int `json:"added"`
}

// Stats returns line counts by outcome.
func (la LineAlignment) Stats() Stats {
	var st Stats
	for _, r := range la.BaseRows {
		switch r.Status {
		case StatusEqual:
			st.Equal++
		case StatusChange:
			st.Changed++
		case StatusDelete:
			st.Deleted++
		}
	}
	for _, lines := range la.InsertsAt {
		st.Added += len(lines)
	}
	return st
}

// Identical reports whether the variant is the base, unchanged.
func (st Stats) Identical() bool {
	return st.Changed == 0 && st.Deleted == 0 && st.Added == 0
}
