// Package featurestore provides FeatureRepository implementations over
// the curated dated feature table. The Postgres store serves production
// runs; the in-memory store serves tests and synthetic scenarios.
package featurestore

import (
	"context"
	"sort"
	"time"

	"github.com/minsuk/triblend/internal/contracts"
)

// Memory is an in-memory FeatureRepository. Rows and labels are kept
// sorted by date; reads are pure slices, so the store is safe for
// concurrent readers once populated.
type Memory struct {
	rows   []contracts.FeatureRow
	labels []contracts.Label
}

// NewMemory builds a store from unsorted rows and labels.
func NewMemory(rows []contracts.FeatureRow, labels []contracts.Label) *Memory {
	m := &Memory{
		rows:   append([]contracts.FeatureRow(nil), rows...),
		labels: append([]contracts.Label(nil), labels...),
	}
	sort.Slice(m.rows, func(i, j int) bool { return m.rows[i].Date.Before(m.rows[j].Date) })
	sort.Slice(m.labels, func(i, j int) bool { return m.labels[i].Date.Before(m.labels[j].Date) })
	return m
}

// Rows returns the feature rows in [from, to).
func (m *Memory) Rows(_ context.Context, from, to time.Time) ([]contracts.FeatureRow, error) {
	out := make([]contracts.FeatureRow, 0)
	for _, r := range m.rows {
		if !r.Date.Before(from) && r.Date.Before(to) {
			out = append(out, r)
		}
	}
	return out, nil
}

// Labels returns the labels in [from, to).
func (m *Memory) Labels(_ context.Context, from, to time.Time) ([]contracts.Label, error) {
	out := make([]contracts.Label, 0)
	for _, l := range m.labels {
		if !l.Date.Before(from) && l.Date.Before(to) {
			out = append(out, l)
		}
	}
	return out, nil
}

// AddLabel appends a label out of band. Tests use this to simulate a
// corrupted upstream store.
func (m *Memory) AddLabel(l contracts.Label) {
	m.labels = append(m.labels, l)
	sort.Slice(m.labels, func(i, j int) bool { return m.labels[i].Date.Before(m.labels[j].Date) })
}

// Span returns the first and last row dates, or false when empty.
func (m *Memory) Span() (first, last time.Time, ok bool) {
	if len(m.rows) == 0 {
		return first, last, false
	}
	return m.rows[0].Date, m.rows[len(m.rows)-1].Date, true
}
