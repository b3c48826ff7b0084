// Package artifacts provides ArtifactRepository implementations. The
// Postgres store persists artifacts for production backfills; the
// in-memory store backs tests and dry runs.
package artifacts

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/minsuk/triblend/internal/contracts"
)

type windowKey struct {
	runID    string
	windowID int
}

// Memory is a mutex-guarded in-memory ArtifactRepository. Window writes
// are write-once: saving a (run_id, window_id) pair that already exists
// is a silent no-op, matching the ON CONFLICT DO NOTHING semantics of
// the Postgres store.
type Memory struct {
	mu      sync.RWMutex
	windows map[windowKey]*contracts.WindowArtifact
	runs    map[string]*contracts.RunMeta
}

// NewMemory creates an empty in-memory artifact store.
func NewMemory() *Memory {
	return &Memory{
		windows: make(map[windowKey]*contracts.WindowArtifact),
		runs:    make(map[string]*contracts.RunMeta),
	}
}

// SaveWindow stores an artifact unless one already exists for the pair.
func (m *Memory) SaveWindow(_ context.Context, a *contracts.WindowArtifact) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := windowKey{runID: a.RunID, windowID: a.WindowID}
	if _, ok := m.windows[key]; ok {
		return nil
	}
	copied := *a
	m.windows[key] = &copied
	return nil
}

// HasWindow reports whether an artifact exists for the exact triple.
func (m *Memory) HasWindow(_ context.Context, runID string, windowID int, inputHash string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.windows[windowKey{runID: runID, windowID: windowID}]
	return ok && a.InputHash == inputHash, nil
}

// GetWindow returns the stored artifact or an error when absent.
func (m *Memory) GetWindow(_ context.Context, runID string, windowID int) (*contracts.WindowArtifact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.windows[windowKey{runID: runID, windowID: windowID}]
	if !ok {
		return nil, fmt.Errorf("artifact not found: run=%s window=%d", runID, windowID)
	}
	copied := *a
	return &copied, nil
}

// ListWindows returns every artifact of a run sorted by window ID.
func (m *Memory) ListWindows(_ context.Context, runID string) ([]*contracts.WindowArtifact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*contracts.WindowArtifact
	for key, a := range m.windows {
		if key.runID != runID {
			continue
		}
		copied := *a
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WindowID < out[j].WindowID })
	return out, nil
}

// SaveRunMeta stores or replaces the run-level record.
func (m *Memory) SaveRunMeta(_ context.Context, meta *contracts.RunMeta) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *meta
	m.runs[meta.RunID] = &copied
	return nil
}

// GetRunMeta returns the run record or an error when absent.
func (m *Memory) GetRunMeta(_ context.Context, runID string) (*contracts.RunMeta, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	meta, ok := m.runs[runID]
	if !ok {
		return nil, fmt.Errorf("run meta not found: run=%s", runID)
	}
	copied := *meta
	return &copied, nil
}
