/*
PURPOSE:
  In-process run state with the same behaviour as FileStore.

ARCHITECTURE INTEGRATION:
  - Satisfies engine.RunState; used by engine tests.

RELATED FILES:
  - internal/state/store.go
*/

package state

import (
	"time"

	"github.com/daryltucker/ai-tester/internal/model"
)

// MemoryStore is an in-process run state, used by tests and by callers that
// do not want anything written to disk.
type MemoryStore struct {
	Meta      *model.RunMetadata
	Successes []model.SuccessLogEntry
	Errors    []model.ErrorLogEntry
	Resets    int
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// LoadMetadata returns a copy of the stored metadata, or nil.
func (m *MemoryStore) LoadMetadata() (*model.RunMetadata, error) {
	if m.Meta == nil {
		return nil, nil
	}
	meta := *m.Meta
	return &meta, nil
}

// SaveMetadata replaces the stored metadata.
func (m *MemoryStore) SaveMetadata(meta model.RunMetadata) error {
	m.Meta = &meta
	return nil
}

// LoadSuccessSet returns the recorded questions as a set.
func (m *MemoryStore) LoadSuccessSet() (map[string]struct{}, error) {
	done := make(map[string]struct{}, len(m.Successes))
	for _, e := range m.Successes {
		done[e.Question] = struct{}{}
	}
	return done, nil
}

// AppendSuccess records an answered question.
func (m *MemoryStore) AppendSuccess(question string) error {
	m.Successes = append(m.Successes, model.SuccessLogEntry{Question: question})
	return nil
}

// AppendError records a failed question with a UTC timestamp.
func (m *MemoryStore) AppendError(question, errMsg string, ts time.Time) error {
	m.Errors = append(m.Errors, model.ErrorLogEntry{
		Timestamp: ts.UTC().Format(TimestampFormat),
		Question:  question,
		Error:     errMsg,
	})
	return nil
}

// Reset drops all state and counts the call.
func (m *MemoryStore) Reset() error {
	m.Meta = nil
	m.Successes = nil
	m.Errors = nil
	m.Resets++
	return nil
}

// Empty reports whether no state is held.
func (m *MemoryStore) Empty() bool {
	return m.Meta == nil && len(m.Successes) == 0 && len(m.Errors) == 0
}
