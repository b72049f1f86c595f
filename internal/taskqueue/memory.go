package taskqueue

import (
	"context"
	"sync"
)

// Memory is an in-memory Queue for tests. It enforces the same
// name-based dedup as the real queue and can fail selected task ids.
type Memory struct {
	mu    sync.Mutex
	tasks map[string]Task
	// FailIDs maps a task id to the error CreateTask should return.
	FailIDs map[string]error
}

// NewMemory returns an empty in-memory queue.
func NewMemory() *Memory {
	return &Memory{tasks: make(map[string]Task)}
}

func (m *Memory) CreateTask(_ context.Context, t Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.FailIDs[t.ID]; ok {
		return err
	}
	if _, ok := m.tasks[t.ID]; ok {
		return ErrAlreadyExists
	}
	m.tasks[t.ID] = t
	return nil
}

// Tasks returns a copy of the created tasks keyed by id.
func (m *Memory) Tasks() map[string]Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]Task, len(m.tasks))
	for k, v := range m.tasks {
		out[k] = v
	}
	return out
}

// Len returns the number of created tasks.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}
