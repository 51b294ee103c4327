// Package persist mirrors the store's durable fields into a key/value slot
// and reads them back at startup.
//
// Only tasks and the loading flag are written; the error message is
// transient and never leaves the process. Anything unreadable at startup
// is treated as "no saved state".
package persist

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/harrisonrobin/taskboard/pkg/logger"
	"github.com/harrisonrobin/taskboard/pkg/model"
	"github.com/harrisonrobin/taskboard/pkg/store"
)

// Key is the slot key the task state lives under.
const Key = "task-storage"

// document is the on-disk layout.
type document struct {
	Tasks     []model.Task `json:"tasks"`
	IsLoading bool         `json:"isLoading"`
}

// Encode serializes the durable subset of st.
func Encode(st store.State) ([]byte, error) {
	tasks := st.Tasks
	if tasks == nil {
		tasks = []model.Task{}
	}
	return json.Marshal(document{Tasks: tasks, IsLoading: st.IsLoading})
}

// Decode parses data written by Encode. Tasks without an id are dropped,
// repeated ids keep their first occurrence, and an updatedAt earlier than
// createdAt is raised to createdAt.
func Decode(data []byte) (store.State, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return store.State{}, fmt.Errorf("failed to decode task state: %w", err)
	}

	seen := make(map[string]bool, len(doc.Tasks))
	tasks := make([]model.Task, 0, len(doc.Tasks))
	for _, t := range doc.Tasks {
		if t.ID == "" || seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		if t.UpdatedAt.Before(t.CreatedAt) {
			t.UpdatedAt = t.CreatedAt
		}
		tasks = append(tasks, t)
	}
	return store.State{Tasks: tasks, IsLoading: doc.IsLoading}, nil
}

// Adapter connects a store to a slot.
type Adapter struct {
	slot Slot
	log  *logger.Logger
}

func NewAdapter(slot Slot, log *logger.Logger) *Adapter {
	if log == nil {
		log = logger.Discard()
	}
	return &Adapter{slot: slot, log: log}
}

// Persist implements store.Persister.
func (a *Adapter) Persist(st store.State) error {
	data, err := Encode(st)
	if err != nil {
		return err
	}
	return a.slot.Save(Key, data)
}

// Rehydrate returns the saved state, or the empty state when there is none
// or it cannot be read. It never fails.
func (a *Adapter) Rehydrate() store.State {
	empty := store.State{Tasks: []model.Task{}}

	data, err := a.slot.Load(Key)
	if err != nil {
		if !errors.Is(err, ErrSlotEmpty) {
			a.log.Warn("could not read saved tasks, starting empty", "error", err)
		}
		return empty
	}

	st, err := Decode(data)
	if err != nil {
		a.log.Warn("saved tasks are malformed, starting empty", "error", err)
		return empty
	}
	a.log.Debug("rehydrated tasks", "count", len(st.Tasks))
	return st
}
