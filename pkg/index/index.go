// Package index remembers which calendar event mirrors which task, so the
// agenda mirror can skip the event search on every change.
package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/harrisonrobin/taskboard/pkg/persist"
)

// SlotKey is where the mapping is stored, next to the task state.
const SlotKey = "agenda-events"

type EventIndex struct {
	mappings map[string]string
	slot     persist.Slot
	mu       sync.RWMutex
	dirty    bool
}

// NewEventIndex loads the mapping from slot. A missing or corrupt mapping
// starts empty; it is only a cache of what the calendar already knows.
func NewEventIndex(slot persist.Slot) (*EventIndex, error) {
	idx := &EventIndex{
		mappings: make(map[string]string),
		slot:     slot,
	}

	data, err := slot.Load(SlotKey)
	switch {
	case errors.Is(err, persist.ErrSlotEmpty):
		return idx, nil
	case err != nil:
		return nil, fmt.Errorf("failed to load event index: %w", err)
	}
	if err := json.Unmarshal(data, &idx.mappings); err != nil || idx.mappings == nil {
		idx.mappings = make(map[string]string)
		idx.dirty = true
	}
	return idx, nil
}

// Save writes the mapping back if it changed.
func (idx *EventIndex) Save() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if !idx.dirty {
		return nil
	}

	data, err := json.Marshal(idx.mappings)
	if err != nil {
		return err
	}
	if err := idx.slot.Save(SlotKey, data); err != nil {
		return err
	}
	idx.dirty = false
	return nil
}

func (idx *EventIndex) Get(taskID string) string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.mappings[taskID]
}

func (idx *EventIndex) Set(taskID, eventID string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.mappings[taskID] != eventID {
		idx.mappings[taskID] = eventID
		idx.dirty = true
	}
}

func (idx *EventIndex) Remove(taskID string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if _, exists := idx.mappings[taskID]; exists {
		delete(idx.mappings, taskID)
		idx.dirty = true
	}
}

func (idx *EventIndex) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.mappings)
}
