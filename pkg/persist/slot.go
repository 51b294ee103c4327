package persist

import (
	"errors"
	"sync"
)

// ErrSlotEmpty is returned by Slot.Load when nothing was saved under the key.
var ErrSlotEmpty = errors.New("slot is empty")

// Slot is a durable key/value cell.
type Slot interface {
	Load(key string) ([]byte, error)
	Save(key string, data []byte) error
}

// MemorySlot keeps values in process memory. Nothing survives the process.
type MemorySlot struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{values: make(map[string][]byte)}
}

func (m *MemorySlot) Load(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return nil, ErrSlotEmpty
	}
	return append([]byte(nil), v...), nil
}

func (m *MemorySlot) Save(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = append([]byte(nil), data...)
	return nil
}
