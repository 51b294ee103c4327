package idgen

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewIsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 10000; i++ {
		id := New()
		if seen[id] {
			t.Fatalf("duplicate id %s after %d calls", id, i)
		}
		seen[id] = true
	}
}

func TestNewIsTimeOrdered(t *testing.T) {
	id := New()
	parsed, err := uuid.Parse(id)
	if err != nil {
		t.Fatalf("id %q is not a uuid: %v", id, err)
	}
	if parsed.Version() != 7 {
		t.Errorf("Expected version 7, got %d", parsed.Version())
	}
}
