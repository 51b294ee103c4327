package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/harrisonrobin/taskboard/pkg/index"
	"github.com/harrisonrobin/taskboard/pkg/model"
	"github.com/harrisonrobin/taskboard/pkg/persist"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// fakeCalendar is just enough of the Calendar v3 events API for the client.
type fakeCalendar struct {
	mu      sync.Mutex
	events  map[string]*calendar.Event
	nextID  int
	patches int
}

func (f *fakeCalendar) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	const prefix = "/calendars/cal-1/events"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		http.NotFound(w, r)
		return
	}
	eventID := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, prefix), "/")

	switch {
	case eventID == "" && r.Method == http.MethodGet:
		prop := r.URL.Query().Get("privateExtendedProperty")
		key, value, _ := strings.Cut(prop, "=")
		var items []*calendar.Event
		for _, e := range f.events {
			if e.ExtendedProperties != nil && e.ExtendedProperties.Private[key] == value {
				items = append(items, e)
			}
		}
		json.NewEncoder(w).Encode(&calendar.Events{Items: items})
	case eventID == "" && r.Method == http.MethodPost:
		var e calendar.Event
		json.NewDecoder(r.Body).Decode(&e)
		f.nextID++
		e.Id = fmt.Sprintf("evt%d", f.nextID)
		f.events[e.Id] = &e
		json.NewEncoder(w).Encode(&e)
	default:
		e, ok := f.events[eventID]
		if !ok {
			http.Error(w, `{"error":{"code":404,"message":"Not Found"}}`, http.StatusNotFound)
			return
		}
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(e)
		case http.MethodPatch:
			var patch calendar.Event
			json.NewDecoder(r.Body).Decode(&patch)
			if patch.Summary != "" {
				e.Summary = patch.Summary
			}
			if patch.ColorId != "" {
				e.ColorId = patch.ColorId
			}
			if patch.Description != "" {
				e.Description = patch.Description
			}
			if patch.Start != nil {
				e.Start, e.End = patch.Start, patch.End
			}
			f.patches++
			json.NewEncoder(w).Encode(e)
		case http.MethodDelete:
			delete(f.events, eventID)
			w.WriteHeader(http.StatusNoContent)
		}
	}
}

func newTestClient(t *testing.T) (*CalendarClient, *fakeCalendar, *index.EventIndex) {
	t.Helper()
	fake := &fakeCalendar{events: make(map[string]*calendar.Event)}
	ts := httptest.NewServer(fake)
	t.Cleanup(ts.Close)

	srv, err := calendar.NewService(context.Background(),
		option.WithEndpoint(ts.URL+"/"),
		option.WithHTTPClient(ts.Client()),
	)
	if err != nil {
		t.Fatalf("calendar.NewService failed: %v", err)
	}
	idx, err := index.NewEventIndex(persist.NewMemorySlot())
	if err != nil {
		t.Fatal(err)
	}
	return NewCalendarClient(srv, "cal-1", idx), fake, idx
}

func TestPublishCreatesThenPatches(t *testing.T) {
	client, fake, idx := newTestClient(t)
	created := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	task := model.Task{ID: "task-1", Title: "Buy milk", Status: model.PENDING, CreatedAt: created, UpdatedAt: created}

	if err := client.Publish(task); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if len(fake.events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(fake.events))
	}
	if idx.Get("task-1") != "evt1" {
		t.Errorf("Expected index to map task-1 to evt1, got %q", idx.Get("task-1"))
	}

	// unchanged task: no patch
	if err := client.Publish(task); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if fake.patches != 0 {
		t.Errorf("Expected no patch for unchanged task, got %d", fake.patches)
	}

	task.Status = model.COMPLETED
	task.UpdatedAt = created.Add(time.Hour)
	if err := client.Publish(task); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if fake.patches != 1 {
		t.Errorf("Expected one patch, got %d", fake.patches)
	}
	if got := fake.events["evt1"].Summary; got != "✓ Buy milk" {
		t.Errorf("Expected patched summary, got %q", got)
	}
}

func TestPublishFindsEventWithoutIndex(t *testing.T) {
	client, fake, idx := newTestClient(t)
	created := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	task := model.Task{ID: "task-9", Title: "Lost index", Status: model.PENDING, CreatedAt: created, UpdatedAt: created}

	if err := client.Publish(task); err != nil {
		t.Fatal(err)
	}
	idx.Remove("task-9")

	if err := client.Publish(task); err != nil {
		t.Fatal(err)
	}
	if len(fake.events) != 1 {
		t.Errorf("Expected the existing event to be reused, got %d events", len(fake.events))
	}
}

func TestRetract(t *testing.T) {
	client, fake, idx := newTestClient(t)
	created := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	task := model.Task{ID: "task-2", Title: "Walk dog", Status: model.IN_PROGRESS, CreatedAt: created, UpdatedAt: created}

	if err := client.Publish(task); err != nil {
		t.Fatal(err)
	}
	if err := client.Retract("task-2"); err != nil {
		t.Fatalf("Retract failed: %v", err)
	}
	if len(fake.events) != 0 {
		t.Errorf("Expected event to be deleted, %d left", len(fake.events))
	}
	if idx.Get("task-2") != "" {
		t.Error("Expected index entry to be removed")
	}

	if err := client.Retract("never-published"); err != nil {
		t.Errorf("Retract of unknown task failed: %v", err)
	}
}
