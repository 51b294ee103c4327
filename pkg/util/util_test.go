package util

import (
	"strings"
	"testing"
	"time"

	"github.com/harrisonrobin/taskboard/pkg/model"
)

func TestConvertTaskToCalendarEvent(t *testing.T) {
	created := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)
	updated := created.Add(2 * time.Hour)
	task := model.Task{
		ID:          "0190a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5b",
		Title:       "Buy milk",
		Description: "2% please",
		Status:      model.COMPLETED,
		CreatedAt:   created,
		UpdatedAt:   updated,
	}

	event, err := ConvertTaskToCalendarEvent(task)
	if err != nil {
		t.Fatalf("ConvertTaskToCalendarEvent failed: %v", err)
	}

	if event.ExtendedProperties == nil || event.ExtendedProperties.Private == nil {
		t.Fatal("ExtendedProperties or Private map is nil")
	}
	if val, ok := event.ExtendedProperties.Private[TaskIDProperty]; !ok || val != task.ID {
		t.Errorf("Expected %s %s, got %v", TaskIDProperty, task.ID, val)
	}
	if event.Summary != "✓ Buy milk" {
		t.Errorf("Expected summary '✓ Buy milk', got '%s'", event.Summary)
	}
	if event.ColorId != "10" {
		t.Errorf("Expected completed color 10, got %s", event.ColorId)
	}
	if event.End.DateTime != "2023-01-01T14:00:00Z" {
		t.Errorf("Expected completed task to end at its last update, got %s", event.End.DateTime)
	}
	if event.Start.DateTime != "2023-01-01T13:30:00Z" {
		t.Errorf("Expected start 30 minutes before end, got %s", event.Start.DateTime)
	}
	if !strings.Contains(event.Description, "2% please") {
		t.Errorf("Expected description to contain the task description, got: %s", event.Description)
	}
	if !strings.Contains(event.Description, "Status: Completed") {
		t.Errorf("Expected description to contain status label, got: %s", event.Description)
	}
}

func TestConvertPendingTaskStartsAtCreation(t *testing.T) {
	created := time.Date(2023, 5, 10, 9, 0, 0, 0, time.UTC)
	task := model.Task{ID: "p1", Title: "Plan", Status: model.PENDING, CreatedAt: created, UpdatedAt: created.Add(time.Hour)}

	event, err := ConvertTaskToCalendarEvent(task)
	if err != nil {
		t.Fatalf("ConvertTaskToCalendarEvent failed: %v", err)
	}
	if event.Summary != "Plan" {
		t.Errorf("Expected no prefix for pending task, got '%s'", event.Summary)
	}
	if event.Start.DateTime != "2023-05-10T09:00:00Z" {
		t.Errorf("Expected start at creation, got %s", event.Start.DateTime)
	}
}

func TestConvertRejectsIncompleteTasks(t *testing.T) {
	if _, err := ConvertTaskToCalendarEvent(model.Task{Title: "no id"}); err == nil {
		t.Error("Expected error for task without id")
	}
	if _, err := ConvertTaskToCalendarEvent(model.Task{ID: "x", Status: model.PENDING}); err == nil {
		t.Error("Expected error for task without timestamps")
	}
}

func TestEventNeedsUpdate(t *testing.T) {
	created := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)
	task := model.Task{ID: "t1", Title: "Write", Status: model.PENDING, CreatedAt: created, UpdatedAt: created}

	existing, _ := ConvertTaskToCalendarEvent(task)
	same, _ := ConvertTaskToCalendarEvent(task)
	patch, err := EventNeedsUpdate(existing, same)
	if err != nil {
		t.Fatalf("EventNeedsUpdate failed: %v", err)
	}
	if patch != nil {
		t.Errorf("Expected no patch for identical events, got %+v", patch)
	}

	task.Status = model.IN_PROGRESS
	task.UpdatedAt = created.Add(time.Hour)
	target, _ := ConvertTaskToCalendarEvent(task)
	patch, err = EventNeedsUpdate(existing, target)
	if err != nil {
		t.Fatalf("EventNeedsUpdate failed: %v", err)
	}
	if patch == nil {
		t.Fatal("Expected a patch after status change")
	}
	if patch.Summary != "‣ Write" || patch.ColorId != "5" || patch.Start == nil {
		t.Errorf("Unexpected patch: %+v", patch)
	}
}

func TestInitials(t *testing.T) {
	cases := map[string]string{
		"buy milk":  "B",
		"  écrire ": "É",
		"":          "",
	}
	for in, want := range cases {
		if got := Initials(in); got != want {
			t.Errorf("Initials(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)
	if got := FormatDate(d); got != "Sun, 1 June 2025" {
		t.Errorf("FormatDate = %q", got)
	}
}
