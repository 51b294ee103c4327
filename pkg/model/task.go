package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of a task.
type Status string

const (
	PENDING     Status = "pending"
	IN_PROGRESS Status = "in-progress"
	COMPLETED   Status = "completed"
)

var ErrUnknownStatus = errors.New("unknown status")

// Statuses lists every status in display order.
var Statuses = []Status{IN_PROGRESS, PENDING, COMPLETED}

// StatusConfig holds how a status is presented.
type StatusConfig struct {
	Label string
	Color string
	// CalendarColorID is the Google Calendar event colour used by the agenda mirror.
	CalendarColorID string
}

var statusConfigs = map[Status]StatusConfig{
	PENDING:     {Label: "Pending", Color: "#D0D0D0", CalendarColorID: "8"},
	IN_PROGRESS: {Label: "In Progress", Color: "#FFB03C", CalendarColorID: "5"},
	COMPLETED:   {Label: "Completed", Color: "#368A04", CalendarColorID: "10"},
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	_, ok := statusConfigs[s]
	return ok
}

// Config returns the presentation config for s, falling back to pending.
func (s Status) Config() StatusConfig {
	if c, ok := statusConfigs[s]; ok {
		return c
	}
	return statusConfigs[PENDING]
}

func (s Status) Label() string {
	return s.Config().Label
}

// ParseStatus accepts the wire value ("in-progress") as well as loose CLI
// spellings ("in_progress", "In Progress", "doing").
func ParseStatus(s string) (Status, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("_", "-", " ", "-").Replace(norm)
	switch norm {
	case "pending", "todo":
		return PENDING, nil
	case "in-progress", "inprogress", "doing", "started":
		return IN_PROGRESS, nil
	case "completed", "done":
		return COMPLETED, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

// Task is one user-visible work item.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// FormData is what a form submits to create or edit a task.
type FormData struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      Status `json:"status"`
}

// FormData returns the editable fields of t.
func (t Task) FormData() FormData {
	return FormData{Title: t.Title, Description: t.Description, Status: t.Status}
}
