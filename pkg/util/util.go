package util

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/harrisonrobin/taskboard/pkg/model"
	"google.golang.org/api/calendar/v3"
)

// TaskIDProperty is the private extended property linking an event to its task.
const TaskIDProperty = "taskboard_id"

// EventDuration is the length of the calendar block drawn for a task.
const EventDuration = 30 * time.Minute

// FormatDate renders t like "Sun, 1 June 2025".
func FormatDate(t time.Time) string {
	return t.Local().Format("Mon, 2 January 2006")
}

// Initials returns the upper-cased first letter of the title, used as the
// list badge. Empty titles yield "".
func Initials(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return ""
	}
	r, _ := utf8.DecodeRuneInString(title)
	return string(unicode.ToUpper(r))
}

// EventNeedsUpdate returns a patch event if the fields shared between a task and a calendar.Event differ.
// It compares the target event (newly converted) with the existing event from the calendar.
func EventNeedsUpdate(existingEvent *calendar.Event, targetEvent *calendar.Event) (*calendar.Event, error) {
	patch := &calendar.Event{}
	needsUpdate := false

	if existingEvent.Summary != targetEvent.Summary {
		patch.Summary = targetEvent.Summary
		needsUpdate = true
	}
	if existingEvent.Description != targetEvent.Description {
		patch.Description = targetEvent.Description
		needsUpdate = true
	}
	if existingEvent.ColorId != targetEvent.ColorId {
		patch.ColorId = targetEvent.ColorId
		needsUpdate = true
	}

	if existingEvent.Start == nil || existingEvent.End == nil {
		patch.Start = targetEvent.Start
		patch.End = targetEvent.End
		return patch, nil
	}
	existingStartTime, err := time.Parse(time.RFC3339, existingEvent.Start.DateTime)
	if err != nil {
		return nil, err
	}
	targetStartTime, err := time.Parse(time.RFC3339, targetEvent.Start.DateTime)
	if err != nil {
		return nil, err
	}
	existingEndTime, err := time.Parse(time.RFC3339, existingEvent.End.DateTime)
	if err != nil {
		return nil, err
	}
	targetEndTime, err := time.Parse(time.RFC3339, targetEvent.End.DateTime)
	if err != nil {
		return nil, err
	}

	if !existingStartTime.Equal(targetStartTime) || !existingEndTime.Equal(targetEndTime) {
		patch.Start = targetEvent.Start
		patch.End = targetEvent.End
		needsUpdate = true
	}

	if needsUpdate {
		return patch, nil
	}
	return nil, nil
}

// ConvertTaskToCalendarEvent builds the calendar event mirroring task.
//
// Completed tasks end at their last update; everything else starts at its
// last update (in progress) or at creation (pending).
func ConvertTaskToCalendarEvent(task model.Task) (*calendar.Event, error) {
	if task.ID == "" {
		return nil, fmt.Errorf("could not convert task without id")
	}
	if task.CreatedAt.IsZero() || task.UpdatedAt.IsZero() {
		return nil, fmt.Errorf("task has no timestamps: %s", task.ID)
	}

	prefix := ""
	switch task.Status {
	case model.COMPLETED:
		prefix = "✓"
	case model.IN_PROGRESS:
		prefix = "‣"
	}

	summary := task.Title
	if prefix != "" {
		summary = fmt.Sprintf("%s %s", prefix, task.Title)
	}

	var start, end time.Time
	switch task.Status {
	case model.COMPLETED:
		end = task.UpdatedAt
		start = end.Add(-EventDuration)
	case model.IN_PROGRESS:
		start = task.UpdatedAt
		end = start.Add(EventDuration)
	default:
		start = task.CreatedAt
		end = start.Add(EventDuration)
	}

	var descBuilder strings.Builder
	if task.Description != "" {
		descBuilder.WriteString(task.Description)
		descBuilder.WriteString("\n\n")
	}
	descBuilder.WriteString(fmt.Sprintf("Status: %s\n", task.Status.Label()))
	descBuilder.WriteString(fmt.Sprintf("Created: %s\n", FormatDate(task.CreatedAt)))
	if !task.UpdatedAt.Equal(task.CreatedAt) {
		descBuilder.WriteString(fmt.Sprintf("Updated: %s\n", FormatDate(task.UpdatedAt)))
	}
	descBuilder.WriteString(fmt.Sprintf("ID: %s\n", task.ID))

	event := &calendar.Event{
		Summary: summary,
		ColorId: task.Status.Config().CalendarColorID,
		Start: &calendar.EventDateTime{
			DateTime: start.UTC().Format(time.RFC3339),
		},
		End: &calendar.EventDateTime{
			DateTime: end.UTC().Format(time.RFC3339),
		},
		Description: descBuilder.String(),
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{
				TaskIDProperty: task.ID,
			},
		},
	}

	return event, nil
}
