package google

import (
	"fmt"
	"net/http"

	"github.com/harrisonrobin/taskboard/pkg/index"
	"github.com/harrisonrobin/taskboard/pkg/model"
	"github.com/harrisonrobin/taskboard/pkg/util"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
)

// CalendarClient mirrors tasks into one Google Calendar.
type CalendarClient struct {
	srv        *calendar.Service
	calendarID string
	index      *index.EventIndex
}

// NewCalendarClient creates a new Google Calendar client.
func NewCalendarClient(srv *calendar.Service, calendarID string, idx *index.EventIndex) *CalendarClient {
	return &CalendarClient{srv: srv, calendarID: calendarID, index: idx}
}

// Publish creates the event for task or patches the existing one.
func (c *CalendarClient) Publish(task model.Task) error {
	event, err := util.ConvertTaskToCalendarEvent(task)
	if err != nil {
		return err
	}

	existingEvent, err := c.findEvent(task.ID)
	if err != nil {
		return err
	}

	if existingEvent != nil {
		patch, err := util.EventNeedsUpdate(existingEvent, event)
		if err != nil {
			return fmt.Errorf("could not compare task with its calendar event: %w", err)
		}
		if patch == nil {
			c.remember(task.ID, existingEvent.Id)
			return nil
		}
		updated, err := c.srv.Events.Patch(c.calendarID, existingEvent.Id, patch).Do()
		if err != nil {
			return fmt.Errorf("could not patch event %s: %w", existingEvent.Id, err)
		}
		c.remember(task.ID, updated.Id)
		return nil
	}

	created, err := c.srv.Events.Insert(c.calendarID, event).Do()
	if err != nil {
		return fmt.Errorf("could not create event: %w", err)
	}
	c.remember(task.ID, created.Id)
	return nil
}

// Retract deletes the event mirroring taskID, if there is one.
func (c *CalendarClient) Retract(taskID string) error {
	existingEvent, err := c.findEvent(taskID)
	if err != nil {
		return err
	}
	if existingEvent != nil {
		if err := c.srv.Events.Delete(c.calendarID, existingEvent.Id).Do(); err != nil && !isGone(err) {
			return fmt.Errorf("could not delete event %s: %w", existingEvent.Id, err)
		}
	}
	if c.index != nil {
		c.index.Remove(taskID)
	}
	return nil
}

// Flush saves the task → event index.
func (c *CalendarClient) Flush() error {
	if c.index == nil {
		return nil
	}
	return c.index.Save()
}

// findEvent tries the local index first and falls back to searching by the
// private extended property.
func (c *CalendarClient) findEvent(taskID string) (*calendar.Event, error) {
	if c.index != nil {
		if eventID := c.index.Get(taskID); eventID != "" {
			event, err := c.srv.Events.Get(c.calendarID, eventID).Do()
			if err == nil && event.Status != "cancelled" {
				return event, nil
			}
			c.index.Remove(taskID)
		}
	}

	event, err := c.GetEventByTaskID(taskID)
	if err != nil {
		return nil, fmt.Errorf("error searching for event: %w", err)
	}
	return event, nil
}

func (c *CalendarClient) remember(taskID, eventID string) {
	if c.index != nil {
		c.index.Set(taskID, eventID)
	}
}

// GetEventByTaskID searches for an event carrying taskID in its private extended properties.
func (c *CalendarClient) GetEventByTaskID(taskID string) (*calendar.Event, error) {
	events, err := c.srv.Events.List(c.calendarID).
		PrivateExtendedProperty(fmt.Sprintf("%s=%s", util.TaskIDProperty, taskID)).
		Do()
	if err != nil {
		return nil, err
	}
	if len(events.Items) > 0 {
		return events.Items[0], nil
	}
	return nil, nil
}

func isGone(err error) bool {
	if apiErr, ok := err.(*googleapi.Error); ok {
		return apiErr.Code == http.StatusGone || apiErr.Code == http.StatusNotFound
	}
	return false
}
