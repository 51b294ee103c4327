package google

import (
	"context"
	"errors"
	"fmt"

	"github.com/harrisonrobin/taskboard/pkg/auth"
	"github.com/harrisonrobin/taskboard/pkg/index"
	"google.golang.org/api/calendar/v3"
)

// NewClient authenticates through flow and resolves calendarName to its id.
func NewClient(ctx context.Context, flow auth.Flow, calendarName string, idx *index.EventIndex) (*CalendarClient, error) {
	srv, err := flow.CalendarService(ctx)
	if err != nil {
		return nil, err
	}

	calendarID, err := findCalendarID(ctx, srv, calendarName)
	if err != nil {
		return nil, err
	}
	return NewCalendarClient(srv, calendarID, idx), nil
}

func findCalendarID(ctx context.Context, srv *calendar.Service, calendarName string) (string, error) {
	var calendarID string
	err := srv.CalendarList.List().Pages(ctx, func(page *calendar.CalendarList) error {
		for _, item := range page.Items {
			if item.Summary == calendarName {
				calendarID = item.Id
				return errFound
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, errFound) {
		return "", fmt.Errorf("unable to retrieve calendar list: %w", err)
	}
	if calendarID == "" {
		return "", fmt.Errorf("calendar '%s' not found", calendarName)
	}
	return calendarID, nil
}

var errFound = errors.New("calendar found")
