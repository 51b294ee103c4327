// Package form validates task input and runs the save flow the way the
// add/edit screen does: mark the store busy, write, wait out the save
// delay, clear the busy flag.
package form

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/harrisonrobin/taskboard/pkg/model"
	"github.com/harrisonrobin/taskboard/pkg/store"
)

const (
	MinTitleLength       = 3
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
)

var (
	ErrTitleRequired      = errors.New("title is required")
	ErrTitleTooShort      = errors.New("title must be at least 3 characters long")
	ErrTitleTooLong       = errors.New("title must be at most 100 characters long")
	ErrDescriptionTooLong = errors.New("description must be at most 500 characters long")
)

// Validate checks data and returns every problem found, joined.
// The status is checked too so nothing outside the three known values
// reaches the store.
func Validate(data model.FormData) error {
	var errs []error

	title := strings.TrimSpace(data.Title)
	switch n := utf8.RuneCountInString(title); {
	case n == 0:
		errs = append(errs, ErrTitleRequired)
	case n < MinTitleLength:
		errs = append(errs, ErrTitleTooShort)
	case utf8.RuneCountInString(data.Title) > MaxTitleLength:
		errs = append(errs, ErrTitleTooLong)
	}
	if utf8.RuneCountInString(data.Description) > MaxDescriptionLength {
		errs = append(errs, ErrDescriptionTooLong)
	}
	if !data.Status.Valid() {
		errs = append(errs, model.ErrUnknownStatus)
	}
	return errors.Join(errs...)
}

// Submitter runs validated saves against a store.
type Submitter struct {
	Store *store.Store
	// Delay is how long the store stays in the loading state after a save.
	Delay time.Duration
	// Sleep defaults to time.Sleep.
	Sleep func(time.Duration)
}

// Submit validates data and then adds it, or updates task id when id is
// non-empty. The returned task is the stored version.
func (s Submitter) Submit(id string, data model.FormData) (model.Task, error) {
	if err := Validate(data); err != nil {
		return model.Task{}, err
	}

	sleep := s.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	s.Store.SetLoading(true)
	defer s.Store.SetLoading(false)

	var saved model.Task
	if id != "" {
		s.Store.UpdateTask(id, data)
		saved, _ = s.Store.GetTaskByID(id)
	} else {
		saved = s.Store.AddTask(data)
	}

	if s.Delay > 0 {
		sleep(s.Delay)
	}
	return saved, nil
}
