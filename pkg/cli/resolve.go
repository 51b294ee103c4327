package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/harrisonrobin/taskboard/pkg/model"
)

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrAmbiguousID  = errors.New("ambiguous task id")
)

// shortIDLength is how much of an id the list shows. Time-ordered ids
// share their leading characters, so the tail is shown.
const shortIDLength = 8

// resolveID finds the task whose id is ref, or the only one starting or
// ending with ref.
func resolveID(tasks []model.Task, ref string) (model.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.Task{}, fmt.Errorf("%w: empty id", ErrTaskNotFound)
	}

	var matches []model.Task
	for _, t := range tasks {
		if t.ID == ref {
			return t, nil
		}
		if strings.HasPrefix(t.ID, ref) || strings.HasSuffix(t.ID, ref) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return model.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return model.Task{}, fmt.Errorf("%w: %s matches %d tasks", ErrAmbiguousID, ref, len(matches))
	}
}

func shortID(id string) string {
	if len(id) <= shortIDLength {
		return id
	}
	return id[len(id)-shortIDLength:]
}
