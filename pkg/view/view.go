// Package view computes read-only projections of a task collection.
// Nothing here is cached; callers recompute on every read.
package view

import (
	"strings"

	"github.com/harrisonrobin/taskboard/pkg/model"
)

// FilterBySearch keeps tasks whose title or description contains term,
// ignoring case, in their original order. An empty term returns tasks as is.
func FilterBySearch(tasks []model.Task, term string) []model.Task {
	if term == "" {
		return tasks
	}
	needle := strings.ToLower(term)
	filtered := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if strings.Contains(strings.ToLower(t.Title), needle) ||
			strings.Contains(strings.ToLower(t.Description), needle) {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

// GroupByStatus partitions tasks by status, keeping relative order.
// Statuses with no tasks have no entry.
func GroupByStatus(tasks []model.Task) map[model.Status][]model.Task {
	groups := make(map[model.Status][]model.Task)
	for _, t := range tasks {
		groups[t.Status] = append(groups[t.Status], t)
	}
	return groups
}

// Section is one status heading of the task list.
type Section struct {
	Status model.Status
	Label  string
	Tasks  []model.Task
}

// Sections returns the non-empty groups in display order
// (in progress, pending, completed).
func Sections(tasks []model.Task) []Section {
	groups := GroupByStatus(tasks)
	var sections []Section
	for _, status := range model.Statuses {
		if len(groups[status]) == 0 {
			continue
		}
		sections = append(sections, Section{
			Status: status,
			Label:  status.Label(),
			Tasks:  groups[status],
		})
	}
	return sections
}

// Counts returns the number of tasks per status.
func Counts(tasks []model.Task) map[model.Status]int {
	counts := make(map[model.Status]int, len(model.Statuses))
	for _, t := range tasks {
		counts[t.Status]++
	}
	return counts
}
