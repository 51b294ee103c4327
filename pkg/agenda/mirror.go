// Package agenda pushes task changes to an external calendar.
//
// The mirror is one-way: it watches the store, publishes tasks that were
// added or changed, and retracts tasks that disappeared. It never reads
// tasks back. A publishing failure is reported through the store's error
// flag and retried on the next change.
package agenda

import (
	"fmt"

	"github.com/harrisonrobin/taskboard/pkg/logger"
	"github.com/harrisonrobin/taskboard/pkg/model"
	"github.com/harrisonrobin/taskboard/pkg/store"
)

// Publisher is the calendar side of the mirror.
type Publisher interface {
	Publish(task model.Task) error
	Retract(taskID string) error
	Flush() error
}

// Mirror tracks which version of each task has been published.
type Mirror struct {
	store     *store.Store
	publisher Publisher
	log       *logger.Logger

	// published holds the version of each task last pushed.
	published map[string]model.Task
	// seen is the task collection of the last notification.
	seen map[string]model.Task
	// reporting is set while the mirror writes its own error into the store.
	reporting bool
}

// Attach subscribes a mirror to s. Tasks already in s are treated as
// published, so only later changes are pushed; call Sync to push them all.
func Attach(s *store.Store, publisher Publisher, log *logger.Logger) (*Mirror, func()) {
	if log == nil {
		log = logger.Discard()
	}
	m := &Mirror{
		store:     s,
		publisher: publisher,
		log:       log,
	}
	tasks := s.Tasks()
	m.published = versions(tasks)
	m.seen = versions(tasks)
	unsubscribe := s.Subscribe(m.onChange)
	return m, unsubscribe
}

// Sync publishes every task in the store and retracts nothing.
func (m *Mirror) Sync() error {
	var failed int
	for _, t := range m.store.Tasks() {
		if err := m.publisher.Publish(t); err != nil {
			m.log.Warn("agenda publish failed", "task", t.ID, "error", err)
			failed++
			delete(m.published, t.ID)
			continue
		}
		m.published[t.ID] = t
	}
	if err := m.publisher.Flush(); err != nil {
		m.log.Warn("agenda flush failed", "error", err)
	}
	if failed > 0 {
		return fmt.Errorf("agenda: %d of %d tasks could not be published", failed, len(m.store.Tasks()))
	}
	return nil
}

func (m *Mirror) onChange(st store.State) {
	if m.reporting {
		return
	}
	// Flag-only changes do not retry failed pushes; the next task change does.
	current := versions(st.Tasks)
	if sameVersions(m.seen, current) {
		return
	}
	m.seen = current

	var failures []error

	for _, t := range st.Tasks {
		if last, ok := m.published[t.ID]; ok && sameTask(last, t) {
			continue
		}
		if err := m.publisher.Publish(t); err != nil {
			failures = append(failures, fmt.Errorf("publish %s: %w", t.ID, err))
			continue
		}
		m.published[t.ID] = t
		m.log.Debug("agenda published task", "task", t.ID)
	}

	for id := range m.published {
		if _, ok := current[id]; ok {
			continue
		}
		if err := m.publisher.Retract(id); err != nil {
			failures = append(failures, fmt.Errorf("retract %s: %w", id, err))
			continue
		}
		delete(m.published, id)
		m.log.Debug("agenda retracted task", "task", id)
	}

	if err := m.publisher.Flush(); err != nil {
		m.log.Warn("agenda flush failed", "error", err)
	}

	if len(failures) > 0 {
		m.log.Warn("agenda mirror failed", "errors", len(failures), "first", failures[0])
		m.reporting = true
		m.store.SetError(fmt.Sprintf("calendar sync failed: %v", failures[0]))
		m.reporting = false
	}
}

func versions(tasks []model.Task) map[string]model.Task {
	v := make(map[string]model.Task, len(tasks))
	for _, t := range tasks {
		v[t.ID] = t
	}
	return v
}

func sameVersions(a, b map[string]model.Task) bool {
	if len(a) != len(b) {
		return false
	}
	for id, t := range a {
		if other, ok := b[id]; !ok || !sameTask(t, other) {
			return false
		}
	}
	return true
}

func sameTask(a, b model.Task) bool {
	return a.FormData() == b.FormData() &&
		a.CreatedAt.Equal(b.CreatedAt) &&
		a.UpdatedAt.Equal(b.UpdatedAt)
}
