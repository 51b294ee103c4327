// Package store owns the task collection and the transient UI flags.
//
// A Store is built once per process and handed to whoever needs it. All
// changes go through its methods; readers get copies. After every change
// the store writes {tasks, isLoading} through its Persister (if any) and
// then calls each subscriber with the new State, outside the lock, so a
// subscriber may call back into the store.
package store

import (
	"sync"
	"time"

	"github.com/harrisonrobin/taskboard/pkg/idgen"
	"github.com/harrisonrobin/taskboard/pkg/logger"
	"github.com/harrisonrobin/taskboard/pkg/model"
)

// State is a snapshot of the store.
type State struct {
	Tasks     []model.Task
	IsLoading bool
	// Err is the user-visible error message; empty means none.
	Err string
}

func (s State) clone() State {
	out := s
	out.Tasks = append([]model.Task(nil), s.Tasks...)
	return out
}

// Persister mirrors state to durable storage. Implementations must ignore Err.
type Persister interface {
	Persist(State) error
}

// Listener is notified after every change.
type Listener func(State)

type subscription struct {
	id int
	fn Listener
}

type Store struct {
	// writeMu orders mutations and their persistence; mu guards state.
	writeMu sync.Mutex
	mu      sync.RWMutex
	state   State
	subs    []subscription
	nextID  int

	log       *logger.Logger
	now       func() time.Time
	newID     idgen.Generator
	persister Persister
}

// Option configures a Store.
type Option func(*Store)

func WithLogger(log *logger.Logger) Option {
	return func(s *Store) { s.log = log }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDGenerator(gen idgen.Generator) Option {
	return func(s *Store) { s.newID = gen }
}

func WithPersister(p Persister) Option {
	return func(s *Store) { s.persister = p }
}

// WithInitialState seeds the store, typically from a rehydrated snapshot.
func WithInitialState(st State) Option {
	return func(s *Store) { s.state = st.clone() }
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		log:   logger.Discard(),
		now:   time.Now,
		newID: idgen.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.state.Tasks == nil {
		s.state.Tasks = []model.Task{}
	}
	return s
}

// timestamp drops the monotonic reading so values survive a JSON round trip unchanged.
func (s *Store) timestamp() time.Time {
	return s.now().UTC().Round(0)
}

// AddTask appends a new task built from data and clears the error.
func (s *Store) AddTask(data model.FormData) model.Task {
	now := s.timestamp()
	task := model.Task{
		ID:          s.newID(),
		Title:       data.Title,
		Description: data.Description,
		Status:      data.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.mutate(func(st *State) {
		st.Tasks = append(st.Tasks, task)
		st.Err = ""
	})
	s.log.Debug("task added", "id", task.ID, "status", task.Status)
	return task
}

// UpdateTask replaces the editable fields of the task with the given id.
// An unknown id leaves the collection untouched; the error is cleared either way.
func (s *Store) UpdateTask(id string, data model.FormData) {
	now := s.timestamp()
	found := false
	s.mutate(func(st *State) {
		tasks := make([]model.Task, len(st.Tasks))
		for i, t := range st.Tasks {
			if t.ID == id {
				t.Title = data.Title
				t.Description = data.Description
				t.Status = data.Status
				if now.Before(t.CreatedAt) {
					now = t.CreatedAt
				}
				t.UpdatedAt = now
				found = true
			}
			tasks[i] = t
		}
		st.Tasks = tasks
		st.Err = ""
	})
	if !found {
		s.log.Debug("update of unknown task ignored", "id", id)
	}
}

// DeleteTask removes the task with the given id, if present, and clears the error.
func (s *Store) DeleteTask(id string) {
	s.mutate(func(st *State) {
		tasks := make([]model.Task, 0, len(st.Tasks))
		for _, t := range st.Tasks {
			if t.ID != id {
				tasks = append(tasks, t)
			}
		}
		st.Tasks = tasks
		st.Err = ""
	})
}

// GetTaskByID looks a task up by exact id.
func (s *Store) GetTaskByID(id string) (model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.state.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}

func (s *Store) SetLoading(loading bool) {
	s.mutate(func(st *State) { st.IsLoading = loading })
}

// SetError sets the error message. An empty message clears it.
func (s *Store) SetError(msg string) {
	s.mutate(func(st *State) { st.Err = msg })
}

func (s *Store) ClearError() {
	s.SetError("")
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Tasks returns a copy of the collection in insertion order.
func (s *Store) Tasks() []model.Task {
	return s.Snapshot().Tasks
}

func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.IsLoading
}

func (s *Store) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Err
}

// Subscribe registers fn for change notifications and returns a function
// that removes it again.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscription{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// mutate applies fn under the lock, then persists and notifies.
func (s *Store) mutate(fn func(*State)) {
	s.writeMu.Lock()
	s.mu.Lock()
	fn(&s.state)
	snapshot := s.state.clone()
	subs := append([]subscription(nil), s.subs...)
	s.mu.Unlock()

	if s.persister != nil {
		if err := s.persister.Persist(snapshot); err != nil {
			s.log.Warn("could not persist task state", "error", err)
		}
	}
	s.writeMu.Unlock()

	for _, sub := range subs {
		sub.fn(snapshot.clone())
	}
}
