package agenda

import (
	"errors"
	"testing"

	"github.com/harrisonrobin/taskboard/pkg/form"
	"github.com/harrisonrobin/taskboard/pkg/model"
	"github.com/harrisonrobin/taskboard/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	published []model.Task
	retracted []string
	flushes   int
	failWith  error
	attempts  int
}

func (f *fakePublisher) Publish(t model.Task) error {
	f.attempts++
	if f.failWith != nil {
		return f.failWith
	}
	f.published = append(f.published, t)
	return nil
}

func (f *fakePublisher) Retract(id string) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.retracted = append(f.retracted, id)
	return nil
}

func (f *fakePublisher) Flush() error {
	f.flushes++
	return nil
}

func TestMirrorFollowsStore(t *testing.T) {
	s := store.New()
	pub := &fakePublisher{}
	_, unsubscribe := Attach(s, pub, nil)
	defer unsubscribe()

	task := s.AddTask(model.FormData{Title: "Buy milk", Status: model.PENDING})
	require.Len(t, pub.published, 1)
	assert.Equal(t, task.ID, pub.published[0].ID)

	// flag changes do not republish
	s.SetLoading(true)
	s.SetLoading(false)
	assert.Len(t, pub.published, 1)

	s.UpdateTask(task.ID, model.FormData{Title: "Buy milk", Description: "2%", Status: model.COMPLETED})
	require.Len(t, pub.published, 2)
	assert.Equal(t, model.COMPLETED, pub.published[1].Status)

	s.DeleteTask(task.ID)
	assert.Equal(t, []string{task.ID}, pub.retracted)
	assert.Positive(t, pub.flushes)
}

func TestMirrorSkipsExistingTasksUntilSync(t *testing.T) {
	s := store.New()
	existing := s.AddTask(model.FormData{Title: "Old task", Status: model.PENDING})

	pub := &fakePublisher{}
	m, unsubscribe := Attach(s, pub, nil)
	defer unsubscribe()

	s.AddTask(model.FormData{Title: "New task", Status: model.PENDING})
	require.Len(t, pub.published, 1)
	assert.Equal(t, "New task", pub.published[0].Title)

	require.NoError(t, m.Sync())
	assert.Len(t, pub.published, 3)
	assert.Equal(t, existing.ID, pub.published[1].ID)
}

func TestMirrorFailureSetsStoreError(t *testing.T) {
	s := store.New()
	pub := &fakePublisher{failWith: errors.New("403 forbidden")}
	_, unsubscribe := Attach(s, pub, nil)
	defer unsubscribe()

	task := s.AddTask(model.FormData{Title: "Offline", Status: model.PENDING})
	assert.Contains(t, s.Err(), "403 forbidden")

	// the next successful change clears the flag and retries the push
	pub.failWith = nil
	s.UpdateTask(task.ID, model.FormData{Title: "Online", Status: model.PENDING})
	assert.Empty(t, s.Err())
	require.Len(t, pub.published, 1)
	assert.Equal(t, "Online", pub.published[0].Title)
}

func TestSyncReportsFailures(t *testing.T) {
	s := store.New()
	s.AddTask(model.FormData{Title: "One", Status: model.PENDING})
	pub := &fakePublisher{failWith: errors.New("quota")}
	m, unsubscribe := Attach(s, pub, nil)
	defer unsubscribe()

	assert.Error(t, m.Sync())
}

func TestFailedSubmitIsPublishedOnce(t *testing.T) {
	s := store.New()
	pub := &fakePublisher{failWith: errors.New("offline")}
	_, unsubscribe := Attach(s, pub, nil)
	defer unsubscribe()

	task, err := form.Submitter{Store: s}.Submit("", model.FormData{Title: "Buy milk", Status: model.PENDING})
	require.NoError(t, err)

	assert.Equal(t, 1, pub.attempts, "loading flag changes must not retry the push")
	assert.Contains(t, s.Err(), "offline")
	assert.False(t, s.IsLoading())

	// the next edit retries once
	pub.failWith = nil
	_, err = form.Submitter{Store: s}.Submit(task.ID, model.FormData{Title: "Buy oat milk", Status: model.PENDING})
	require.NoError(t, err)
	assert.Equal(t, 2, pub.attempts)
	require.Len(t, pub.published, 1)
	assert.Equal(t, "Buy oat milk", pub.published[0].Title)
	assert.Empty(t, s.Err())
}
