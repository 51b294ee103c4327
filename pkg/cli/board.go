package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/harrisonrobin/taskboard/pkg/agenda"
	"github.com/harrisonrobin/taskboard/pkg/auth"
	"github.com/harrisonrobin/taskboard/pkg/config"
	"github.com/harrisonrobin/taskboard/pkg/form"
	"github.com/harrisonrobin/taskboard/pkg/google"
	"github.com/harrisonrobin/taskboard/pkg/index"
	"github.com/harrisonrobin/taskboard/pkg/persist"
	"github.com/harrisonrobin/taskboard/pkg/store"
)

const sqliteFile = "taskboard.db"

// board is an open store plus whatever has to be released afterwards.
type board struct {
	store   *store.Store
	slot    persist.Slot
	mirror  *agenda.Mirror
	closers []func() error
}

func (b *board) submitter(delay time.Duration) form.Submitter {
	return form.Submitter{Store: b.store, Delay: delay}
}

func (b *board) Close() error {
	var firstErr error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (a *app) openSlot() (persist.Slot, func() error, error) {
	switch a.cfg.Backend {
	case config.BackendMemory:
		return persist.NewMemorySlot(), nil, nil
	case config.BackendSQLite:
		if err := os.MkdirAll(a.cfg.DataDir, 0700); err != nil {
			return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		slot, err := persist.OpenSQLiteSlot(filepath.Join(a.cfg.DataDir, sqliteFile))
		if err != nil {
			return nil, nil, err
		}
		return slot, slot.Close, nil
	default:
		return persist.NewFileSlot(a.cfg.DataDir), nil, nil
	}
}

// openBoard rehydrates the store from the configured backend. When
// mirrored is set and a calendar is configured the agenda mirror is
// attached too.
func (a *app) openBoard(ctx context.Context, mirrored bool) (*board, error) {
	slot, closeSlot, err := a.openSlot()
	if err != nil {
		return nil, err
	}
	b := &board{slot: slot}
	if closeSlot != nil {
		b.closers = append(b.closers, closeSlot)
	}

	adapter := persist.NewAdapter(slot, a.log)
	b.store = store.New(
		store.WithLogger(a.log),
		store.WithInitialState(adapter.Rehydrate()),
		store.WithPersister(adapter),
	)
	a.log.Debug("store opened", "backend", a.cfg.Backend, "tasks", len(b.store.Tasks()))

	if mirrored && a.cfg.Calendar != "" {
		if err := a.attachMirror(ctx, b); err != nil {
			b.Close()
			return nil, err
		}
	}
	return b, nil
}

func (a *app) attachMirror(ctx context.Context, b *board) error {
	idx, err := index.NewEventIndex(b.slot)
	if err != nil {
		return err
	}
	flow := auth.Flow{Dir: a.cfg.DataDir, Out: os.Stderr, Log: a.log}
	client, err := google.NewClient(ctx, flow, a.cfg.Calendar, idx)
	if err != nil {
		return fmt.Errorf("could not connect to calendar %q: %w", a.cfg.Calendar, err)
	}
	mirror, unsubscribe := agenda.Attach(b.store, client, a.log)
	b.mirror = mirror
	b.closers = append(b.closers, func() error {
		unsubscribe()
		return nil
	})
	return nil
}
