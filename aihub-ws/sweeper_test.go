package aihubws

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/ShyamalShah3/ai-hub-be/aihub-ws/connectiondao"
	"github.com/rs/zerolog"
	"github.com/tj/assert"
)

type fakeSweepStore struct {
	conns   []connectiondao.Connection
	deleted []string
}

func (f *fakeSweepStore) Each(_ context.Context, callback func(conn connectiondao.Connection) error) error {
	for _, conn := range f.conns {
		if err := callback(conn); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeSweepStore) DeleteMany(_ context.Context, connectionIDs ...string) error {
	f.deleted = append(f.deleted, connectionIDs...)
	return nil
}

type fakePinger struct {
	gone map[string]bool
	err  error
}

func (f fakePinger) Ping(_ context.Context, _, connectionID string) error {
	if f.err != nil {
		return f.err
	}
	if f.gone[connectionID] {
		return errors.New("GoneException: connection is gone")
	}
	return nil
}

func conns(ids ...string) []connectiondao.Connection {
	out := make([]connectiondao.Connection, 0, len(ids))
	for _, id := range ids {
		out = append(out, connectiondao.Connection{
			ConnectionID: id,
			Endpoint:     "https://ws.example.com/production",
		})
	}
	return out
}

func TestSweep(t *testing.T) {
	t.Run("deletes gone connections and keeps live ones", func(t *testing.T) {
		store := &fakeSweepStore{conns: conns("live-1", "gone-1", "live-2", "gone-2")}
		sweeper := &Sweeper{
			Connections: store,
			Pinger:      fakePinger{gone: map[string]bool{"gone-1": true, "gone-2": true}},
			Logger:      zerolog.Nop(),
		}

		err := sweeper.Sweep(context.Background())
		assert.NoError(t, err)

		sort.Strings(store.deleted)
		assert.Equal(t, []string{"gone-1", "gone-2"}, store.deleted)
	})

	t.Run("no deletes when every connection is live", func(t *testing.T) {
		store := &fakeSweepStore{conns: conns("live-1", "live-2")}
		sweeper := &Sweeper{
			Connections: store,
			Pinger:      fakePinger{},
			Logger:      zerolog.Nop(),
		}

		err := sweeper.Sweep(context.Background())
		assert.NoError(t, err)
		assert.Empty(t, store.deleted)
	})

	t.Run("dry run keeps stale records", func(t *testing.T) {
		store := &fakeSweepStore{conns: conns("gone-1")}
		sweeper := &Sweeper{
			Connections: store,
			Pinger:      fakePinger{gone: map[string]bool{"gone-1": true}},
			Logger:      zerolog.Nop(),
			Dry:         true,
		}

		err := sweeper.Sweep(context.Background())
		assert.NoError(t, err)
		assert.Empty(t, store.deleted)
	})

	t.Run("ping failure aborts the sweep", func(t *testing.T) {
		store := &fakeSweepStore{conns: conns("live-1")}
		sweeper := &Sweeper{
			Connections: store,
			Pinger:      fakePinger{err: errors.New("ETIMEDOUT")},
			Logger:      zerolog.Nop(),
		}

		err := sweeper.Sweep(context.Background())
		assert.Error(t, err)
		assert.Empty(t, store.deleted)
	})
}
