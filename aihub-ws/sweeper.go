package aihubws

import (
	"context"
	"fmt"
	"sync"

	aihubcli "github.com/ShyamalShah3/ai-hub-be/aihub-cli"
	"github.com/ShyamalShah3/ai-hub-be/aihub-ws/connectiondao"
	"github.com/ShyamalShah3/ai-hub-be/aihub-ws/publish"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const ConnectionsSweptMetric aihubcli.MetricName = "ConnectionsSwept"

// Pinger checks whether a connection is still reachable.
type Pinger interface {
	Ping(ctx context.Context, endpoint, connectionID string) error
}

// SweepStore lists and removes connection records.
type SweepStore interface {
	Each(ctx context.Context, callback func(conn connectiondao.Connection) error) error
	DeleteMany(ctx context.Context, connectionIDs ...string) error
}

// Sweeper removes registry records whose WebSocket connection is gone. A
// record normally disappears with the $disconnect event; the sweeper covers
// deliveries that never arrived.
type Sweeper struct {
	Connections SweepStore
	Pinger      Pinger
	Logger      zerolog.Logger
	Metrics     *aihubcli.Metrics
	Concurrency int  // max concurrent pings (default 50)
	Dry         bool // report stale records without deleting them
}

// Sweep scans the connections table, pings every connection, and deletes the
// records whose connection no longer exists.
func (s *Sweeper) Sweep(ctx context.Context) error {
	var conns []connectiondao.Connection
	if err := s.Connections.Each(ctx, func(conn connectiondao.Connection) error {
		conns = append(conns, conn)
		return nil
	}); err != nil {
		return fmt.Errorf("failed to list connections: %w", err)
	}

	concurrency := s.Concurrency
	if concurrency <= 0 {
		concurrency = 50
	}

	var mu sync.Mutex
	var gone []string

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, conn := range conns {
		conn := conn
		g.Go(func() error {
			err := s.Pinger.Ping(ctx, conn.Endpoint, conn.ConnectionID)
			if err == nil {
				return nil
			}
			if publish.IsGone(err) {
				mu.Lock()
				gone = append(gone, conn.ConnectionID)
				mu.Unlock()
				return nil
			}
			return fmt.Errorf("failed to ping connection %v: %w", conn.ConnectionID, err)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	s.Logger.Info().
		Int("connections", len(conns)).
		Int("gone", len(gone)).
		Msg("swept connections")

	if len(gone) == 0 {
		return nil
	}

	if s.Dry {
		s.Logger.Info().Strs("connection_ids", gone).Msg("dry run, keeping stale records")
		return nil
	}

	if err := s.Connections.DeleteMany(ctx, gone...); err != nil {
		return fmt.Errorf("failed to delete stale connections: %w", err)
	}
	if s.Metrics != nil {
		s.Metrics.Gauge(ctx, ConnectionsSweptMetric, float64(len(gone)))
	}
	return nil
}
