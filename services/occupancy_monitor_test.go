package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/demeter/models"
)

func TestOccupancySnapshot(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	e.mustDesk(t, "T1", 4)
	e.mustDesk(t, "T2", 2)
	s := e.mustStart(t, "T1")
	dish := seedDish(t, e.db)
	first, _, err := e.requests.Create(ctx, s.ID, dish.ID, RequestInput{Selection: models.Selection{nil, nil}})
	require.NoError(t, err)
	_, _, err = e.requests.Create(ctx, s.ID, dish.ID, RequestInput{Selection: models.Selection{nil, nil}})
	require.NoError(t, err)
	_, _, err = e.requests.Advance(ctx, first.ID)
	require.NoError(t, err)

	om := NewOccupancyMonitor(e.db, nil, e.clock)
	snap, err := om.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, OccupancySnapshot{Desks: 2, Occupied: 1, Pending: 1, InKitchen: 1, TakenAt: t0.Unix()}, snap)
}

func TestOccupancyMonitorPublishesOnTick(t *testing.T) {
	e := newEngine(t)
	e.mustDesk(t, "T1", 4)
	events := &recorder{}

	om := NewOccupancyMonitor(e.db, events, e.clock)
	om.Interval = time.Minute
	om.Start()
	defer om.Stop()

	e.clock.BlockUntil(1)
	e.clock.Advance(time.Minute)

	require.Eventually(t, func() bool {
		return len(events.names()) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{EventOccupancy}, events.names())
}
