package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeskCreate(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	outcome, err := e.desks.Create(ctx, "T1", 4)
	require.NoError(t, err)
	assert.Equal(t, Success, outcome)

	outcome, err = e.desks.Create(ctx, "T1", 6)
	require.NoError(t, err)
	assert.Equal(t, Exists, outcome)

	desk, err := e.desks.Fetch(ctx, "T1")
	require.NoError(t, err)
	assert.Equal(t, 4, desk.Capacity)

	assert.Equal(t, []string{EventDeskCreate}, e.events.names())
}

func TestDeskCreateRejectsBadInput(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	_, err := e.desks.Create(ctx, "  ", 2)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.desks.Create(ctx, "T1", 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDeskDelete(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	e.mustDesk(t, "T1", 4)

	outcome, err := e.desks.Delete(ctx, "T1")
	require.NoError(t, err)
	assert.Equal(t, Success, outcome)

	outcome, err = e.desks.Delete(ctx, "T1")
	require.NoError(t, err)
	assert.Equal(t, DoesNotExist, outcome)

	_, err = e.desks.Fetch(ctx, "T1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeskFetchAllAndNamesWithSpaces(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	e.mustDesk(t, "Terrace 2", 2)
	e.mustDesk(t, "Bar", 1)

	desks, err := e.desks.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, desks, 2)
	assert.Equal(t, "Bar", desks[0].Name)
	assert.Equal(t, "Terrace 2", desks[1].Name)
}

func TestOpenSessionFor(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	e.mustDesk(t, "T1", 4)

	_, err := e.desks.OpenSessionFor(ctx, "T1")
	assert.ErrorIs(t, err, ErrNotFound)

	started := e.mustStart(t, "T1")
	open, err := e.desks.OpenSessionFor(ctx, "T1")
	require.NoError(t, err)
	assert.Equal(t, started.ID, open.ID)
}

func TestResolveToken(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	e.mustDesk(t, "T1", 4)
	e.mustDesk(t, "T2", 2)

	token := DeskToken("T2")
	assert.Len(t, token, 64)

	desk, err := e.desks.ResolveToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "T2", desk.Name)

	_, err = e.desks.ResolveToken(ctx, DeskToken("T9"))
	assert.ErrorIs(t, err, ErrNotFound)
}
