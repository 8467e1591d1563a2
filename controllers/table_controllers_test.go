package controllers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/demeter/models"
	"github.com/yeremiapane/demeter/services"
)

type deskView struct {
	Name     string          `json:"name"`
	Capacity int             `json:"capacity"`
	Token    string          `json:"token"`
	Session  *models.Session `json:"session"`
}

func TestCreateDesk(t *testing.T) {
	h := newHarness(t)

	code, resp := h.do(http.MethodPost, "/admin/desks", h.admin, map[string]interface{}{"name": "T1", "capacity": 4})
	require.Equal(t, http.StatusCreated, code)
	var view deskView
	h.decode(resp, &view)
	assert.Equal(t, services.DeskToken("T1"), view.Token)

	code, resp = h.do(http.MethodPost, "/admin/desks", h.admin, map[string]interface{}{"name": "T1", "capacity": 2})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "Exists", resp.Message)

	code, _ = h.do(http.MethodPost, "/admin/desks", h.admin, map[string]interface{}{"name": "T2", "capacity": -1})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestListDesksShowsOpenSessions(t *testing.T) {
	h := newHarness(t)
	h.mustDesk("T2", 2)
	h.mustDesk("T1", 4)
	session := h.mustSession("T1")

	code, resp := h.do(http.MethodGet, "/staff/desks", h.waiter, nil)
	require.Equal(t, http.StatusOK, code)
	var views []deskView
	h.decode(resp, &views)
	require.Len(t, views, 2)

	assert.Equal(t, "T1", views[0].Name)
	require.NotNil(t, views[0].Session)
	assert.Equal(t, session.ID, views[0].Session.ID)
	assert.Nil(t, views[1].Session)

	code, resp = h.do(http.MethodGet, "/staff/desks/T1", h.waiter, nil)
	require.Equal(t, http.StatusOK, code)
	var one deskView
	h.decode(resp, &one)
	assert.Equal(t, 4, one.Capacity)
	require.NotNil(t, one.Session)

	code, _ = h.do(http.MethodGet, "/staff/desks/T9", h.waiter, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestDeleteDeskRefusesOccupiedDesk(t *testing.T) {
	h := newHarness(t)
	h.mustDesk("T1", 4)
	h.mustSession("T1")

	code, resp := h.do(http.MethodDelete, "/admin/desks/T1", h.admin, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "TableOccupied", resp.Message)

	code, _ = h.do(http.MethodDelete, "/staff/desks/T1/session", h.waiter, nil)
	require.Equal(t, http.StatusOK, code)

	code, resp = h.do(http.MethodDelete, "/admin/desks/T1", h.admin, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Success", resp.Message)

	code, resp = h.do(http.MethodDelete, "/admin/desks/T1", h.admin, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "DoesNotExist", resp.Message)
}
