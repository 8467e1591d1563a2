package controllers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/demeter/models"
	"github.com/yeremiapane/demeter/services"
)

func TestDinerFlow(t *testing.T) {
	h := newHarness(t)
	h.mustDesk("T1", 4)
	dish := h.mustLatte()
	base := "/diner/" + services.DeskToken("T1")

	code, resp := h.do(http.MethodGet, base, "", nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "NoSession", resp.Message)

	session := h.mustSession("T1")

	code, resp = h.do(http.MethodGet, base, "", nil)
	require.Equal(t, http.StatusOK, code)
	var view struct {
		Desk    models.Desk    `json:"desk"`
		Session models.Session `json:"session"`
	}
	h.decode(resp, &view)
	assert.Equal(t, "T1", view.Desk.Name)
	assert.Equal(t, session.ID, view.Session.ID)

	code, resp = h.do(http.MethodPost, base+"/requests", "", map[string]interface{}{
		"dish": dish, "variant": []interface{}{0, nil}, "size": 1, "state": "completed",
	})
	require.Equal(t, http.StatusCreated, code, resp.Message)
	var req models.Request
	h.decode(resp, &req)
	assert.Equal(t, models.RequestPending, req.State)
	assert.Equal(t, session.ID, req.SessionID)

	// diners cannot pick a state, not even a malformed one
	code, resp = h.do(http.MethodPost, base+"/requests", "", map[string]interface{}{
		"dish": dish, "variant": []interface{}{nil, nil}, "size": 0, "state": "burnt",
	})
	require.Equal(t, http.StatusCreated, code, resp.Message)
	h.decode(resp, &req)
	assert.Equal(t, models.RequestPending, req.State)

	code, resp = h.do(http.MethodGet, base+"/requests", "", nil)
	require.Equal(t, http.StatusOK, code)
	var listed []models.Request
	h.decode(resp, &listed)
	assert.Len(t, listed, 2)

	code, _ = h.do(http.MethodDelete, "/staff/desks/T1/session", h.waiter, nil)
	require.Equal(t, http.StatusOK, code)

	code, resp = h.do(http.MethodPost, base+"/requests", "", map[string]interface{}{
		"dish": dish, "variant": []interface{}{nil, nil}, "size": 0,
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "NoSession", resp.Message)
}

func TestDinerUnknownToken(t *testing.T) {
	h := newHarness(t)

	code, _ := h.do(http.MethodGet, "/diner/"+services.DeskToken("nowhere"), "", nil)
	assert.Equal(t, http.StatusNotFound, code)
}
