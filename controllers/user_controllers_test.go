package controllers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginRejectsWrongSecret(t *testing.T) {
	h := newHarness(t)

	code, resp := h.do(http.MethodPost, "/login", "", map[string]string{"id": "root", "secret": "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, resp.Status)

	code, _ = h.do(http.MethodPost, "/login", "", map[string]string{"id": "ghost", "secret": "rootsecret"})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestMeReportsTokenOwner(t *testing.T) {
	h := newHarness(t)

	code, resp := h.do(http.MethodGet, "/staff/me", h.waiter, nil)
	require.Equal(t, http.StatusOK, code)
	var me struct {
		ID   string `json:"id"`
		Role string `json:"role"`
	}
	h.decode(resp, &me)
	assert.Equal(t, "waiter", me.ID)
	assert.Equal(t, "staff", me.Role)
}

func TestAdminRoutesNeedAdminRole(t *testing.T) {
	h := newHarness(t)

	code, resp := h.do(http.MethodPost, "/admin/desks", h.waiter, map[string]interface{}{"name": "T1", "capacity": 2})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "NoPermission", resp.Message)

	code, _ = h.do(http.MethodPost, "/admin/desks", "", map[string]interface{}{"name": "T1", "capacity": 2})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestRegisterStaff(t *testing.T) {
	h := newHarness(t)
	body := map[string]string{"id": "gordon", "secret": "kitchen-secret", "role": "chef"}

	code, resp := h.do(http.MethodPost, "/admin/staff", h.admin, body)
	require.Equal(t, http.StatusCreated, code, resp.Message)
	assert.Equal(t, "Success", resp.Message)

	code, resp = h.do(http.MethodPost, "/admin/staff", h.admin, body)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "Exists", resp.Message)

	chef := h.login("gordon", "kitchen-secret")
	code, _ = h.do(http.MethodGet, "/staff/requests", chef, nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = h.do(http.MethodPost, "/admin/staff", h.admin, map[string]string{"id": "x", "secret": "short", "role": "chef"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = h.do(http.MethodPost, "/admin/staff", h.admin, map[string]string{"id": "x", "secret": "long-enough", "role": "cleaner"})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestLogoutRevokesToken(t *testing.T) {
	h := newHarness(t)

	code, _ := h.do(http.MethodPost, "/staff/logout", h.waiter, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = h.do(http.MethodGet, "/staff/me", h.waiter, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}
