package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/demeter/database"
	"github.com/yeremiapane/demeter/router"
	"github.com/yeremiapane/demeter/services"
	"github.com/yeremiapane/demeter/utils"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	utils.InitLogger("error")
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type apiResponse struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func call(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) (int, apiResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w.Code, resp
}

// TestEndToEndIntegration runs the main floor flow:
// login, desk and dish setup, open a session, order, cook, close the desk.
func TestEndToEndIntegration(t *testing.T) {
	db := database.NewTestDB(t)
	staff := services.NewStaffService(db)
	staff.Cost = bcrypt.MinCost
	require.NoError(t, staff.EnsureAdmin(context.Background(), "admin", "secret123"))

	r := router.SetupRouter(router.Options{
		DB:     db,
		Tokens: utils.NewTokenManager("integration", time.Hour),
		Clock:  clockwork.NewFakeClockAt(time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC)),
	})

	// 1. login
	code, resp := call(t, r, http.MethodPost, "/login", "", map[string]string{"id": "admin", "secret": "secret123"})
	require.Equal(t, http.StatusOK, code, resp.Message)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &login))
	token := login.Token

	// 2. desk and dish
	code, resp = call(t, r, http.MethodPost, "/admin/desks", token, map[string]interface{}{"name": "T1", "capacity": 4})
	require.Equal(t, http.StatusCreated, code, resp.Message)

	code, resp = call(t, r, http.MethodPost, "/admin/dishes", token, map[string]interface{}{
		"name": "Latte",
		"variants": []map[string]interface{}{
			{"exclusive": true, "options": []string{"whole", "oat", "soy"}},
			{"exclusive": false, "options": []string{"vanilla", "caramel"}},
		},
		"sizes": []string{"small", "medium", "large"},
	})
	require.Equal(t, http.StatusCreated, code, resp.Message)
	var dish struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &dish))

	// 3. open a session
	code, resp = call(t, r, http.MethodPost, "/staff/desks/T1/session", token, nil)
	require.Equal(t, http.StatusCreated, code, resp.Message)
	var session struct {
		ID    int64 `json:"id"`
		Start int64 `json:"start"`
		End   int64 `json:"end"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &session))
	assert.Equal(t, int64(-1), session.End)
	assert.Equal(t, time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC).Unix(), session.Start)

	code, resp = call(t, r, http.MethodPost, "/staff/desks/T1/session", token, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "TableOccupied", resp.Message)

	// 4. order
	sessionPath := "/staff/sessions/" + strconv.FormatInt(session.ID, 10)
	code, resp = call(t, r, http.MethodPost, sessionPath+"/requests", token, map[string]interface{}{
		"dish": dish.ID, "variant": []interface{}{1, nil}, "size": 2, "comment": "no ice",
	})
	require.Equal(t, http.StatusCreated, code, resp.Message)
	var request struct {
		ID    int64 `json:"id"`
		State int   `json:"state"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &request))

	// 5. the diner sees it through the desk token
	code, resp = call(t, r, http.MethodGet, "/diner/"+services.DeskToken("T1")+"/requests", "", nil)
	require.Equal(t, http.StatusOK, code)
	var dinerView []struct {
		ID      int64  `json:"id"`
		Comment string `json:"comment"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &dinerView))
	require.Len(t, dinerView, 1)
	assert.Equal(t, "no ice", dinerView[0].Comment)

	// 6. kitchen
	requestPath := "/staff/requests/" + strconv.FormatInt(request.ID, 10)
	for _, want := range []int{1, 2} {
		code, resp = call(t, r, http.MethodPost, requestPath+"/advance", token, nil)
		require.Equal(t, http.StatusOK, code, resp.Message)
		require.NoError(t, json.Unmarshal(resp.Data, &request))
		assert.Equal(t, want, request.State)
	}

	// 7. close the desk
	code, resp = call(t, r, http.MethodDelete, "/staff/desks/T1/session", token, nil)
	require.Equal(t, http.StatusOK, code, resp.Message)
	code, resp = call(t, r, http.MethodDelete, "/staff/desks/T1/session", token, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "TableUnoccupied", resp.Message)

	// requests outlive their session
	code, resp = call(t, r, http.MethodGet, sessionPath+"/requests", token, nil)
	require.Equal(t, http.StatusOK, code)
	var kept []json.RawMessage
	require.NoError(t, json.Unmarshal(resp.Data, &kept))
	assert.Len(t, kept, 1)
}
