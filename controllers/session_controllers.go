package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/demeter/models"
	"github.com/yeremiapane/demeter/services"
	"github.com/yeremiapane/demeter/utils"
)

type SessionController struct {
	Sessions *services.SessionManager
}

func NewSessionController(sessions *services.SessionManager) *SessionController {
	return &SessionController{Sessions: sessions}
}

type moveBody struct {
	To string `json:"to" binding:"required"`
}

// StartSession -> POST /staff/desks/:desk/session
func (sc *SessionController) StartSession(c *gin.Context) {
	session, outcome, err := sc.Sessions.Start(c.Request.Context(), c.Param("desk"))
	if err != nil {
		respondFailure(c, err)
		return
	}
	respondOutcome(c, outcome, http.StatusCreated, session)
}

// EndSessionByDesk -> DELETE /staff/desks/:desk/session
func (sc *SessionController) EndSessionByDesk(c *gin.Context) {
	session, outcome, err := sc.Sessions.EndByDesk(c.Request.Context(), c.Param("desk"))
	if err != nil {
		respondFailure(c, err)
		return
	}
	respondOutcome(c, outcome, http.StatusOK, session)
}

// MoveSessionByDesk -> POST /staff/desks/:desk/move
func (sc *SessionController) MoveSessionByDesk(c *gin.Context) {
	var body moveBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	session, outcome, err := sc.Sessions.ChangeDeskByDesk(c.Request.Context(), c.Param("desk"), body.To)
	if err != nil {
		respondFailure(c, err)
		return
	}
	respondOutcome(c, outcome, http.StatusOK, session)
}

// GetAllSessions -> ?open=true lists only open sessions
func (sc *SessionController) GetAllSessions(c *gin.Context) {
	var (
		sessions []models.Session
		err      error
	)
	if c.Query("open") == "true" {
		sessions, err = sc.Sessions.FetchAllOpen(c.Request.Context())
	} else {
		sessions, err = sc.Sessions.FetchAll(c.Request.Context())
	}
	if err != nil {
		respondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of sessions", sessions)
}

func (sc *SessionController) GetSession(c *gin.Context) {
	id, ok := paramID(c, "session_id")
	if !ok {
		return
	}
	var (
		session *models.Session
		err     error
	)
	if c.Query("open") == "true" {
		session, err = sc.Sessions.FetchOnlyOpen(c.Request.Context(), id)
	} else {
		session, err = sc.Sessions.Fetch(c.Request.Context(), id)
	}
	if err != nil {
		respondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Session detail", session)
}

func (sc *SessionController) EndSession(c *gin.Context) {
	id, ok := paramID(c, "session_id")
	if !ok {
		return
	}
	session, outcome, err := sc.Sessions.End(c.Request.Context(), id)
	if err != nil {
		respondFailure(c, err)
		return
	}
	respondOutcome(c, outcome, http.StatusOK, session)
}

func (sc *SessionController) MoveSession(c *gin.Context) {
	id, ok := paramID(c, "session_id")
	if !ok {
		return
	}
	var body moveBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	session, outcome, err := sc.Sessions.ChangeDesk(c.Request.Context(), id, body.To)
	if err != nil {
		respondFailure(c, err)
		return
	}
	respondOutcome(c, outcome, http.StatusOK, session)
}

// GetSessionRequests -> 404 for an unknown session, [] for one without requests
func (sc *SessionController) GetSessionRequests(c *gin.Context) {
	id, ok := paramID(c, "session_id")
	if !ok {
		return
	}
	requests, err := sc.Sessions.FetchRequestsFor(c.Request.Context(), id)
	if err != nil {
		respondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of requests", nonNil(requests))
}

func nonNil(requests []models.Request) []models.Request {
	if requests == nil {
		return []models.Request{}
	}
	return requests
}
