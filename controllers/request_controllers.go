package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/demeter/models"
	"github.com/yeremiapane/demeter/services"
	"github.com/yeremiapane/demeter/utils"
)

type RequestController struct {
	Requests *services.RequestWorkflow
}

func NewRequestController(requests *services.RequestWorkflow) *RequestController {
	return &RequestController{Requests: requests}
}

// requestBody carries one dish order. Variant holds an option index or null per variant group.
type requestBody struct {
	Dish    int64            `json:"dish"`
	Variant models.Selection `json:"variant"`
	Size    *int             `json:"size" binding:"required"`
	Comment string           `json:"comment"`
	State   string           `json:"state"`
}

var errUnknownState = errors.New("unknown request state")

func (b requestBody) withState(state models.RequestState) services.RequestInput {
	return services.RequestInput{
		Selection: b.Variant,
		Size:      *b.Size,
		Comment:   b.Comment,
		State:     state,
	}
}

// input converts the body. Without a state, Create files the request as pending
// and Edit keeps the stored state.
func (b requestBody) input() (services.RequestInput, error) {
	if b.State == "" {
		in := b.withState(models.RequestPending)
		in.KeepState = true
		return in, nil
	}
	state, ok := models.ParseRequestState(b.State)
	if !ok {
		return services.RequestInput{}, errUnknownState
	}
	return b.withState(state), nil
}

// CreateRequest -> POST /staff/sessions/:session_id/requests
func (rc *RequestController) CreateRequest(c *gin.Context) {
	sessionID, ok := paramID(c, "session_id")
	if !ok {
		return
	}
	var body requestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	in, err := body.input()
	if err != nil {
		respondOutcome(c, services.InvalidState, http.StatusCreated, nil)
		return
	}

	req, outcome, err := rc.Requests.Create(c.Request.Context(), sessionID, body.Dish, in)
	if err != nil {
		respondFailure(c, err)
		return
	}
	respondOutcome(c, outcome, http.StatusCreated, req)
}

// GetRequests -> kitchen queue, ?state=pending|in_kitchen|completed (default pending)
func (rc *RequestController) GetRequests(c *gin.Context) {
	state := models.RequestPending
	if name := c.Query("state"); name != "" {
		parsed, ok := models.ParseRequestState(name)
		if !ok {
			utils.RespondError(c, http.StatusBadRequest, errUnknownState)
			return
		}
		state = parsed
	}

	requests, err := rc.Requests.Queue(c.Request.Context(), state)
	if err != nil {
		respondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of requests", nonNil(requests))
}

func (rc *RequestController) GetRequest(c *gin.Context) {
	id, ok := paramID(c, "request_id")
	if !ok {
		return
	}
	req, err := rc.Requests.Fetch(c.Request.Context(), id)
	if err != nil {
		respondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Request detail", req)
}

// EditRequest -> PUT /staff/requests/:request_id; the state defaults to the current one
func (rc *RequestController) EditRequest(c *gin.Context) {
	id, ok := paramID(c, "request_id")
	if !ok {
		return
	}
	var body requestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	in, err := body.input()
	if err != nil {
		respondOutcome(c, services.InvalidState, http.StatusOK, nil)
		return
	}

	req, outcome, err := rc.Requests.Edit(c.Request.Context(), id, in)
	if err != nil {
		respondFailure(c, err)
		return
	}
	respondOutcome(c, outcome, http.StatusOK, req)
}

func (rc *RequestController) AdvanceRequest(c *gin.Context) {
	id, ok := paramID(c, "request_id")
	if !ok {
		return
	}
	req, outcome, err := rc.Requests.Advance(c.Request.Context(), id)
	if err != nil {
		respondFailure(c, err)
		return
	}
	respondOutcome(c, outcome, http.StatusOK, req)
}

func (rc *RequestController) DeleteRequest(c *gin.Context) {
	id, ok := paramID(c, "request_id")
	if !ok {
		return
	}
	outcome, err := rc.Requests.Delete(c.Request.Context(), id)
	if err != nil {
		respondFailure(c, err)
		return
	}
	respondOutcome(c, outcome, http.StatusOK, nil)
}
