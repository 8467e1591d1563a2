package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/demeter/models"
	"github.com/yeremiapane/demeter/services"
	"github.com/yeremiapane/demeter/utils"
)

// DinerController is the QR code surface: a desk token instead of a login.
type DinerController struct {
	Desks    *services.DeskRegistry
	Requests *services.RequestWorkflow
}

func NewDinerController(desks *services.DeskRegistry, requests *services.RequestWorkflow) *DinerController {
	return &DinerController{Desks: desks, Requests: requests}
}

// openSession resolves the token to its desk's open session and answers the
// failure itself: 404 for an unknown token, NoSession for an empty desk.
func (dc *DinerController) openSession(c *gin.Context) (*models.Desk, *models.Session, bool) {
	ctx := c.Request.Context()
	desk, err := dc.Desks.ResolveToken(ctx, c.Param("token"))
	if err != nil {
		respondFailure(c, err)
		return nil, nil, false
	}
	session, err := dc.Desks.OpenSessionFor(ctx, desk.Name)
	if errors.Is(err, services.ErrNotFound) {
		respondOutcome(c, services.NoSession, http.StatusOK, nil)
		return nil, nil, false
	} else if err != nil {
		respondFailure(c, err)
		return nil, nil, false
	}
	return desk, session, true
}

func (dc *DinerController) GetDesk(c *gin.Context) {
	desk, session, ok := dc.openSession(c)
	if !ok {
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Desk detail", gin.H{"desk": desk, "session": session})
}

func (dc *DinerController) GetRequests(c *gin.Context) {
	_, session, ok := dc.openSession(c)
	if !ok {
		return
	}
	requests, err := dc.Requests.ForSession(c.Request.Context(), session.ID)
	if err != nil {
		respondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of requests", nonNil(requests))
}

// CreateRequest -> diners can only place pending requests
func (dc *DinerController) CreateRequest(c *gin.Context) {
	var body requestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	_, session, ok := dc.openSession(c)
	if !ok {
		return
	}
	req, outcome, err := dc.Requests.Create(c.Request.Context(), session.ID, body.Dish, body.withState(models.RequestPending))
	if err != nil {
		respondFailure(c, err)
		return
	}
	respondOutcome(c, outcome, http.StatusCreated, req)
}
