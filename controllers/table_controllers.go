package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/demeter/services"
	"github.com/yeremiapane/demeter/utils"
)

// DeskController serves the restaurant's tables.
type DeskController struct {
	Desks    *services.DeskRegistry
	Sessions *services.SessionManager
}

func NewDeskController(desks *services.DeskRegistry, sessions *services.SessionManager) *DeskController {
	return &DeskController{Desks: desks, Sessions: sessions}
}

type deskView struct {
	Name     string      `json:"name"`
	Capacity int         `json:"capacity"`
	Token    string      `json:"token"`
	Session  interface{} `json:"session"`
}

// CreateDesk -> POST /admin/desks
func (dc *DeskController) CreateDesk(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Capacity int    `json:"capacity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	outcome, err := dc.Desks.Create(c.Request.Context(), req.Name, req.Capacity)
	if err != nil {
		respondFailure(c, err)
		return
	}
	respondOutcome(c, outcome, http.StatusCreated, deskView{
		Name:     req.Name,
		Capacity: req.Capacity,
		Token:    services.DeskToken(req.Name),
	})
}

// GetAllDesks -> every desk with its open session, if any
func (dc *DeskController) GetAllDesks(c *gin.Context) {
	ctx := c.Request.Context()
	desks, err := dc.Desks.FetchAll(ctx)
	if err != nil {
		respondFailure(c, err)
		return
	}
	open, err := dc.Sessions.FetchAllOpen(ctx)
	if err != nil {
		respondFailure(c, err)
		return
	}
	byDesk := make(map[string]interface{}, len(open))
	for i := range open {
		byDesk[open[i].Desk] = open[i]
	}

	views := make([]deskView, 0, len(desks))
	for _, d := range desks {
		views = append(views, deskView{
			Name:     d.Name,
			Capacity: d.Capacity,
			Token:    services.DeskToken(d.Name),
			Session:  byDesk[d.Name],
		})
	}
	utils.RespondJSON(c, http.StatusOK, "List of desks", views)
}

func (dc *DeskController) GetDesk(c *gin.Context) {
	ctx := c.Request.Context()
	desk, err := dc.Desks.Fetch(ctx, c.Param("desk"))
	if err != nil {
		respondFailure(c, err)
		return
	}
	view := deskView{Name: desk.Name, Capacity: desk.Capacity, Token: services.DeskToken(desk.Name)}
	if s, err := dc.Desks.OpenSessionFor(ctx, desk.Name); err == nil {
		view.Session = s
	}
	utils.RespondJSON(c, http.StatusOK, "Desk detail", view)
}

// DeleteDesk -> refused with TableOccupied while a session is open
func (dc *DeskController) DeleteDesk(c *gin.Context) {
	outcome, err := dc.Sessions.DeleteDesk(c.Request.Context(), c.Param("desk"))
	if err != nil {
		respondFailure(c, err)
		return
	}
	respondOutcome(c, outcome, http.StatusOK, nil)
}
