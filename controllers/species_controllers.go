package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/demeter/models"
	"github.com/yeremiapane/demeter/services"
	"github.com/yeremiapane/demeter/utils"
)

// SpeciesController serves dish categories.
type SpeciesController struct {
	Menu *services.MenuService
}

func NewSpeciesController(menu *services.MenuService) *SpeciesController {
	return &SpeciesController{Menu: menu}
}

type speciesBody struct {
	Name string `json:"name" binding:"required"`
}

// GetAllSpecies -> ?name= looks a single species up by name
func (sc *SpeciesController) GetAllSpecies(c *gin.Context) {
	ctx := c.Request.Context()
	if name := c.Query("name"); name != "" {
		species, err := sc.Menu.FetchSpeciesByName(ctx, name)
		if err != nil {
			respondFailure(c, err)
			return
		}
		utils.RespondJSON(c, http.StatusOK, "Species detail", species)
		return
	}

	all, err := sc.Menu.FetchAllSpecies(ctx)
	if err != nil {
		respondFailure(c, err)
		return
	}
	if all == nil {
		all = []models.Species{}
	}
	utils.RespondJSON(c, http.StatusOK, "List of species", all)
}

func (sc *SpeciesController) GetSpecies(c *gin.Context) {
	id, ok := paramID(c, "species_id")
	if !ok {
		return
	}
	species, err := sc.Menu.FetchSpecies(c.Request.Context(), id)
	if err != nil {
		respondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Species detail", species)
}

func (sc *SpeciesController) CreateSpecies(c *gin.Context) {
	var body speciesBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	species, outcome, err := sc.Menu.CreateSpecies(c.Request.Context(), body.Name)
	if err != nil {
		respondFailure(c, err)
		return
	}
	respondOutcome(c, outcome, http.StatusCreated, species)
}

func (sc *SpeciesController) UpdateSpecies(c *gin.Context) {
	id, ok := paramID(c, "species_id")
	if !ok {
		return
	}
	var body speciesBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	species, outcome, err := sc.Menu.EditSpecies(c.Request.Context(), id, body.Name)
	if err != nil {
		respondFailure(c, err)
		return
	}
	respondOutcome(c, outcome, http.StatusOK, species)
}

// DeleteSpecies -> dishes of the species fall back to no species
func (sc *SpeciesController) DeleteSpecies(c *gin.Context) {
	id, ok := paramID(c, "species_id")
	if !ok {
		return
	}
	outcome, err := sc.Menu.DeleteSpecies(c.Request.Context(), id)
	if err != nil {
		respondFailure(c, err)
		return
	}
	respondOutcome(c, outcome, http.StatusOK, nil)
}
