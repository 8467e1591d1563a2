package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/demeter/models"
	"github.com/yeremiapane/demeter/services"
	"github.com/yeremiapane/demeter/utils"
)

// DishController serves the menu: public reads, admin writes.
type DishController struct {
	Catalog *services.Catalog
	Menu    *services.MenuService
}

func NewDishController(catalog *services.Catalog, menu *services.MenuService) *DishController {
	return &DishController{Catalog: catalog, Menu: menu}
}

type dishBody struct {
	Name     string                `json:"name" binding:"required"`
	Variants []models.VariantGroup `json:"variants"`
	Sizes    []string              `json:"sizes" binding:"required"`
	Species  *int64                `json:"species"`
}

func (b dishBody) input() services.DishInput {
	species := models.NoSpecies
	if b.Species != nil {
		species = *b.Species
	}
	return services.DishInput{Name: b.Name, Variants: b.Variants, Sizes: b.Sizes, Species: species}
}

func (dc *DishController) GetAllDishes(c *gin.Context) {
	dishes, err := dc.Catalog.Dishes(c.Request.Context())
	if err != nil {
		respondFailure(c, err)
		return
	}
	if dishes == nil {
		dishes = []models.Dish{}
	}
	utils.RespondJSON(c, http.StatusOK, "List of dishes", dishes)
}

func (dc *DishController) GetDish(c *gin.Context) {
	id, ok := paramID(c, "dish_id")
	if !ok {
		return
	}
	dish, err := dc.Catalog.Dish(c.Request.Context(), id)
	if err != nil {
		respondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dish detail", dish)
}

func (dc *DishController) CreateDish(c *gin.Context) {
	var body dishBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	dish, outcome, err := dc.Menu.CreateDish(c.Request.Context(), body.input())
	if err != nil {
		respondFailure(c, err)
		return
	}
	respondOutcome(c, outcome, http.StatusCreated, dish)
}

func (dc *DishController) UpdateDish(c *gin.Context) {
	id, ok := paramID(c, "dish_id")
	if !ok {
		return
	}
	var body dishBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	dish, outcome, err := dc.Menu.EditDish(c.Request.Context(), id, body.input())
	if err != nil {
		respondFailure(c, err)
		return
	}
	respondOutcome(c, outcome, http.StatusOK, dish)
}

func (dc *DishController) DeleteDish(c *gin.Context) {
	id, ok := paramID(c, "dish_id")
	if !ok {
		return
	}
	outcome, err := dc.Menu.DeleteDish(c.Request.Context(), id)
	if err != nil {
		respondFailure(c, err)
		return
	}
	respondOutcome(c, outcome, http.StatusOK, nil)
}

// ImportDishes -> multipart upload of an .xlsx workbook in field "file"
func (dc *DishController) ImportDishes(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("missing workbook in field \"file\""))
		return
	}
	file, err := header.Open()
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	defer file.Close()

	report, err := dc.Menu.ImportDishes(c.Request.Context(), file)
	if err != nil {
		respondFailure(c, err)
		return
	}
	utils.InfoLogger.Printf("Dish import %s: %d imported, %d skipped", header.Filename, report.Imported, len(report.Skipped))
	utils.RespondJSON(c, http.StatusOK, "Dishes imported", report)
}
