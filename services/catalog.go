package services

import (
	"context"
	"fmt"

	"github.com/yeremiapane/demeter/models"
	"gorm.io/gorm"
)

// Catalog is the read-only view of dishes used to validate selections.
type Catalog struct {
	DB *gorm.DB
}

func NewCatalog(db *gorm.DB) *Catalog {
	return &Catalog{DB: db}
}

// loadDish fetches a dish and checks its stored shape.
func loadDish(db *gorm.DB, id int64) (*models.Dish, error) {
	var dish models.Dish
	if err := db.First(&dish, id).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load dish %d: %w", id, err)
	}
	if err := dish.Validate(); err != nil {
		return nil, fmt.Errorf("dish %d: %w", id, err)
	}
	return &dish, nil
}

func (c *Catalog) Dish(ctx context.Context, id int64) (*models.Dish, error) {
	return loadDish(c.DB.WithContext(ctx), id)
}

func (c *Catalog) Dishes(ctx context.Context) ([]models.Dish, error) {
	var dishes []models.Dish
	if err := c.DB.WithContext(ctx).Order("id").Find(&dishes).Error; err != nil {
		return nil, fmt.Errorf("list dishes: %w", err)
	}
	for i := range dishes {
		if err := dishes[i].Validate(); err != nil {
			return nil, fmt.Errorf("dish %d: %w", dishes[i].ID, err)
		}
	}
	return dishes, nil
}

func (c *Catalog) VariantGroups(ctx context.Context, dishID int64) ([]models.VariantGroup, error) {
	dish, err := c.Dish(ctx, dishID)
	if err != nil {
		return nil, err
	}
	return dish.Variants, nil
}

func (c *Catalog) SizeOptions(ctx context.Context, dishID int64) ([]string, error) {
	dish, err := c.Dish(ctx, dishID)
	if err != nil {
		return nil, err
	}
	return dish.Sizes, nil
}

// ValidateSelection reports whether selection and size fit the dish's catalog.
func (c *Catalog) ValidateSelection(ctx context.Context, dishID int64, selection models.Selection, size int) (bool, error) {
	dish, err := c.Dish(ctx, dishID)
	if err != nil {
		return false, err
	}
	return CheckSelection(dish, selection, size) == Success, nil
}

// CheckSelection validates variants before size:
//   - one entry per variant group, in order
//   - each chosen index within its group's options; nil entries always pass
//   - size within the dish's sizes
func CheckSelection(dish *models.Dish, selection models.Selection, size int) Outcome {
	if len(selection) != len(dish.Variants) {
		return VariantDoesntExist
	}
	for i, choice := range selection {
		if choice == nil {
			continue
		}
		if *choice < 0 || *choice >= len(dish.Variants[i].Options) {
			return VariantDoesntExist
		}
	}
	if size < 0 || size >= len(dish.Sizes) {
		return SizeDoesntExist
	}
	return Success
}
