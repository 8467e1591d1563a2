package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/demeter/models"
	"github.com/yeremiapane/demeter/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DishInput is the admin-editable part of a dish.
type DishInput struct {
	Name     string
	Variants []models.VariantGroup
	Sizes    []string
	Species  int64
}

func (in DishInput) toDish() (models.Dish, error) {
	dish := models.Dish{
		Name:     strings.TrimSpace(in.Name),
		Variants: datatypes.JSONSlice[models.VariantGroup](in.Variants),
		Sizes:    datatypes.JSONSlice[string](in.Sizes),
		Species:  in.Species,
	}
	if dish.Variants == nil {
		dish.Variants = datatypes.JSONSlice[models.VariantGroup]{}
	}
	if dish.Name == "" {
		return dish, fmt.Errorf("%w: dish name is empty", ErrInvalidInput)
	}
	if err := dish.Validate(); err != nil {
		return dish, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return dish, nil
}

// MenuService is the admin writer for dishes and species. Reads go through Catalog.
type MenuService struct {
	DB       *gorm.DB
	Notifier Notifier
}

func NewMenuService(db *gorm.DB, notifier Notifier) *MenuService {
	return &MenuService{DB: db, Notifier: orNop(notifier)}
}

// speciesKnown reports whether a dish may reference species id.
func speciesKnown(tx *gorm.DB, id int64) (bool, error) {
	if id == models.NoSpecies {
		return true, nil
	}
	if _, err := fetchSpecies(tx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *MenuService) CreateDish(ctx context.Context, in DishInput) (*models.Dish, Outcome, error) {
	dish, err := in.toDish()
	if err != nil {
		return nil, "", err
	}

	outcome, err := inTx(ctx, s.DB, func(tx *gorm.DB) (Outcome, error) {
		if ok, err := speciesKnown(tx, dish.Species); err != nil || !ok {
			return DoesNotExist, err
		}
		if err := tx.Create(&dish).Error; err != nil {
			return "", fmt.Errorf("insert dish: %w", err)
		}
		return Success, nil
	})
	record("dish.create", outcome, err)
	if outcome != Success {
		return nil, outcome, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{"dish": dish.ID, "name": dish.Name}).Info("dish created")
	s.Notifier.Notify(EventMenuUpdate, dish)
	return &dish, Success, nil
}

func (s *MenuService) EditDish(ctx context.Context, id int64, in DishInput) (*models.Dish, Outcome, error) {
	dish, err := in.toDish()
	if err != nil {
		return nil, "", err
	}
	dish.ID = id

	outcome, err := inTx(ctx, s.DB, func(tx *gorm.DB) (Outcome, error) {
		if _, err := fetchDishRow(tx, id); err != nil {
			if errors.Is(err, ErrNotFound) {
				return DoesNotExist, nil
			}
			return "", err
		}
		if ok, err := speciesKnown(tx, dish.Species); err != nil || !ok {
			return DoesNotExist, err
		}
		if err := tx.Save(&dish).Error; err != nil {
			return "", fmt.Errorf("update dish %d: %w", id, err)
		}
		return Success, nil
	})
	record("dish.edit", outcome, err)
	if outcome != Success {
		return nil, outcome, err
	}

	utils.InfoLogger.WithField("dish", id).Info("dish edited")
	s.Notifier.Notify(EventMenuUpdate, dish)
	return &dish, Success, nil
}

// DeleteDish leaves requests that point at the dish in place; editing them later answers DoesNotExist.
func (s *MenuService) DeleteDish(ctx context.Context, id int64) (Outcome, error) {
	outcome, err := func() (Outcome, error) {
		res := s.DB.WithContext(ctx).Delete(&models.Dish{}, id)
		if res.Error != nil {
			return "", fmt.Errorf("delete dish %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return DoesNotExist, nil
		}
		return Success, nil
	}()
	record("dish.delete", outcome, err)

	if outcome == Success {
		utils.InfoLogger.WithField("dish", id).Info("dish deleted")
		s.Notifier.Notify(EventMenuUpdate, models.Dish{ID: id})
	}
	return outcome, err
}

// fetchDishRow loads a dish without validating its shape, for admin rewrites.
func fetchDishRow(db *gorm.DB, id int64) (*models.Dish, error) {
	var dish models.Dish
	if err := db.First(&dish, id).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load dish %d: %w", id, err)
	}
	return &dish, nil
}

func fetchSpecies(db *gorm.DB, id int64) (*models.Species, error) {
	var species models.Species
	if err := db.First(&species, id).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load species %d: %w", id, err)
	}
	return &species, nil
}

// CreateSpecies answers Exists when the name is taken.
func (s *MenuService) CreateSpecies(ctx context.Context, name string) (*models.Species, Outcome, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, "", fmt.Errorf("%w: species name is empty", ErrInvalidInput)
	}

	species := models.Species{Name: name}
	outcome, err := inTx(ctx, s.DB, func(tx *gorm.DB) (Outcome, error) {
		var count int64
		if err := tx.Model(&models.Species{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return "", fmt.Errorf("count species: %w", err)
		}
		if count > 0 {
			return Exists, nil
		}
		if err := tx.Create(&species).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return Exists, nil
			}
			return "", fmt.Errorf("insert species: %w", err)
		}
		return Success, nil
	})
	record("species.create", outcome, err)
	if outcome != Success {
		return nil, outcome, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{"species": species.ID, "name": name}).Info("species created")
	s.Notifier.Notify(EventMenuUpdate, species)
	return &species, Success, nil
}

func (s *MenuService) EditSpecies(ctx context.Context, id int64, name string) (*models.Species, Outcome, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, "", fmt.Errorf("%w: species name is empty", ErrInvalidInput)
	}

	species := models.Species{ID: id, Name: name}
	outcome, err := inTx(ctx, s.DB, func(tx *gorm.DB) (Outcome, error) {
		if _, err := fetchSpecies(tx, id); err != nil {
			if errors.Is(err, ErrNotFound) {
				return DoesNotExist, nil
			}
			return "", err
		}
		if err := tx.Save(&species).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return Exists, nil
			}
			return "", fmt.Errorf("update species %d: %w", id, err)
		}
		return Success, nil
	})
	record("species.edit", outcome, err)
	if outcome != Success {
		return nil, outcome, err
	}

	s.Notifier.Notify(EventMenuUpdate, species)
	return &species, Success, nil
}

// DeleteSpecies detaches every dish of the species before removing it.
func (s *MenuService) DeleteSpecies(ctx context.Context, id int64) (Outcome, error) {
	var detached int64
	outcome, err := inTx(ctx, s.DB, func(tx *gorm.DB) (Outcome, error) {
		if _, err := fetchSpecies(tx, id); err != nil {
			if errors.Is(err, ErrNotFound) {
				return DoesNotExist, nil
			}
			return "", err
		}

		res := tx.Model(&models.Dish{}).Where("species = ?", id).Update("species", models.NoSpecies)
		if res.Error != nil {
			return "", fmt.Errorf("detach dishes from species %d: %w", id, res.Error)
		}
		detached = res.RowsAffected

		if err := tx.Delete(&models.Species{}, id).Error; err != nil {
			return "", fmt.Errorf("delete species %d: %w", id, err)
		}
		return Success, nil
	})
	record("species.delete", outcome, err)

	if outcome == Success {
		utils.InfoLogger.WithFields(logrus.Fields{"species": id, "detached_dishes": detached}).Info("species deleted")
		s.Notifier.Notify(EventMenuUpdate, models.Species{ID: id})
	}
	return outcome, err
}

func (s *MenuService) FetchSpecies(ctx context.Context, id int64) (*models.Species, error) {
	return fetchSpecies(s.DB.WithContext(ctx), id)
}

func (s *MenuService) FetchSpeciesByName(ctx context.Context, name string) (*models.Species, error) {
	var species models.Species
	if err := s.DB.WithContext(ctx).Where("name = ?", name).First(&species).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load species %q: %w", name, err)
	}
	return &species, nil
}

func (s *MenuService) FetchAllSpecies(ctx context.Context) ([]models.Species, error) {
	var species []models.Species
	if err := s.DB.WithContext(ctx).Order("id").Find(&species).Error; err != nil {
		return nil, fmt.Errorf("list species: %w", err)
	}
	return species, nil
}
