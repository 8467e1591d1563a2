package models

import (
	"errors"
	"fmt"

	"gorm.io/datatypes"
)

var ErrMalformedDish = errors.New("malformed dish")

// VariantGroup is one set of related options on a dish, e.g. milk or syrup.
// Exclusive is advisory: a selection holds at most one index per group anyway.
type VariantGroup struct {
	Exclusive bool     `json:"exclusive"`
	Options   []string `json:"options"`
}

type Dish struct {
	ID       int64                             `gorm:"primaryKey;autoIncrement" json:"id"`
	Name     string                            `gorm:"type:varchar(255);not null" json:"name"`
	Variants datatypes.JSONSlice[VariantGroup] `gorm:"not null" json:"variants"`
	Sizes    datatypes.JSONSlice[string]       `gorm:"not null" json:"sizes"`
	Species  int64                             `gorm:"not null;index" json:"species"`
}

func (Dish) TableName() string {
	return "dish"
}

// Validate checks the catalog shape: every group has an option and at least one size exists.
func (d *Dish) Validate() error {
	if len(d.Sizes) == 0 {
		return fmt.Errorf("%w: no sizes", ErrMalformedDish)
	}
	for i, g := range d.Variants {
		if len(g.Options) == 0 {
			return fmt.Errorf("%w: variant group %d has no options", ErrMalformedDish, i)
		}
	}
	return nil
}
