package services

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"github.com/yeremiapane/demeter/models"
	"github.com/yeremiapane/demeter/utils"
	"gorm.io/gorm"
)

// Spreadsheet layout for ImportDishes. Row 1 is a header and is skipped.
//
//	A name | B sizes "S,M,L" | C species id or blank | D.. one variant group per cell
//
// A variant cell lists options separated by "|"; a leading "!" marks the group exclusive.
const (
	colName = iota
	colSizes
	colSpecies
	colFirstVariant
)

type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

type ImportReport struct {
	Imported int        `json:"imported"`
	Skipped  []RowError `json:"skipped"`
}

func splitList(cell, sep string) []string {
	var out []string
	for _, part := range strings.Split(cell, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseDishRow(row []string) (DishInput, error) {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	in := DishInput{
		Name:     cell(colName),
		Sizes:    splitList(cell(colSizes), ","),
		Species:  models.NoSpecies,
		Variants: []models.VariantGroup{},
	}

	if raw := cell(colSpecies); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return in, fmt.Errorf("species %q is not a number", raw)
		}
		in.Species = id
	}

	for i := colFirstVariant; i < len(row); i++ {
		raw := cell(i)
		if raw == "" {
			continue
		}
		group := models.VariantGroup{}
		if strings.HasPrefix(raw, "!") {
			group.Exclusive = true
			raw = raw[1:]
		}
		group.Options = splitList(raw, "|")
		in.Variants = append(in.Variants, group)
	}
	return in, nil
}

// ImportDishes reads dishes from the first sheet of an xlsx workbook. Bad rows
// are reported and skipped; the good ones are inserted in one transaction.
func (s *MenuService) ImportDishes(ctx context.Context, r io.Reader) (*ImportReport, error) {
	xl, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: unreadable workbook: %v", ErrInvalidInput, err)
	}
	defer xl.Close()

	sheets := xl.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrInvalidInput)
	}
	rows, err := xl.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %v", ErrInvalidInput, sheets[0], err)
	}

	report := &ImportReport{Skipped: []RowError{}}
	var dishes []models.Dish

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, row := range rows {
			if i == 0 {
				continue
			}
			rowNum := i + 1

			in, err := parseDishRow(row)
			if err == nil && in.Name == "" && len(in.Sizes) == 0 {
				continue
			}
			var dish models.Dish
			if err == nil {
				dish, err = in.toDish()
			}
			if err == nil {
				var ok bool
				if ok, err = speciesKnown(tx, dish.Species); err != nil {
					return err
				} else if !ok {
					err = fmt.Errorf("species %d does not exist", dish.Species)
				}
			}
			if err != nil {
				report.Skipped = append(report.Skipped, RowError{Row: rowNum, Reason: strings.TrimPrefix(err.Error(), ErrInvalidInput.Error()+": ")})
				continue
			}
			dishes = append(dishes, dish)
		}

		if len(dishes) == 0 {
			return nil
		}
		if err := tx.Create(&dishes).Error; err != nil {
			return fmt.Errorf("insert dishes: %w", err)
		}
		return nil
	})
	record("dish.import", Success, err)
	if err != nil {
		return nil, err
	}

	report.Imported = len(dishes)
	utils.InfoLogger.WithFields(logrus.Fields{"imported": report.Imported, "skipped": len(report.Skipped)}).Info("dishes imported")
	if report.Imported > 0 {
		s.Notifier.Notify(EventMenuUpdate, dishes)
	}
	return report, nil
}
