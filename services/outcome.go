package services

import (
	"context"
	"errors"

	"github.com/yeremiapane/demeter/metrics"
	"gorm.io/gorm"
)

// Outcome is the tag every engine operation reports. Only Success means the
// store was changed.
type Outcome string

const (
	Success            Outcome = "Success"
	Exists             Outcome = "Exists"
	DoesNotExist       Outcome = "DoesNotExist"
	TableOccupied      Outcome = "TableOccupied"
	TableUnoccupied    Outcome = "TableUnoccupied"
	VariantDoesntExist Outcome = "VariantDoesntExist"
	SizeDoesntExist    Outcome = "SizeDoesntExist"
	NoPermission       Outcome = "NoPermission"
	NoSession          Outcome = "NoSession"
	InvalidState       Outcome = "InvalidState"
)

func (o Outcome) String() string {
	return string(o)
}

func (o Outcome) OK() bool {
	return o == Success
}

var (
	// ErrNotFound is returned by lookups when the row is absent. It never signals a storage fault.
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

var errRollback = errors.New("rollback")

// inTx runs fn in a transaction that commits only when fn reports Success.
// Any other outcome or error rolls back.
func inTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) (Outcome, error)) (Outcome, error) {
	var outcome Outcome
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		o, err := fn(tx)
		if err != nil {
			return err
		}
		outcome = o
		if o != Success {
			return errRollback
		}
		return nil
	})
	if err != nil && !errors.Is(err, errRollback) {
		return "", err
	}
	return outcome, nil
}

func record(operation string, outcome Outcome, err error) {
	if err != nil {
		metrics.ObserveError(operation)
		return
	}
	metrics.ObserveOutcome(operation, outcome.String())
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, ErrNotFound)
}
