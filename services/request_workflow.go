package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/demeter/models"
	"github.com/yeremiapane/demeter/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RequestInput is what a diner or waiter submits for one dish.
type RequestInput struct {
	Selection models.Selection
	Size      int
	Comment   string
	State     models.RequestState
	// KeepState makes Edit write back the stored state and ignore State.
	KeepState bool
}

// RequestWorkflow is the only writer of request rows.
type RequestWorkflow struct {
	DB       *gorm.DB
	Notifier Notifier
}

func NewRequestWorkflow(db *gorm.DB, notifier Notifier) *RequestWorkflow {
	return &RequestWorkflow{DB: db, Notifier: orNop(notifier)}
}

func fetchRequest(db *gorm.DB, id int64) (*models.Request, error) {
	var req models.Request
	if err := db.First(&req, id).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load request %d: %w", id, err)
	}
	return &req, nil
}

func requestsForSession(db *gorm.DB, sessionID int64) ([]models.Request, error) {
	var requests []models.Request
	if err := db.Where("session = ?", sessionID).Order("id").Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("list requests of session %d: %w", sessionID, err)
	}
	return requests, nil
}

// variantColumn stores an empty selection as [] rather than null.
func variantColumn(sel models.Selection) datatypes.JSONSlice[*int] {
	if sel == nil {
		return datatypes.JSONSlice[*int]{}
	}
	return datatypes.JSONSlice[*int](sel)
}

// validateAgainstDish loads the dish and checks the input against it.
func validateAgainstDish(tx *gorm.DB, dishID int64, in RequestInput) (Outcome, error) {
	dish, err := loadDish(tx, dishID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return DoesNotExist, nil
		}
		return "", err
	}
	return CheckSelection(dish, in.Selection, in.Size), nil
}

// Create admits a request into an open session. Nothing is written unless the
// outcome is Success. The session row stays locked until the insert commits.
func (w *RequestWorkflow) Create(ctx context.Context, sessionID, dishID int64, in RequestInput) (*models.Request, Outcome, error) {
	var req models.Request
	outcome, err := inTx(ctx, w.DB, func(tx *gorm.DB) (Outcome, error) {
		if _, err := fetchOpenSession(forUpdate(tx), sessionID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return NoSession, nil
			}
			return "", err
		}
		if !in.State.Valid() {
			return InvalidState, nil
		}
		if o, err := validateAgainstDish(tx, dishID, in); err != nil || o != Success {
			return o, err
		}

		req = models.Request{
			SessionID: sessionID,
			DishID:    dishID,
			Variant:   variantColumn(in.Selection),
			Size:      in.Size,
			Comment:   in.Comment,
			State:     in.State,
		}
		if err := tx.Create(&req).Error; err != nil {
			return "", fmt.Errorf("insert request: %w", err)
		}
		return Success, nil
	})
	record("request.create", outcome, err)
	if outcome != Success {
		return nil, outcome, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"request": req.ID,
		"session": sessionID,
		"dish":    dishID,
		"state":   req.State.String(),
	}).Info("request created")
	w.Notifier.Notify(EventRequestCreate, req)
	return &req, Success, nil
}

// Edit rewrites a request after the same validation as Create, against the
// request's own dish. State may only move forward; KeepState reads the current
// state inside the same transaction.
func (w *RequestWorkflow) Edit(ctx context.Context, id int64, in RequestInput) (*models.Request, Outcome, error) {
	var req *models.Request
	outcome, err := inTx(ctx, w.DB, func(tx *gorm.DB) (Outcome, error) {
		current, err := fetchRequest(tx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return DoesNotExist, nil
			}
			return "", err
		}
		if in.KeepState {
			in.State = current.State
		}
		if !current.State.CanMoveTo(in.State) {
			return InvalidState, nil
		}
		if o, err := validateAgainstDish(tx, current.DishID, in); err != nil || o != Success {
			return o, err
		}

		current.Variant = variantColumn(in.Selection)
		current.Size = in.Size
		current.Comment = in.Comment
		current.State = in.State
		if err := tx.Save(current).Error; err != nil {
			return "", fmt.Errorf("update request %d: %w", id, err)
		}
		req = current
		return Success, nil
	})
	record("request.edit", outcome, err)
	if outcome != Success {
		return nil, outcome, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{"request": id, "state": req.State.String()}).Info("request edited")
	w.Notifier.Notify(EventRequestUpdate, *req)
	return req, Success, nil
}

// Advance moves a request one step along pending, in kitchen, completed.
func (w *RequestWorkflow) Advance(ctx context.Context, id int64) (*models.Request, Outcome, error) {
	var req *models.Request
	outcome, err := inTx(ctx, w.DB, func(tx *gorm.DB) (Outcome, error) {
		current, err := fetchRequest(tx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return DoesNotExist, nil
			}
			return "", err
		}
		next, ok := current.State.Next()
		if !ok {
			return InvalidState, nil
		}

		res := tx.Model(&models.Request{}).
			Where("id = ? AND state = ?", id, current.State).
			Update("state", next)
		if res.Error != nil {
			return "", fmt.Errorf("advance request %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return InvalidState, nil
		}
		current.State = next
		req = current
		return Success, nil
	})
	record("request.advance", outcome, err)
	if outcome != Success {
		return nil, outcome, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{"request": id, "state": req.State.String()}).Info("request advanced")
	w.Notifier.Notify(EventRequestUpdate, *req)
	return req, Success, nil
}

func (w *RequestWorkflow) Fetch(ctx context.Context, id int64) (*models.Request, error) {
	return fetchRequest(w.DB.WithContext(ctx), id)
}

func (w *RequestWorkflow) Delete(ctx context.Context, id int64) (Outcome, error) {
	outcome, err := func() (Outcome, error) {
		res := w.DB.WithContext(ctx).Delete(&models.Request{}, id)
		if res.Error != nil {
			return "", fmt.Errorf("delete request %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return DoesNotExist, nil
		}
		return Success, nil
	}()
	record("request.delete", outcome, err)

	if outcome == Success {
		utils.InfoLogger.WithField("request", id).Info("request deleted")
		w.Notifier.Notify(EventRequestDelete, models.Request{ID: id})
	}
	return outcome, err
}

// ForSession lists a session's requests without checking the session exists.
func (w *RequestWorkflow) ForSession(ctx context.Context, sessionID int64) ([]models.Request, error) {
	return requestsForSession(w.DB.WithContext(ctx), sessionID)
}

// Queue lists every request in state, oldest first.
func (w *RequestWorkflow) Queue(ctx context.Context, state models.RequestState) ([]models.Request, error) {
	var requests []models.Request
	if err := w.DB.WithContext(ctx).Where("state = ?", state).Order("id").Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("list %s requests: %w", state, err)
	}
	return requests, nil
}
