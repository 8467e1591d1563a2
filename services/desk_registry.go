package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/demeter/models"
	"github.com/yeremiapane/demeter/utils"
	"gorm.io/gorm"
)

// DeskRegistry owns the desk rows. It does not look at occupancy when deleting;
// SessionManager.DeleteDesk is the guarded path.
type DeskRegistry struct {
	DB       *gorm.DB
	Notifier Notifier
}

func NewDeskRegistry(db *gorm.DB, notifier Notifier) *DeskRegistry {
	return &DeskRegistry{DB: db, Notifier: orNop(notifier)}
}

// DeskToken is the value printed in a desk's QR code: hex SHA-256 of its name.
func DeskToken(name string) string {
	sum := sha256.Sum256([]byte(name))
	return hex.EncodeToString(sum[:])
}

func fetchDesk(db *gorm.DB, name string) (*models.Desk, error) {
	var desk models.Desk
	if err := db.Where("name = ?", name).First(&desk).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load desk %q: %w", name, err)
	}
	return &desk, nil
}

func openSessionFor(db *gorm.DB, desk string) (*models.Session, error) {
	var session models.Session
	err := db.Where("desk = ? AND state = ?", desk, models.SessionOpen).First(&session).Error
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open session for %q: %w", desk, err)
	}
	return &session, nil
}

func deleteDesk(db *gorm.DB, name string) (Outcome, error) {
	res := db.Where("name = ?", name).Delete(&models.Desk{})
	if res.Error != nil {
		return "", fmt.Errorf("delete desk %q: %w", name, res.Error)
	}
	if res.RowsAffected == 0 {
		return DoesNotExist, nil
	}
	return Success, nil
}

func (r *DeskRegistry) Create(ctx context.Context, name string, capacity int) (Outcome, error) {
	name = strings.TrimSpace(name)
	if name == "" || capacity < 1 {
		return "", fmt.Errorf("%w: desk needs a name and capacity >= 1", ErrInvalidInput)
	}

	db := r.DB.WithContext(ctx)
	outcome, err := func() (Outcome, error) {
		if _, err := fetchDesk(db, name); err == nil {
			return Exists, nil
		} else if !errors.Is(err, ErrNotFound) {
			return "", err
		}

		desk := models.Desk{Name: name, Capacity: capacity}
		if err := db.Create(&desk).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return Exists, nil
			}
			return "", fmt.Errorf("insert desk %q: %w", name, err)
		}
		return Success, nil
	}()
	record("desk.create", outcome, err)

	if outcome == Success {
		utils.InfoLogger.WithFields(logrus.Fields{"desk": name, "capacity": capacity}).Info("desk created")
		r.Notifier.Notify(EventDeskCreate, models.Desk{Name: name, Capacity: capacity})
	}
	return outcome, err
}

func (r *DeskRegistry) Delete(ctx context.Context, name string) (Outcome, error) {
	outcome, err := deleteDesk(r.DB.WithContext(ctx), name)
	record("desk.delete", outcome, err)
	if outcome == Success {
		utils.InfoLogger.WithField("desk", name).Info("desk deleted")
		r.Notifier.Notify(EventDeskDelete, models.Desk{Name: name})
	}
	return outcome, err
}

func (r *DeskRegistry) Fetch(ctx context.Context, name string) (*models.Desk, error) {
	return fetchDesk(r.DB.WithContext(ctx), name)
}

func (r *DeskRegistry) FetchAll(ctx context.Context) ([]models.Desk, error) {
	var desks []models.Desk
	if err := r.DB.WithContext(ctx).Order("name").Find(&desks).Error; err != nil {
		return nil, fmt.Errorf("list desks: %w", err)
	}
	return desks, nil
}

func (r *DeskRegistry) OpenSessionFor(ctx context.Context, desk string) (*models.Session, error) {
	return openSessionFor(r.DB.WithContext(ctx), desk)
}

// ResolveToken finds the desk whose DeskToken equals token.
func (r *DeskRegistry) ResolveToken(ctx context.Context, token string) (*models.Desk, error) {
	token = strings.ToLower(strings.TrimSpace(token))
	desks, err := r.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range desks {
		if DeskToken(desks[i].Name) == token {
			return &desks[i], nil
		}
	}
	return nil, ErrNotFound
}
