package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/demeter/models"
	"github.com/yeremiapane/demeter/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// StaffService stores staff credentials and answers the admit/deny question.
type StaffService struct {
	DB   *gorm.DB
	Cost int
}

func NewStaffService(db *gorm.DB) *StaffService {
	return &StaffService{DB: db, Cost: bcrypt.DefaultCost}
}

func (s *StaffService) Register(ctx context.Context, id, secret, role string) (Outcome, error) {
	id = strings.TrimSpace(id)
	if id == "" || len(secret) < 8 || !models.ValidRole(role) {
		return "", fmt.Errorf("%w: staff needs an id, a secret of 8+ characters and a known role", ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), s.Cost)
	if err != nil {
		return "", fmt.Errorf("hash secret: %w", err)
	}

	staff := models.Staff{ID: id, SecretHash: string(hash), Role: role}
	outcome := Success
	if err := s.DB.WithContext(ctx).Create(&staff).Error; err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return "", fmt.Errorf("insert staff %q: %w", id, err)
		}
		outcome = Exists
	}
	record("staff.register", outcome, nil)

	if outcome == Success {
		utils.InfoLogger.WithFields(logrus.Fields{"staff": id, "role": role}).Info("staff registered")
	}
	return outcome, nil
}

// Verify checks id and secret. Unknown ids and wrong secrets both deny.
func (s *StaffService) Verify(ctx context.Context, id, secret string) (*models.Staff, bool, error) {
	var staff models.Staff
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&staff).Error; err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("load staff %q: %w", id, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(staff.SecretHash), []byte(secret)); err != nil {
		return nil, false, nil
	}
	return &staff, true, nil
}

// EnsureAdmin registers the bootstrap administrator unless the id is already taken.
func (s *StaffService) EnsureAdmin(ctx context.Context, id, secret string) error {
	outcome, err := s.Register(ctx, id, secret, models.RoleAdmin)
	if err != nil {
		return err
	}
	if outcome == Exists {
		utils.InfoLogger.WithField("staff", id).Info("bootstrap admin already present")
	}
	return nil
}
