package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/demeter/locker"
	"github.com/yeremiapane/demeter/models"
	"github.com/yeremiapane/demeter/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const deskLockPrefix = "desk:"

// SessionManager is the only writer of session state, end and desk. Every
// desk-scoped transition runs under the desk's lock and inside one transaction.
// The lock is released before events go out.
type SessionManager struct {
	DB       *gorm.DB
	Desks    *DeskRegistry
	Locks    locker.Locker
	Clock    clockwork.Clock
	Notifier Notifier
	LockWait time.Duration
}

func NewSessionManager(db *gorm.DB, desks *DeskRegistry, locks locker.Locker, clock clockwork.Clock, notifier Notifier) *SessionManager {
	if locks == nil {
		locks = locker.NewLocal()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &SessionManager{
		DB:       db,
		Desks:    desks,
		Locks:    locks,
		Clock:    clock,
		Notifier: orNop(notifier),
		LockWait: 3 * time.Second,
	}
}

// SessionMove is the payload of a session.move event.
type SessionMove struct {
	Session models.Session `json:"session"`
	From    string         `json:"from"`
	To      string         `json:"to"`
}

// lockDesks waits at most LockWait for the desk locks.
func (m *SessionManager) lockDesks(ctx context.Context, desks ...string) (func(), error) {
	keys := make([]string, len(desks))
	for i, d := range desks {
		keys[i] = deskLockPrefix + d
	}

	lockCtx, cancel := context.WithTimeout(ctx, m.LockWait)
	defer cancel()
	unlock, err := m.Locks.Lock(lockCtx, keys...)
	if err != nil {
		return nil, fmt.Errorf("lock desks %v: %w", desks, err)
	}
	return unlock, nil
}

// Start opens a session on desk. DoesNotExist for an unknown desk, TableOccupied
// when the desk already has an open session.
func (m *SessionManager) Start(ctx context.Context, desk string) (*models.Session, Outcome, error) {
	unlock, err := m.lockDesks(ctx, desk)
	if err != nil {
		record("session.start", "", err)
		return nil, "", err
	}
	defer unlock()

	var session models.Session
	outcome, err := inTx(ctx, m.DB, func(tx *gorm.DB) (Outcome, error) {
		if _, err := fetchDesk(tx, desk); err != nil {
			if errors.Is(err, ErrNotFound) {
				return DoesNotExist, nil
			}
			return "", err
		}

		if _, err := openSessionFor(tx, desk); err == nil {
			return TableOccupied, nil
		} else if !errors.Is(err, ErrNotFound) {
			return "", err
		}

		openDesk := desk
		session = models.Session{
			Start:    m.Clock.Now().Unix(),
			End:      models.OpenEnd,
			Desk:     desk,
			State:    models.SessionOpen,
			OpenDesk: &openDesk,
		}
		if err := tx.Create(&session).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return TableOccupied, nil
			}
			return "", fmt.Errorf("insert session: %w", err)
		}
		return Success, nil
	})
	unlock()
	record("session.start", outcome, err)
	if outcome != Success {
		return nil, outcome, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{"desk": desk, "session": session.ID}).Info("session opened")
	m.Notifier.Notify(EventSessionOpen, session)
	return &session, Success, nil
}

// closeSession ends s if it is still open. DoesNotExist when someone else closed it first.
func (m *SessionManager) closeSession(tx *gorm.DB, s *models.Session) (Outcome, error) {
	now := m.Clock.Now().Unix()
	res := tx.Model(&models.Session{}).
		Where("id = ? AND state = ?", s.ID, models.SessionOpen).
		Updates(map[string]interface{}{
			"state":     models.SessionClosed,
			"end":       now,
			"open_desk": nil,
		})
	if res.Error != nil {
		return "", fmt.Errorf("close session %d: %w", s.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return DoesNotExist, nil
	}

	s.State = models.SessionClosed
	s.End = now
	s.OpenDesk = nil
	return Success, nil
}

// End closes the session with id. DoesNotExist when it is unknown or already closed.
func (m *SessionManager) End(ctx context.Context, id int64) (*models.Session, Outcome, error) {
	var session *models.Session
	outcome, err := inTx(ctx, m.DB, func(tx *gorm.DB) (Outcome, error) {
		s, err := fetchOpenSession(tx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return DoesNotExist, nil
			}
			return "", err
		}
		session = s
		return m.closeSession(tx, s)
	})
	record("session.end", outcome, err)
	if outcome != Success {
		return nil, outcome, err
	}

	m.afterClose(session)
	return session, Success, nil
}

// EndByDesk closes the open session on desk. TableUnoccupied when there is none.
func (m *SessionManager) EndByDesk(ctx context.Context, desk string) (*models.Session, Outcome, error) {
	unlock, err := m.lockDesks(ctx, desk)
	if err != nil {
		record("session.end_by_desk", "", err)
		return nil, "", err
	}
	defer unlock()

	var session *models.Session
	outcome, err := inTx(ctx, m.DB, func(tx *gorm.DB) (Outcome, error) {
		if _, err := fetchDesk(tx, desk); err != nil {
			if errors.Is(err, ErrNotFound) {
				return DoesNotExist, nil
			}
			return "", err
		}

		s, err := openSessionFor(tx, desk)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return TableUnoccupied, nil
			}
			return "", err
		}
		session = s
		return m.closeSession(tx, s)
	})
	unlock()
	record("session.end_by_desk", outcome, err)
	if outcome != Success {
		return nil, outcome, err
	}

	m.afterClose(session)
	return session, Success, nil
}

func (m *SessionManager) afterClose(s *models.Session) {
	utils.InfoLogger.WithFields(logrus.Fields{"desk": s.Desk, "session": s.ID, "end": s.End}).Info("session closed")
	m.Notifier.Notify(EventSessionClose, *s)
}

// moveSession points an open session at desk to. TableOccupied if the unique
// open-desk index rejects the move.
func moveSession(tx *gorm.DB, s *models.Session, to string) (Outcome, error) {
	res := tx.Model(&models.Session{}).
		Where("id = ? AND state = ?", s.ID, models.SessionOpen).
		Updates(map[string]interface{}{
			"desk":      to,
			"open_desk": to,
		})
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return TableOccupied, nil
		}
		return "", fmt.Errorf("move session %d: %w", s.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return DoesNotExist, nil
	}

	s.Desk = to
	openDesk := to
	s.OpenDesk = &openDesk
	return Success, nil
}

// transfer moves s to desk to after checking the destination exists and is free.
func transfer(tx *gorm.DB, s *models.Session, to string) (Outcome, error) {
	if _, err := fetchDesk(tx, to); err != nil {
		if errors.Is(err, ErrNotFound) {
			return DoesNotExist, nil
		}
		return "", err
	}

	if other, err := openSessionFor(tx, to); err == nil {
		if other.ID == s.ID {
			return Success, nil
		}
		return TableOccupied, nil
	} else if !errors.Is(err, ErrNotFound) {
		return "", err
	}

	return moveSession(tx, s, to)
}

// ChangeDesk moves the open session id to desk to.
func (m *SessionManager) ChangeDesk(ctx context.Context, id int64, to string) (*models.Session, Outcome, error) {
	current, err := m.FetchOnlyOpen(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			record("session.change_desk", DoesNotExist, nil)
			return nil, DoesNotExist, nil
		}
		record("session.change_desk", "", err)
		return nil, "", err
	}

	unlock, err := m.lockDesks(ctx, current.Desk, to)
	if err != nil {
		record("session.change_desk", "", err)
		return nil, "", err
	}
	defer unlock()

	var session *models.Session
	var from string
	outcome, err := inTx(ctx, m.DB, func(tx *gorm.DB) (Outcome, error) {
		s, err := fetchOpenSession(tx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return DoesNotExist, nil
			}
			return "", err
		}
		session, from = s, s.Desk
		return transfer(tx, s, to)
	})
	unlock()
	record("session.change_desk", outcome, err)
	if outcome != Success {
		return nil, outcome, err
	}

	m.afterMove(session, from)
	return session, Success, nil
}

// ChangeDeskByDesk moves the open session of from to to. DoesNotExist when from
// has no open session or to is unknown; TableOccupied when to is taken.
func (m *SessionManager) ChangeDeskByDesk(ctx context.Context, from, to string) (*models.Session, Outcome, error) {
	unlock, err := m.lockDesks(ctx, from, to)
	if err != nil {
		record("session.change_desk_by_desk", "", err)
		return nil, "", err
	}
	defer unlock()

	var session *models.Session
	outcome, err := inTx(ctx, m.DB, func(tx *gorm.DB) (Outcome, error) {
		s, err := openSessionFor(tx, from)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return DoesNotExist, nil
			}
			return "", err
		}
		session = s
		return transfer(tx, s, to)
	})
	unlock()
	record("session.change_desk_by_desk", outcome, err)
	if outcome != Success {
		return nil, outcome, err
	}

	m.afterMove(session, from)
	return session, Success, nil
}

func (m *SessionManager) afterMove(s *models.Session, from string) {
	if from == s.Desk {
		return
	}
	utils.InfoLogger.WithFields(logrus.Fields{"session": s.ID, "from": from, "to": s.Desk}).Info("session moved")
	m.Notifier.Notify(EventSessionMove, SessionMove{Session: *s, From: from, To: s.Desk})
}

// DeleteDesk removes a desk only while it has no open session.
func (m *SessionManager) DeleteDesk(ctx context.Context, desk string) (Outcome, error) {
	unlock, err := m.lockDesks(ctx, desk)
	if err != nil {
		record("desk.delete", "", err)
		return "", err
	}
	defer unlock()

	outcome, err := inTx(ctx, m.DB, func(tx *gorm.DB) (Outcome, error) {
		if _, err := openSessionFor(tx, desk); err == nil {
			return TableOccupied, nil
		} else if !errors.Is(err, ErrNotFound) {
			return "", err
		}
		return deleteDesk(tx, desk)
	})
	unlock()
	record("desk.delete", outcome, err)

	if outcome == Success {
		utils.InfoLogger.WithField("desk", desk).Info("desk deleted")
		m.Notifier.Notify(EventDeskDelete, models.Desk{Name: desk})
	}
	return outcome, err
}

func fetchSession(db *gorm.DB, id int64) (*models.Session, error) {
	var session models.Session
	if err := db.First(&session, id).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load session %d: %w", id, err)
	}
	return &session, nil
}

func fetchOpenSession(db *gorm.DB, id int64) (*models.Session, error) {
	var session models.Session
	err := db.Where("id = ? AND state = ?", id, models.SessionOpen).First(&session).Error
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load open session %d: %w", id, err)
	}
	return &session, nil
}

// forUpdate holds the selected rows until tx ends, so a concurrent close of the
// same session waits for it. sqlite drops the clause; its single writer serialises.
func forUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (m *SessionManager) Fetch(ctx context.Context, id int64) (*models.Session, error) {
	return fetchSession(m.DB.WithContext(ctx), id)
}

func (m *SessionManager) FetchOnlyOpen(ctx context.Context, id int64) (*models.Session, error) {
	return fetchOpenSession(m.DB.WithContext(ctx), id)
}

func (m *SessionManager) FetchAll(ctx context.Context) ([]models.Session, error) {
	var sessions []models.Session
	if err := m.DB.WithContext(ctx).Order("id").Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

func (m *SessionManager) FetchAllOpen(ctx context.Context) ([]models.Session, error) {
	var sessions []models.Session
	err := m.DB.WithContext(ctx).Where("state = ?", models.SessionOpen).Order("id").Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("list open sessions: %w", err)
	}
	return sessions, nil
}

// FetchRequestsFor lists the requests of a session, oldest first.
func (m *SessionManager) FetchRequestsFor(ctx context.Context, id int64) ([]models.Request, error) {
	db := m.DB.WithContext(ctx)
	if _, err := fetchSession(db, id); err != nil {
		return nil, err
	}
	return requestsForSession(db, id)
}
