package models

// OpenEnd is the end timestamp of a session that has not been closed.
const OpenEnd int64 = -1

type SessionState int

const (
	SessionClosed SessionState = 0
	SessionOpen   SessionState = 1
)

func (s SessionState) String() string {
	if s == SessionOpen {
		return "open"
	}
	return "closed"
}

// Session is one occupancy period of a desk. Start and End are unix seconds.
//
// OpenDesk mirrors Desk while the session is open and is NULL afterwards; its
// unique index keeps a desk from holding two open sessions.
type Session struct {
	ID       int64        `gorm:"primaryKey;autoIncrement" json:"id"`
	Start    int64        `gorm:"column:start;not null" json:"start"`
	End      int64        `gorm:"column:end;not null" json:"end"`
	Desk     string       `gorm:"type:varchar(100);not null;index" json:"desk"`
	State    SessionState `gorm:"not null;index" json:"state"`
	OpenDesk *string      `gorm:"type:varchar(100);uniqueIndex:idx_session_open_desk" json:"-"`
}

func (Session) TableName() string {
	return "session"
}

func (s *Session) IsOpen() bool {
	return s.State == SessionOpen
}
