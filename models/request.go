package models

import "gorm.io/datatypes"

type RequestState int

const (
	RequestPending   RequestState = 0
	RequestInKitchen RequestState = 1
	RequestCompleted RequestState = 2
)

var requestStateNames = map[RequestState]string{
	RequestPending:   "pending",
	RequestInKitchen: "in_kitchen",
	RequestCompleted: "completed",
}

func (s RequestState) Valid() bool {
	_, ok := requestStateNames[s]
	return ok
}

func (s RequestState) String() string {
	if name, ok := requestStateNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseRequestState accepts the names used by String.
func ParseRequestState(name string) (RequestState, bool) {
	for state, n := range requestStateNames {
		if n == name {
			return state, true
		}
	}
	return 0, false
}

// CanMoveTo reports whether a request in s may be written with state next.
// Requests only move forward; rewriting the current state is allowed.
func (s RequestState) CanMoveTo(next RequestState) bool {
	return s.Valid() && next.Valid() && next >= s
}

// Next returns the state following s, or false once the request is completed.
func (s RequestState) Next() (RequestState, bool) {
	switch s {
	case RequestPending:
		return RequestInKitchen, true
	case RequestInKitchen:
		return RequestCompleted, true
	}
	return s, false
}

// Selection holds one optional option index per variant group of a dish, in group order.
// A nil entry means nothing was chosen from that group.
type Selection []*int

// Pick is a helper for building selections.
func Pick(i int) *int {
	return &i
}

type Request struct {
	ID        int64                     `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID int64                     `gorm:"column:session;not null;index" json:"session"`
	DishID    int64                     `gorm:"column:dish;not null;index" json:"dish"`
	Variant   datatypes.JSONSlice[*int] `gorm:"not null" json:"variant"`
	Size      int                       `gorm:"not null" json:"size"`
	Comment   string                    `gorm:"type:text" json:"comment"`
	State     RequestState              `gorm:"not null;index" json:"state"`
}

func (Request) TableName() string {
	return "request"
}

func (r *Request) Selection() Selection {
	return Selection(r.Variant)
}
