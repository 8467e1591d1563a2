package models

// Desk is a physical table identified by its name.
type Desk struct {
	Name     string `gorm:"primaryKey;type:varchar(100)" json:"name"`
	Capacity int    `gorm:"not null" json:"capacity"`
}

func (Desk) TableName() string {
	return "desk"
}
