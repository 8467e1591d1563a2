package models

// NoSpecies marks a dish that belongs to no species.
const NoSpecies int64 = -1

type Species struct {
	ID   int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
}

func (Species) TableName() string {
	return "species"
}
