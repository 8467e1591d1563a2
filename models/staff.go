package models

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
	RoleChef  = "chef"
)

// Staff is anyone allowed past the diner surface. SecretHash is a bcrypt hash.
type Staff struct {
	ID         string `gorm:"primaryKey;type:varchar(100)" json:"id"`
	SecretHash string `gorm:"type:varchar(255);not null" json:"-"`
	Role       string `gorm:"type:varchar(20);not null" json:"role"`
}

func (Staff) TableName() string {
	return "staff"
}

func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleStaff || role == RoleChef
}
