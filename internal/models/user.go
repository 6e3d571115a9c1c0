package models

type User struct {
	BaseModel
	Email        string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Role         UserRole   `gorm:"type:varchar(20);not null;index" json:"role"`
	Status       UserStatus `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	Name         string     `gorm:"type:varchar(150)" json:"name"`
	Phone        string     `gorm:"type:varchar(30)" json:"phone"`
	Address      string     `gorm:"type:varchar(255)" json:"address"`
	City         string     `gorm:"type:varchar(100)" json:"city"`
}

func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}
