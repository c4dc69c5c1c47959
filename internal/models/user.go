// internal/models/user.go
package models

import (
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Email        string     `json:"email" gorm:"size:255;uniqueIndex;not null"`
	Username     string     `json:"username" gorm:"size:50;uniqueIndex;not null"`
	PasswordHash string     `json:"-" gorm:"size:255;not null"`
	Role         UserRole   `json:"role" gorm:"type:varchar(20);default:'customer';index"`
	Status       UserStatus `json:"status" gorm:"type:varchar(20);default:'active';index"`
	ProfileData  JSONB      `json:"profile_data,omitempty" gorm:"type:jsonb"`

	// Relationships
	Seller *Seller `json:"seller,omitempty" gorm:"foreignKey:UserID"`
}

func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

func (u *User) IsStaff() bool {
	return u.Role == UserRoleAdmin || u.Role == UserRoleSuperAdmin || u.Role == UserRoleEditor
}
