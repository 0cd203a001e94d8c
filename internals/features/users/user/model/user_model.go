// file: internals/features/users/user/model/user_model.go
package model

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/sudoneoox/Picton/internals/constants"
)

type UserModel struct {
	ID           uint           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserName     string         `gorm:"column:user_name;size:150;not null;uniqueIndex" json:"user_name"`
	Email        string         `gorm:"column:email;size:255;not null;uniqueIndex" json:"email"`
	Password     string         `gorm:"column:password;not null" json:"-"`
	FirstName    string         `gorm:"column:first_name;size:150" json:"first_name"`
	LastName     string         `gorm:"column:last_name;size:150" json:"last_name"`
	PersonalID   *string        `gorm:"column:personal_id;size:7;uniqueIndex" json:"personal_id,omitempty"`
	Role         constants.Role `gorm:"column:role;type:varchar(20);not null;default:'student'" json:"role"`
	IsActive     bool           `gorm:"column:is_active;not null;default:true" json:"is_active"`
	IsSuperuser  bool           `gorm:"column:is_superuser;not null;default:false" json:"is_superuser"`
	HasSignature bool           `gorm:"column:has_signature;not null;default:false" json:"has_signature"`
	SignatureKey string         `gorm:"column:signature_key;size:500" json:"-"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (UserModel) TableName() string {
	return "users"
}

func (u *UserModel) BeforeSave(tx *gorm.DB) error {
	u.UserName = strings.TrimSpace(u.UserName)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Role == "" {
		u.Role = constants.RoleStudent
	}
	return nil
}

// IsAdmin covers both the admin role and the superuser flag.
func (u *UserModel) IsAdmin() bool {
	return u.IsSuperuser || u.Role == constants.RoleAdmin
}

func (u *UserModel) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.UserName
	}
	return name
}
