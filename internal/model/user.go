package model

import (
	"slices"
	"time"

	"github.com/Payphone-Digital/bilemo/internal/constants"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Username            string                      `gorm:"column:username;size:30;uniqueIndex;not null"`
	PhoneNumber         string                      `gorm:"column:phone_number;size:20;not null"`
	Email               string                      `gorm:"column:email;not null"`
	Password            string                      `gorm:"column:password;not null"`
	Roles               datatypes.JSONSlice[string] `gorm:"column:roles"`
	ClientID            uint                        `gorm:"column:client_id;index;not null"`
	Client              *Client                     `gorm:"foreignKey:ClientID"`
	LastLogin           *time.Time                  `gorm:"column:last_login"`
	TokenVersion        int                         `gorm:"column:token_version;default:1;not null"`
	RefreshTokenHash    string                      `gorm:"column:refresh_token_hash;default:null"`
	RefreshTokenExpires *time.Time                  `gorm:"column:refresh_token_expires_at;default:null"`
}

// EffectiveRoles is the stored role list plus ROLE_USER, which every account holds.
func (u *User) EffectiveRoles() []string {
	roles := make([]string, 0, len(u.Roles)+1)
	for _, r := range u.Roles {
		if !slices.Contains(roles, r) {
			roles = append(roles, r)
		}
	}
	if !slices.Contains(roles, constants.RoleUser) {
		roles = append(roles, constants.RoleUser)
	}
	return roles
}

func (u *User) HasRole(role string) bool {
	return slices.Contains(u.EffectiveRoles(), role)
}
