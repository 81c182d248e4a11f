package dto

import (
	"slices"

	"github.com/Payphone-Digital/bilemo/internal/constants"
)

// PageQuery carries the raw list query values; parsing happens in the service
type PageQuery struct {
	Page  string `form:"page"`
	Limit string `form:"limit"`
	Order string `form:"order"`
}

// Principal is the authenticated caller as seen by the services
type Principal struct {
	UserID   uint
	ClientID uint
	Username string
	Roles    []string
}

func (p Principal) HasRole(role string) bool {
	return slices.Contains(p.Roles, role)
}

func (p Principal) IsSuperAdmin() bool {
	return p.HasRole(constants.RoleSuperAdmin)
}

// IsAdmin is true for client admins; super-admins answer IsSuperAdmin instead
func (p Principal) IsAdmin() bool {
	return p.HasRole(constants.RoleAdmin)
}
