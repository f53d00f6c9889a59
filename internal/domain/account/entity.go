package account

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Kind distinguishes the two credentialed principal variants.
// Both share the same credential and lockout state machine and differ
// only in role, permission set and token lifetime.
const (
	KindUser  = "USER"
	KindAdmin = "ADMIN"
)

// Admin roles
const (
	RoleSuperAdmin = "SUPER_ADMIN"
	RoleAdmin      = "ADMIN"
	RoleModerator  = "MODERATOR"
	RoleMember     = "MEMBER"
)

// Account represents the accounts table
type Account struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Kind         string         `gorm:"type:text;not null;index:idx_accounts_kind"`
	Username     string         `gorm:"type:text;not null;uniqueIndex:idx_accounts_username"`
	Email        string         `gorm:"type:text;not null;uniqueIndex:idx_accounts_email"`
	PasswordHash string         `gorm:"type:text;not null"`
	DisplayName  string         `gorm:"type:text;not null"`
	Role         string         `gorm:"type:text"`
	AvatarURL    sql.NullString `gorm:"type:text"`

	// Presence fields, meaningful for KindUser only. ConnectionID is
	// valid only while IsOnline is true; going offline clears it and
	// stamps LastSeenAt.
	IsOnline     bool `gorm:"default:false"`
	LastSeenAt   sql.NullTime
	ConnectionID sql.NullString `gorm:"type:text"`

	// Lifecycle / lockout
	IsActive            bool `gorm:"default:true"`
	FailedLoginAttempts int  `gorm:"default:0"`
	LockedUntil         sql.NullTime

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP"`
}

func (Account) TableName() string {
	return "accounts"
}

// Permission labels gated by role.
const (
	PermManageAccounts      = "manage_accounts"
	PermManageConversations = "manage_conversations"
	PermModerateMessages    = "moderate_messages"
	PermViewDashboard       = "view_dashboard"
)

var rolePermissions = map[string][]string{
	RoleSuperAdmin: {PermManageAccounts, PermManageConversations, PermModerateMessages, PermViewDashboard},
	RoleAdmin:      {PermManageConversations, PermModerateMessages, PermViewDashboard},
	RoleModerator:  {PermModerateMessages, PermViewDashboard},
}

// Permissions returns the fixed permission set derived from the account role.
// Regular members carry no admin permissions.
func (a Account) Permissions() []string {
	perms := rolePermissions[a.Role]
	out := make([]string, len(perms))
	copy(out, perms)
	return out
}

// HasPermission reports whether the account's role grants the permission.
func (a Account) HasPermission(perm string) bool {
	if a.Kind != KindAdmin {
		return false
	}
	for _, p := range rolePermissions[a.Role] {
		if p == perm {
			return true
		}
	}
	return false
}

// IsLocked reports whether the account is currently locked out.
func (a Account) IsLocked(now time.Time) bool {
	return a.LockedUntil.Valid && now.Before(a.LockedUntil.Time)
}
