package httpdto

import "github.com/google/uuid"

// AccountDTO is the public projection of an account. Sensitive columns
// (password hash, lockout counters) never leave the service layer.
type AccountDTO struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	Username    string `json:"username"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	Role        string `json:"role,omitempty"`
	IsOnline    bool   `json:"is_online"`
	LastSeenAt  string `json:"last_seen_at,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// UpdateProfileRequest is used for PATCH /accounts/me
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
}

// SearchAccountsRequest captures the query params of GET /accounts/search
type SearchAccountsRequest struct {
	Query string `form:"q" binding:"required"`
	Limit int    `form:"limit"`
}

// PresenceSnapshotDTO lists accounts with a live gateway connection.
type PresenceSnapshotDTO struct {
	Online []uuid.UUID `json:"online"`
	Count  int         `json:"count"`
}
