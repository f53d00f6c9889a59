package httpdto

// RegisterRequest is used for POST /auth/register
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Username    string `json:"username" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"display_name,omitempty"`
}

// LoginRequest is used for POST /auth/login
type LoginRequest struct {
	Identity string `json:"identity" binding:"required"` // email or username
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned after successful registration or login
type AuthResponse struct {
	AccessToken string     `json:"access_token"`
	ExpiresIn   int64      `json:"expires_in"`
	Account     AccountDTO `json:"account"`
}
