package dto

// SignupRequest registers a new account.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Username string `json:"username" validate:"required,min=2,max=64"`
	Password string `json:"password" validate:"required,min=6,max=128"`
	Role     string `json:"role" validate:"required,oneof=teacher student"`
}

// LoginRequest authenticates an existing account for a specific role.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=128"`
	Role     string `json:"role" validate:"required,oneof=teacher student"`
}

// TokenResponse is returned by signup and login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Username    string `json:"username"`
	Role        string `json:"role"`
	Email       string `json:"email"`
}

// IdentityResponse echoes the identity resolved from a bearer token.
type IdentityResponse struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}
