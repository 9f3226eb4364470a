package models

// LoginRequest is the body of the backend login call.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the session identity issued by the backend.
type LoginResponse struct {
	AccessToken string   `json:"accessToken"`
	UserID      int64    `json:"userId"`
	Username    string   `json:"username"`
	Role        RoleName `json:"role"`
}
