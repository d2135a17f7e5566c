package model

// Church is the tenant. Every other entity is owned by exactly one church
// and all queries are scoped by its id.
type Church struct {
	Base
	Name         string `db:"name" json:"name"`
	PastorName   string `db:"pastor_name" json:"pastor_name"`
	Email        string `db:"email" json:"email"`
	PasswordHash string `db:"password_hash" json:"-"`
	Phone        string `db:"phone" json:"phone,omitempty"`
}

type RegisterRequest struct {
	Name       string `json:"name" binding:"required"`
	PastorName string `json:"pastor_name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8"`
	Phone      string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	AccessToken string  `json:"access_token"`
	Church      *Church `json:"church"`
}
