package model

type Member struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Flat         string `json:"flat"`
	PasswordHash string `json:"-"`
}

// LoginReq is the member login payload.
type LoginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
