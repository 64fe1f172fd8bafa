package dto

// LoginRequest entrada para login.
type LoginRequest struct {
	Username string `json:"username" validate:"required,min=1,max=100"`
	Password string `json:"password" validate:"required"`
}

// MeResponse datos del usuario autenticado. UserID e ID llevan el mismo valor.
type MeResponse struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Fullname string `json:"fullname"`
	Role     string `json:"role"`
	ID       string `json:"id"`
}

// LoginResponse salida con token JWT y usuario.
type LoginResponse struct {
	Token string     `json:"token"`
	User  MeResponse `json:"user"`
}
