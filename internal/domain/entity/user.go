package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin     = "admin"
	RoleBodeguero = "bodeguero"
	RoleVendedor  = "vendedor"
)

// User representa un usuario del sistema.
type User struct {
	ID           string
	Username     string
	Fullname     string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Role         string // admin, bodeguero, vendedor
	Status       string // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Active indica si el usuario puede iniciar sesión.
func (u *User) Active() bool {
	return u != nil && u.Status == "active"
}
