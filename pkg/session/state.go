// Package session mantiene el estado de autenticación de un cliente de la API:
// si hay un usuario autenticado, cuál es y si la carga inicial sigue en curso.
package session

import "fmt"

// User datos devueltos por GET /api/auth/me.
type User struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Fullname string `json:"fullname"`
	Role     string `json:"role"`
	ID       string `json:"id"`
}

// State estado de sesión. User es nil cuando Authenticated es false.
type State struct {
	Authenticated bool
	User          *User
	Loading       bool
}

// ActionType tipos de acción aceptados por Reduce.
type ActionType string

const (
	ActionLogin       ActionType = "LOGIN"
	ActionLogout      ActionType = "LOGOUT"
	ActionStopLoading ActionType = "STOP_LOADING"
)

// Action transición de estado; Payload solo aplica a LOGIN.
type Action struct {
	Type    ActionType
	Payload *User
}

// Initial estado antes de hidratar: sin usuario y cargando.
func Initial() State {
	return State{Authenticated: false, User: nil, Loading: true}
}

// Reduce aplica la acción y devuelve el nuevo estado. No modifica s.
// Un tipo de acción desconocido es un error de programación y se devuelve como tal.
func Reduce(s State, a Action) (State, error) {
	switch a.Type {
	case ActionLogin:
		s.Authenticated = true
		s.User = a.Payload
	case ActionLogout:
		s.Authenticated = false
		s.User = nil
	case ActionStopLoading:
		s.Loading = false
	default:
		return s, fmt.Errorf("session: tipo de acción desconocido: %s", a.Type)
	}
	return s, nil
}
