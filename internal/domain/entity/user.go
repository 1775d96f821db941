package entity

import "time"

// User representa un usuario del back-office (cajero, supervisor, administrador).
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	RoleIDs      []string
	Status       string // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsActive indica si el usuario puede operar.
func (u *User) IsActive() bool { return u.Status == "active" }

// PermissionOverride permiso otorgado o revocado explícitamente a un usuario.
type PermissionOverride struct {
	UserID  string
	Code    string
	Granted bool // false = revocado
}
