package repository

import (
	"context"

	"github.com/jhoicas/Caisse-api/internal/domain/entity"
)

// UserRepository define el puerto de lectura de usuarios y permisos (login y oráculo de autorización).
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	// RolePermissions devuelve los códigos concedidos por los roles del usuario.
	RolePermissions(ctx context.Context, userID string) ([]string, error)
	// Overrides devuelve las concesiones y revocaciones explícitas del usuario.
	Overrides(ctx context.Context, userID string) ([]entity.PermissionOverride, error)
}
