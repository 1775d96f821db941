package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Caisse-api/internal/domain/entity"
	"github.com/jhoicas/Caisse-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo lectura de usuarios, roles y excepciones de permisos sobre PostgreSQL.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de lectura de usuarios.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

const userSelect = `
	SELECT u.id, u.email, u.name, u.password_hash, u.status, u.created_at, u.updated_at,
		ARRAY(SELECT ur.role_id FROM user_roles ur WHERE ur.user_id = u.id ORDER BY ur.role_id)
	FROM users u`

// GetByID obtiene un usuario con sus roles (nil si no existe).
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.one(ctx, "get user", userSelect+` WHERE u.id = $1`, id)
}

// FindByEmail busca por email sin distinguir mayúsculas (nil si no existe).
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.one(ctx, "find user by email", userSelect+` WHERE lower(u.email) = lower($1)`, email)
}

func (r *UserRepo) one(ctx context.Context, op, query string, arg string) (*entity.User, error) {
	var u entity.User
	err := r.q.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Status, &u.CreatedAt, &u.UpdatedAt, &u.RoleIDs,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, dbError(op, err)
	}
	return &u, nil
}

// RolePermissions devuelve los códigos concedidos por los roles del usuario.
func (r *UserRepo) RolePermissions(ctx context.Context, userID string) ([]string, error) {
	return r.strings(ctx, "role permissions", `
		SELECT DISTINCT rp.code
		FROM user_roles ur JOIN role_permissions rp ON rp.role_id = ur.role_id
		WHERE ur.user_id = $1 ORDER BY rp.code`, userID)
}

// Overrides devuelve las concesiones y revocaciones explícitas del usuario.
func (r *UserRepo) Overrides(ctx context.Context, userID string) ([]entity.PermissionOverride, error) {
	rows, err := r.q.Query(ctx,
		`SELECT user_id, code, granted FROM user_permissions WHERE user_id = $1 ORDER BY code`, userID)
	if err != nil {
		return nil, dbError("user permissions", err)
	}
	defer rows.Close()
	var out []entity.PermissionOverride
	for rows.Next() {
		var o entity.PermissionOverride
		if err := rows.Scan(&o.UserID, &o.Code, &o.Granted); err != nil {
			return nil, dbError("scan user permission", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("user permissions", err)
	}
	return out, nil
}

func (r *UserRepo) strings(ctx context.Context, op, query string, args ...any) ([]string, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, dbError(op, err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, dbError(op, err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(op, err)
	}
	return out, nil
}
