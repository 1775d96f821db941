package testutil

import (
	"context"
	"strings"

	"github.com/jhoicas/Caisse-api/internal/domain/entity"
	"github.com/jhoicas/Caisse-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implementación en memoria de repository.UserRepository, con helpers de siembra.
type UserRepo struct{ base }

// AddUser registra un usuario.
func (r *UserRepo) AddUser(u entity.User) {
	_ = r.with("", func(st *state) error {
		st.users[u.ID] = u
		return nil
	})
}

// SetRole fija los permisos de un rol.
func (r *UserRepo) SetRole(roleID string, codes ...string) {
	_ = r.with("", func(st *state) error {
		st.roles[roleID] = codes
		return nil
	})
}

// AddOverride concede (granted=true) o revoca un permiso a un usuario.
func (r *UserRepo) AddOverride(userID, code string, granted bool) {
	_ = r.with("", func(st *state) error {
		st.overrides = append(st.overrides, entity.PermissionOverride{UserID: userID, Code: code, Granted: granted})
		return nil
	})
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	var out *entity.User
	err := r.with("Users.GetByID", func(st *state) error {
		if u, ok := st.users[id]; ok {
			out = &u
		}
		return nil
	})
	return out, err
}

func (r *UserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	var out *entity.User
	err := r.with("Users.FindByEmail", func(st *state) error {
		for _, u := range st.users {
			if strings.EqualFold(u.Email, email) {
				u := u
				out = &u
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *UserRepo) RolePermissions(_ context.Context, userID string) ([]string, error) {
	var out []string
	err := r.with("Users.RolePermissions", func(st *state) error {
		u, ok := st.users[userID]
		if !ok {
			return nil
		}
		for _, role := range u.RoleIDs {
			out = append(out, st.roles[role]...)
		}
		return nil
	})
	return out, err
}

func (r *UserRepo) Overrides(_ context.Context, userID string) ([]entity.PermissionOverride, error) {
	var out []entity.PermissionOverride
	err := r.with("Users.Overrides", func(st *state) error {
		for _, o := range st.overrides {
			if o.UserID == userID {
				out = append(out, o)
			}
		}
		return nil
	})
	return out, err
}
