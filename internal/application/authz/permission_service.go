package authz

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/Caisse-api/internal/domain/repository"
	"github.com/jhoicas/Caisse-api/pkg/logger"
)

// Wildcard concede cualquier permiso.
const Wildcard = "*"

// PermissionSet permisos efectivos de un usuario: roles ∪ concesiones − revocaciones.
// Revoked se conserva aparte para que una revocación explícita también gane a un comodín concedido.
type PermissionSet struct {
	Granted []string `json:"granted"`
	Revoked []string `json:"revoked"`
}

// Allows indica si el conjunto permite code. "caisse.*" cubre cualquier "caisse.X"; "*" cubre todo.
func (p PermissionSet) Allows(code string) bool {
	if code == "" {
		return false
	}
	for _, r := range p.Revoked {
		if matches(r, code) {
			return false
		}
	}
	for _, g := range p.Granted {
		if matches(g, code) {
			return true
		}
	}
	return false
}

func matches(pattern, code string) bool {
	if pattern == Wildcard || pattern == code {
		return true
	}
	if strings.HasSuffix(pattern, ".*") {
		return strings.HasPrefix(code, strings.TrimSuffix(pattern, "*"))
	}
	return false
}

// PermissionCache caché del conjunto efectivo por usuario.
type PermissionCache interface {
	Get(ctx context.Context, userID string) (*PermissionSet, error) // nil si no está
	Set(ctx context.Context, userID string, set *PermissionSet) error
	Invalidate(ctx context.Context, userID string) error
}

// PermissionService oráculo de autorización consultado por la capa de transporte.
// El núcleo no lo usa: asume que el llamador ya está autorizado.
type PermissionService struct {
	users repository.UserRepository
	cache PermissionCache
	log   *logger.Logger
}

// NewPermissionService construye el servicio. cache puede ser nil (sin caché).
func NewPermissionService(users repository.UserRepository, cache PermissionCache, log *logger.Logger) *PermissionService {
	if log == nil {
		log = logger.Nop()
	}
	return &PermissionService{users: users, cache: cache, log: log.Component("authz")}
}

// PermissionSet resuelve los permisos efectivos en dos pasos (roles y excepciones del usuario)
// y los combina en memoria. Un usuario inexistente o inactivo no tiene permisos.
func (s *PermissionService) PermissionSet(ctx context.Context, userID string) (*PermissionSet, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, userID)
		if err != nil {
			s.log.Warn().Err(err).Str("user_id", userID).Msg("caché de permisos no disponible")
		} else if cached != nil {
			return cached, nil
		}
	}

	set := &PermissionSet{Granted: []string{}, Revoked: []string{}}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user != nil && user.IsActive() {
		roleCodes, err := s.users.RolePermissions(ctx, userID)
		if err != nil {
			return nil, err
		}
		overrides, err := s.users.Overrides(ctx, userID)
		if err != nil {
			return nil, err
		}

		granted := make(map[string]struct{}, len(roleCodes)+len(overrides))
		for _, c := range roleCodes {
			granted[c] = struct{}{}
		}
		revoked := make(map[string]struct{})
		for _, o := range overrides {
			if o.Granted {
				granted[o.Code] = struct{}{}
			} else {
				revoked[o.Code] = struct{}{}
			}
		}
		for c := range revoked {
			delete(granted, c)
		}
		set.Granted = sortedSet(granted)
		set.Revoked = sortedSet(revoked)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, userID, set); err != nil {
			s.log.Warn().Err(err).Str("user_id", userID).Msg("no se pudo cachear permisos")
		}
	}
	return set, nil
}

// UserCan responde si el usuario tiene el permiso code.
func (s *PermissionService) UserCan(ctx context.Context, userID, code string) (bool, error) {
	set, err := s.PermissionSet(ctx, userID)
	if err != nil {
		return false, err
	}
	return set.Allows(code), nil
}

// Invalidate descarta el conjunto cacheado del usuario tras un cambio de roles o permisos.
func (s *PermissionService) Invalidate(ctx context.Context, userID string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx, userID)
}

func sortedSet(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
