package auth

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Caisse-api/internal/application/dto"
	"github.com/jhoicas/Caisse-api/internal/application/validation"
	"github.com/jhoicas/Caisse-api/internal/domain"
	"github.com/jhoicas/Caisse-api/internal/domain/entity"
	"github.com/jhoicas/Caisse-api/internal/domain/repository"
	"github.com/jhoicas/Caisse-api/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// AuthUseCase autentica usuarios del back-office y emite el token de identidad.
// Los permisos no viajan en el token: los resuelve el oráculo en cada petición.
type AuthUseCase struct {
	users  repository.UserRepository
	jwtCfg JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(users repository.UserRepository, jwtCfg JWTConfig) *AuthUseCase {
	if jwtCfg.TTL <= 0 {
		jwtCfg.TTL = 12 * time.Hour
	}
	return &AuthUseCase{users: users, jwtCfg: jwtCfg}
}

// HashPassword genera el hash bcrypt que se guarda en users.password_hash.
func HashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", fmt.Errorf("%w: password: mínimo 8 caracteres", domain.ErrInvalidInput)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Login verifica email/password y devuelve un token firmado.
// Email desconocido y password incorrecto responden igual (ErrUnauthorized).
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	user, err := uc.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if user == nil || user.PasswordHash == "" {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !user.IsActive() {
		return nil, domain.ErrForbidden
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, primaryRole(user), uc.jwtCfg.Issuer, uc.jwtCfg.TTL)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{Token: token, User: toUserResponse(user)}, nil
}

// primaryRole rol informativo del token; el primero en orden alfabético.
func primaryRole(u *entity.User) string {
	if len(u.RoleIDs) == 0 {
		return ""
	}
	return u.RoleIDs[0]
}

func toUserResponse(u *entity.User) dto.UserResponse {
	roles := u.RoleIDs
	if roles == nil {
		roles = []string{}
	}
	return dto.UserResponse{ID: u.ID, Email: u.Email, Name: u.Name, RoleIDs: roles, Status: u.Status}
}
