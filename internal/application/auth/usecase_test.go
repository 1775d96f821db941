package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Caisse-api/internal/application/auth"
	"github.com/jhoicas/Caisse-api/internal/application/dto"
	"github.com/jhoicas/Caisse-api/internal/domain"
	"github.com/jhoicas/Caisse-api/internal/domain/entity"
	"github.com/jhoicas/Caisse-api/internal/testutil"
	"github.com/jhoicas/Caisse-api/pkg/jwt"
)

const secret = "test-secret"

func newAuth(t *testing.T, status string) *auth.AuthUseCase {
	t.Helper()
	hash, err := auth.HashPassword("clave-segura")
	require.NoError(t, err)
	users := testutil.NewStore().Users()
	users.AddUser(entity.User{
		ID: "u-1", Email: "Cajera@caisse.test", Name: "Ana", PasswordHash: hash,
		RoleIDs: []string{"cashier"}, Status: status,
	})
	return auth.NewAuthUseCase(users, auth.JWTConfig{Secret: secret, Issuer: "caisse-test", TTL: time.Hour})
}

func TestLogin_EmiteTokenConIdentidad(t *testing.T) {
	uc := newAuth(t, "active")

	out, err := uc.Login(context.Background(), dto.LoginRequest{Email: "cajera@caisse.test", Password: "clave-segura"})
	require.NoError(t, err)
	assert.Equal(t, "u-1", out.User.ID)
	assert.Equal(t, []string{"cashier"}, out.User.RoleIDs)

	id, err := jwt.Parse(secret, out.Token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", id.UserID)
	assert.Equal(t, "cashier", id.Role)
}

func TestLogin_Rechazos(t *testing.T) {
	cases := []struct {
		name     string
		status   string
		in       dto.LoginRequest
		expected error
	}{
		{"password incorrecto", "active", dto.LoginRequest{Email: "cajera@caisse.test", Password: "otra-clave"}, domain.ErrUnauthorized},
		{"email desconocido", "active", dto.LoginRequest{Email: "nadie@caisse.test", Password: "clave-segura"}, domain.ErrUnauthorized},
		{"usuario inactivo", "inactive", dto.LoginRequest{Email: "cajera@caisse.test", Password: "clave-segura"}, domain.ErrForbidden},
		{"email mal formado", "active", dto.LoginRequest{Email: "cajera", Password: "x"}, domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := newAuth(t, tc.status).Login(context.Background(), tc.in)
			assert.ErrorIs(t, err, tc.expected)
		})
	}
}

func TestHashPassword_Minimo(t *testing.T) {
	_, err := auth.HashPassword("corta")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
