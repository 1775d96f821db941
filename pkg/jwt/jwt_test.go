package jwt_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Caisse-api/pkg/jwt"
)

const secret = "test-secret"

func TestGenerateParse_RoundTrip(t *testing.T) {
	tok, err := jwt.Generate(secret, "user-1", "cajero", "caisse-api", time.Minute)
	require.NoError(t, err)

	id, err := jwt.Parse(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id.UserID)
	assert.Equal(t, "cajero", id.Role)
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	tok, err := jwt.Generate("otro", "user-1", "cajero", "caisse-api", time.Minute)
	require.NoError(t, err)

	_, err = jwt.Parse(secret, tok)
	assert.Error(t, err)
}

func TestParse_Expirado(t *testing.T) {
	tok, err := jwt.Generate(secret, "user-1", "cajero", "caisse-api", -time.Minute)
	require.NoError(t, err)

	_, err = jwt.Parse(secret, tok)
	assert.Error(t, err)
}

func TestSecretVacio(t *testing.T) {
	_, err := jwt.Generate("", "u", "r", "i", time.Minute)
	assert.Error(t, err)
	_, err = jwt.Parse("", "x")
	assert.Error(t, err)
}
