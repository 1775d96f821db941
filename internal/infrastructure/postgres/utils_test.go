package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Caisse-api/internal/domain"
	"github.com/jhoicas/Caisse-api/internal/domain/repository"
)

func TestDBError_ClasificaSQLState(t *testing.T) {
	cases := []struct {
		code string
		want error
	}{
		{"22P02", domain.ErrInvalidInput},
		{"22003", domain.ErrInvalidInput},
		{"23514", domain.ErrConflict},
		{"55P03", domain.ErrDatabase},
		{"40001", domain.ErrDatabase},
	}
	for _, tc := range cases {
		err := dbError("op", &pgconn.PgError{Code: tc.code, Message: "m"})
		assert.ErrorIs(t, err, tc.want, tc.code)
	}
	assert.ErrorIs(t, dbError("op", errors.New("conn reset")), domain.ErrDatabase)
}

func TestIsUUID(t *testing.T) {
	assert.True(t, isUUID("6f1c2a7e-0b9d-4c47-9a53-2f0d8f6f1e11"))
	assert.False(t, isUUID("abc"))
	assert.False(t, isUUID(""))
}

func TestMovementWhere_ProductoMalFormadoNoCoincide(t *testing.T) {
	w := movementWhere(repository.MovementFilter{ProductID: "abc"})
	assert.Equal(t, " WHERE FALSE", w.String())
	assert.Empty(t, w.args)

	w = movementWhere(repository.MovementFilter{ProductID: "6f1c2a7e-0b9d-4c47-9a53-2f0d8f6f1e11"})
	assert.Equal(t, " WHERE product_id = $1", w.String())
}
