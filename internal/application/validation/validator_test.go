package validation_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Caisse-api/internal/application/validation"
	"github.com/jhoicas/Caisse-api/internal/domain"
)

type sample struct {
	Reason string           `json:"reason" validate:"required,min=5"`
	Amount decimal.Decimal  `json:"amount" validate:"gte=0"`
	Price  *decimal.Decimal `json:"price" validate:"omitempty,gt=0"`
	Kind   string           `json:"kind" validate:"oneof=a b"`
	Actor  string           `json:"actor" validate:"notblank"`
}

func TestStruct_OK(t *testing.T) {
	p := decimal.RequireFromString("2.50")
	err := validation.Struct(sample{Reason: "conteo", Amount: decimal.Zero, Price: &p, Kind: "a", Actor: "u1"})
	assert.NoError(t, err)
}

func TestStruct_Fallos(t *testing.T) {
	p := decimal.Zero
	err := validation.Struct(sample{Reason: "abc", Amount: decimal.NewFromInt(-1), Price: &p, Kind: "z", Actor: "  "})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	for _, field := range []string{"reason", "amount", "price", "kind", "actor"} {
		assert.Contains(t, err.Error(), field)
	}
}
