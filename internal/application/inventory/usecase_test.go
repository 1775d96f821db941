package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/Caisse-api/internal/application/inventory"
	"github.com/jhoicas/Caisse-api/internal/domain"
	"github.com/jhoicas/Caisse-api/internal/domain/entity"
	"github.com/jhoicas/Caisse-api/internal/domain/repository"
	"github.com/jhoicas/Caisse-api/internal/testutil"
)

func newLedger(t *testing.T) (*testutil.Store, *inventory.MovementUseCase) {
	t.Helper()
	store := testutil.NewStore()
	repos := store.Repositories()
	return store, inventory.NewMovementUseCase(store, repos.Products, repos.Movements, nil, nil)
}

func stockUp(t *testing.T, uc *inventory.MovementUseCase, productID string, qty int) {
	t.Helper()
	_, err := uc.ApplyMovement(context.Background(), inventory.MovementInput{
		ProductID: productID, Kind: entity.MovementIn, Quantity: qty, ActorID: "admin",
	})
	require.NoError(t, err)
}

func TestApplyMovement_SignoSegunTipo(t *testing.T) {
	store, uc := newLedger(t)
	p := store.Product("Café", "2.50")
	ctx := context.Background()

	cases := []struct {
		kind      entity.MovementKind
		qty       int
		reason    string
		wantDelta int
		wantStock int
	}{
		{entity.MovementIn, -10, "", 10, 10},
		{entity.MovementOut, 3, "", -3, 7},
		{entity.MovementLoss, -1, "rotura", -1, 6},
		{entity.MovementAdjustment, -2, "corrección", -2, 4},
		{entity.MovementTransfer, 5, "traslado desde bodega", 5, 9},
		{entity.MovementInventoryCount, -1, "conteo", -1, 8},
	}
	for _, tc := range cases {
		mov, err := uc.ApplyMovement(ctx, inventory.MovementInput{
			ProductID: p.ID, Kind: tc.kind, Quantity: tc.qty, Reason: tc.reason, ActorID: "u1",
		})
		require.NoError(t, err, tc.kind)
		assert.Equal(t, tc.wantDelta, mov.Quantity, tc.kind)
		assert.Equal(t, tc.wantStock, mov.StockAfter, tc.kind)
		assert.Equal(t, mov.StockBefore+mov.Quantity, mov.StockAfter, tc.kind)
		assert.Equal(t, tc.wantStock, store.Stock(p.ID), tc.kind)
	}
}

func TestApplyMovement_StockInsuficienteNoModifica(t *testing.T) {
	store, uc := newLedger(t)
	p := store.Product("Té", "1.00")
	stockUp(t, uc, p.ID, 2)
	_, rollbacksBefore := store.Stats()

	_, err := uc.ApplyMovement(context.Background(), inventory.MovementInput{
		ProductID: p.ID, Kind: entity.MovementOut, Quantity: 3, ActorID: "u1",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, p.ID, ise.ProductID)
	assert.Equal(t, 2, ise.Available)
	assert.Equal(t, 3, ise.Requested)

	assert.Equal(t, 2, store.Stock(p.ID))
	assert.Equal(t, 1, store.MovementCount(p.ID))
	_, rollbacks := store.Stats()
	assert.Equal(t, rollbacksBefore+1, rollbacks)
}

func TestApplyMovement_Validaciones(t *testing.T) {
	store, uc := newLedger(t)
	p := store.Product("Jugo", "1.00")
	ctx := context.Background()

	_, err := uc.ApplyMovement(ctx, inventory.MovementInput{ProductID: p.ID, Kind: entity.MovementAdjustment, Quantity: 1, ActorID: "u1"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "ajuste sin motivo")

	_, err = uc.ApplyMovement(ctx, inventory.MovementInput{ProductID: p.ID, Kind: "gift", Quantity: 1, ActorID: "u1"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "tipo desconocido")

	_, err = uc.ApplyMovement(ctx, inventory.MovementInput{ProductID: p.ID, Kind: entity.MovementIn, Quantity: 0, ActorID: "u1"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad cero")

	_, err = uc.ApplyMovement(ctx, inventory.MovementInput{ProductID: "nope", Kind: entity.MovementIn, Quantity: 1, ActorID: "u1"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	commits, _ := store.Stats()
	assert.Zero(t, commits)
}

func TestApplyMovement_LimitesDeCantidad(t *testing.T) {
	store, uc := newLedger(t)
	p := store.Product("Harina", "1.00")
	ctx := context.Background()

	_, err := uc.ApplyMovement(ctx, inventory.MovementInput{ProductID: p.ID, Kind: entity.MovementIn, Quantity: 3_000_000_000, ActorID: "u1"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad fuera de rango")
	_, err = uc.CountInventory(ctx, inventory.CountInput{ProductID: p.ID, Counted: 3_000_000_000, ActorID: "u1", Reason: "conteo"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	require.NoError(t, store.Repositories().Products.SetStock(ctx, p.ID, entity.MaxStock-10))
	_, err = uc.ApplyMovement(ctx, inventory.MovementInput{ProductID: p.ID, Kind: entity.MovementIn, Quantity: 11, ActorID: "u1"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "el stock no cabe en la columna")
	assert.Equal(t, entity.MaxStock-10, store.Stock(p.ID))
	assert.Zero(t, store.MovementCount(p.ID))
}

func TestApplyMovement_StockIgualAlUltimoMovimiento(t *testing.T) {
	store, uc := newLedger(t)
	p := store.Product("Pan", "0.80")
	ctx := context.Background()

	ok, err := uc.CheckConsistency(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	stockUp(t, uc, p.ID, 7)
	_, _ = uc.ApplyMovement(ctx, inventory.MovementInput{ProductID: p.ID, Kind: entity.MovementOut, Quantity: 9, ActorID: "u1"})
	_, err = uc.ApplyMovement(ctx, inventory.MovementInput{ProductID: p.ID, Kind: entity.MovementOut, Quantity: 4, ActorID: "u1"})
	require.NoError(t, err)

	last, err := store.Repositories().Movements.LatestForProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, last.StockAfter)
	assert.Equal(t, 3, store.Stock(p.ID))

	ok, err = uc.CheckConsistency(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestApplyMovement_ConcurrentesSoloUnoGana(t *testing.T) {
	for i := 0; i < 20; i++ {
		store, uc := newLedger(t)
		p := store.Product("Agua", "1.00")
		stockUp(t, uc, p.ID, 5)

		var results [2]error
		var g errgroup.Group
		for j := range results {
			j := j
			g.Go(func() error {
				_, results[j] = uc.ApplyMovement(context.Background(), inventory.MovementInput{
					ProductID: p.ID, Kind: entity.MovementOut, Quantity: 3, ActorID: "u1",
				})
				return nil
			})
		}
		require.NoError(t, g.Wait())

		okCount, insufficient := 0, 0
		for _, err := range results {
			switch {
			case err == nil:
				okCount++
			case errors.Is(err, domain.ErrInsufficientStock):
				insufficient++
			}
		}
		assert.Equal(t, 1, okCount)
		assert.Equal(t, 1, insufficient)
		assert.Equal(t, 2, store.Stock(p.ID))
	}
}

func TestApplyMovement_ContextoCanceladoHaceRollback(t *testing.T) {
	store, uc := newLedger(t)
	p := store.Product("Sal", "0.50")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := uc.ApplyMovement(ctx, inventory.MovementInput{ProductID: p.ID, Kind: entity.MovementIn, Quantity: 4, ActorID: "u1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 0, store.Stock(p.ID))
	assert.Equal(t, 0, store.MovementCount(p.ID))
}

func TestApplyMovement_FalloAlEscribirStockRevierteMovimiento(t *testing.T) {
	store, uc := newLedger(t)
	p := store.Product("Arroz", "1.10")
	store.FailOn("Products.SetStock", domain.ErrDatabase)

	_, err := uc.ApplyMovement(context.Background(), inventory.MovementInput{ProductID: p.ID, Kind: entity.MovementIn, Quantity: 4, ActorID: "u1"})
	assert.ErrorIs(t, err, domain.ErrDatabase)
	assert.Equal(t, 0, store.MovementCount(p.ID))
	assert.Equal(t, 0, store.Stock(p.ID))
}

func TestCountInventory(t *testing.T) {
	store, uc := newLedger(t)
	p := store.Product("Leche", "1.20")
	stockUp(t, uc, p.ID, 10)
	ctx := context.Background()

	mov, err := uc.CountInventory(ctx, inventory.CountInput{ProductID: p.ID, Counted: 7, ActorID: "u1", Reason: "conteo mensual"})
	require.NoError(t, err)
	assert.Equal(t, entity.MovementInventoryCount, mov.Kind)
	assert.Equal(t, -3, mov.Quantity)
	assert.Equal(t, 7, store.Stock(p.ID))

	// Conteo sin diferencia: queda registrado igual.
	mov, err = uc.CountInventory(ctx, inventory.CountInput{ProductID: p.ID, Counted: 7, ActorID: "u1", Reason: "reconteo"})
	require.NoError(t, err)
	assert.Equal(t, 0, mov.Quantity)
	assert.Equal(t, 3, store.MovementCount(p.ID))

	_, err = uc.CountInventory(ctx, inventory.CountInput{ProductID: p.ID, Counted: 7, ActorID: "u1"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReceivePurchase_CostoPromedio(t *testing.T) {
	store, uc := newLedger(t)
	p := store.Product("Azúcar", "3.00")
	ctx := context.Background()

	cost := decimal.RequireFromString("2.00")
	_, err := uc.ReceivePurchase(ctx, inventory.ReceiptInput{ProductID: p.ID, Quantity: 10, UnitCost: &cost, PurchaseOrderRef: "OC-1", ActorID: "u1"})
	require.NoError(t, err)
	cost = decimal.RequireFromString("3.00")
	mov, err := uc.ReceivePurchase(ctx, inventory.ReceiptInput{ProductID: p.ID, Quantity: 10, UnitCost: &cost, PurchaseOrderRef: "OC-2", ActorID: "u1"})
	require.NoError(t, err)

	assert.Equal(t, "OC-2", mov.PurchaseOrderRef)
	assert.Equal(t, 20, store.Stock(p.ID))
	got, err := store.Repositories().Products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.PurchasePrice.Equal(decimal.RequireFromString("2.5")), "got %s", got.PurchasePrice)

	_, err = uc.ReceivePurchase(ctx, inventory.ReceiptInput{ProductID: p.ID, Quantity: 1, ActorID: "u1"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin orden de compra")
}

func TestListMovementsYTotales(t *testing.T) {
	store, uc := newLedger(t)
	a := store.Product("A", "1.00")
	b := store.Product("B", "1.00")
	ctx := context.Background()
	stockUp(t, uc, a.ID, 10)
	stockUp(t, uc, b.ID, 4)
	for i := 0; i < 3; i++ {
		_, err := uc.ApplyMovement(ctx, inventory.MovementInput{ProductID: a.ID, Kind: entity.MovementOut, Quantity: 2, ActorID: "cajero"})
		require.NoError(t, err)
	}

	list, total, err := uc.ListMovements(ctx, repository.MovementFilter{ProductID: a.ID, Kind: entity.MovementOut, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, 3, total)
	assert.Equal(t, 4, list[0].StockAfter, "más reciente primero")

	list, _, err = uc.ListMovements(ctx, repository.MovementFilter{ActorID: "admin"})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, _, err = uc.ListMovements(ctx, repository.MovementFilter{Kind: "bogus"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	totals, err := uc.MovementTotals(ctx, a.ID, nil, nil)
	require.NoError(t, err)
	require.Len(t, totals, 2)
	byKind := map[entity.MovementKind]entity.MovementTotal{}
	for _, tt := range totals {
		byKind[tt.Kind] = tt
	}
	assert.Equal(t, 10, byKind[entity.MovementIn].Quantity)
	assert.Equal(t, 3, byKind[entity.MovementOut].Count)
	assert.Equal(t, -6, byKind[entity.MovementOut].Quantity)

	_, err = uc.MovementTotals(ctx, "nope", nil, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReplenishment(t *testing.T) {
	store, uc := newLedger(t)
	ctx := context.Background()
	low := store.Product("Bajo", "2.00") // umbral 2
	ok := store.Product("Suficiente", "2.00")
	stockUp(t, uc, low.ID, 1)
	stockUp(t, uc, ok.ID, 10)

	repos := store.Repositories()
	list, err := inventory.NewReplenishmentUseCase(repos.Products, repos.Movements).GenerateReplenishmentList(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, low.ID, list[0].ProductID)
	assert.Equal(t, 3, list[0].IdealStock)
	assert.Equal(t, 2, list[0].SuggestedOrderQty)
	assert.Equal(t, 1, list[0].Priority)
}

func TestReplenishment_OrdenPorDeficit(t *testing.T) {
	store, uc := newLedger(t)
	ctx := context.Background()
	repos := store.Repositories()

	rentable := store.Product("Rentable", "9.00") // margen 100 %, déficit 1
	stockUp(t, uc, rentable.ID, 2)
	escaso := store.Product("Escaso", "2.00") // margen 25 %, déficit 3
	require.NoError(t, repos.Products.UpdatePurchasePrice(ctx, escaso.ID, decimal.RequireFromString("1.50")))

	list, err := inventory.NewReplenishmentUseCase(repos.Products, repos.Movements).GenerateReplenishmentList(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, escaso.ID, list[0].ProductID)
	assert.Equal(t, 3, list[0].SuggestedOrderQty)
	assert.Equal(t, rentable.ID, list[1].ProductID)
	assert.Equal(t, 1, list[1].SuggestedOrderQty)
	assert.Equal(t, 2, list[1].Priority)
}
