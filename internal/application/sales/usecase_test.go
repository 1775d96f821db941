package sales_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Caisse-api/internal/application/account"
	"github.com/jhoicas/Caisse-api/internal/application/inventory"
	"github.com/jhoicas/Caisse-api/internal/application/sales"
	"github.com/jhoicas/Caisse-api/internal/domain"
	"github.com/jhoicas/Caisse-api/internal/domain/entity"
	"github.com/jhoicas/Caisse-api/internal/domain/repository"
	"github.com/jhoicas/Caisse-api/internal/testutil"
)

type fixture struct {
	store *testutil.Store
	stock *inventory.MovementUseCase
	sales *sales.SaleUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := testutil.NewStore()
	repos := store.Repositories()
	stock := inventory.NewMovementUseCase(store, repos.Products, repos.Movements, nil, nil)
	accounts := account.NewAccountUseCase(store, repos.Accounts, nil, nil)
	return &fixture{
		store: store,
		stock: stock,
		sales: sales.NewSaleUseCase(store, repos.Sales, stock, accounts, nil, nil),
	}
}

func (f *fixture) product(t *testing.T, name, price string, qty int) *entity.Product {
	t.Helper()
	p := f.store.Product(name, price)
	if qty > 0 {
		_, err := f.stock.ApplyMovement(context.Background(), inventory.MovementInput{
			ProductID: p.ID, Kind: entity.MovementIn, Quantity: qty, ActorID: "admin",
		})
		require.NoError(t, err)
	}
	return p
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func price(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestCreateSale_Escenario(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Galletas", "3.00", 10)
	ctx := context.Background()

	sale, err := f.sales.CreateSale(ctx, sales.CreateSaleInput{
		CashierID:   "cajero-1",
		PaymentKind: entity.PaymentCash,
		Lines:       []sales.LineInput{{ProductID: p.ID, Quantity: 4, UnitPrice: price("2.50")}},
	})
	require.NoError(t, err)

	assert.True(t, sale.Total.Equal(dec("10.00")), "total %s", sale.Total)
	assert.Equal(t, entity.SaleStatusValid, sale.Status)
	require.Len(t, sale.Lines, 1)
	assert.True(t, sale.Lines[0].LineTotal.Equal(dec("10")))
	assert.Equal(t, 6, f.store.Stock(p.ID))

	movs, total, err := f.stock.ListMovements(ctx, repository.MovementFilter{ProductID: p.ID, Kind: entity.MovementOut})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.Equal(t, -4, movs[0].Quantity)
	assert.Equal(t, 10, movs[0].StockBefore)
	assert.Equal(t, 6, movs[0].StockAfter)
	assert.Equal(t, sale.ID, movs[0].SaleTransactionID)

	got, err := f.sales.GetSale(ctx, sale.ID)
	require.NoError(t, err)
	assert.Len(t, got.Lines, 1)
}

func TestCreateSale_PrecioPorDefectoYSocio(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Refresco", "1.50", 5)
	f.store.Account("socio-1", "20.00")

	sale, err := f.sales.CreateSale(context.Background(), sales.CreateSaleInput{
		BuyerID:     "socio-1",
		CashierID:   "cajero-1",
		PaymentKind: entity.PaymentCash,
		Lines:       []sales.LineInput{{ProductID: p.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.True(t, sale.Total.Equal(dec("3.00")))
	assert.True(t, f.store.Balance("socio-1").Equal(dec("17.00")))
	assert.Equal(t, 1, f.store.EntryCount())
}

func TestCreateSale_ImportesACentimos(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Caramelo", "0.10", 10)
	f.store.Account("socio-2", "5.00")

	sale, err := f.sales.CreateSale(context.Background(), sales.CreateSaleInput{
		BuyerID:     "socio-2",
		CashierID:   "cajero-1",
		PaymentKind: entity.PaymentCash,
		Lines:       []sales.LineInput{{ProductID: p.ID, Quantity: 3, UnitPrice: price("0.333")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "0.33", sale.Lines[0].UnitPrice.StringFixed(2))
	assert.True(t, sale.Total.Equal(dec("0.99")), "total %s", sale.Total)
	assert.True(t, f.store.Balance("socio-2").Equal(dec("4.01")))

	change, err := f.sales.CreateSale(context.Background(), sales.CreateSaleInput{
		CashierID:   "cajero-1",
		PaymentKind: entity.PaymentChange,
		Amount:      dec("1.005"),
	})
	require.NoError(t, err)
	assert.True(t, change.Amount.Equal(dec("1.01")), "amount %s", change.Amount)

	_, err = f.sales.CreateSale(context.Background(), sales.CreateSaleInput{
		CashierID:   "cajero-1",
		PaymentKind: entity.PaymentCash,
		Lines:       []sales.LineInput{{ProductID: p.ID, Quantity: 2_000_000}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateSale_AtomicidadTodoONada(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", "1.00", 5)
	b := f.product(t, "B", "1.00", 1)
	c := f.product(t, "C", "1.00", 5)
	f.store.Account("socio-1", "10.00")

	_, err := f.sales.CreateSale(context.Background(), sales.CreateSaleInput{
		BuyerID:     "socio-1",
		CashierID:   "cajero-1",
		PaymentKind: entity.PaymentCash,
		Lines: []sales.LineInput{
			{ProductID: a.ID, Quantity: 2},
			{ProductID: b.ID, Quantity: 2},
			{ProductID: c.ID, Quantity: 2},
		},
	})
	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, b.ID, ise.ProductID)
	assert.Equal(t, 1, ise.Available)
	assert.Equal(t, 2, ise.Requested)

	assert.Equal(t, 5, f.store.Stock(a.ID))
	assert.Equal(t, 1, f.store.Stock(b.ID))
	assert.Equal(t, 5, f.store.Stock(c.ID))
	txs, lines := f.store.SaleCount()
	assert.Zero(t, txs)
	assert.Zero(t, lines)
	assert.True(t, f.store.Balance("socio-1").Equal(dec("10")))
	assert.Zero(t, f.store.EntryCount())
}

func TestCreateSale_FalloAMitadRevierteTodo(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", "1.00", 5)
	f.store.Account("socio-1", "10.00")
	f.store.FailOn("Accounts.CreateEntry", domain.ErrDatabase)

	_, err := f.sales.CreateSale(context.Background(), sales.CreateSaleInput{
		BuyerID:     "socio-1",
		CashierID:   "cajero-1",
		PaymentKind: entity.PaymentCash,
		Lines:       []sales.LineInput{{ProductID: a.ID, Quantity: 2}},
	})
	assert.ErrorIs(t, err, domain.ErrDatabase)
	assert.Equal(t, 5, f.store.Stock(a.ID))
	assert.Equal(t, 1, f.store.MovementCount(a.ID))
	txs, _ := f.store.SaleCount()
	assert.Zero(t, txs)
	assert.True(t, f.store.Balance("socio-1").Equal(dec("10")))
}

func TestCreateSale_MismoProductoEnVariasLineas(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "P", "1.00", 5)

	_, err := f.sales.CreateSale(context.Background(), sales.CreateSaleInput{
		CashierID:   "cajero-1",
		PaymentKind: entity.PaymentCash,
		Lines:       []sales.LineInput{{ProductID: p.ID, Quantity: 3}, {ProductID: p.ID, Quantity: 3}},
	})
	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, 6, ise.Requested)

	sale, err := f.sales.CreateSale(context.Background(), sales.CreateSaleInput{
		CashierID:   "cajero-1",
		PaymentKind: entity.PaymentCash,
		Lines:       []sales.LineInput{{ProductID: p.ID, Quantity: 2}, {ProductID: p.ID, Quantity: 3}},
	})
	require.NoError(t, err)
	assert.True(t, sale.Total.Equal(dec("5")))
	assert.Equal(t, 0, f.store.Stock(p.ID))
}

func TestCreateSale_Validaciones(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "P", "1.00", 5)
	ctx := context.Background()
	line := []sales.LineInput{{ProductID: p.ID, Quantity: 1}}

	_, err := f.sales.CreateSale(ctx, sales.CreateSaleInput{CashierID: "c", PaymentKind: entity.PaymentCheque, Lines: line})
	assert.ErrorIs(t, err, domain.ErrInvalidPaymentReference)

	_, err = f.sales.CreateSale(ctx, sales.CreateSaleInput{CashierID: "c", PaymentKind: entity.PaymentCard, PaymentRef: "  ", Lines: line})
	assert.ErrorIs(t, err, domain.ErrInvalidPaymentReference)

	_, err = f.sales.CreateSale(ctx, sales.CreateSaleInput{CashierID: "c", PaymentKind: entity.PaymentCash})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "venta sin líneas")

	_, err = f.sales.CreateSale(ctx, sales.CreateSaleInput{CashierID: "c", PaymentKind: entity.PaymentChange, Lines: line})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "pseudo con líneas")

	_, err = f.sales.CreateSale(ctx, sales.CreateSaleInput{CashierID: "c", PaymentKind: entity.PaymentCash,
		Lines: []sales.LineInput{{ProductID: "nope", Quantity: 1}}})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.sales.CreateSale(ctx, sales.CreateSaleInput{CashierID: "c", PaymentKind: entity.PaymentCash,
		Lines: []sales.LineInput{{ProductID: p.ID, Quantity: 0}}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	sale, err := f.sales.CreateSale(ctx, sales.CreateSaleInput{CashierID: "c", PaymentKind: entity.PaymentCheque, PaymentRef: "CH-001", Lines: line})
	require.NoError(t, err)
	assert.Equal(t, "CH-001", sale.PaymentRef)
	assert.Equal(t, 4, f.store.Stock(p.ID))
}

func TestCreateSale_PseudoCambio(t *testing.T) {
	f := newFixture(t)

	sale, err := f.sales.CreateSale(context.Background(), sales.CreateSaleInput{
		CashierID:   "cajero-1",
		PaymentKind: entity.PaymentChange,
		Amount:      dec("5.00"),
	})
	require.NoError(t, err)
	assert.True(t, sale.Total.IsZero())
	assert.True(t, sale.Amount.Equal(dec("5")))
	assert.Empty(t, sale.Lines)
}

func TestCancelSale_RestauraStockYSaldo(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", "2.00", 8)
	b := f.product(t, "B", "0.50", 3)
	f.store.Account("socio-1", "4.00")
	ctx := context.Background()

	sale, err := f.sales.CreateSale(ctx, sales.CreateSaleInput{
		BuyerID:     "socio-1",
		CashierID:   "cajero-1",
		PaymentKind: entity.PaymentCash,
		Lines:       []sales.LineInput{{ProductID: a.ID, Quantity: 3}, {ProductID: b.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.True(t, f.store.Balance("socio-1").Equal(dec("-3.00")), "el saldo puede quedar negativo")

	require.NoError(t, f.sales.CancelSale(ctx, sales.CancelInput{TransactionID: sale.ID, ActorID: "sup-1", Reason: "error de cobro"}))

	assert.Equal(t, 8, f.store.Stock(a.ID))
	assert.Equal(t, 3, f.store.Stock(b.ID))
	assert.True(t, f.store.Balance("socio-1").Equal(dec("4")))

	got, err := f.sales.GetSale(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStatusCancelled, got.Status)
	assert.Equal(t, "sup-1", got.CancelledBy)
	assert.Equal(t, "error de cobro", got.CancelReason)
	require.NotNil(t, got.CancelledAt)

	ins, _, err := f.stock.ListMovements(ctx, repository.MovementFilter{ProductID: a.ID, Kind: entity.MovementIn, ActorID: "sup-1"})
	require.NoError(t, err)
	require.Len(t, ins, 1)
	assert.Equal(t, sale.ID, ins[0].SaleTransactionID)

	err = f.sales.CancelSale(ctx, sales.CancelInput{TransactionID: sale.ID, ActorID: "sup-1", Reason: "otra vez"})
	assert.ErrorIs(t, err, domain.ErrAlreadyCancelled)
	assert.Equal(t, 8, f.store.Stock(a.ID))
}

func TestCancelSale_Errores(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "P", "1.00", 2)
	ctx := context.Background()

	sale, err := f.sales.CreateSale(ctx, sales.CreateSaleInput{CashierID: "c", PaymentKind: entity.PaymentCash,
		Lines: []sales.LineInput{{ProductID: p.ID, Quantity: 1}}})
	require.NoError(t, err)

	err = f.sales.CancelSale(ctx, sales.CancelInput{TransactionID: sale.ID, ActorID: "s", Reason: " abc "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "motivo corto")

	err = f.sales.CancelSale(ctx, sales.CancelInput{TransactionID: "nope", ActorID: "s", Reason: "motivo válido"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	change, err := f.sales.CreateSale(ctx, sales.CreateSaleInput{CashierID: "c", PaymentKind: entity.PaymentChange, Amount: dec("1")})
	require.NoError(t, err)
	err = f.sales.CancelSale(ctx, sales.CancelInput{TransactionID: change.ID, ActorID: "s", Reason: "motivo válido"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.Equal(t, 1, f.store.Stock(p.ID))
}

func TestListSales(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "P", "1.00", 10)
	ctx := context.Background()
	for _, cashier := range []string{"c1", "c1", "c2"} {
		_, err := f.sales.CreateSale(ctx, sales.CreateSaleInput{CashierID: cashier, PaymentKind: entity.PaymentCash,
			Lines: []sales.LineInput{{ProductID: p.ID, Quantity: 1}}})
		require.NoError(t, err)
	}

	list, err := f.sales.ListSales(ctx, repository.SaleFilter{CashierID: "c1"})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = f.sales.ListSales(ctx, repository.SaleFilter{PaymentKind: "bitcoin"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
