package postgres_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/Caisse-api/internal/application/account"
	"github.com/jhoicas/Caisse-api/internal/application/cashsession"
	"github.com/jhoicas/Caisse-api/internal/application/inventory"
	"github.com/jhoicas/Caisse-api/internal/application/sales"
	"github.com/jhoicas/Caisse-api/internal/domain"
	"github.com/jhoicas/Caisse-api/internal/domain/entity"
	"github.com/jhoicas/Caisse-api/internal/domain/repository"
	"github.com/jhoicas/Caisse-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Caisse-api/pkg/config"
)

var (
	dbOnce sync.Once
	dbURL  string
	dbErr  error
)

// testDatabase devuelve la URL de una base migrada: TEST_DATABASE_URL o un contenedor efímero.
func testDatabase(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("integración con PostgreSQL omitida en modo -short")
	}
	dbOnce.Do(func() {
		dbURL = os.Getenv("TEST_DATABASE_URL")
		if dbURL == "" {
			dbURL, dbErr = startContainer()
			if dbErr != nil {
				return
			}
		}
		var m *postgres.Migrator
		if m, dbErr = postgres.NewMigrator(dbURL, nil); dbErr != nil {
			return
		}
		defer m.Close()
		dbErr = m.Up()
	})
	if dbErr != nil {
		t.Skipf("PostgreSQL no disponible: %v", dbErr)
	}
	return dbURL
}

func startContainer() (string, error) {
	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("caisse_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		return "", err
	}
	return container.ConnectionString(ctx, "sslmode=disable")
}

type harness struct {
	pool     *pgxpool.Pool
	stock    *inventory.MovementUseCase
	sales    *sales.SaleUseCase
	sessions *cashsession.SessionUseCase
	accounts *account.AccountUseCase
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	url := testDatabase(t)
	pool, err := postgres.NewPool(context.Background(), config.DBConfig{
		DatabaseURL: url, MaxConns: 8, MinConns: 1, LockTimeout: 3 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	tx := postgres.NewTxRunner(pool)
	repos := postgres.NewRepositories(pool)
	stock := inventory.NewMovementUseCase(tx, repos.Products, repos.Movements, nil, nil)
	accounts := account.NewAccountUseCase(tx, repos.Accounts, nil, nil)
	saleUC := sales.NewSaleUseCase(tx, repos.Sales, stock, accounts, nil, nil)
	return &harness{
		pool:     pool,
		stock:    stock,
		sales:    saleUC,
		sessions: cashsession.NewSessionUseCase(tx, repos.Sessions, repos.Sales, saleUC, nil, nil),
		accounts: accounts,
	}
}

func (h *harness) product(t *testing.T, price string, stock int) *entity.Product {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()
	p := &entity.Product{
		ID: uuid.New().String(), Name: "it-" + uuid.NewString()[:8], Category: "test",
		SalePrice: decimal.RequireFromString(price), Active: true, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, postgres.NewProductRepository(h.pool).Create(ctx, p))
	if stock > 0 {
		_, err := h.stock.ApplyMovement(ctx, inventory.MovementInput{ProductID: p.ID, Kind: entity.MovementIn, Quantity: stock, ActorID: "it"})
		require.NoError(t, err)
	}
	return p
}

func TestIntegration_CicloDeCaja(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	cashier := "cajero-" + uuid.NewString()[:8]
	p := h.product(t, "23.50", 3)

	s, err := h.sessions.OpenFund(ctx, cashsession.OpenFundInput{SupervisorID: "sup", CashierID: cashier, InitialFund: decimal.RequireFromString("100")})
	require.NoError(t, err)
	_, err = h.sessions.OpenFund(ctx, cashsession.OpenFundInput{SupervisorID: "sup", CashierID: cashier, InitialFund: decimal.RequireFromString("1")})
	assert.ErrorIs(t, err, domain.ErrActiveSession)

	_, err = h.sessions.AcceptFund(ctx, s.ID, cashier, "")
	require.NoError(t, err)

	sale, err := h.sales.CreateSale(ctx, sales.CreateSaleInput{CashierID: cashier, PaymentKind: entity.PaymentCash,
		Lines: []sales.LineInput{{ProductID: p.ID, Quantity: 1}}})
	require.NoError(t, err)
	assert.Equal(t, s.ID, sale.CashSessionID)

	closed, err := h.sessions.DeclareClosing(ctx, cashsession.DeclareInput{SessionID: s.ID, CashierID: cashier, DeclaredBalance: decimal.RequireFromString("120")})
	require.NoError(t, err)
	assert.True(t, closed.ExpectedBalance.Equal(decimal.RequireFromString("123.50")))
	assert.True(t, closed.Variance.Equal(decimal.RequireFromString("-3.50")))

	ok, err := h.stock.CheckConsistency(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIntegration_IndiceParcialDeSesionActiva(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	repo := postgres.NewCashSessionRepository(h.pool)
	cashier := "cajero-" + uuid.NewString()[:8]
	now := time.Now().UTC()
	session := func() *entity.CashSession {
		return &entity.CashSession{ID: uuid.NewString(), SupervisorID: "sup", CashierID: cashier,
			InitialFund: decimal.Zero, Status: entity.SessionPendingCashier, CreatedAt: now, UpdatedAt: now}
	}
	require.NoError(t, repo.Create(ctx, session()))
	assert.ErrorIs(t, repo.Create(ctx, session()), domain.ErrActiveSession)
}

func TestIntegration_UltimaUnidadConcurrente(t *testing.T) {
	h := newHarness(t)
	p := h.product(t, "1.00", 1)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = h.sales.CreateSale(context.Background(), sales.CreateSaleInput{
				CashierID: "cajero-concurrente", PaymentKind: entity.PaymentCash,
				Lines: []sales.LineInput{{ProductID: p.ID, Quantity: 1}},
			})
		}(i)
	}
	wg.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, domain.ErrInsufficientStock)
			failed++
		}
	}
	assert.Equal(t, 1, failed)
	got, err := postgres.NewProductRepository(h.pool).GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Zero(t, got.StockActual)
}

func TestIntegration_DiarioSoloInsercion(t *testing.T) {
	h := newHarness(t)
	p := h.product(t, "1.00", 2)
	_, err := h.pool.Exec(context.Background(), `UPDATE stock_movements SET reason = 'x' WHERE product_id = $1`, p.ID)
	require.Error(t, err)

	err = postgres.NewProductRepository(h.pool).Delete(context.Background(), p.ID)
	assert.True(t, errors.Is(err, domain.ErrHasReferences), "got %v", err)
}

func TestIntegration_IdentificadoresMalFormadosSonNotFound(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	repos := postgres.NewRepositories(h.pool)

	p, err := repos.Products.GetByID(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, p)

	_, err = h.stock.ApplyMovement(ctx, inventory.MovementInput{ProductID: "abc", Kind: entity.MovementIn, Quantity: 1, ActorID: "it"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = h.sales.CreateSale(ctx, sales.CreateSaleInput{
		CashierID:   "it",
		PaymentKind: entity.PaymentCash,
		Lines:       []sales.LineInput{{ProductID: "abc", Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = h.sales.GetSale(ctx, "xyz")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	err = h.sales.CancelSale(ctx, sales.CancelInput{TransactionID: "xyz", ActorID: "it", Reason: "error de cobro"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = h.sessions.AcceptFund(ctx, "xyz", "it", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, total, err := h.stock.ListMovements(ctx, repository.MovementFilter{ProductID: "abc"})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Zero(t, total)

	assert.ErrorIs(t, repos.Products.Delete(ctx, "abc"), domain.ErrNotFound)
}
