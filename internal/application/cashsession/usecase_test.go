package cashsession_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Caisse-api/internal/application/account"
	"github.com/jhoicas/Caisse-api/internal/application/cashsession"
	"github.com/jhoicas/Caisse-api/internal/application/inventory"
	"github.com/jhoicas/Caisse-api/internal/application/sales"
	"github.com/jhoicas/Caisse-api/internal/domain"
	"github.com/jhoicas/Caisse-api/internal/domain/entity"
	"github.com/jhoicas/Caisse-api/internal/domain/repository"
	"github.com/jhoicas/Caisse-api/internal/testutil"
)

type fixture struct {
	store    *testutil.Store
	stock    *inventory.MovementUseCase
	sales    *sales.SaleUseCase
	sessions *cashsession.SessionUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := testutil.NewStore()
	repos := store.Repositories()
	stock := inventory.NewMovementUseCase(store, repos.Products, repos.Movements, nil, nil)
	accounts := account.NewAccountUseCase(store, repos.Accounts, nil, nil)
	saleUC := sales.NewSaleUseCase(store, repos.Sales, stock, accounts, nil, nil)
	return &fixture{
		store:    store,
		stock:    stock,
		sales:    saleUC,
		sessions: cashsession.NewSessionUseCase(store, repos.Sessions, repos.Sales, saleUC, nil, nil),
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// openSession entrega y acepta un fondo, dejando la sesión en open.
func (f *fixture) openSession(t *testing.T, supervisor, cashier, fund string) *entity.CashSession {
	t.Helper()
	ctx := context.Background()
	s, err := f.sessions.OpenFund(ctx, cashsession.OpenFundInput{SupervisorID: supervisor, CashierID: cashier, InitialFund: dec(fund)})
	require.NoError(t, err)
	require.Equal(t, entity.SessionPendingCashier, s.Status)
	s, err = f.sessions.AcceptFund(ctx, s.ID, cashier, "conforme")
	require.NoError(t, err)
	require.Equal(t, entity.SessionOpen, s.Status)
	return s
}

func (f *fixture) cashSale(t *testing.T, cashier, unitPrice string) {
	t.Helper()
	p := f.store.Product("Producto "+unitPrice, unitPrice)
	ctx := context.Background()
	_, err := f.stock.ApplyMovement(ctx, inventory.MovementInput{ProductID: p.ID, Kind: entity.MovementIn, Quantity: 1, ActorID: "admin"})
	require.NoError(t, err)
	_, err = f.sales.CreateSale(ctx, sales.CreateSaleInput{
		CashierID: cashier, PaymentKind: entity.PaymentCash,
		Lines: []sales.LineInput{{ProductID: p.ID, Quantity: 1}},
	})
	require.NoError(t, err)
}

func TestDeclareClosing_LeyDeVarianza(t *testing.T) {
	cases := []struct {
		declared string
		variance string
	}{
		{"123.50", "0.00"},
		{"120.00", "-3.50"},
	}
	for _, tc := range cases {
		t.Run(tc.declared, func(t *testing.T) {
			f := newFixture(t)
			s := f.openSession(t, "sup-1", "cajero-1", "100.00")
			f.cashSale(t, "cajero-1", "23.50")

			exp, err := f.sessions.ComputeExpectedBalance(context.Background(), s.ID)
			require.NoError(t, err)
			assert.True(t, exp.Equal(dec("123.50")), "esperado %s", exp)

			closed, err := f.sessions.DeclareClosing(context.Background(), cashsession.DeclareInput{
				SessionID: s.ID, CashierID: "cajero-1", DeclaredBalance: dec(tc.declared),
			})
			require.NoError(t, err)
			assert.Equal(t, entity.SessionPendingValidation, closed.Status)
			assert.True(t, closed.ExpectedBalance.Equal(dec("123.50")))
			assert.True(t, closed.DeclaredBalance.Equal(dec(tc.declared)))
			assert.True(t, closed.Variance.Equal(dec(tc.variance)), "varianza %s", closed.Variance)
			require.NotNil(t, closed.ClosedAt)
		})
	}
}

func TestComputeExpectedBalance_SoloCuentaEfectivoValidoDelCajero(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Venta previa a la apertura: fuera de la ventana.
	f.cashSale(t, "cajero-1", "7.00")
	s := f.openSession(t, "sup-1", "cajero-1", "50.00")

	f.cashSale(t, "cajero-1", "10.00")
	f.cashSale(t, "otro-cajero", "99.00")

	p := f.store.Product("Tarjeta", "8.00")
	_, err := f.stock.ApplyMovement(ctx, inventory.MovementInput{ProductID: p.ID, Kind: entity.MovementIn, Quantity: 2, ActorID: "admin"})
	require.NoError(t, err)
	_, err = f.sales.CreateSale(ctx, sales.CreateSaleInput{CashierID: "cajero-1", PaymentKind: entity.PaymentCard, PaymentRef: "AUT-1",
		Lines: []sales.LineInput{{ProductID: p.ID, Quantity: 1}}})
	require.NoError(t, err)

	cancelled, err := f.sales.CreateSale(ctx, sales.CreateSaleInput{CashierID: "cajero-1", PaymentKind: entity.PaymentCash,
		Lines: []sales.LineInput{{ProductID: p.ID, Quantity: 1}}})
	require.NoError(t, err)
	require.NoError(t, f.sales.CancelSale(ctx, sales.CancelInput{TransactionID: cancelled.ID, ActorID: "sup-1", Reason: "cliente desistió"}))

	_, err = f.sales.CreateSale(ctx, sales.CreateSaleInput{CashierID: "cajero-1", PaymentKind: entity.PaymentChange, Amount: dec("2.25")})
	require.NoError(t, err)

	exp, err := f.sessions.ComputeExpectedBalance(ctx, s.ID)
	require.NoError(t, err)
	// 50 + 10 - 2.25
	assert.True(t, exp.Equal(dec("57.75")), "esperado %s", exp)
}

func TestComputeExpectedBalance_SesionSinAbrir(t *testing.T) {
	f := newFixture(t)
	s, err := f.sessions.OpenFund(context.Background(), cashsession.OpenFundInput{SupervisorID: "sup", CashierID: "caj", InitialFund: dec("30")})
	require.NoError(t, err)

	exp, err := f.sessions.ComputeExpectedBalance(context.Background(), s.ID)
	require.NoError(t, err)
	assert.True(t, exp.Equal(dec("30")))
}

func TestMaquinaDeEstados(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	s, err := f.sessions.OpenFund(ctx, cashsession.OpenFundInput{SupervisorID: "sup-1", CashierID: "cajero-1", InitialFund: dec("10")})
	require.NoError(t, err)

	_, err = f.sessions.AcceptFund(ctx, s.ID, "intruso", "")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.sessions.DeclareClosing(ctx, cashsession.DeclareInput{SessionID: s.ID, CashierID: "cajero-1", DeclaredBalance: dec("10")})
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition, "cierre antes de aceptar")

	_, err = f.sessions.AcceptFund(ctx, s.ID, "cajero-1", "")
	require.NoError(t, err)
	_, err = f.sessions.AcceptFund(ctx, s.ID, "cajero-1", "")
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition, "doble aceptación")

	_, err = f.sessions.ValidateClosing(ctx, cashsession.ValidateInput{
		SessionID: s.ID, SupervisorID: "sup-1", ValidatedBalance: dec("10"), Outcome: entity.SessionValidated,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition, "validar una sesión open")

	_, err = f.sessions.DeclareClosing(ctx, cashsession.DeclareInput{SessionID: s.ID, CashierID: "otro", DeclaredBalance: dec("10")})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.sessions.DeclareClosing(ctx, cashsession.DeclareInput{SessionID: s.ID, CashierID: "cajero-1", DeclaredBalance: dec("9")})
	require.NoError(t, err)

	_, err = f.sessions.ValidateClosing(ctx, cashsession.ValidateInput{
		SessionID: s.ID, SupervisorID: "otro-sup", ValidatedBalance: dec("9"), Outcome: entity.SessionValidated,
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.sessions.ValidateClosing(ctx, cashsession.ValidateInput{
		SessionID: s.ID, SupervisorID: "sup-1", ValidatedBalance: dec("9"), Outcome: "open",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	done, err := f.sessions.ValidateClosing(ctx, cashsession.ValidateInput{
		SessionID: s.ID, SupervisorID: "sup-1", ValidatedBalance: dec("9"), Outcome: entity.SessionAnomaly, Note: "falta 1.00",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.SessionAnomaly, done.Status)
	assert.True(t, done.ValidatedBalance.Equal(dec("9")))
	require.NotNil(t, done.ValidatedAt)

	_, err = f.sessions.ValidateClosing(ctx, cashsession.ValidateInput{
		SessionID: s.ID, SupervisorID: "sup-1", ValidatedBalance: dec("9"), Outcome: entity.SessionValidated,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition, "estado terminal")

	_, err = f.sessions.AcceptFund(ctx, "nope", "cajero-1", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOpenFund_UnaSesionActivaPorCajero(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	s := f.openSession(t, "sup-1", "cajero-1", "20")
	_, err := f.sessions.OpenFund(ctx, cashsession.OpenFundInput{SupervisorID: "sup-2", CashierID: "cajero-1", InitialFund: dec("5")})
	assert.ErrorIs(t, err, domain.ErrActiveSession)

	_, err = f.sessions.OpenFund(ctx, cashsession.OpenFundInput{SupervisorID: "sup-1", CashierID: "cajero-1", InitialFund: dec("-1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	active, err := f.sessions.ActiveSession(ctx, "cajero-1")
	require.NoError(t, err)
	assert.Equal(t, s.ID, active.ID)

	_, err = f.sessions.DeclareClosing(ctx, cashsession.DeclareInput{SessionID: s.ID, CashierID: "cajero-1", DeclaredBalance: dec("20")})
	require.NoError(t, err)

	_, err = f.sessions.ActiveSession(ctx, "cajero-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.sessions.OpenFund(ctx, cashsession.OpenFundInput{SupervisorID: "sup-1", CashierID: "cajero-1", InitialFund: dec("20")})
	assert.NoError(t, err, "con la anterior cerrada se puede abrir otra")

	pending, err := f.sessions.PendingValidation(ctx, "sup-1")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, s.ID, pending[0].ID)
}

func TestPseudoTransaccionesDeAuditoria(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.openSession(t, "sup-1", "cajero-1", "100")
	_, err := f.sessions.DeclareClosing(ctx, cashsession.DeclareInput{SessionID: s.ID, CashierID: "cajero-1", DeclaredBalance: dec("100")})
	require.NoError(t, err)

	fund, err := f.sales.ListSales(ctx, repository.SaleFilter{CashierID: "cajero-1", PaymentKind: entity.PaymentFundReceived})
	require.NoError(t, err)
	require.Len(t, fund, 1)
	assert.True(t, fund[0].Amount.Equal(dec("100")))
	assert.True(t, fund[0].Total.IsZero())
	assert.Equal(t, s.ID, fund[0].CashSessionID)

	closing, err := f.sales.ListSales(ctx, repository.SaleFilter{CashierID: "cajero-1", PaymentKind: entity.PaymentClosing})
	require.NoError(t, err)
	require.Len(t, closing, 1)
	assert.True(t, closing[0].Amount.Equal(dec("100")))
}

func TestSessionReport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.openSession(t, "sup-1", "cajero-1", "100")
	f.cashSale(t, "cajero-1", "23.50")
	_, err := f.sales.CreateSale(ctx, sales.CreateSaleInput{CashierID: "cajero-1", PaymentKind: entity.PaymentChange, Amount: dec("3.50")})
	require.NoError(t, err)

	report, err := cashsession.NewReportUseCase(f.sessions, nil).SessionReport(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, report.CashSales.Equal(dec("23.50")))
	assert.True(t, report.ChangeGiven.Equal(dec("3.50")))
	assert.True(t, report.Expected.Equal(dec("120")))
	assert.Equal(t, 1, report.CountByKind[entity.PaymentCash])
	assert.Equal(t, 1, report.CountByKind[entity.PaymentFundReceived])
	assert.Equal(t, 1, report.CountByKind[entity.PaymentChange])
}
