package cashsession

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Caisse-api/internal/application/ports"
	"github.com/jhoicas/Caisse-api/internal/application/sales"
	"github.com/jhoicas/Caisse-api/internal/application/validation"
	"github.com/jhoicas/Caisse-api/internal/domain"
	"github.com/jhoicas/Caisse-api/internal/domain/entity"
	"github.com/jhoicas/Caisse-api/internal/domain/repository"
	"github.com/jhoicas/Caisse-api/pkg/logger"
)

// SessionUseCase gestiona el ciclo de vida de la caja de un cajero:
// entrega de fondo, aceptación, operación, cierre declarado y validación del supervisor.
// Cada transición bloquea la fila de la sesión (SELECT FOR UPDATE).
type SessionUseCase struct {
	txRunner ports.TxRunner
	sessions repository.CashSessionRepository
	sales    repository.SaleRepository
	saleUC   *sales.SaleUseCase
	log      *logger.Logger
	metrics  ports.Metrics
}

// NewSessionUseCase construye el caso de uso. log y metrics pueden ser nil.
func NewSessionUseCase(
	txRunner ports.TxRunner,
	sessions repository.CashSessionRepository,
	salesRepo repository.SaleRepository,
	saleUC *sales.SaleUseCase,
	log *logger.Logger,
	metrics ports.Metrics,
) *SessionUseCase {
	if log == nil {
		log = logger.Nop()
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &SessionUseCase{
		txRunner: txRunner,
		sessions: sessions,
		sales:    salesRepo,
		saleUC:   saleUC,
		log:      log.Component("cash_session"),
		metrics:  metrics,
	}
}

// OpenFundInput entrega de fondo de caja.
type OpenFundInput struct {
	SupervisorID string          `json:"supervisor_id" validate:"required"`
	CashierID    string          `json:"cashier_id" validate:"required"`
	InitialFund  decimal.Decimal `json:"initial_fund" validate:"gte=0"`
	Note         string          `json:"note" validate:"max=500"`
}

// OpenFund crea la sesión en pending_cashier. Un cajero no puede tener dos sesiones activas
// (pending_cashier u open): se rechaza con domain.ErrActiveSession.
func (uc *SessionUseCase) OpenFund(ctx context.Context, in OpenFundInput) (*entity.CashSession, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	session := &entity.CashSession{
		ID:           uuid.New().String(),
		SupervisorID: in.SupervisorID,
		CashierID:    in.CashierID,
		InitialFund:  entity.RoundMoney(in.InitialFund),
		Status:       entity.SessionPendingCashier,
		OpeningNote:  strings.TrimSpace(in.Note),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		active, err := repos.Sessions.ActiveForCashier(ctx, in.CashierID)
		if err != nil {
			return err
		}
		if active != nil {
			return domain.ErrActiveSession
		}
		return repos.Sessions.Create(ctx, session)
	})
	if err != nil {
		return nil, err
	}
	uc.transitioned(session, in.SupervisorID)
	return session, nil
}

// AcceptFund: solo el cajero asignado pasa la sesión de pending_cashier a open. Emite la
// pseudo-transacción fund_received por el fondo inicial.
func (uc *SessionUseCase) AcceptFund(ctx context.Context, sessionID, cashierID, note string) (*entity.CashSession, error) {
	var session *entity.CashSession
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		s, err := lockSession(ctx, repos, sessionID)
		if err != nil {
			return err
		}
		if s.CashierID != cashierID {
			return fmt.Errorf("%w: la sesión está asignada a otro cajero", domain.ErrForbidden)
		}
		if !s.Status.CanTransition(entity.SessionOpen) {
			return transitionError(s.Status, entity.SessionOpen)
		}
		now := time.Now().UTC()
		s.Status = entity.SessionOpen
		s.OpenedAt = &now
		s.OpeningNote = joinNotes(s.OpeningNote, note)
		s.UpdatedAt = now
		if err := repos.Sessions.Update(ctx, s); err != nil {
			return err
		}
		if _, err := uc.saleUC.RecordPseudoInTx(ctx, repos, sales.PseudoInput{
			Kind:          entity.PaymentFundReceived,
			CashierID:     s.CashierID,
			Amount:        s.InitialFund,
			CashSessionID: s.ID,
			Note:          "fondo recibido",
		}); err != nil {
			return err
		}
		session = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.transitioned(session, cashierID)
	return session, nil
}

// ComputeExpectedBalance = fondo inicial + Σ ventas en efectivo − Σ cambio entregado, contando solo
// transacciones válidas del cajero de la sesión en [opened_at, closed_at o ahora].
// Una sesión aún no abierta devuelve el fondo inicial.
func (uc *SessionUseCase) ComputeExpectedBalance(ctx context.Context, sessionID string) (decimal.Decimal, error) {
	s, err := uc.GetSession(ctx, sessionID)
	if err != nil {
		return decimal.Zero, err
	}
	totals, err := windowTotals(ctx, uc.sales, s, time.Now().UTC())
	if err != nil {
		return decimal.Zero, err
	}
	return expected(s, totals), nil
}

// DeclareInput cierre declarado por el cajero.
type DeclareInput struct {
	SessionID       string          `json:"session_id" validate:"required"`
	CashierID       string          `json:"cashier_id" validate:"required"`
	DeclaredBalance decimal.Decimal `json:"declared_balance" validate:"gte=0"`
	Note            string          `json:"note" validate:"max=500"`
}

// DeclareClosing: solo con la sesión open y por su cajero. Fija esperado, declarado y
// varianza = declarado − esperado, pasa a pending_validation y emite la pseudo-transacción closing.
func (uc *SessionUseCase) DeclareClosing(ctx context.Context, in DeclareInput) (*entity.CashSession, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	var session *entity.CashSession
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		s, err := lockSession(ctx, repos, in.SessionID)
		if err != nil {
			return err
		}
		if s.CashierID != in.CashierID {
			return fmt.Errorf("%w: la sesión está asignada a otro cajero", domain.ErrForbidden)
		}
		if !s.Status.CanTransition(entity.SessionPendingValidation) {
			return transitionError(s.Status, entity.SessionPendingValidation)
		}
		now := time.Now().UTC()
		s.ClosedAt = &now
		totals, err := windowTotals(ctx, repos.Sales, s, now)
		if err != nil {
			return err
		}
		exp := expected(s, totals)
		declared := entity.RoundMoney(in.DeclaredBalance)
		variance := declared.Sub(exp)
		s.ExpectedBalance = &exp
		s.DeclaredBalance = &declared
		s.Variance = &variance
		s.ClosingNote = strings.TrimSpace(in.Note)
		s.Status = entity.SessionPendingValidation
		s.UpdatedAt = now
		if err := repos.Sessions.Update(ctx, s); err != nil {
			return err
		}
		if _, err := uc.saleUC.RecordPseudoInTx(ctx, repos, sales.PseudoInput{
			Kind:          entity.PaymentClosing,
			CashierID:     s.CashierID,
			Amount:        declared,
			CashSessionID: s.ID,
			Note:          "cierre declarado",
		}); err != nil {
			return err
		}
		session = s
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.metrics.SessionVariance(*session.Variance)
	if !session.Variance.IsZero() {
		uc.log.Warn().
			Str("session_id", session.ID).
			Str("cashier_id", session.CashierID).
			Str("expected", session.ExpectedBalance.String()).
			Str("declared", session.DeclaredBalance.String()).
			Str("variance", session.Variance.String()).
			Msg("cierre de caja con diferencia")
	}
	uc.transitioned(session, in.CashierID)
	return session, nil
}

// ValidateInput validación del cierre por el supervisor.
type ValidateInput struct {
	SessionID        string               `json:"session_id" validate:"required"`
	SupervisorID     string               `json:"supervisor_id" validate:"required"`
	ValidatedBalance decimal.Decimal      `json:"validated_balance" validate:"gte=0"`
	Outcome          entity.SessionStatus `json:"outcome" validate:"required,oneof=validated anomaly"`
	Note             string               `json:"note" validate:"max=500"`
}

// ValidateClosing: solo el supervisor que abrió la sesión y solo en pending_validation.
// Lleva la sesión a su estado terminal (validated o anomaly).
func (uc *SessionUseCase) ValidateClosing(ctx context.Context, in ValidateInput) (*entity.CashSession, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	var session *entity.CashSession
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		s, err := lockSession(ctx, repos, in.SessionID)
		if err != nil {
			return err
		}
		if s.SupervisorID != in.SupervisorID {
			return fmt.Errorf("%w: solo el supervisor que entregó el fondo puede validar", domain.ErrForbidden)
		}
		if !s.Status.CanTransition(in.Outcome) {
			return transitionError(s.Status, in.Outcome)
		}
		now := time.Now().UTC()
		validated := entity.RoundMoney(in.ValidatedBalance)
		s.ValidatedBalance = &validated
		s.ValidationNote = strings.TrimSpace(in.Note)
		s.Status = in.Outcome
		s.ValidatedAt = &now
		s.UpdatedAt = now
		if err := repos.Sessions.Update(ctx, s); err != nil {
			return err
		}
		session = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.transitioned(session, in.SupervisorID)
	return session, nil
}

func lockSession(ctx context.Context, repos repository.Repositories, id string) (*entity.CashSession, error) {
	s, err := repos.Sessions.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("sesión %s: %w", id, domain.ErrNotFound)
	}
	return s, nil
}

func windowTotals(ctx context.Context, salesRepo repository.SaleRepository, s *entity.CashSession, now time.Time) (*repository.SessionTotals, error) {
	from, to, ok := s.Window(now)
	if !ok {
		return &repository.SessionTotals{}, nil
	}
	return salesRepo.CashierTotals(ctx, s.CashierID, from, to)
}

func expected(s *entity.CashSession, t *repository.SessionTotals) decimal.Decimal {
	return s.InitialFund.Add(t.CashSales).Sub(t.ChangeGiven)
}

func transitionError(from, to entity.SessionStatus) error {
	return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidStateTransition, from, to)
}

func joinNotes(a, b string) string {
	b = strings.TrimSpace(b)
	switch {
	case b == "":
		return a
	case a == "":
		return b
	default:
		return a + "\n" + b
	}
}

func (uc *SessionUseCase) transitioned(s *entity.CashSession, actorID string) {
	uc.metrics.SessionTransition(string(s.Status))
	uc.log.Info().
		Str("session_id", s.ID).
		Str("status", string(s.Status)).
		Str("actor_id", actorID).
		Msg("sesión de caja")
}

