package cashsession

import (
	"context"
	"fmt"

	"github.com/jhoicas/Caisse-api/internal/domain"
	"github.com/jhoicas/Caisse-api/internal/domain/entity"
	"github.com/jhoicas/Caisse-api/internal/domain/repository"
)

// GetSession devuelve la sesión o domain.ErrNotFound.
func (uc *SessionUseCase) GetSession(ctx context.Context, id string) (*entity.CashSession, error) {
	s, err := uc.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("sesión %s: %w", id, domain.ErrNotFound)
	}
	return s, nil
}

// ActiveSession devuelve la sesión pending_cashier u open del cajero, o domain.ErrNotFound.
func (uc *SessionUseCase) ActiveSession(ctx context.Context, cashierID string) (*entity.CashSession, error) {
	s, err := uc.sessions.ActiveForCashier(ctx, cashierID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("sesión activa del cajero %s: %w", cashierID, domain.ErrNotFound)
	}
	return s, nil
}

// PendingValidation lista las sesiones en pending_validation que abrió el supervisor.
func (uc *SessionUseCase) PendingValidation(ctx context.Context, supervisorID string) ([]*entity.CashSession, error) {
	return uc.sessions.List(ctx, repository.SessionFilter{
		SupervisorID: supervisorID,
		Status:       entity.SessionPendingValidation,
		Limit:        500,
	})
}

// ListSessions lista sesiones filtradas y paginadas, de la más reciente a la más antigua.
func (uc *SessionUseCase) ListSessions(ctx context.Context, filter repository.SessionFilter) ([]*entity.CashSession, error) {
	switch filter.Status {
	case "", entity.SessionPendingCashier, entity.SessionOpen, entity.SessionPendingValidation,
		entity.SessionValidated, entity.SessionAnomaly:
	default:
		return nil, fmt.Errorf("%w: status desconocido %q", domain.ErrInvalidInput, filter.Status)
	}
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return uc.sessions.List(ctx, filter)
}
