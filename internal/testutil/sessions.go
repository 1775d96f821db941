package testutil

import (
	"context"
	"sort"

	"github.com/jhoicas/Caisse-api/internal/domain"
	"github.com/jhoicas/Caisse-api/internal/domain/entity"
	"github.com/jhoicas/Caisse-api/internal/domain/repository"
)

var _ repository.CashSessionRepository = (*SessionRepo)(nil)

// SessionRepo implementación en memoria de repository.CashSessionRepository.
// Create replica el índice único parcial: una sola sesión activa por cajero.
type SessionRepo struct{ base }

func activeFor(st *state, cashierID, exceptID string) bool {
	for _, s := range st.sessions {
		if s.CashierID == cashierID && s.ID != exceptID && s.Status.IsActive() {
			return true
		}
	}
	return false
}

func (r *SessionRepo) Create(_ context.Context, s *entity.CashSession) error {
	return r.with("Sessions.Create", func(st *state) error {
		if _, ok := st.sessions[s.ID]; ok {
			return domain.ErrDuplicate
		}
		if s.Status.IsActive() && activeFor(st, s.CashierID, s.ID) {
			return domain.ErrActiveSession
		}
		st.sessions[s.ID] = *s
		return nil
	})
}

func (r *SessionRepo) get(op, id string) (*entity.CashSession, error) {
	var out *entity.CashSession
	err := r.with(op, func(st *state) error {
		if s, ok := st.sessions[id]; ok {
			out = &s
		}
		return nil
	})
	return out, err
}

func (r *SessionRepo) GetByID(_ context.Context, id string) (*entity.CashSession, error) {
	return r.get("Sessions.GetByID", id)
}

func (r *SessionRepo) GetForUpdate(_ context.Context, id string) (*entity.CashSession, error) {
	return r.get("Sessions.GetForUpdate", id)
}

func (r *SessionRepo) Update(_ context.Context, s *entity.CashSession) error {
	return r.with("Sessions.Update", func(st *state) error {
		if _, ok := st.sessions[s.ID]; !ok {
			return domain.ErrNotFound
		}
		st.sessions[s.ID] = *s
		return nil
	})
}

func (r *SessionRepo) ActiveForCashier(_ context.Context, cashierID string) (*entity.CashSession, error) {
	var out *entity.CashSession
	err := r.with("Sessions.ActiveForCashier", func(st *state) error {
		for _, s := range st.sessions {
			if s.CashierID == cashierID && s.Status.IsActive() {
				s := s
				out = &s
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *SessionRepo) List(_ context.Context, f repository.SessionFilter) ([]*entity.CashSession, error) {
	var out []*entity.CashSession
	err := r.with("Sessions.List", func(st *state) error {
		for _, s := range st.sessions {
			if f.CashierID != "" && s.CashierID != f.CashierID {
				continue
			}
			if f.SupervisorID != "" && s.SupervisorID != f.SupervisorID {
				continue
			}
			if f.Status != "" && s.Status != f.Status {
				continue
			}
			s := s
			out = append(out, &s)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, f.Limit, f.Offset), err
}
