package testutil

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/Caisse-api/internal/domain/entity"
	"github.com/jhoicas/Caisse-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación en memoria de repository.StockMovementRepository.
type MovementRepo struct{ base }

func (r *MovementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	return r.with("Movements.Create", func(st *state) error {
		st.movements = append(st.movements, *m)
		return nil
	})
}

func (r *MovementRepo) GetByID(_ context.Context, id string) (*entity.StockMovement, error) {
	var out *entity.StockMovement
	err := r.with("Movements.GetByID", func(st *state) error {
		for _, m := range st.movements {
			if m.ID == id {
				m := m
				out = &m
			}
		}
		return nil
	})
	return out, err
}

func inWindow(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}

func (r *MovementRepo) filter(op string, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	err := r.with(op, func(st *state) error {
		// Más reciente primero: se recorre en orden inverso de inserción.
		for i := len(st.movements) - 1; i >= 0; i-- {
			m := st.movements[i]
			if f.ProductID != "" && m.ProductID != f.ProductID {
				continue
			}
			if f.Kind != "" && m.Kind != f.Kind {
				continue
			}
			if f.ActorID != "" && m.ActorID != f.ActorID {
				continue
			}
			if !inWindow(m.CreatedAt, f.From, f.To) {
				continue
			}
			out = append(out, &m)
		}
		return nil
	})
	return out, err
}

func (r *MovementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	out, err := r.filter("Movements.List", f)
	return page(out, f.Limit, f.Offset), err
}

func (r *MovementRepo) Count(_ context.Context, f repository.MovementFilter) (int, error) {
	out, err := r.filter("Movements.Count", f)
	return len(out), err
}

func (r *MovementRepo) LatestForProduct(_ context.Context, productID string) (*entity.StockMovement, error) {
	var out *entity.StockMovement
	err := r.with("Movements.LatestForProduct", func(st *state) error {
		for i := len(st.movements) - 1; i >= 0; i-- {
			if st.movements[i].ProductID == productID {
				m := st.movements[i]
				out = &m
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *MovementRepo) TotalsByKind(_ context.Context, productID string, from, to *time.Time) ([]entity.MovementTotal, error) {
	byKind := map[entity.MovementKind]*entity.MovementTotal{}
	err := r.with("Movements.TotalsByKind", func(st *state) error {
		for _, m := range st.movements {
			if m.ProductID != productID || !inWindow(m.CreatedAt, from, to) {
				continue
			}
			t, ok := byKind[m.Kind]
			if !ok {
				t = &entity.MovementTotal{Kind: m.Kind}
				byKind[m.Kind] = t
			}
			t.Count++
			t.Quantity += m.Quantity
		}
		return nil
	})
	out := make([]entity.MovementTotal, 0, len(byKind))
	for _, t := range byKind {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out, err
}
