package testutil

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Caisse-api/internal/domain"
	"github.com/jhoicas/Caisse-api/internal/domain/entity"
	"github.com/jhoicas/Caisse-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementación en memoria de repository.SaleRepository.
type SaleRepo struct{ base }

func (r *SaleRepo) Create(_ context.Context, t *entity.SaleTransaction) error {
	return r.with("Sales.Create", func(st *state) error {
		if _, ok := st.sales[t.ID]; ok {
			return domain.ErrDuplicate
		}
		row := *t
		row.Lines = nil
		st.sales[t.ID] = row
		st.saleOrder = append(st.saleOrder, t.ID)
		return nil
	})
}

func (r *SaleRepo) CreateLine(_ context.Context, l *entity.SaleLine) error {
	return r.with("Sales.CreateLine", func(st *state) error {
		if _, ok := st.sales[l.TransactionID]; !ok {
			return domain.ErrNotFound
		}
		st.lines = append(st.lines, *l)
		return nil
	})
}

func (r *SaleRepo) get(op, id string) (*entity.SaleTransaction, error) {
	var out *entity.SaleTransaction
	err := r.with(op, func(st *state) error {
		if t, ok := st.sales[id]; ok {
			out = &t
		}
		return nil
	})
	return out, err
}

func (r *SaleRepo) GetByID(_ context.Context, id string) (*entity.SaleTransaction, error) {
	return r.get("Sales.GetByID", id)
}

func (r *SaleRepo) GetForUpdate(_ context.Context, id string) (*entity.SaleTransaction, error) {
	return r.get("Sales.GetForUpdate", id)
}

func (r *SaleRepo) GetLines(_ context.Context, transactionID string) ([]*entity.SaleLine, error) {
	out := []*entity.SaleLine{}
	err := r.with("Sales.GetLines", func(st *state) error {
		for _, l := range st.lines {
			if l.TransactionID == transactionID {
				l := l
				out = append(out, &l)
			}
		}
		return nil
	})
	return out, err
}

func (r *SaleRepo) MarkCancelled(_ context.Context, id, actorID, reason string, at time.Time) error {
	return r.with("Sales.MarkCancelled", func(st *state) error {
		t, ok := st.sales[id]
		if !ok {
			return domain.ErrNotFound
		}
		t.Status = entity.SaleStatusCancelled
		t.CancelledBy = actorID
		t.CancelReason = reason
		t.CancelledAt = &at
		t.UpdatedAt = at
		st.sales[id] = t
		return nil
	})
}

func (r *SaleRepo) List(_ context.Context, f repository.SaleFilter) ([]*entity.SaleTransaction, error) {
	var out []*entity.SaleTransaction
	err := r.with("Sales.List", func(st *state) error {
		for i := len(st.saleOrder) - 1; i >= 0; i-- {
			t := st.sales[st.saleOrder[i]]
			if f.CashierID != "" && t.CashierID != f.CashierID {
				continue
			}
			if f.BuyerID != "" && t.BuyerID != f.BuyerID {
				continue
			}
			if f.PaymentKind != "" && t.PaymentKind != f.PaymentKind {
				continue
			}
			if f.Status != "" && t.Status != f.Status {
				continue
			}
			if !inWindow(t.CreatedAt, f.From, f.To) {
				continue
			}
			out = append(out, &t)
		}
		return nil
	})
	return page(out, f.Limit, f.Offset), err
}

func (r *SaleRepo) CashierTotals(_ context.Context, cashierID string, from, to time.Time) (*repository.SessionTotals, error) {
	totals := &repository.SessionTotals{
		CashSales:   decimal.Zero,
		ChangeGiven: decimal.Zero,
		CountByKind: map[entity.PaymentKind]int{},
		TotalByKind: map[entity.PaymentKind]decimal.Decimal{},
	}
	err := r.with("Sales.CashierTotals", func(st *state) error {
		for _, id := range st.saleOrder {
			t := st.sales[id]
			if t.CashierID != cashierID || !t.IsValid() || !inWindow(t.CreatedAt, &from, &to) {
				continue
			}
			totals.CountByKind[t.PaymentKind]++
			amount := t.Total
			if t.PaymentKind.IsPseudo() {
				amount = t.Amount
			}
			totals.TotalByKind[t.PaymentKind] = totals.TotalByKind[t.PaymentKind].Add(amount)
			switch t.PaymentKind {
			case entity.PaymentCash:
				totals.CashSales = totals.CashSales.Add(t.Total)
			case entity.PaymentChange:
				totals.ChangeGiven = totals.ChangeGiven.Add(t.Amount)
			}
		}
		return nil
	})
	return totals, err
}
