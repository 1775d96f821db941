package testutil

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Caisse-api/internal/domain"
	"github.com/jhoicas/Caisse-api/internal/domain/entity"
	"github.com/jhoicas/Caisse-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación en memoria de repository.ProductRepository.
type ProductRepo struct{ base }

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	return r.with("Products.Create", func(st *state) error {
		if _, ok := st.products[p.ID]; ok {
			return domain.ErrDuplicate
		}
		st.products[p.ID] = *p
		return nil
	})
}

func (r *ProductRepo) get(op, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.with(op, func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	return r.get("Products.GetByID", id)
}

func (r *ProductRepo) GetForUpdate(_ context.Context, id string) (*entity.Product, error) {
	return r.get("Products.GetForUpdate", id)
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	return r.with("Products.Update", func(st *state) error {
		cur, ok := st.products[p.ID]
		if !ok {
			return domain.ErrNotFound
		}
		stock := cur.StockActual
		cur = *p
		cur.StockActual = stock
		st.products[p.ID] = cur
		return nil
	})
}

func (r *ProductRepo) mutate(op, id string, fn func(p *entity.Product)) error {
	return r.with(op, func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domain.ErrNotFound
		}
		fn(&p)
		p.UpdatedAt = time.Now().UTC()
		st.products[id] = p
		return nil
	})
}

func (r *ProductRepo) SetStock(_ context.Context, id string, stock int) error {
	return r.mutate("Products.SetStock", id, func(p *entity.Product) { p.StockActual = stock })
}

func (r *ProductRepo) UpdatePurchasePrice(_ context.Context, id string, price decimal.Decimal) error {
	return r.mutate("Products.UpdatePurchasePrice", id, func(p *entity.Product) { p.PurchasePrice = price })
}

func (r *ProductRepo) SetActive(_ context.Context, id string, active bool) error {
	return r.mutate("Products.SetActive", id, func(p *entity.Product) { p.Active = active })
}

func (r *ProductRepo) List(_ context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.with("Products.List", func(st *state) error {
		for _, p := range st.products {
			if f.Category != "" && p.Category != f.Category {
				continue
			}
			if f.ActiveOnly && !p.Active {
				continue
			}
			p := p
			out = append(out, &p)
		}
		return nil
	})
	sortProducts(out)
	return page(out, f.Limit, f.Offset), err
}

func (r *ProductRepo) ListBelowThreshold(_ context.Context) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.with("Products.ListBelowThreshold", func(st *state) error {
		for _, p := range st.products {
			if p.Active && p.BelowThreshold() {
				p := p
				out = append(out, &p)
			}
		}
		return nil
	})
	sortProducts(out)
	return out, err
}

func (r *ProductRepo) CountReferences(_ context.Context, id string) (int, error) {
	n := 0
	err := r.with("Products.CountReferences", func(st *state) error {
		for _, m := range st.movements {
			if m.ProductID == id {
				n++
			}
		}
		for _, l := range st.lines {
			if l.ProductID == id {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *ProductRepo) Delete(_ context.Context, id string) error {
	return r.with("Products.Delete", func(st *state) error {
		if _, ok := st.products[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.products, id)
		return nil
	})
}

func sortProducts(ps []*entity.Product) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].Name != ps[j].Name {
			return ps[i].Name < ps[j].Name
		}
		return ps[i].ID < ps[j].ID
	})
}
