package testutil

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Caisse-api/internal/domain/entity"
)

// Product crea un producto activo con stock 0 y precio de venta price.
// El stock debe cargarse luego con movimientos del libro de stock.
func (s *Store) Product(name, price string) *entity.Product {
	now := time.Now().UTC()
	p := &entity.Product{
		ID:               uuid.New().String(),
		Name:             name,
		Category:         "general",
		PurchasePrice:    decimal.Zero,
		SalePrice:        decimal.RequireFromString(price),
		ReorderThreshold: 2,
		Active:           true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.Repositories().Products.Create(context.Background(), p); err != nil {
		panic(err)
	}
	return p
}

// Account crea la cuenta de un socio con el saldo indicado.
func (s *Store) Account(memberID, balance string) *entity.MemberAccount {
	now := time.Now().UTC()
	a := &entity.MemberAccount{
		ID:        uuid.New().String(),
		MemberID:  memberID,
		Balance:   decimal.RequireFromString(balance),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repositories().Accounts.Create(context.Background(), a); err != nil {
		panic(err)
	}
	return a
}

// Stock devuelve el stock confirmado del producto (-1 si no existe).
func (s *Store) Stock(productID string) int {
	p, _ := s.Repositories().Products.GetByID(context.Background(), productID)
	if p == nil {
		return -1
	}
	return p.StockActual
}

// Balance devuelve el saldo confirmado del socio.
func (s *Store) Balance(memberID string) decimal.Decimal {
	a, _ := s.Repositories().Accounts.GetByMember(context.Background(), memberID)
	if a == nil {
		return decimal.Zero
	}
	return a.Balance
}

// MovementCount devuelve el número de movimientos confirmados de un producto.
func (s *Store) MovementCount(productID string) int {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	n := 0
	for _, m := range s.data.movements {
		if m.ProductID == productID {
			n++
		}
	}
	return n
}

// SaleCount devuelve el número de transacciones y líneas confirmadas.
func (s *Store) SaleCount() (transactions, lines int) {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	return len(s.data.sales), len(s.data.lines)
}

// EntryCount devuelve el número de asientos confirmados.
func (s *Store) EntryCount() int {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	return len(s.data.entries)
}
