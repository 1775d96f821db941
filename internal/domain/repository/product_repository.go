package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Caisse-api/internal/domain/entity"
)

// ProductFilter filtros reconocidos para el listado de productos.
type ProductFilter struct {
	Category   string
	ActiveOnly bool
	Limit      int
	Offset     int
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// La cantidad en stock solo se escribe con SetStock, que únicamente invoca el libro de stock.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate obtiene el producto bloqueando la fila (SELECT ... FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	SetStock(ctx context.Context, productID string, stock int) error
	UpdatePurchasePrice(ctx context.Context, productID string, price decimal.Decimal) error
	SetActive(ctx context.Context, productID string, active bool) error
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, error)
	ListBelowThreshold(ctx context.Context) ([]*entity.Product, error)
	// CountReferences cuenta movimientos y líneas de venta que apuntan al producto.
	CountReferences(ctx context.Context, productID string) (int, error)
	Delete(ctx context.Context, id string) error
}
