package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Caisse-api/internal/domain"
	"github.com/jhoicas/Caisse-api/internal/domain/entity"
	"github.com/jhoicas/Caisse-api/internal/domain/repository"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// ListMovements lista movimientos filtrados y paginados, del más reciente al más antiguo.
// Devuelve también el total sin paginar.
func (uc *MovementUseCase) ListMovements(ctx context.Context, filter repository.MovementFilter) ([]*entity.StockMovement, int, error) {
	if filter.Kind != "" && !filter.Kind.Valid() {
		return nil, 0, fmt.Errorf("%w: kind desconocido %q", domain.ErrInvalidInput, filter.Kind)
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, 0, fmt.Errorf("%w: rango de fechas invertido", domain.ErrInvalidInput)
	}
	filter.Limit, filter.Offset = normalizePage(filter.Limit, filter.Offset)

	list, err := uc.movements.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := uc.movements.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// MovementTotals agrega los movimientos de un producto por tipo en una ventana opcional.
func (uc *MovementUseCase) MovementTotals(ctx context.Context, productID string, from, to *time.Time) ([]entity.MovementTotal, error) {
	product, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("producto %s: %w", productID, domain.ErrNotFound)
	}
	return uc.movements.TotalsByKind(ctx, productID, from, to)
}

// CheckConsistency compara stock_actual con el stock_after del último movimiento del producto.
// Un producto sin movimientos debe tener stock 0.
func (uc *MovementUseCase) CheckConsistency(ctx context.Context, productID string) (bool, error) {
	product, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		return false, err
	}
	if product == nil {
		return false, fmt.Errorf("producto %s: %w", productID, domain.ErrNotFound)
	}
	last, err := uc.movements.LatestForProduct(ctx, productID)
	if err != nil {
		return false, err
	}
	if last == nil {
		return product.StockActual == 0, nil
	}
	return last.StockAfter == product.StockActual, nil
}
