package sales

import (
	"context"
	"fmt"

	"github.com/jhoicas/Caisse-api/internal/domain"
	"github.com/jhoicas/Caisse-api/internal/domain/entity"
	"github.com/jhoicas/Caisse-api/internal/domain/repository"
)

// GetSale devuelve la transacción con sus líneas.
func (uc *SaleUseCase) GetSale(ctx context.Context, id string) (*entity.SaleTransaction, error) {
	sale, err := uc.sales.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, fmt.Errorf("transacción %s: %w", id, domain.ErrNotFound)
	}
	lines, err := uc.sales.GetLines(ctx, id)
	if err != nil {
		return nil, err
	}
	sale.Lines = lines
	return sale, nil
}

// ListSales lista cabeceras filtradas y paginadas, de la más reciente a la más antigua.
func (uc *SaleUseCase) ListSales(ctx context.Context, filter repository.SaleFilter) ([]*entity.SaleTransaction, error) {
	if filter.PaymentKind != "" && !filter.PaymentKind.Valid() {
		return nil, fmt.Errorf("%w: payment_kind desconocido %q", domain.ErrInvalidInput, filter.PaymentKind)
	}
	if filter.Status != "" && filter.Status != entity.SaleStatusValid && filter.Status != entity.SaleStatusCancelled {
		return nil, fmt.Errorf("%w: status desconocido %q", domain.ErrInvalidInput, filter.Status)
	}
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return uc.sales.List(ctx, filter)
}
