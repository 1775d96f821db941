package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Caisse-api/internal/application/dto"
	"github.com/jhoicas/Caisse-api/internal/domain/entity"
	"github.com/jhoicas/Caisse-api/internal/domain/repository"
)

// ReplenishmentUseCase genera la lista de reposición a partir de los productos bajo umbral.
// Ordena por déficit; el margen unitario y el volumen de salidas recientes desempatan.
type ReplenishmentUseCase struct {
	products  repository.ProductRepository
	movements repository.StockMovementRepository
	window    time.Duration
}

// NewReplenishmentUseCase construye el caso de uso con una ventana de 90 días de historial.
func NewReplenishmentUseCase(products repository.ProductRepository, movements repository.StockMovementRepository) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{products: products, movements: movements, window: 90 * 24 * time.Hour}
}

// GenerateReplenishmentList devuelve los productos activos con stock <= umbral, con la cantidad
// sugerida (umbral * 1.5 - stock, redondeado hacia arriba) y la prioridad (1 = más urgente).
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context) ([]dto.ReplenishmentSuggestionDTO, error) {
	items, err := uc.products.ListBelowThreshold(ctx)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []dto.ReplenishmentSuggestionDTO{}, nil
	}

	to := time.Now().UTC()
	from := to.Add(-uc.window)
	hundred := decimal.NewFromInt(100)

	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0, len(items))
	for _, p := range items {
		if !p.Active {
			continue
		}
		ideal := int(decimal.NewFromInt(int64(p.ReorderThreshold)).Mul(decimal.NewFromFloat(1.5)).Ceil().IntPart())
		suggested := ideal - p.StockActual
		if suggested < 0 {
			suggested = 0
		}

		totals, err := uc.movements.TotalsByKind(ctx, p.ID, &from, &to)
		if err != nil {
			return nil, err
		}
		unitsSold := 0
		for _, t := range totals {
			if t.Kind == entity.MovementOut {
				unitsSold = -t.Quantity
			}
		}

		var marginPct decimal.Decimal
		if p.SalePrice.GreaterThan(decimal.Zero) {
			marginPct = p.SalePrice.Sub(p.PurchasePrice).Div(p.SalePrice).Mul(hundred).Round(2)
		}

		suggestions = append(suggestions, dto.ReplenishmentSuggestionDTO{
			ProductID:           p.ID,
			ProductName:         p.Name,
			Category:            p.Category,
			CurrentStock:        p.StockActual,
			ReorderThreshold:    p.ReorderThreshold,
			IdealStock:          ideal,
			SuggestedOrderQty:   suggested,
			UnitCost:            p.PurchasePrice,
			EstimatedOrderCost:  p.PurchasePrice.Mul(decimal.NewFromInt(int64(suggested))),
			GrossMarginPct:      marginPct,
			UnitsSoldLast90Days: unitsSold,
		})
	}

	// Mayor déficit primero; a igual déficit, mayor margen y luego mayor volumen.
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if a.SuggestedOrderQty != b.SuggestedOrderQty {
			return a.SuggestedOrderQty > b.SuggestedOrderQty
		}
		if !a.GrossMarginPct.Equal(b.GrossMarginPct) {
			return a.GrossMarginPct.GreaterThan(b.GrossMarginPct)
		}
		return a.UnitsSoldLast90Days > b.UnitsSoldLast90Days
	})

	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}
