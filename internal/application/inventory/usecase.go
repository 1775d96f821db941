package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Caisse-api/internal/application/ports"
	"github.com/jhoicas/Caisse-api/internal/application/validation"
	"github.com/jhoicas/Caisse-api/internal/domain"
	"github.com/jhoicas/Caisse-api/internal/domain/entity"
	"github.com/jhoicas/Caisse-api/internal/domain/inventory"
	"github.com/jhoicas/Caisse-api/internal/domain/repository"
	"github.com/jhoicas/Caisse-api/pkg/logger"
)

// MovementUseCase es el libro de stock: único escritor de products.stock_actual.
// Cada cambio bloquea la fila del producto (SELECT FOR UPDATE), inserta el movimiento con
// stock_before/stock_after y actualiza el stock en la misma transacción.
type MovementUseCase struct {
	txRunner  ports.TxRunner
	products  repository.ProductRepository
	movements repository.StockMovementRepository
	log       *logger.Logger
	metrics   ports.Metrics
}

// NewMovementUseCase construye el caso de uso. log y metrics pueden ser nil.
func NewMovementUseCase(
	txRunner ports.TxRunner,
	products repository.ProductRepository,
	movements repository.StockMovementRepository,
	log *logger.Logger,
	metrics ports.Metrics,
) *MovementUseCase {
	if log == nil {
		log = logger.Nop()
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &MovementUseCase{
		txRunner:  txRunner,
		products:  products,
		movements: movements,
		log:       log.Component("stock_ledger"),
		metrics:   metrics,
	}
}

// MovementInput entrada para registrar un movimiento de stock.
// Quantity se interpreta según Kind (ver entity.MovementKind.EffectiveDelta).
// UnitCost, solo en entradas, recalcula el costo promedio ponderado de compra.
type MovementInput struct {
	ProductID         string              `json:"product_id" validate:"required"`
	Kind              entity.MovementKind `json:"kind" validate:"required,oneof=in out adjustment inventory_count loss transfer"`
	Quantity          int                 `json:"quantity" validate:"ne=0,gte=-1000000,lte=1000000"`
	Reason            string              `json:"reason" validate:"max=500"`
	ActorID           string              `json:"actor_id" validate:"required"`
	SaleTransactionID string              `json:"sale_transaction_id"`
	PurchaseOrderRef  string              `json:"purchase_order_ref" validate:"max=100"`
	UnitCost          *decimal.Decimal    `json:"unit_cost" validate:"omitempty,gte=0"`
}

func validateMovement(in MovementInput) error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	if in.Kind.RequiresReason() && strings.TrimSpace(in.Reason) == "" {
		return fmt.Errorf("%w: reason: obligatorio para movimientos %s", domain.ErrInvalidInput, in.Kind)
	}
	return nil
}

// ApplyMovement registra un movimiento en su propia transacción y devuelve el movimiento persistido.
// Si el stock resultante fuera negativo devuelve *domain.InsufficientStockError y no modifica nada.
func (uc *MovementUseCase) ApplyMovement(ctx context.Context, in MovementInput) (*entity.StockMovement, error) {
	if err := validateMovement(in); err != nil {
		return nil, err
	}
	var mov *entity.StockMovement
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		m, err := uc.lockAndBook(ctx, repos, in, in.Kind.EffectiveDelta(in.Quantity))
		if err != nil {
			return err
		}
		mov = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return mov, nil
}

// ApplyMovementInTx registra el movimiento usando los repositorios de una transacción abierta por el llamador.
func (uc *MovementUseCase) ApplyMovementInTx(ctx context.Context, repos repository.Repositories, in MovementInput) (*entity.StockMovement, error) {
	if err := validateMovement(in); err != nil {
		return nil, err
	}
	return uc.lockAndBook(ctx, repos, in, in.Kind.EffectiveDelta(in.Quantity))
}

// BookInTx registra el movimiento sobre un producto que el llamador ya bloqueó en la misma transacción.
// Actualiza product.StockActual para que líneas posteriores del mismo producto vean el nuevo valor.
func (uc *MovementUseCase) BookInTx(ctx context.Context, repos repository.Repositories, product *entity.Product, in MovementInput) (*entity.StockMovement, error) {
	return uc.book(ctx, repos, product, in, in.Kind.EffectiveDelta(in.Quantity))
}

// CountInput conteo físico de un producto.
type CountInput struct {
	ProductID string `json:"product_id" validate:"required"`
	Counted   int    `json:"counted" validate:"gte=0,lte=2147483647"`
	ActorID   string `json:"actor_id" validate:"required"`
	Reason    string `json:"reason" validate:"notblank,max=500"`
}

// CountInventory fija el stock al valor contado. Bajo el bloqueo calcula delta = contado - stock_before
// y registra un movimiento inventory_count, incluso con delta 0, para dejar constancia del conteo.
func (uc *MovementUseCase) CountInventory(ctx context.Context, in CountInput) (*entity.StockMovement, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	var mov *entity.StockMovement
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		product, err := lockProduct(ctx, repos, in.ProductID)
		if err != nil {
			return err
		}
		m, err := uc.book(ctx, repos, product, MovementInput{
			ProductID: in.ProductID,
			Kind:      entity.MovementInventoryCount,
			Reason:    in.Reason,
			ActorID:   in.ActorID,
		}, in.Counted-product.StockActual)
		if err != nil {
			return err
		}
		mov = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return mov, nil
}

// ReceiptInput recepción de mercancía de una orden de compra.
type ReceiptInput struct {
	ProductID        string           `json:"product_id" validate:"required"`
	Quantity         int              `json:"quantity" validate:"gt=0,lte=1000000"`
	UnitCost         *decimal.Decimal `json:"unit_cost" validate:"omitempty,gte=0"`
	PurchaseOrderRef string           `json:"purchase_order_ref" validate:"notblank,max=100"`
	ActorID          string           `json:"actor_id" validate:"required"`
}

// ReceivePurchase registra una entrada enlazada a la orden de compra.
func (uc *MovementUseCase) ReceivePurchase(ctx context.Context, in ReceiptInput) (*entity.StockMovement, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	return uc.ApplyMovement(ctx, MovementInput{
		ProductID:        in.ProductID,
		Kind:             entity.MovementIn,
		Quantity:         in.Quantity,
		Reason:           "recepción " + in.PurchaseOrderRef,
		ActorID:          in.ActorID,
		PurchaseOrderRef: in.PurchaseOrderRef,
		UnitCost:         in.UnitCost,
	})
}

func lockProduct(ctx context.Context, repos repository.Repositories, productID string) (*entity.Product, error) {
	product, err := repos.Products.GetForUpdate(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("producto %s: %w", productID, domain.ErrNotFound)
	}
	return product, nil
}

func (uc *MovementUseCase) lockAndBook(ctx context.Context, repos repository.Repositories, in MovementInput, delta int) (*entity.StockMovement, error) {
	product, err := lockProduct(ctx, repos, in.ProductID)
	if err != nil {
		return nil, err
	}
	return uc.book(ctx, repos, product, in, delta)
}

// book aplica delta sobre un producto bloqueado: verifica el piso en 0, recalcula el costo en
// entradas con UnitCost, inserta el movimiento y escribe el stock.
func (uc *MovementUseCase) book(
	ctx context.Context,
	repos repository.Repositories,
	product *entity.Product,
	in MovementInput,
	delta int,
) (*entity.StockMovement, error) {
	before := product.StockActual
	after := before + delta
	if after > entity.MaxStock {
		return nil, fmt.Errorf("%w: el stock de %s superaría %d unidades", domain.ErrInvalidInput, product.ID, entity.MaxStock)
	}
	if after < 0 {
		uc.log.Info().
			Str("product_id", product.ID).
			Str("kind", string(in.Kind)).
			Int("available", before).
			Int("requested", -delta).
			Msg("movimiento rechazado: stock insuficiente")
		uc.metrics.StockRejected(product.ID)
		return nil, domain.NewInsufficientStock(product.ID, before, -delta)
	}

	if in.Kind == entity.MovementIn && in.UnitCost != nil {
		newCost := inventory.CostCalculator(before, product.PurchasePrice, delta, *in.UnitCost)
		if err := repos.Products.UpdatePurchasePrice(ctx, product.ID, newCost); err != nil {
			return nil, err
		}
		product.PurchasePrice = newCost
	}

	mov := &entity.StockMovement{
		ID:                uuid.New().String(),
		ProductID:         product.ID,
		Kind:              in.Kind,
		Quantity:          delta,
		StockBefore:       before,
		StockAfter:        after,
		SaleTransactionID: in.SaleTransactionID,
		PurchaseOrderRef:  in.PurchaseOrderRef,
		ActorID:           in.ActorID,
		Reason:            in.Reason,
		CreatedAt:         time.Now().UTC(),
	}
	if err := repos.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	if err := repos.Products.SetStock(ctx, product.ID, after); err != nil {
		return nil, err
	}
	product.StockActual = after
	uc.metrics.MovementApplied(string(in.Kind))
	return mov, nil
}
