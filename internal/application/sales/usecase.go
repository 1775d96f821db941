package sales

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Caisse-api/internal/application/account"
	"github.com/jhoicas/Caisse-api/internal/application/inventory"
	"github.com/jhoicas/Caisse-api/internal/application/ports"
	"github.com/jhoicas/Caisse-api/internal/application/validation"
	"github.com/jhoicas/Caisse-api/internal/domain"
	"github.com/jhoicas/Caisse-api/internal/domain/entity"
	"github.com/jhoicas/Caisse-api/internal/domain/repository"
	"github.com/jhoicas/Caisse-api/pkg/logger"
)

// minCancelReason longitud mínima del motivo de anulación (sin espacios en los extremos).
const minCancelReason = 5

// SaleUseCase procesa ventas y anulaciones como una sola unidad atómica que abarca stock,
// cabecera, líneas y saldo del socio.
type SaleUseCase struct {
	txRunner ports.TxRunner
	sales    repository.SaleRepository
	stock    *inventory.MovementUseCase
	accounts *account.AccountUseCase
	log      *logger.Logger
	metrics  ports.Metrics
}

// NewSaleUseCase construye el caso de uso. log y metrics pueden ser nil.
func NewSaleUseCase(
	txRunner ports.TxRunner,
	sales repository.SaleRepository,
	stock *inventory.MovementUseCase,
	accounts *account.AccountUseCase,
	log *logger.Logger,
	metrics ports.Metrics,
) *SaleUseCase {
	if log == nil {
		log = logger.Nop()
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &SaleUseCase{
		txRunner: txRunner,
		sales:    sales,
		stock:    stock,
		accounts: accounts,
		log:      log.Component("sales"),
		metrics:  metrics,
	}
}

// LineInput línea pedida. Sin UnitPrice se usa el precio de venta vigente del producto.
type LineInput struct {
	ProductID string           `json:"product_id" validate:"required"`
	Quantity  int              `json:"quantity" validate:"gt=0,lte=1000000"`
	UnitPrice *decimal.Decimal `json:"unit_price" validate:"omitempty,gte=0"`
}

// CreateSaleInput entrada de CreateSale. Amount solo aplica a pseudo-transacciones.
type CreateSaleInput struct {
	BuyerID     string             `json:"buyer_id"`
	CashierID   string             `json:"cashier_id" validate:"required"`
	PaymentKind entity.PaymentKind `json:"payment_kind" validate:"required,oneof=cash cheque card change fund_received closing"`
	PaymentRef  string             `json:"payment_ref" validate:"max=100"`
	Amount      decimal.Decimal    `json:"amount" validate:"gte=0"`
	Lines       []LineInput        `json:"lines" validate:"dive"`
}

func validateSale(in CreateSaleInput) error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	if in.PaymentKind.IsPseudo() {
		if len(in.Lines) > 0 {
			return fmt.Errorf("%w: lines: una pseudo-transacción %s no lleva líneas", domain.ErrInvalidInput, in.PaymentKind)
		}
	} else if len(in.Lines) == 0 {
		return fmt.Errorf("%w: lines: la venta debe tener al menos una línea", domain.ErrInvalidInput)
	}
	if in.PaymentKind.RequiresReference() && strings.TrimSpace(in.PaymentRef) == "" {
		return domain.ErrInvalidPaymentReference
	}
	return nil
}

// CreateSale registra la venta. Bloquea los productos en orden de ID, verifica el stock de todas
// las líneas antes de escribir y, en una sola transacción, inserta cabecera y líneas, registra
// las salidas de stock y debita la cuenta del comprador si existe.
// Cualquier error deja el estado sin cambios.
func (uc *SaleUseCase) CreateSale(ctx context.Context, in CreateSaleInput) (*entity.SaleTransaction, error) {
	if err := validateSale(in); err != nil {
		return nil, err
	}

	var sale *entity.SaleTransaction
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		s, err := uc.createInTx(ctx, repos, in)
		if err != nil {
			return err
		}
		sale = s
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.metrics.SaleRecorded(string(sale.PaymentKind), sale.Total)
	uc.log.Debug().
		Str("transaction_id", sale.ID).
		Str("cashier_id", sale.CashierID).
		Str("payment_kind", string(sale.PaymentKind)).
		Str("total", sale.Total.String()).
		Int("lines", len(sale.Lines)).
		Msg("venta registrada")
	return sale, nil
}

func (uc *SaleUseCase) createInTx(ctx context.Context, repos repository.Repositories, in CreateSaleInput) (*entity.SaleTransaction, error) {
	// 1. Bloqueo y verificación de stock de todas las líneas antes de cualquier escritura.
	requested := make(map[string]int, len(in.Lines))
	for _, l := range in.Lines {
		requested[l.ProductID] += l.Quantity
	}
	locked, err := uc.lockProducts(ctx, repos, requested)
	if err != nil {
		return nil, err
	}
	for _, id := range sortedKeys(requested) {
		p := locked[id]
		if p.StockActual < requested[id] {
			uc.log.Info().
				Str("product_id", id).
				Int("available", p.StockActual).
				Int("requested", requested[id]).
				Msg("venta rechazada: stock insuficiente")
			uc.metrics.StockRejected(id)
			return nil, domain.NewInsufficientStock(id, p.StockActual, requested[id])
		}
	}

	// 2. Cabecera y líneas.
	now := time.Now().UTC()
	sale := &entity.SaleTransaction{
		ID:          uuid.New().String(),
		BuyerID:     in.BuyerID,
		CashierID:   in.CashierID,
		PaymentKind: in.PaymentKind,
		PaymentRef:  strings.TrimSpace(in.PaymentRef),
		Total:       decimal.Zero,
		Status:      entity.SaleStatusValid,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	lines := make([]*entity.SaleLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		price := locked[l.ProductID].SalePrice
		if l.UnitPrice != nil {
			price = entity.RoundMoney(*l.UnitPrice)
		}
		line := &entity.SaleLine{
			ID:            uuid.New().String(),
			TransactionID: sale.ID,
			ProductID:     l.ProductID,
			Quantity:      l.Quantity,
			UnitPrice:     price,
			LineTotal:     price.Mul(decimal.NewFromInt(int64(l.Quantity))),
		}
		sale.Total = sale.Total.Add(line.LineTotal)
		lines = append(lines, line)
	}
	if in.PaymentKind.IsPseudo() {
		sale.Total = decimal.Zero
		sale.Amount = entity.RoundMoney(in.Amount)
	} else {
		sale.Amount = sale.Total
	}

	active, err := repos.Sessions.ActiveForCashier(ctx, in.CashierID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		sale.CashSessionID = active.ID
	}

	if err := repos.Sales.Create(ctx, sale); err != nil {
		return nil, err
	}
	for _, line := range lines {
		if err := repos.Sales.CreateLine(ctx, line); err != nil {
			return nil, err
		}
	}

	// 3. Salidas de stock por línea sobre los productos ya bloqueados.
	for _, line := range lines {
		if _, err := uc.stock.BookInTx(ctx, repos, locked[line.ProductID], inventory.MovementInput{
			ProductID:         line.ProductID,
			Kind:              entity.MovementOut,
			Quantity:          line.Quantity,
			ActorID:           in.CashierID,
			SaleTransactionID: sale.ID,
			Reason:            "venta",
		}); err != nil {
			return nil, err
		}
	}

	// 4. Débito en la cuenta del socio, si tiene.
	if _, err := uc.accounts.ApplyInTx(ctx, repos, account.EntryInput{
		MemberID:          in.BuyerID,
		Amount:            sale.Total.Neg(),
		Kind:              entity.AccountEntrySale,
		SaleTransactionID: sale.ID,
		ActorID:           in.CashierID,
		Reason:            "venta",
	}); err != nil {
		return nil, err
	}

	sale.Lines = lines
	return sale, nil
}

// PseudoInput pseudo-transacción de auditoría emitida por la gestión de caja.
type PseudoInput struct {
	Kind          entity.PaymentKind
	CashierID     string
	Amount        decimal.Decimal
	CashSessionID string
	Note          string
}

// RecordPseudoInTx inserta una pseudo-transacción (total 0, sin líneas ni efecto en stock) en la
// transacción del llamador.
func (uc *SaleUseCase) RecordPseudoInTx(ctx context.Context, repos repository.Repositories, in PseudoInput) (*entity.SaleTransaction, error) {
	if !in.Kind.IsPseudo() {
		return nil, fmt.Errorf("%w: %s no es una pseudo-transacción", domain.ErrInvalidInput, in.Kind)
	}
	now := time.Now().UTC()
	tx := &entity.SaleTransaction{
		ID:            uuid.New().String(),
		CashierID:     in.CashierID,
		PaymentKind:   in.Kind,
		PaymentRef:    in.Note,
		Total:         decimal.Zero,
		Amount:        entity.RoundMoney(in.Amount),
		Status:        entity.SaleStatusValid,
		CashSessionID: in.CashSessionID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := repos.Sales.Create(ctx, tx); err != nil {
		return nil, err
	}
	uc.metrics.SaleRecorded(string(in.Kind), decimal.Zero)
	return tx, nil
}

// CancelInput anulación de una venta.
type CancelInput struct {
	TransactionID string `json:"transaction_id" validate:"required"`
	ActorID       string `json:"actor_id" validate:"required"`
	Reason        string `json:"reason" validate:"required,max=500"`
}

// CancelSale anula una venta válida: repone el stock de cada línea con movimientos de entrada
// enlazados a la venta, acredita al socio el total original y marca la venta como anulada.
func (uc *SaleUseCase) CancelSale(ctx context.Context, in CancelInput) error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	reason := strings.TrimSpace(in.Reason)
	if utf8.RuneCountInString(reason) < minCancelReason {
		return fmt.Errorf("%w: reason: mínimo %d caracteres", domain.ErrInvalidInput, minCancelReason)
	}

	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		header, err := repos.Sales.GetByID(ctx, in.TransactionID)
		if err != nil {
			return err
		}
		if header == nil {
			return fmt.Errorf("transacción %s: %w", in.TransactionID, domain.ErrNotFound)
		}
		if !header.IsValid() {
			return domain.ErrAlreadyCancelled
		}
		if header.PaymentKind.IsPseudo() {
			return fmt.Errorf("%w: las pseudo-transacciones de caja no se anulan", domain.ErrInvalidInput)
		}
		lines, err := repos.Sales.GetLines(ctx, in.TransactionID)
		if err != nil {
			return err
		}

		// Orden de bloqueo: productos, luego la cabecera, luego la cuenta.
		qty := make(map[string]int, len(lines))
		for _, l := range lines {
			qty[l.ProductID] += l.Quantity
		}
		locked, err := uc.lockProducts(ctx, repos, qty)
		if err != nil {
			return err
		}
		current, err := repos.Sales.GetForUpdate(ctx, in.TransactionID)
		if err != nil {
			return err
		}
		if current == nil {
			return fmt.Errorf("transacción %s: %w", in.TransactionID, domain.ErrNotFound)
		}
		if !current.IsValid() {
			return domain.ErrAlreadyCancelled
		}

		for _, l := range lines {
			if _, err := uc.stock.BookInTx(ctx, repos, locked[l.ProductID], inventory.MovementInput{
				ProductID:         l.ProductID,
				Kind:              entity.MovementIn,
				Quantity:          l.Quantity,
				ActorID:           in.ActorID,
				SaleTransactionID: current.ID,
				Reason:            "anulación: " + reason,
			}); err != nil {
				return err
			}
		}

		if _, err := uc.accounts.ApplyInTx(ctx, repos, account.EntryInput{
			MemberID:          current.BuyerID,
			Amount:            current.Total,
			Kind:              entity.AccountEntryCancellation,
			SaleTransactionID: current.ID,
			ActorID:           in.ActorID,
			Reason:            reason,
		}); err != nil {
			return err
		}

		return repos.Sales.MarkCancelled(ctx, current.ID, in.ActorID, reason, time.Now().UTC())
	})
	if err != nil {
		return err
	}

	uc.metrics.SaleCancelled()
	uc.log.Debug().
		Str("transaction_id", in.TransactionID).
		Str("actor_id", in.ActorID).
		Msg("venta anulada")
	return nil
}

// lockProducts bloquea cada producto una vez, en orden ascendente de ID.
func (uc *SaleUseCase) lockProducts(ctx context.Context, repos repository.Repositories, ids map[string]int) (map[string]*entity.Product, error) {
	locked := make(map[string]*entity.Product, len(ids))
	for _, id := range sortedKeys(ids) {
		p, err := repos.Products.GetForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, fmt.Errorf("producto %s: %w", id, domain.ErrNotFound)
		}
		locked[id] = p
	}
	return locked, nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
