package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Caisse-api/internal/domain"
	"github.com/jhoicas/Caisse-api/internal/domain/entity"
	"github.com/jhoicas/Caisse-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

const saleColumns = `id, COALESCE(buyer_id, ''), cashier_id, payment_kind, payment_ref, total, amount, status,
	COALESCE(cash_session_id::text, ''), COALESCE(cancelled_by, ''), cancelled_at, COALESCE(cancel_reason, ''),
	created_at, updated_at`

// SaleRepo transacciones de caja y sus líneas sobre PostgreSQL.
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

func scanSale(row rowScanner) (*entity.SaleTransaction, error) {
	var t entity.SaleTransaction
	err := row.Scan(&t.ID, &t.BuyerID, &t.CashierID, &t.PaymentKind, &t.PaymentRef, &t.Total, &t.Amount,
		&t.Status, &t.CashSessionID, &t.CancelledBy, &t.CancelledAt, &t.CancelReason, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create persiste la cabecera.
func (r *SaleRepo) Create(ctx context.Context, t *entity.SaleTransaction) error {
	query := `
		INSERT INTO sale_transactions (id, buyer_id, cashier_id, payment_kind, payment_ref, total, amount,
			status, cash_session_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		t.ID, nullable(t.BuyerID), t.CashierID, t.PaymentKind, t.PaymentRef, t.Total, t.Amount,
		t.Status, nullable(t.CashSessionID), t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return dbError("insert sale transaction", err)
	}
	return nil
}

// CreateLine persiste una línea de venta.
func (r *SaleRepo) CreateLine(ctx context.Context, l *entity.SaleLine) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO sale_lines (id, transaction_id, product_id, quantity, unit_price, line_total)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		l.ID, l.TransactionID, l.ProductID, l.Quantity, l.UnitPrice, l.LineTotal,
	)
	if err != nil {
		return dbError("insert sale line", err)
	}
	return nil
}

func (r *SaleRepo) getOne(ctx context.Context, op, query, id string) (*entity.SaleTransaction, error) {
	if !isUUID(id) {
		return nil, nil
	}
	t, err := scanSale(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, dbError(op, err)
	}
	return t, nil
}

// GetByID obtiene la cabecera (nil si no existe).
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.SaleTransaction, error) {
	return r.getOne(ctx, "get sale transaction", `SELECT `+saleColumns+` FROM sale_transactions WHERE id = $1`, id)
}

// GetForUpdate obtiene la cabecera y bloquea la fila.
func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.SaleTransaction, error) {
	return r.getOne(ctx, "lock sale transaction",
		`SELECT `+saleColumns+` FROM sale_transactions WHERE id = $1 FOR UPDATE`, id)
}

// GetLines devuelve las líneas de la transacción.
func (r *SaleRepo) GetLines(ctx context.Context, transactionID string) ([]*entity.SaleLine, error) {
	if !isUUID(transactionID) {
		return []*entity.SaleLine{}, nil
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, transaction_id, product_id, quantity, unit_price, line_total
		FROM sale_lines WHERE transaction_id = $1 ORDER BY product_id, id`, transactionID)
	if err != nil {
		return nil, dbError("get sale lines", err)
	}
	defer rows.Close()
	lines := []*entity.SaleLine{}
	for rows.Next() {
		var l entity.SaleLine
		if err := rows.Scan(&l.ID, &l.TransactionID, &l.ProductID, &l.Quantity, &l.UnitPrice, &l.LineTotal); err != nil {
			return nil, dbError("scan sale line", err)
		}
		lines = append(lines, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("get sale lines", err)
	}
	return lines, nil
}

// MarkCancelled pasa la transacción a cancelled con actor, motivo y fecha.
func (r *SaleRepo) MarkCancelled(ctx context.Context, id, actorID, reason string, at time.Time) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE sale_transactions
		SET status = 'cancelled', cancelled_by = $2, cancel_reason = $3, cancelled_at = $4, updated_at = $4
		WHERE id = $1 AND status = 'valid'`, id, actorID, reason, at)
	if err != nil {
		return dbError("cancel sale transaction", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("transacción %s: %w", id, domain.ErrAlreadyCancelled)
	}
	return nil
}

// List lista cabeceras de la más reciente a la más antigua.
func (r *SaleRepo) List(ctx context.Context, f repository.SaleFilter) ([]*entity.SaleTransaction, error) {
	w := &where{}
	if f.CashierID != "" {
		w.add("cashier_id = $%d", f.CashierID)
	}
	if f.BuyerID != "" {
		w.add("buyer_id = $%d", f.BuyerID)
	}
	if f.PaymentKind != "" {
		w.add("payment_kind = $%d", f.PaymentKind)
	}
	if f.Status != "" {
		w.add("status = $%d", f.Status)
	}
	if f.From != nil {
		w.add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		w.add("created_at <= $%d", *f.To)
	}
	query := `SELECT ` + saleColumns + ` FROM sale_transactions` + w.String() + ` ORDER BY seq DESC`
	query += w.page(f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, dbError("list sale transactions", err)
	}
	defer rows.Close()
	list := []*entity.SaleTransaction{}
	for rows.Next() {
		t, err := scanSale(rows)
		if err != nil {
			return nil, dbError("scan sale transaction", err)
		}
		list = append(list, t)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("list sale transactions", err)
	}
	return list, nil
}

// CashierTotals agrega las transacciones válidas del cajero en [from, to] por modo de pago.
// Las ventas suman su total; las pseudo-transacciones, el efectivo que movieron.
func (r *SaleRepo) CashierTotals(ctx context.Context, cashierID string, from, to time.Time) (*repository.SessionTotals, error) {
	rows, err := r.q.Query(ctx, `
		SELECT payment_kind, count(*), COALESCE(sum(total), 0), COALESCE(sum(amount), 0)
		FROM sale_transactions
		WHERE cashier_id = $1 AND status = 'valid' AND created_at >= $2 AND created_at <= $3
		GROUP BY payment_kind`, cashierID, from, to)
	if err != nil {
		return nil, dbError("cashier totals", err)
	}
	defer rows.Close()

	totals := &repository.SessionTotals{
		CashSales:   decimal.Zero,
		ChangeGiven: decimal.Zero,
		CountByKind: map[entity.PaymentKind]int{},
		TotalByKind: map[entity.PaymentKind]decimal.Decimal{},
	}
	for rows.Next() {
		var (
			kind          entity.PaymentKind
			n             int
			total, amount decimal.Decimal
		)
		if err := rows.Scan(&kind, &n, &total, &amount); err != nil {
			return nil, dbError("scan cashier totals", err)
		}
		totals.CountByKind[kind] = n
		if kind.IsPseudo() {
			totals.TotalByKind[kind] = amount
		} else {
			totals.TotalByKind[kind] = total
		}
		switch kind {
		case entity.PaymentCash:
			totals.CashSales = total
		case entity.PaymentChange:
			totals.ChangeGiven = amount
		}
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("cashier totals", err)
	}
	return totals, nil
}
