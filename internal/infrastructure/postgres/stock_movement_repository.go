package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Caisse-api/internal/domain/entity"
	"github.com/jhoicas/Caisse-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `id, product_id, kind, quantity, stock_before, stock_after,
	COALESCE(sale_transaction_id::text, ''), COALESCE(purchase_order_ref, ''), actor_id, reason, created_at`

// StockMovementRepo diario de movimientos de stock sobre PostgreSQL (solo inserción).
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

func scanMovement(row rowScanner) (*entity.StockMovement, error) {
	var m entity.StockMovement
	err := row.Scan(&m.ID, &m.ProductID, &m.Kind, &m.Quantity, &m.StockBefore, &m.StockAfter,
		&m.SaleTransactionID, &m.PurchaseOrderRef, &m.ActorID, &m.Reason, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create persiste un movimiento.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (id, product_id, kind, quantity, stock_before, stock_after,
			sale_transaction_id, purchase_order_ref, actor_id, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.ProductID, m.Kind, m.Quantity, m.StockBefore, m.StockAfter,
		nullable(m.SaleTransactionID), nullable(m.PurchaseOrderRef), m.ActorID, m.Reason, m.CreatedAt,
	)
	if err != nil {
		return dbError("insert stock movement", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID (nil si no existe).
func (r *StockMovementRepo) GetByID(ctx context.Context, id string) (*entity.StockMovement, error) {
	if !isUUID(id) {
		return nil, nil
	}
	m, err := scanMovement(r.q.QueryRow(ctx, `SELECT `+movementColumns+` FROM stock_movements WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, dbError("get stock movement", err)
	}
	return m, nil
}

func movementWhere(f repository.MovementFilter) *where {
	w := &where{}
	switch {
	case f.ProductID == "":
	case isUUID(f.ProductID):
		w.add("product_id = $%d", f.ProductID)
	default:
		w.never()
	}
	if f.Kind != "" {
		w.add("kind = $%d", f.Kind)
	}
	if f.ActorID != "" {
		w.add("actor_id = $%d", f.ActorID)
	}
	if f.From != nil {
		w.add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		w.add("created_at <= $%d", *f.To)
	}
	return w
}

// List lista movimientos del más reciente al más antiguo.
func (r *StockMovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	w := movementWhere(f)
	query := `SELECT ` + movementColumns + ` FROM stock_movements` + w.String() + ` ORDER BY seq DESC`
	query += w.page(f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, dbError("list stock movements", err)
	}
	defer rows.Close()
	list := []*entity.StockMovement{}
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, dbError("scan stock movement", err)
		}
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("list stock movements", err)
	}
	return list, nil
}

// Count cuenta los movimientos que cumplen el filtro, sin paginar.
func (r *StockMovementRepo) Count(ctx context.Context, f repository.MovementFilter) (int, error) {
	w := movementWhere(f)
	var n int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM stock_movements`+w.String(), w.args...).Scan(&n); err != nil {
		return 0, dbError("count stock movements", err)
	}
	return n, nil
}

// LatestForProduct devuelve el último movimiento insertado del producto (nil si no hay).
func (r *StockMovementRepo) LatestForProduct(ctx context.Context, productID string) (*entity.StockMovement, error) {
	if !isUUID(productID) {
		return nil, nil
	}
	m, err := scanMovement(r.q.QueryRow(ctx,
		`SELECT `+movementColumns+` FROM stock_movements WHERE product_id = $1 ORDER BY seq DESC LIMIT 1`, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, dbError("latest stock movement", err)
	}
	return m, nil
}

// TotalsByKind agrega cantidad y número de movimientos por tipo.
func (r *StockMovementRepo) TotalsByKind(ctx context.Context, productID string, from, to *time.Time) ([]entity.MovementTotal, error) {
	w := movementWhere(repository.MovementFilter{ProductID: productID, From: from, To: to})
	rows, err := r.q.Query(ctx,
		`SELECT kind, count(*), COALESCE(sum(quantity), 0) FROM stock_movements`+w.String()+` GROUP BY kind ORDER BY kind`,
		w.args...)
	if err != nil {
		return nil, dbError("stock movement totals", err)
	}
	defer rows.Close()
	out := []entity.MovementTotal{}
	for rows.Next() {
		var t entity.MovementTotal
		if err := rows.Scan(&t.Kind, &t.Count, &t.Quantity); err != nil {
			return nil, dbError("scan stock movement totals", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("stock movement totals", err)
	}
	return out, nil
}
