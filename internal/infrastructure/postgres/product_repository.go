package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Caisse-api/internal/domain"
	"github.com/jhoicas/Caisse-api/internal/domain/entity"
	"github.com/jhoicas/Caisse-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, name, category, purchase_price, sale_price, stock_actual, reorder_threshold, active, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

func scanProduct(row rowScanner) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.Name, &p.Category, &p.PurchasePrice, &p.SalePrice,
		&p.StockActual, &p.ReorderThreshold, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		product.ID, product.Name, product.Category, product.PurchasePrice, product.SalePrice,
		product.StockActual, product.ReorderThreshold, product.Active, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return dbError("insert product", err)
	}
	return nil
}

func (r *ProductRepo) getOne(ctx context.Context, op, query, id string) (*entity.Product, error) {
	if !isUUID(id) {
		return nil, nil
	}
	p, err := scanProduct(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, dbError(op, err)
	}
	return p, nil
}

// GetByID obtiene un producto por ID (nil si no existe).
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, "get product", `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

// GetForUpdate obtiene el producto y bloquea la fila hasta el fin de la transacción.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, "lock product", `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id)
}

// Update actualiza datos de catálogo. No toca stock_actual (solo SetStock).
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	query := `
		UPDATE products SET name = $2, category = $3, purchase_price = $4, sale_price = $5,
			reorder_threshold = $6, active = $7, updated_at = $8
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		product.ID, product.Name, product.Category, product.PurchasePrice, product.SalePrice,
		product.ReorderThreshold, product.Active, product.UpdatedAt,
	)
	if err != nil {
		return dbError("update product", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("producto %s: %w", product.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *ProductRepo) exec(ctx context.Context, op, query string, args ...any) error {
	cmd, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return dbError(op, err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return nil
}

// SetStock escribe la cantidad confirmada. Solo lo invoca el libro de stock.
func (r *ProductRepo) SetStock(ctx context.Context, productID string, stock int) error {
	return r.exec(ctx, "set stock",
		`UPDATE products SET stock_actual = $2, updated_at = now() WHERE id = $1`, productID, stock)
}

// UpdatePurchasePrice actualiza el costo promedio ponderado tras una entrada con costo.
func (r *ProductRepo) UpdatePurchasePrice(ctx context.Context, productID string, price decimal.Decimal) error {
	return r.exec(ctx, "update purchase price",
		`UPDATE products SET purchase_price = $2, updated_at = now() WHERE id = $1`, productID, price)
}

// SetActive archiva o reactiva el producto.
func (r *ProductRepo) SetActive(ctx context.Context, productID string, active bool) error {
	return r.exec(ctx, "set product active",
		`UPDATE products SET active = $2, updated_at = now() WHERE id = $1`, productID, active)
}

func (r *ProductRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, dbError(op, err)
	}
	defer rows.Close()
	list := []*entity.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, dbError("scan product", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(op, err)
	}
	return list, nil
}

// List lista productos por nombre con filtros opcionales de categoría y estado.
func (r *ProductRepo) List(ctx context.Context, filter repository.ProductFilter) ([]*entity.Product, error) {
	w := &where{}
	if filter.Category != "" {
		w.add("category = $%d", filter.Category)
	}
	if filter.ActiveOnly {
		w.add("active = $%d", true)
	}
	query := `SELECT ` + productColumns + ` FROM products` + w.String() + ` ORDER BY name, id`
	query += w.page(filter.Limit, filter.Offset)
	return r.list(ctx, "list products", query, w.args...)
}

// ListBelowThreshold lista productos activos con stock <= umbral.
func (r *ProductRepo) ListBelowThreshold(ctx context.Context) ([]*entity.Product, error) {
	return r.list(ctx, "list below threshold",
		`SELECT `+productColumns+` FROM products
		WHERE active AND stock_actual <= reorder_threshold ORDER BY name, id`)
}

// CountReferences cuenta movimientos y líneas de venta que apuntan al producto.
func (r *ProductRepo) CountReferences(ctx context.Context, productID string) (int, error) {
	if !isUUID(productID) {
		return 0, nil
	}
	var n int
	err := r.q.QueryRow(ctx, `
		SELECT (SELECT count(*) FROM stock_movements WHERE product_id = $1)
		     + (SELECT count(*) FROM sale_lines WHERE product_id = $1)`, productID).Scan(&n)
	if err != nil {
		return 0, dbError("count product references", err)
	}
	return n, nil
}

// Delete elimina un producto sin historial. Una FK viva se traduce a domain.ErrHasReferences.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	if !isUUID(id) {
		return fmt.Errorf("producto %s: %w", id, domain.ErrNotFound)
	}
	cmd, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("producto %s: %w", id, domain.ErrHasReferences)
		}
		return dbError("delete product", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("producto %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
