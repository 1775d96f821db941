package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Caisse-api/internal/domain"
	"github.com/jhoicas/Caisse-api/internal/domain/entity"
	"github.com/jhoicas/Caisse-api/internal/domain/repository"
)

var _ repository.CashSessionRepository = (*CashSessionRepo)(nil)

// Índice único parcial sobre cashier_id para las sesiones pending_cashier u open.
const oneActiveSessionIndex = "cash_sessions_one_active"

const sessionColumns = `id, supervisor_id, cashier_id, initial_fund, expected_balance, declared_balance,
	validated_balance, variance, status, opening_note, closing_note, validation_note,
	created_at, opened_at, closed_at, validated_at, updated_at`

// CashSessionRepo sesiones de caja sobre PostgreSQL.
type CashSessionRepo struct {
	q Querier
}

// NewCashSessionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCashSessionRepository(q Querier) *CashSessionRepo {
	return &CashSessionRepo{q: q}
}

func scanSession(row rowScanner) (*entity.CashSession, error) {
	var s entity.CashSession
	err := row.Scan(&s.ID, &s.SupervisorID, &s.CashierID, &s.InitialFund, &s.ExpectedBalance, &s.DeclaredBalance,
		&s.ValidatedBalance, &s.Variance, &s.Status, &s.OpeningNote, &s.ClosingNote, &s.ValidationNote,
		&s.CreatedAt, &s.OpenedAt, &s.ClosedAt, &s.ValidatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create persiste la sesión. El índice parcial rechaza una segunda sesión activa del cajero.
func (r *CashSessionRepo) Create(ctx context.Context, s *entity.CashSession) error {
	query := `INSERT INTO cash_sessions (` + sessionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.SupervisorID, s.CashierID, s.InitialFund, s.ExpectedBalance, s.DeclaredBalance,
		s.ValidatedBalance, s.Variance, s.Status, s.OpeningNote, s.ClosingNote, s.ValidationNote,
		s.CreatedAt, s.OpenedAt, s.ClosedAt, s.ValidatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) && violatesConstraint(err, oneActiveSessionIndex) {
			return domain.ErrActiveSession
		}
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return dbError("insert cash session", err)
	}
	return nil
}

func (r *CashSessionRepo) getOne(ctx context.Context, op, query string, arg any) (*entity.CashSession, error) {
	s, err := scanSession(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, dbError(op, err)
	}
	return s, nil
}

// GetByID obtiene una sesión (nil si no existe).
func (r *CashSessionRepo) GetByID(ctx context.Context, id string) (*entity.CashSession, error) {
	if !isUUID(id) {
		return nil, nil
	}
	return r.getOne(ctx, "get cash session", `SELECT `+sessionColumns+` FROM cash_sessions WHERE id = $1`, id)
}

// GetForUpdate obtiene la sesión y bloquea la fila.
func (r *CashSessionRepo) GetForUpdate(ctx context.Context, id string) (*entity.CashSession, error) {
	if !isUUID(id) {
		return nil, nil
	}
	return r.getOne(ctx, "lock cash session",
		`SELECT `+sessionColumns+` FROM cash_sessions WHERE id = $1 FOR UPDATE`, id)
}

// Update escribe estado, saldos, notas y marcas de tiempo de la sesión.
func (r *CashSessionRepo) Update(ctx context.Context, s *entity.CashSession) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE cash_sessions SET
			expected_balance = $2, declared_balance = $3, validated_balance = $4, variance = $5,
			status = $6, opening_note = $7, closing_note = $8, validation_note = $9,
			opened_at = $10, closed_at = $11, validated_at = $12, updated_at = $13
		WHERE id = $1`,
		s.ID, s.ExpectedBalance, s.DeclaredBalance, s.ValidatedBalance, s.Variance,
		s.Status, s.OpeningNote, s.ClosingNote, s.ValidationNote,
		s.OpenedAt, s.ClosedAt, s.ValidatedAt, s.UpdatedAt,
	)
	if err != nil {
		return dbError("update cash session", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("sesión %s: %w", s.ID, domain.ErrNotFound)
	}
	return nil
}

// ActiveForCashier devuelve la sesión pending_cashier u open del cajero (nil si no hay).
func (r *CashSessionRepo) ActiveForCashier(ctx context.Context, cashierID string) (*entity.CashSession, error) {
	return r.getOne(ctx, "active cash session", `SELECT `+sessionColumns+` FROM cash_sessions
		WHERE cashier_id = $1 AND status IN ('pending_cashier', 'open')`, cashierID)
}

// List lista sesiones de la más reciente a la más antigua.
func (r *CashSessionRepo) List(ctx context.Context, f repository.SessionFilter) ([]*entity.CashSession, error) {
	w := &where{}
	if f.CashierID != "" {
		w.add("cashier_id = $%d", f.CashierID)
	}
	if f.SupervisorID != "" {
		w.add("supervisor_id = $%d", f.SupervisorID)
	}
	if f.Status != "" {
		w.add("status = $%d", f.Status)
	}
	query := `SELECT ` + sessionColumns + ` FROM cash_sessions` + w.String() + ` ORDER BY created_at DESC, id`
	query += w.page(f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, dbError("list cash sessions", err)
	}
	defer rows.Close()
	list := []*entity.CashSession{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, dbError("scan cash session", err)
		}
		list = append(list, s)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("list cash sessions", err)
	}
	return list, nil
}
