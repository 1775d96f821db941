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

var _ repository.MemberAccountRepository = (*MemberAccountRepo)(nil)

const accountColumns = `id, member_id, balance, created_at, updated_at`

// MemberAccountRepo cuentas de socios y su diario de asientos sobre PostgreSQL.
type MemberAccountRepo struct {
	q Querier
}

// NewMemberAccountRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMemberAccountRepository(q Querier) *MemberAccountRepo {
	return &MemberAccountRepo{q: q}
}

// Create persiste la cuenta. member_id es único: un duplicado devuelve domain.ErrDuplicate.
func (r *MemberAccountRepo) Create(ctx context.Context, a *entity.MemberAccount) error {
	_, err := r.q.Exec(ctx, `INSERT INTO member_accounts (`+accountColumns+`) VALUES ($1, $2, $3, $4, $5)`,
		a.ID, a.MemberID, a.Balance, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return dbError("insert member account", err)
	}
	return nil
}

func (r *MemberAccountRepo) byMember(ctx context.Context, op, query, memberID string) (*entity.MemberAccount, error) {
	var a entity.MemberAccount
	err := r.q.QueryRow(ctx, query, memberID).Scan(&a.ID, &a.MemberID, &a.Balance, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, dbError(op, err)
	}
	return &a, nil
}

// GetByMember obtiene la cuenta del socio (nil si no tiene).
func (r *MemberAccountRepo) GetByMember(ctx context.Context, memberID string) (*entity.MemberAccount, error) {
	return r.byMember(ctx, "get member account",
		`SELECT `+accountColumns+` FROM member_accounts WHERE member_id = $1`, memberID)
}

// GetByMemberForUpdate obtiene la cuenta y bloquea la fila.
func (r *MemberAccountRepo) GetByMemberForUpdate(ctx context.Context, memberID string) (*entity.MemberAccount, error) {
	return r.byMember(ctx, "lock member account",
		`SELECT `+accountColumns+` FROM member_accounts WHERE member_id = $1 FOR UPDATE`, memberID)
}

// UpdateBalance escribe el saldo nuevo.
func (r *MemberAccountRepo) UpdateBalance(ctx context.Context, accountID string, balance decimal.Decimal) error {
	cmd, err := r.q.Exec(ctx, `UPDATE member_accounts SET balance = $2, updated_at = now() WHERE id = $1`,
		accountID, balance)
	if err != nil {
		return dbError("update member balance", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("cuenta %s: %w", accountID, domain.ErrNotFound)
	}
	return nil
}

// CreateEntry agrega un asiento al diario.
func (r *MemberAccountRepo) CreateEntry(ctx context.Context, e *entity.AccountEntry) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO account_entries (id, account_id, member_id, kind, amount, balance_before, balance_after,
			sale_transaction_id, actor_id, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		e.ID, e.AccountID, e.MemberID, e.Kind, e.Amount, e.BalanceBefore, e.BalanceAfter,
		nullable(e.SaleTransactionID), e.ActorID, e.Reason, e.CreatedAt,
	)
	if err != nil {
		return dbError("insert account entry", err)
	}
	return nil
}

// ListEntries lista los asientos del socio del más reciente al más antiguo.
func (r *MemberAccountRepo) ListEntries(ctx context.Context, memberID string, limit, offset int) ([]*entity.AccountEntry, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, account_id, member_id, kind, amount, balance_before, balance_after,
			COALESCE(sale_transaction_id::text, ''), actor_id, reason, created_at
		FROM account_entries WHERE member_id = $1
		ORDER BY seq DESC LIMIT $2 OFFSET $3`, memberID, limit, offset)
	if err != nil {
		return nil, dbError("list account entries", err)
	}
	defer rows.Close()
	list := []*entity.AccountEntry{}
	for rows.Next() {
		var e entity.AccountEntry
		if err := rows.Scan(&e.ID, &e.AccountID, &e.MemberID, &e.Kind, &e.Amount, &e.BalanceBefore, &e.BalanceAfter,
			&e.SaleTransactionID, &e.ActorID, &e.Reason, &e.CreatedAt); err != nil {
			return nil, dbError("scan account entry", err)
		}
		list = append(list, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("list account entries", err)
	}
	return list, nil
}
