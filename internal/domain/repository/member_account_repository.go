package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Caisse-api/internal/domain/entity"
)

// MemberAccountRepository define el puerto de persistencia para cuentas de socios y su diario.
type MemberAccountRepository interface {
	Create(ctx context.Context, account *entity.MemberAccount) error
	GetByMember(ctx context.Context, memberID string) (*entity.MemberAccount, error)
	// GetByMemberForUpdate obtiene la cuenta bloqueando la fila (nil si el socio no tiene cuenta).
	GetByMemberForUpdate(ctx context.Context, memberID string) (*entity.MemberAccount, error)
	UpdateBalance(ctx context.Context, accountID string, balance decimal.Decimal) error
	CreateEntry(ctx context.Context, entry *entity.AccountEntry) error
	ListEntries(ctx context.Context, memberID string, limit, offset int) ([]*entity.AccountEntry, error)
}
