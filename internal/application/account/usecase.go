package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Caisse-api/internal/application/ports"
	"github.com/jhoicas/Caisse-api/internal/application/validation"
	"github.com/jhoicas/Caisse-api/internal/domain"
	"github.com/jhoicas/Caisse-api/internal/domain/entity"
	"github.com/jhoicas/Caisse-api/internal/domain/repository"
	"github.com/jhoicas/Caisse-api/pkg/logger"
)

// AccountUseCase libro de saldos de socios. Toda mutación bloquea la fila de la cuenta y
// agrega un asiento inmutable con saldo antes/después. El saldo puede quedar negativo.
type AccountUseCase struct {
	txRunner ports.TxRunner
	accounts repository.MemberAccountRepository
	log      *logger.Logger
	metrics  ports.Metrics
}

// NewAccountUseCase construye el caso de uso. log y metrics pueden ser nil.
func NewAccountUseCase(txRunner ports.TxRunner, accounts repository.MemberAccountRepository, log *logger.Logger, metrics ports.Metrics) *AccountUseCase {
	if log == nil {
		log = logger.Nop()
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &AccountUseCase{txRunner: txRunner, accounts: accounts, log: log.Component("account_ledger"), metrics: metrics}
}

// OpenAccount crea la cuenta del socio con saldo 0; si ya existe la devuelve sin cambios.
func (uc *AccountUseCase) OpenAccount(ctx context.Context, memberID string) (*entity.MemberAccount, error) {
	if memberID == "" {
		return nil, fmt.Errorf("%w: member_id: es obligatorio", domain.ErrInvalidInput)
	}
	existing, err := uc.accounts.GetByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	now := time.Now().UTC()
	acc := &entity.MemberAccount{
		ID:        uuid.New().String(),
		MemberID:  memberID,
		Balance:   decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.accounts.Create(ctx, acc); err != nil {
		// Otra petición la creó entre la lectura y el insert.
		if errors.Is(err, domain.ErrDuplicate) {
			return uc.GetAccount(ctx, memberID)
		}
		return nil, err
	}
	return acc, nil
}

// GetAccount devuelve la cuenta del socio o domain.ErrNotFound.
func (uc *AccountUseCase) GetAccount(ctx context.Context, memberID string) (*entity.MemberAccount, error) {
	acc, err := uc.accounts.GetByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, fmt.Errorf("cuenta del socio %s: %w", memberID, domain.ErrNotFound)
	}
	return acc, nil
}

// ListEntries lista el diario de la cuenta, del asiento más reciente al más antiguo.
func (uc *AccountUseCase) ListEntries(ctx context.Context, memberID string, limit, offset int) ([]*entity.AccountEntry, error) {
	if _, err := uc.GetAccount(ctx, memberID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return uc.accounts.ListEntries(ctx, memberID, limit, offset)
}

// AdjustInput corrección manual del saldo.
type AdjustInput struct {
	MemberID string          `json:"member_id" validate:"required"`
	Amount   decimal.Decimal `json:"amount" validate:"ne=0"`
	Reason   string          `json:"reason" validate:"notblank,max=500"`
	ActorID  string          `json:"actor_id" validate:"required"`
}

// AdjustBalance suma Amount (con signo) al saldo del socio bajo bloqueo de fila.
func (uc *AccountUseCase) AdjustBalance(ctx context.Context, in AdjustInput) (*entity.AccountEntry, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	in.Amount = entity.RoundMoney(in.Amount)
	if in.Amount.IsZero() {
		return nil, fmt.Errorf("%w: amount: el ajuste redondeado a céntimos es cero", domain.ErrInvalidInput)
	}
	var entry *entity.AccountEntry
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		acc, err := repos.Accounts.GetByMemberForUpdate(ctx, in.MemberID)
		if err != nil {
			return err
		}
		if acc == nil {
			return fmt.Errorf("cuenta del socio %s: %w", in.MemberID, domain.ErrNotFound)
		}
		e, err := post(ctx, repos, acc, EntryInput{
			MemberID: in.MemberID,
			Amount:   in.Amount,
			Kind:     entity.AccountEntryAdjustment,
			ActorID:  in.ActorID,
			Reason:   in.Reason,
		})
		if err != nil {
			return err
		}
		entry = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.metrics.AccountAdjusted()
	uc.log.Info().
		Str("member_id", in.MemberID).
		Str("amount", in.Amount.String()).
		Str("actor_id", in.ActorID).
		Msg("saldo ajustado")
	return entry, nil
}

// EntryInput asiento aplicado desde otra operación atómica (venta o anulación).
type EntryInput struct {
	MemberID          string
	Amount            decimal.Decimal
	Kind              entity.AccountEntryKind
	SaleTransactionID string
	ActorID           string
	Reason            string
}

// ApplyInTx bloquea la cuenta del socio y aplica el asiento en la transacción del llamador.
// Si el socio no tiene cuenta no hace nada y devuelve (nil, nil).
func (uc *AccountUseCase) ApplyInTx(ctx context.Context, repos repository.Repositories, in EntryInput) (*entity.AccountEntry, error) {
	if in.MemberID == "" || in.Amount.IsZero() {
		return nil, nil
	}
	acc, err := repos.Accounts.GetByMemberForUpdate(ctx, in.MemberID)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, nil
	}
	return post(ctx, repos, acc, in)
}

func post(ctx context.Context, repos repository.Repositories, acc *entity.MemberAccount, in EntryInput) (*entity.AccountEntry, error) {
	before := acc.Balance
	after := before.Add(in.Amount)
	entry := &entity.AccountEntry{
		ID:                uuid.New().String(),
		AccountID:         acc.ID,
		MemberID:          acc.MemberID,
		Kind:              in.Kind,
		Amount:            in.Amount,
		BalanceBefore:     before,
		BalanceAfter:      after,
		SaleTransactionID: in.SaleTransactionID,
		ActorID:           in.ActorID,
		Reason:            in.Reason,
		CreatedAt:         time.Now().UTC(),
	}
	if err := repos.Accounts.UpdateBalance(ctx, acc.ID, after); err != nil {
		return nil, err
	}
	if err := repos.Accounts.CreateEntry(ctx, entry); err != nil {
		return nil, err
	}
	acc.Balance = after
	return entry, nil
}
