package testutil

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Caisse-api/internal/domain"
	"github.com/jhoicas/Caisse-api/internal/domain/entity"
	"github.com/jhoicas/Caisse-api/internal/domain/repository"
)

var _ repository.MemberAccountRepository = (*AccountRepo)(nil)

// AccountRepo implementación en memoria de repository.MemberAccountRepository.
type AccountRepo struct{ base }

func (r *AccountRepo) Create(_ context.Context, a *entity.MemberAccount) error {
	return r.with("Accounts.Create", func(st *state) error {
		for _, cur := range st.accounts {
			if cur.MemberID == a.MemberID {
				return domain.ErrDuplicate
			}
		}
		st.accounts[a.ID] = *a
		return nil
	})
}

func (r *AccountRepo) byMember(op, memberID string) (*entity.MemberAccount, error) {
	var out *entity.MemberAccount
	err := r.with(op, func(st *state) error {
		for _, a := range st.accounts {
			if a.MemberID == memberID {
				a := a
				out = &a
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *AccountRepo) GetByMember(_ context.Context, memberID string) (*entity.MemberAccount, error) {
	return r.byMember("Accounts.GetByMember", memberID)
}

func (r *AccountRepo) GetByMemberForUpdate(_ context.Context, memberID string) (*entity.MemberAccount, error) {
	return r.byMember("Accounts.GetByMemberForUpdate", memberID)
}

func (r *AccountRepo) UpdateBalance(_ context.Context, accountID string, balance decimal.Decimal) error {
	return r.with("Accounts.UpdateBalance", func(st *state) error {
		a, ok := st.accounts[accountID]
		if !ok {
			return domain.ErrNotFound
		}
		a.Balance = balance
		a.UpdatedAt = time.Now().UTC()
		st.accounts[accountID] = a
		return nil
	})
}

func (r *AccountRepo) CreateEntry(_ context.Context, e *entity.AccountEntry) error {
	return r.with("Accounts.CreateEntry", func(st *state) error {
		st.entries = append(st.entries, *e)
		return nil
	})
}

func (r *AccountRepo) ListEntries(_ context.Context, memberID string, limit, offset int) ([]*entity.AccountEntry, error) {
	var out []*entity.AccountEntry
	err := r.with("Accounts.ListEntries", func(st *state) error {
		for i := len(st.entries) - 1; i >= 0; i-- {
			if st.entries[i].MemberID == memberID {
				e := st.entries[i]
				out = append(out, &e)
			}
		}
		return nil
	})
	return page(out, limit, offset), err
}
