package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Caisse-api/internal/application/ports"
	"github.com/jhoicas/Caisse-api/internal/domain"
	"github.com/jhoicas/Caisse-api/internal/domain/repository"
)

var _ ports.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción READ COMMITTED, ejecuta fn con los repositorios atados a la tx
// y hace Commit o Rollback. Los bloqueos de fila se piden dentro de fn (GetForUpdate).
func (r *TxRunner) Run(ctx context.Context, fn func(repos repository.Repositories) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w: %w", domain.ErrDatabase, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewRepositories(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w: %w", domain.ErrDatabase, err)
	}
	return nil
}

// NewRepositories ata todos los repositorios a q (pool para lecturas, tx dentro de Run).
func NewRepositories(q Querier) repository.Repositories {
	return repository.Repositories{
		Products:  NewProductRepository(q),
		Movements: NewStockMovementRepository(q),
		Sales:     NewSaleRepository(q),
		Sessions:  NewCashSessionRepository(q),
		Accounts:  NewMemberAccountRepository(q),
	}
}
