package ports

import (
	"context"

	"github.com/jhoicas/Caisse-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Cualquier error devuelto por fn (o la cancelación de ctx) hace Rollback; nil hace Commit.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos repository.Repositories) error) error
}
