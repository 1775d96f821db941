package inventory

import (
	"context"

	"github.com/jhoicas/Caisse-api/internal/application/dto"
	"github.com/jhoicas/Caisse-api/internal/domain/entity"
)

// ApplyMovementFromRequest adapta el request HTTP al caso de uso ApplyMovement.
// El actor sale siempre de la identidad autenticada, nunca del body.
func (uc *MovementUseCase) ApplyMovementFromRequest(ctx context.Context, actorID string, in dto.RegisterMovementRequest) (*entity.StockMovement, error) {
	return uc.ApplyMovement(ctx, MovementInput{
		ProductID:        in.ProductID,
		Kind:             entity.MovementKind(in.Kind),
		Quantity:         in.Quantity,
		Reason:           in.Reason,
		ActorID:          actorID,
		PurchaseOrderRef: in.PurchaseOrderRef,
		UnitCost:         in.UnitCost,
	})
}
