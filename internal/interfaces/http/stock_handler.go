package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Caisse-api/internal/application/dto"
	"github.com/jhoicas/Caisse-api/internal/application/inventory"
	"github.com/jhoicas/Caisse-api/internal/domain/entity"
	"github.com/jhoicas/Caisse-api/internal/domain/repository"
)

// StockHandler maneja las peticiones HTTP del libro de stock (protegido).
type StockHandler struct {
	uc            *inventory.MovementUseCase
	replenishment *inventory.ReplenishmentUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *inventory.MovementUseCase, replenishment *inventory.ReplenishmentUseCase) *StockHandler {
	return &StockHandler{uc: uc, replenishment: replenishment}
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de stock
// @Description  in, out, adjustment, inventory_count, loss o transfer. El motivo es obligatorio
// @Description  salvo en in/out. Un stock resultante negativo responde 409 INSUFFICIENT_STOCK.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "product_id, kind, quantity, reason"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/movements [post]
func (h *StockHandler) RegisterMovement(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	mov, err := h.uc.ApplyMovementFromRequest(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromMovement(mov))
}

// ListMovements godoc
// @Summary      Listar movimientos
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  false  "Producto"
// @Param        kind        query  string  false  "Tipo"
// @Param        actor_id    query  string  false  "Actor"
// @Param        from        query  string  false  "Desde (RFC3339 o YYYY-MM-DD)"
// @Param        to          query  string  false  "Hasta (RFC3339 o YYYY-MM-DD)"
// @Param        limit       query  int     false  "Límite"  default(50)
// @Param        offset      query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/movements [get]
func (h *StockHandler) ListMovements(c *fiber.Ctx) error {
	from, to, err := queryRange(c)
	if err != nil {
		return respondError(c, err)
	}
	filter := repository.MovementFilter{
		ProductID: c.Query("product_id"),
		Kind:      entity.MovementKind(c.Query("kind")),
		ActorID:   c.Query("actor_id"),
		From:      from,
		To:        to,
		Limit:     c.QueryInt("limit", 0),
		Offset:    c.QueryInt("offset", 0),
	}
	list, total, err := h.uc.ListMovements(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, dto.FromMovement(m))
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	return c.JSON(dto.MovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: filter.Offset, Total: total},
	})
}

// Totals godoc
// @Summary      Totales de movimientos por tipo
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id    path   string  true   "ID del producto"
// @Param        from  query  string  false  "Desde"
// @Param        to    query  string  false  "Hasta"
// @Success      200  {array}   dto.MovementTotalResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/products/{id}/totals [get]
func (h *StockHandler) Totals(c *fiber.Ctx) error {
	from, to, err := queryRange(c)
	if err != nil {
		return respondError(c, err)
	}
	totals, err := h.uc.MovementTotals(c.UserContext(), c.Params("id"), from, to)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.MovementTotalResponse, 0, len(totals))
	for _, t := range totals {
		out = append(out, dto.MovementTotalResponse{Kind: string(t.Kind), Count: t.Count, Quantity: t.Quantity})
	}
	return c.JSON(out)
}

// Count godoc
// @Summary      Conteo de inventario
// @Description  Fija el stock al valor contado con un movimiento inventory_count (también con delta 0).
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string            true  "ID del producto"
// @Param        body  body  dto.CountRequest  true  "counted, reason"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stock/products/{id}/count [post]
func (h *StockHandler) Count(c *fiber.Ctx) error {
	var in dto.CountRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	mov, err := h.uc.CountInventory(c.UserContext(), inventory.CountInput{
		ProductID: c.Params("id"),
		Counted:   in.Counted,
		ActorID:   GetUserID(c),
		Reason:    in.Reason,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromMovement(mov))
}

// Receive godoc
// @Summary      Recepción de compra
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true  "ID del producto"
// @Param        body  body  dto.ReceiptRequest  true  "quantity, purchase_order_ref, unit_cost"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stock/products/{id}/receipts [post]
func (h *StockHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceiptRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	mov, err := h.uc.ReceivePurchase(c.UserContext(), inventory.ReceiptInput{
		ProductID:        c.Params("id"),
		Quantity:         in.Quantity,
		UnitCost:         in.UnitCost,
		PurchaseOrderRef: in.PurchaseOrderRef,
		ActorID:          GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromMovement(mov))
}

// Consistency godoc
// @Summary      Verificar consistencia del stock
// @Description  Compara el stock actual con el stock_after del último movimiento.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/products/{id}/consistency [get]
func (h *StockHandler) Consistency(c *fiber.Ctx) error {
	id := c.Params("id")
	ok, err := h.uc.CheckConsistency(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"product_id": id, "consistent": ok})
}

// GetReplenishmentList godoc
// @Summary      Lista de reposición
// @Description  Productos activos en o bajo el umbral con la cantidad sugerida de pedido,
// @Description  ordenados por prioridad.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/stock/replenishment [get]
func (h *StockHandler) GetReplenishmentList(c *fiber.Ctx) error {
	list, err := h.replenishment.GenerateReplenishmentList(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"total":          len(list),
		"replenishments": list,
	})
}
