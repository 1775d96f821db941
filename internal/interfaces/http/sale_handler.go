package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Caisse-api/internal/application/dto"
	"github.com/jhoicas/Caisse-api/internal/application/sales"
	"github.com/jhoicas/Caisse-api/internal/domain/entity"
	"github.com/jhoicas/Caisse-api/internal/domain/repository"
)

// SaleHandler maneja ventas y anulaciones (protegido).
type SaleHandler struct {
	uc *sales.SaleUseCase
}

// NewSaleHandler construye el handler.
func NewSaleHandler(uc *sales.SaleUseCase) *SaleHandler {
	return &SaleHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar venta
// @Description  El cajero es el actor autenticado. Cheque y tarjeta exigen payment_ref.
// @Description  Si una línea no tiene stock suficiente no se escribe nada (409).
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSaleRequest  true  "Venta"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	lines := make([]sales.LineInput, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, sales.LineInput{ProductID: l.ProductID, Quantity: l.Quantity, UnitPrice: l.UnitPrice})
	}
	sale, err := h.uc.CreateSale(c.UserContext(), sales.CreateSaleInput{
		BuyerID:     in.BuyerID,
		CashierID:   GetUserID(c),
		PaymentKind: entity.PaymentKind(in.PaymentKind),
		PaymentRef:  in.PaymentRef,
		Amount:      in.Amount,
		Lines:       lines,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromSale(sale))
}

// GetByID godoc
// @Summary      Obtener venta con sus líneas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la transacción"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	sale, err := h.uc.GetSale(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromSale(sale))
}

// List godoc
// @Summary      Listar ventas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        cashier_id    query  string  false  "Cajero"
// @Param        buyer_id      query  string  false  "Socio comprador"
// @Param        payment_kind  query  string  false  "Modo de pago"
// @Param        status        query  string  false  "valid | cancelled"
// @Param        from          query  string  false  "Desde"
// @Param        to            query  string  false  "Hasta"
// @Param        limit         query  int     false  "Límite"  default(50)
// @Param        offset        query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.SaleListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/sales [get]
func (h *SaleHandler) List(c *fiber.Ctx) error {
	from, to, err := queryRange(c)
	if err != nil {
		return respondError(c, err)
	}
	filter := repository.SaleFilter{
		CashierID:   c.Query("cashier_id"),
		BuyerID:     c.Query("buyer_id"),
		PaymentKind: entity.PaymentKind(c.Query("payment_kind")),
		Status:      c.Query("status"),
		From:        from,
		To:          to,
		Limit:       c.QueryInt("limit", 50),
		Offset:      c.QueryInt("offset", 0),
	}
	list, err := h.uc.ListSales(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}
	items := make([]dto.SaleResponse, 0, len(list))
	for _, s := range list {
		items = append(items, dto.FromSale(s))
	}
	return c.JSON(dto.SaleListResponse{Items: items, Page: dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset}})
}

// Cancel godoc
// @Summary      Anular venta
// @Description  Repone el stock de cada línea y acredita al socio. Motivo de al menos 5 caracteres.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID de la transacción"
// @Param        body  body  dto.CancelSaleRequest  true  "reason"
// @Success      200   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/cancel [post]
func (h *SaleHandler) Cancel(c *fiber.Ctx) error {
	var in dto.CancelSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	id := c.Params("id")
	if err := h.uc.CancelSale(c.UserContext(), sales.CancelInput{TransactionID: id, ActorID: GetUserID(c), Reason: in.Reason}); err != nil {
		return respondError(c, err)
	}
	sale, err := h.uc.GetSale(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromSale(sale))
}
