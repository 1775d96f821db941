package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Caisse-api/internal/application/account"
	"github.com/jhoicas/Caisse-api/internal/application/dto"
)

// AccountHandler maneja las cuentas de socios (protegido).
type AccountHandler struct {
	uc *account.AccountUseCase
}

// NewAccountHandler construye el handler.
func NewAccountHandler(uc *account.AccountUseCase) *AccountHandler {
	return &AccountHandler{uc: uc}
}

// Open godoc
// @Summary      Abrir cuenta de socio
// @Description  Idempotente: si la cuenta existe se devuelve sin cambios.
// @Tags         accounts
// @Security     Bearer
// @Produce      json
// @Param        member  path  string  true  "ID del socio"
// @Success      200  {object}  dto.AccountResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/accounts/{member} [post]
func (h *AccountHandler) Open(c *fiber.Ctx) error {
	acc, err := h.uc.OpenAccount(c.UserContext(), c.Params("member"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromAccount(acc))
}

// Get godoc
// @Summary      Saldo del socio
// @Tags         accounts
// @Security     Bearer
// @Produce      json
// @Param        member  path  string  true  "ID del socio"
// @Success      200  {object}  dto.AccountResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/accounts/{member} [get]
func (h *AccountHandler) Get(c *fiber.Ctx) error {
	acc, err := h.uc.GetAccount(c.UserContext(), c.Params("member"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromAccount(acc))
}

// Adjust godoc
// @Summary      Ajuste manual de saldo
// @Tags         accounts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        member  path  string                    true  "ID del socio"
// @Param        body    body  dto.AdjustBalanceRequest  true  "amount con signo, reason"
// @Success      201     {object}  dto.AccountEntryResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/accounts/{member}/adjust [post]
func (h *AccountHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustBalanceRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	entry, err := h.uc.AdjustBalance(c.UserContext(), account.AdjustInput{
		MemberID: c.Params("member"),
		Amount:   in.Amount,
		Reason:   in.Reason,
		ActorID:  GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromAccountEntry(entry))
}

// Entries godoc
// @Summary      Diario de la cuenta
// @Tags         accounts
// @Security     Bearer
// @Produce      json
// @Param        member  path   string  true   "ID del socio"
// @Param        limit   query  int     false  "Límite"  default(50)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.AccountEntryListResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/accounts/{member}/entries [get]
func (h *AccountHandler) Entries(c *fiber.Ctx) error {
	limit, offset := c.QueryInt("limit", 50), c.QueryInt("offset", 0)
	list, err := h.uc.ListEntries(c.UserContext(), c.Params("member"), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	items := make([]dto.AccountEntryResponse, 0, len(list))
	for _, e := range list {
		items = append(items, dto.FromAccountEntry(e))
	}
	return c.JSON(dto.AccountEntryListResponse{Items: items, Page: dto.PageResponse{Limit: limit, Offset: offset}})
}
