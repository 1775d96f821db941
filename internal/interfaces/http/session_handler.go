package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Caisse-api/internal/application/cashsession"
	"github.com/jhoicas/Caisse-api/internal/application/dto"
	"github.com/jhoicas/Caisse-api/internal/domain/entity"
	"github.com/jhoicas/Caisse-api/internal/domain/repository"
)

// SessionHandler maneja el ciclo de vida de las sesiones de caja (protegido).
type SessionHandler struct {
	uc     *cashsession.SessionUseCase
	report *cashsession.ReportUseCase
}

// NewSessionHandler construye el handler.
func NewSessionHandler(uc *cashsession.SessionUseCase, report *cashsession.ReportUseCase) *SessionHandler {
	return &SessionHandler{uc: uc, report: report}
}

// OpenFund godoc
// @Summary      Entregar fondo de caja
// @Description  El supervisor autenticado entrega el fondo; la sesión queda en pending_cashier.
// @Tags         sessions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OpenFundRequest  true  "cashier_id, initial_fund"
// @Success      201   {object}  dto.SessionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sessions [post]
func (h *SessionHandler) OpenFund(c *fiber.Ctx) error {
	var in dto.OpenFundRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	s, err := h.uc.OpenFund(c.UserContext(), cashsession.OpenFundInput{
		SupervisorID: GetUserID(c),
		CashierID:    in.CashierID,
		InitialFund:  in.InitialFund,
		Note:         in.Note,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromSession(s))
}

// Accept godoc
// @Summary      Aceptar fondo de caja
// @Tags         sessions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string           true   "ID de la sesión"
// @Param        body  body  dto.NoteRequest  false  "nota"
// @Success      200   {object}  dto.SessionResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sessions/{id}/accept [post]
func (h *SessionHandler) Accept(c *fiber.Ctx) error {
	var in dto.NoteRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	s, err := h.uc.AcceptFund(c.UserContext(), c.Params("id"), GetUserID(c), in.Note)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromSession(s))
}

// Expected godoc
// @Summary      Saldo esperado en caja
// @Tags         sessions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la sesión"
// @Success      200  {object}  dto.ExpectedBalanceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sessions/{id}/expected [get]
func (h *SessionHandler) Expected(c *fiber.Ctx) error {
	id := c.Params("id")
	expected, err := h.uc.ComputeExpectedBalance(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ExpectedBalanceResponse{SessionID: id, Expected: expected})
}

// Close godoc
// @Summary      Declarar cierre de caja
// @Tags         sessions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID de la sesión"
// @Param        body  body  dto.DeclareClosingRequest  true  "declared_balance"
// @Success      200   {object}  dto.SessionResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sessions/{id}/close [post]
func (h *SessionHandler) Close(c *fiber.Ctx) error {
	var in dto.DeclareClosingRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	s, err := h.uc.DeclareClosing(c.UserContext(), cashsession.DeclareInput{
		SessionID:       c.Params("id"),
		CashierID:       GetUserID(c),
		DeclaredBalance: in.DeclaredBalance,
		Note:            in.Note,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromSession(s))
}

// Validate godoc
// @Summary      Validar cierre de caja
// @Description  Solo el supervisor que abrió la sesión. outcome: validated | anomaly.
// @Tags         sessions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true  "ID de la sesión"
// @Param        body  body  dto.ValidateClosingRequest  true  "validated_balance, outcome"
// @Success      200   {object}  dto.SessionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sessions/{id}/validate [post]
func (h *SessionHandler) Validate(c *fiber.Ctx) error {
	var in dto.ValidateClosingRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	s, err := h.uc.ValidateClosing(c.UserContext(), cashsession.ValidateInput{
		SessionID:        c.Params("id"),
		SupervisorID:     GetUserID(c),
		ValidatedBalance: in.ValidatedBalance,
		Outcome:          entity.SessionStatus(in.Outcome),
		Note:             in.Note,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromSession(s))
}

// Active godoc
// @Summary      Sesión activa del cajero
// @Description  Sin cashier_id se usa el actor autenticado.
// @Tags         sessions
// @Security     Bearer
// @Produce      json
// @Param        cashier_id  query  string  false  "Cajero"
// @Success      200  {object}  dto.SessionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sessions/active [get]
func (h *SessionHandler) Active(c *fiber.Ctx) error {
	cashierID := c.Query("cashier_id", GetUserID(c))
	s, err := h.uc.ActiveSession(c.UserContext(), cashierID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromSession(s))
}

// Pending godoc
// @Summary      Sesiones pendientes de validación del supervisor autenticado
// @Tags         sessions
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.SessionResponse
// @Router       /api/sessions/pending [get]
func (h *SessionHandler) Pending(c *fiber.Ctx) error {
	list, err := h.uc.PendingValidation(c.UserContext(), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toSessionResponses(list))
}

// List godoc
// @Summary      Listar sesiones
// @Tags         sessions
// @Security     Bearer
// @Produce      json
// @Param        cashier_id     query  string  false  "Cajero"
// @Param        supervisor_id  query  string  false  "Supervisor"
// @Param        status         query  string  false  "Estado"
// @Param        limit          query  int     false  "Límite"  default(50)
// @Param        offset         query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.SessionListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/sessions [get]
func (h *SessionHandler) List(c *fiber.Ctx) error {
	filter := repository.SessionFilter{
		CashierID:    c.Query("cashier_id"),
		SupervisorID: c.Query("supervisor_id"),
		Status:       entity.SessionStatus(c.Query("status")),
		Limit:        c.QueryInt("limit", 50),
		Offset:       c.QueryInt("offset", 0),
	}
	list, err := h.uc.ListSessions(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SessionListResponse{
		Items: toSessionResponses(list),
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset},
	})
}

// GetByID godoc
// @Summary      Obtener sesión
// @Tags         sessions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la sesión"
// @Success      200  {object}  dto.SessionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sessions/{id} [get]
func (h *SessionHandler) GetByID(c *fiber.Ctx) error {
	s, err := h.uc.GetSession(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromSession(s))
}

// Report godoc
// @Summary      Resumen de la sesión
// @Tags         sessions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la sesión"
// @Success      200  {object}  dto.SessionReportResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sessions/{id}/report [get]
func (h *SessionHandler) Report(c *fiber.Ctx) error {
	r, err := h.report.SessionReport(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toReportResponse(r))
}

// ReportPDF godoc
// @Summary      Resumen de la sesión en PDF
// @Tags         sessions
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la sesión"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sessions/{id}/report.pdf [get]
func (h *SessionHandler) ReportPDF(c *fiber.Ctx) error {
	pdf, filename, err := h.report.SessionReportPDF(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdf)
}

func toSessionResponses(list []*entity.CashSession) []dto.SessionResponse {
	out := make([]dto.SessionResponse, 0, len(list))
	for _, s := range list {
		out = append(out, dto.FromSession(s))
	}
	return out
}

func toReportResponse(r *cashsession.Report) dto.SessionReportResponse {
	out := dto.SessionReportResponse{
		Session:     dto.FromSession(r.Session),
		CashSales:   r.CashSales,
		ChangeGiven: r.ChangeGiven,
		Expected:    r.Expected,
		CountByKind: make(map[string]int, len(r.CountByKind)),
		TotalByKind: make(map[string]decimal.Decimal, len(r.TotalByKind)),
		GeneratedAt: r.GeneratedAt,
	}
	for k, n := range r.CountByKind {
		out.CountByKind[string(k)] = n
	}
	for k, v := range r.TotalByKind {
		out.TotalByKind[string(k)] = v
	}
	return out
}
