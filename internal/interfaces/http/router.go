package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Caisse-api/internal/application/account"
	"github.com/jhoicas/Caisse-api/internal/application/auth"
	"github.com/jhoicas/Caisse-api/internal/application/authz"
	"github.com/jhoicas/Caisse-api/internal/application/cashsession"
	"github.com/jhoicas/Caisse-api/internal/application/inventory"
	"github.com/jhoicas/Caisse-api/internal/application/sales"
	"github.com/jhoicas/Caisse-api/internal/application/usecase"
	"github.com/jhoicas/Caisse-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC         *auth.AuthUseCase
	ProductUC      *usecase.ProductUseCase
	StockUC        *inventory.MovementUseCase
	Replenishment  *inventory.ReplenishmentUseCase
	SaleUC         *sales.SaleUseCase
	SessionUC      *cashsession.SessionUseCase
	ReportUC       *cashsession.ReportUseCase
	AccountUC      *account.AccountUseCase
	Permissions    permissionChecker
	JWTSecret      string
	Log            *logger.Logger
	// RequestTimeout plazo de cada petición bajo /api; 0 lo desactiva.
	RequestTimeout time.Duration
}

// Router registra las rutas de la API.
// Las rutas literales (/below-threshold, /active, /pending) van antes que /:id.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", RequestContext(deps.Log, deps.RequestTimeout))
	can := func(code string) fiber.Handler { return RequirePermission(deps.Permissions, code) }

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", can(authz.PermProductsWrite), productHandler.Create)
	products.Get("/", can(authz.PermProductsRead), productHandler.List)
	products.Get("/below-threshold", can(authz.PermProductsRead), productHandler.ListBelowThreshold)
	products.Get("/:id", can(authz.PermProductsRead), productHandler.GetByID)
	products.Put("/:id", can(authz.PermProductsWrite), productHandler.Update)
	products.Post("/:id/archive", can(authz.PermProductsWrite), productHandler.Archive)
	products.Delete("/:id", can(authz.PermProductsWrite), productHandler.Delete)

	stock := protected.Group("/stock")
	stockHandler := NewStockHandler(deps.StockUC, deps.Replenishment)
	stock.Post("/movements", can(authz.PermStockWrite), stockHandler.RegisterMovement)
	stock.Get("/movements", can(authz.PermStockRead), stockHandler.ListMovements)
	stock.Get("/replenishment", can(authz.PermStockRead), stockHandler.GetReplenishmentList)
	stock.Get("/products/:id/totals", can(authz.PermStockRead), stockHandler.Totals)
	stock.Get("/products/:id/consistency", can(authz.PermStockRead), stockHandler.Consistency)
	stock.Post("/products/:id/count", can(authz.PermStockWrite), stockHandler.Count)
	stock.Post("/products/:id/receipts", can(authz.PermStockWrite), stockHandler.Receive)

	salesGroup := protected.Group("/sales")
	saleHandler := NewSaleHandler(deps.SaleUC)
	salesGroup.Post("/", can(authz.PermSalesCreate), saleHandler.Create)
	salesGroup.Get("/", can(authz.PermSalesRead), saleHandler.List)
	salesGroup.Get("/:id", can(authz.PermSalesRead), saleHandler.GetByID)
	salesGroup.Post("/:id/cancel", can(authz.PermSalesCancel), saleHandler.Cancel)

	sessions := protected.Group("/sessions")
	sessionHandler := NewSessionHandler(deps.SessionUC, deps.ReportUC)
	sessions.Post("/", can(authz.PermSessionsOpen), sessionHandler.OpenFund)
	sessions.Get("/", can(authz.PermSessionsRead), sessionHandler.List)
	sessions.Get("/active", can(authz.PermSessionsOperate), sessionHandler.Active)
	sessions.Get("/pending", can(authz.PermSessionsValidate), sessionHandler.Pending)
	sessions.Get("/:id", can(authz.PermSessionsRead), sessionHandler.GetByID)
	sessions.Post("/:id/accept", can(authz.PermSessionsOperate), sessionHandler.Accept)
	sessions.Get("/:id/expected", can(authz.PermSessionsOperate), sessionHandler.Expected)
	sessions.Post("/:id/close", can(authz.PermSessionsOperate), sessionHandler.Close)
	sessions.Post("/:id/validate", can(authz.PermSessionsValidate), sessionHandler.Validate)
	sessions.Get("/:id/report", can(authz.PermSessionsRead), sessionHandler.Report)
	sessions.Get("/:id/report.pdf", can(authz.PermSessionsRead), sessionHandler.ReportPDF)

	accounts := protected.Group("/accounts")
	accountHandler := NewAccountHandler(deps.AccountUC)
	accounts.Post("/:member", can(authz.PermAccountsAdjust), accountHandler.Open)
	accounts.Get("/:member", can(authz.PermAccountsRead), accountHandler.Get)
	accounts.Post("/:member/adjust", can(authz.PermAccountsAdjust), accountHandler.Adjust)
	accounts.Get("/:member/entries", can(authz.PermAccountsRead), accountHandler.Entries)
}
