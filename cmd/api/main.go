package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Caisse-api/internal/application/account"
	"github.com/jhoicas/Caisse-api/internal/application/auth"
	"github.com/jhoicas/Caisse-api/internal/application/authz"
	"github.com/jhoicas/Caisse-api/internal/application/cashsession"
	"github.com/jhoicas/Caisse-api/internal/application/inventory"
	"github.com/jhoicas/Caisse-api/internal/application/ports"
	"github.com/jhoicas/Caisse-api/internal/application/sales"
	"github.com/jhoicas/Caisse-api/internal/application/usecase"
	"github.com/jhoicas/Caisse-api/internal/infrastructure/cache"
	"github.com/jhoicas/Caisse-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/Caisse-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Caisse-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Caisse-api/internal/interfaces/http"
	"github.com/jhoicas/Caisse-api/pkg/config"
	"github.com/jhoicas/Caisse-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")
	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET requerido")
	}

	ctx := context.Background()

	if cfg.DB.AutoMigrate {
		migrator, err := postgres.NewMigrator(cfg.DB.ConnectionString(), log)
		if err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		if err := migrator.Up(); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		_ = migrator.Close()
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	var appMetrics ports.Metrics = ports.NopMetrics{}
	var promMetrics *metrics.Metrics
	if cfg.Metrics.Enabled {
		promMetrics = metrics.New()
		appMetrics = promMetrics
	}

	// Caché de permisos opcional: si Redis no responde se sigue sin caché.
	var permCache authz.PermissionCache
	if cfg.Redis.Enabled() {
		redisCache, err := cache.NewRedisPermissionCache(ctx, cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no disponible, permisos sin caché")
		} else {
			defer redisCache.Close()
			permCache = redisCache
		}
	}

	repos := postgres.NewRepositories(pool)
	txRunner := postgres.NewTxRunner(pool)

	stockUC := inventory.NewMovementUseCase(txRunner, repos.Products, repos.Movements, log, appMetrics)
	replenishmentUC := inventory.NewReplenishmentUseCase(repos.Products, repos.Movements)
	accountUC := account.NewAccountUseCase(txRunner, repos.Accounts, log, appMetrics)
	saleUC := sales.NewSaleUseCase(txRunner, repos.Sales, stockUC, accountUC, log, appMetrics)
	sessionUC := cashsession.NewSessionUseCase(txRunner, repos.Sessions, repos.Sales, saleUC, log, appMetrics)
	reportUC := cashsession.NewReportUseCase(sessionUC, infrapdf.NewSessionReportRenderer(cfg.App.Name))
	productUC := usecase.NewProductUseCase(txRunner, repos.Products, stockUC)

	userRepo := postgres.NewUserRepository(pool)
	permissions := authz.NewPermissionService(userRepo, permCache, log)
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
		TTL:    cfg.JWT.TTL,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  cfg.HTTP.RequestTimeout,
		WriteTimeout: cfg.HTTP.RequestTimeout,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	if promMetrics != nil {
		app.Use(httpRouter.MetricsMiddleware(promMetrics))
		app.Get(cfg.Metrics.Path, adaptor.HTTPHandler(promMetrics.Handler()))
	}

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Caisse API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		pingCtx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name, "database": "down"})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:         authUC,
		ProductUC:      productUC,
		StockUC:        stockUC,
		Replenishment:  replenishmentUC,
		SaleUC:         saleUC,
		SessionUC:      sessionUC,
		ReportUC:       reportUC,
		AccountUC:      accountUC,
		Permissions:    permissions,
		JWTSecret:      cfg.JWT.Secret,
		Log:            log.Component("http"),
		RequestTimeout: cfg.HTTP.RequestTimeout,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
