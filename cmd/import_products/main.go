package main

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/Caisse-api/internal/application/inventory"
	"github.com/jhoicas/Caisse-api/internal/application/usecase"
	"github.com/jhoicas/Caisse-api/internal/infrastructure/catalogcsv"
	"github.com/jhoicas/Caisse-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Caisse-api/pkg/config"
	"github.com/jhoicas/Caisse-api/pkg/logger"
)

// importActor actor registrado en los movimientos de stock inicial.
const importActor = "import"

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "uso: import_products <catalogo.csv>")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	f, err := os.Open(os.Args[1])
	if err != nil {
		log.Fatal().Err(err).Msg("abrir catálogo")
	}
	defer f.Close()

	products, rejected, err := catalogcsv.Read(f)
	if err != nil {
		log.Fatal().Err(err).Msg("leer catálogo")
	}
	for _, r := range rejected {
		log.Warn().Int("line", r.Line).Err(r.Err).Msg("fila rechazada")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	repos := postgres.NewRepositories(pool)
	txRunner := postgres.NewTxRunner(pool)
	stock := inventory.NewMovementUseCase(txRunner, repos.Products, repos.Movements, log, nil)
	productUC := usecase.NewProductUseCase(txRunner, repos.Products, stock)

	// Cada producto es independiente: alta y stock inicial en su propia transacción.
	var created, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, cfg.DB.MaxConns/2))
	for _, in := range products {
		in := in
		g.Go(func() error {
			if _, err := productUC.Create(gctx, importActor, in); err != nil {
				failed.Add(1)
				log.Warn().Err(err).Str("name", in.Name).Msg("producto no importado")
				return nil
			}
			created.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	log.Info().
		Int64("created", created.Load()).
		Int64("failed", failed.Load()).
		Int("rejected", len(rejected)).
		Msg("importación terminada")
	if failed.Load() > 0 || len(rejected) > 0 {
		os.Exit(1)
	}
}
