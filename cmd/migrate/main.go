package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/jhoicas/Caisse-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Caisse-api/pkg/config"
	"github.com/jhoicas/Caisse-api/pkg/logger"
)

const usage = "uso: migrate up | down [n] | version"

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	m, err := postgres.NewMigrator(cfg.DB.ConnectionString(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir migrador")
	}
	defer m.Close()

	switch os.Args[1] {
	case "up":
		err = m.Up()
	case "down":
		n := 1
		if len(os.Args) > 2 {
			if n, err = strconv.Atoi(os.Args[2]); err != nil || n <= 0 {
				log.Fatal().Str("n", os.Args[2]).Msg("n debe ser un entero positivo")
			}
		}
		err = m.Down(n)
	case "version":
		var (
			version uint
			dirty   bool
		)
		version, dirty, err = m.Version()
		if err == nil {
			log.Info().Uint("version", version).Bool("dirty", dirty).Msg("versión del esquema")
		}
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatal().Err(err).Str("command", os.Args[1]).Msg("migración fallida")
	}
}
