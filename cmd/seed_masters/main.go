// seed_masters importa calidades de tela desde un CSV exportado de la hoja de cálculo
// de planta. Las calidades con un nombre ya vivo se omiten, así que puede re-ejecutarse.
//
// Uso: go run ./cmd/seed_masters -file calidades.csv [-charset windows-1252] [-dry-run]
//
// Usa el mismo STORE_DRIVER y la misma configuración que la API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/textile-stock-api/internal/application/masters"
	"github.com/jhoicas/textile-stock-api/internal/domain/entity"
	"github.com/jhoicas/textile-stock-api/internal/domain/lifecycle"
	"github.com/jhoicas/textile-stock-api/internal/infrastructure/storage"
	"github.com/jhoicas/textile-stock-api/pkg/config"
	"github.com/jhoicas/textile-stock-api/pkg/logger"
)

const seedActor = "seed"

func main() {
	file := flag.String("file", "calidades.csv", "ruta del CSV de calidades")
	charset := flag.String("charset", "utf-8", "codificación del CSV: utf-8 | windows-1252 | iso-8859-1")
	dryRun := flag.Bool("dry-run", false, "solo valida el archivo")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	f, err := os.Open(*file)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("abrir CSV")
	}
	defer f.Close()

	r, err := decoder(f, *charset)
	if err != nil {
		log.Fatal().Err(err).Msg("codificación")
	}
	rows, err := parseQualities(r)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("CSV inválido")
	}
	log.Info().Int("rows", len(rows)).Msg("CSV validado")
	if *dryRun {
		return
	}

	ctx := context.Background()
	be, err := storage.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}
	defer be.Close()

	uc := masters.NewQualityUseCase(
		lifecycle.NewPolicy[entity.Quality](masters.CollectionQualities, be.Store(masters.CollectionQualities)), log)

	created, skipped := 0, 0
	for _, q := range rows {
		existing, err := uc.List(ctx, map[string]string{"name": q.Name}, false)
		if err != nil {
			log.Fatal().Err(err).Str("name", q.Name).Msg("consultar calidad")
		}
		if len(existing) > 0 {
			skipped++
			continue
		}
		if _, err := uc.Create(ctx, q.Entity(), q.Active(), seedActor); err != nil {
			log.Fatal().Err(err).Str("name", q.Name).Msg("crear calidad")
		}
		created++
	}
	log.Info().Int("created", created).Int("skipped", skipped).Msg("importación terminada")
}
