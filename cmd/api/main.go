package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	_ "github.com/jhoicas/textile-stock-api/docs"
	"github.com/jhoicas/textile-stock-api/internal/application/auth"
	"github.com/jhoicas/textile-stock-api/internal/application/masters"
	"github.com/jhoicas/textile-stock-api/internal/domain/entity"
	"github.com/jhoicas/textile-stock-api/internal/domain/lifecycle"
	"github.com/jhoicas/textile-stock-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/textile-stock-api/internal/infrastructure/pdf"
	"github.com/jhoicas/textile-stock-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/textile-stock-api/internal/interfaces/http"
	"github.com/jhoicas/textile-stock-api/pkg/config"
	"github.com/jhoicas/textile-stock-api/pkg/logger"
)

// @title                       Textile Stock API
// @version                     1.0
// @description                 Maestros de stock textil (calidades, ubicaciones, khatas, brokers) con borrado lógico y auditoría.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	if err := cfg.Validate(); err != nil {
		panic(err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	be, err := storage.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}
	defer be.Close()

	m := metrics.New()
	rec := lifecycle.WithRecorder(m)

	qualityPolicy := lifecycle.NewPolicy[entity.Quality](masters.CollectionQualities, be.Store(masters.CollectionQualities), rec)
	locationPolicy := lifecycle.NewPolicy[entity.Location](masters.CollectionLocations, be.Store(masters.CollectionLocations), rec)
	khataPolicy := lifecycle.NewPolicy[entity.Khata](masters.CollectionKhatas, be.Store(masters.CollectionKhatas), rec)
	brokerPolicy := lifecycle.NewPolicy[entity.Broker](masters.CollectionBrokers, be.Store(masters.CollectionBrokers), rec)

	qualityUC := masters.NewQualityUseCase(qualityPolicy, log)
	locationUC := masters.NewLocationUseCase(locationPolicy, log)
	khataUC := masters.NewKhataUseCase(khataPolicy, locationPolicy, log)
	brokerUC := masters.NewBrokerUseCase(brokerPolicy, log)

	// PDF: catálogo de calidades activas
	catalog := masters.NewQualityCatalog(qualityUC, infrapdf.NewQualityCatalogRenderer(""))

	authUC := auth.NewAuthUseCase(be.Users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		Issuer:     cfg.JWT.Issuer,
		AccessTTL:  time.Duration(cfg.JWT.Expiration) * time.Minute,
		RefreshTTL: time.Duration(cfg.JWT.RefreshDays) * 24 * time.Hour,
	})

	// Admin inicial: solo si hay credenciales configuradas.
	if cfg.Admin.Email != "" && cfg.Admin.Password != "" {
		created, err := authUC.SeedAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.Name)
		if err != nil {
			log.Fatal().Err(err).Msg("seed del administrador")
		}
		log.Info().Str("email", cfg.Admin.Email).Bool("created", created).Msg("administrador verificado")
	} else {
		log.Warn().Msg("ADMIN_EMAIL/ADMIN_PASSWORD no configurados, se omite el seed del administrador")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.HTTP.FrontendURL,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowCredentials: true,
	}))
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Textile Stock API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": cfg.Store.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:     authUC,
		QualityUC:  qualityUC,
		LocationUC: locationUC,
		KhataUC:    khataUC,
		BrokerUC:   brokerUC,
		Catalog:    catalog,
		Metrics:    m,
		JWTSecret:  cfg.JWT.Secret,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
