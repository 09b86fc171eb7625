package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jhoicas/textile-stock-api/internal/application/auth"
	"github.com/jhoicas/textile-stock-api/internal/application/dto"
	"github.com/jhoicas/textile-stock-api/internal/application/masters"
	"github.com/jhoicas/textile-stock-api/internal/domain/entity"
	"github.com/jhoicas/textile-stock-api/internal/infrastructure/metrics"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC     *auth.AuthUseCase
	QualityUC  *masters.MasterUseCase[entity.Quality]
	LocationUC *masters.MasterUseCase[entity.Location]
	KhataUC    *masters.MasterUseCase[entity.Khata]
	BrokerUC   *masters.MasterUseCase[entity.Broker]
	Catalog    *masters.QualityCatalog // opcional
	Metrics    *metrics.Metrics        // opcional
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))
	}

	api := app.Group("/api")

	// Auth (público salvo /me)
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/refresh", authHandler.Refresh)
	authGroup.Get("/me", AuthMiddleware(deps.JWTSecret), authHandler.Me)

	// Maestros (protegido)
	mastersGroup := api.Group("/masters", AuthMiddleware(deps.JWTSecret))

	quality := mastersGroup.Group("/quality")
	if deps.Catalog != nil {
		quality.Get("/catalog.pdf", NewCatalogHandler(deps.Catalog).QualityCatalog)
	}
	NewMasterHandler[entity.Quality, dto.CreateQualityRequest, dto.UpdateQualityRequest](deps.QualityUC).
		Mount(quality)
	NewMasterHandler[entity.Location, dto.CreateLocationRequest, dto.UpdateLocationRequest](deps.LocationUC).
		Mount(mastersGroup.Group("/location"))
	NewMasterHandler[entity.Khata, dto.CreateKhataRequest, dto.UpdateKhataRequest](deps.KhataUC).
		Mount(mastersGroup.Group("/khata"))
	NewMasterHandler[entity.Broker, dto.CreateBrokerRequest, dto.UpdateBrokerRequest](deps.BrokerUC).
		Mount(mastersGroup.Group("/broker"))
}
