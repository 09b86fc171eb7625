package masters

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/textile-stock-api/internal/domain"
	"github.com/jhoicas/textile-stock-api/internal/domain/entity"
	"github.com/jhoicas/textile-stock-api/internal/domain/lifecycle"
	"github.com/jhoicas/textile-stock-api/pkg/logger"
)

// Nombres de colección.
const (
	CollectionQualities = "qualities"
	CollectionLocations = "locations"
	CollectionKhatas    = "khatas"
	CollectionBrokers   = "brokers"
)

// IndexedFields campos de negocio con índice propio por colección.
var IndexedFields = map[string][]string{
	CollectionQualities: {"hsnCode"},
	CollectionLocations: {"city", "stateCode"},
	CollectionKhatas:    {"code", "locationID"},
	CollectionBrokers:   {"code"},
}

// QualityNumeric tarifas y peso estándar resumidos en /quality/summary.
var QualityNumeric = []string{"standardWeight", "weavingRate", "warpingRate", "pasaraiRate", "foldingRate", "gstRate"}

// NewQualityUseCase calidades: filtros por name y hsnCode.
func NewQualityUseCase(p *lifecycle.Policy[entity.Quality], log *logger.Logger) *MasterUseCase[entity.Quality] {
	return NewMasterUseCase(p, log,
		WithFilterable[entity.Quality]("name", "hsnCode"),
		WithNumeric[entity.Quality](QualityNumeric...),
	)
}

// NewLocationUseCase ubicaciones: filtros por city y stateCode.
func NewLocationUseCase(p *lifecycle.Policy[entity.Location], log *logger.Logger) *MasterUseCase[entity.Location] {
	return NewMasterUseCase(p, log, WithFilterable[entity.Location]("name", "city", "stateCode"))
}

// NewBrokerUseCase intermediarios: filtro por code.
func NewBrokerUseCase(p *lifecycle.Policy[entity.Broker], log *logger.Logger) *MasterUseCase[entity.Broker] {
	return NewMasterUseCase(p, log, WithFilterable[entity.Broker]("name", "code"))
}

// NewKhataUseCase khatas: locationName se copia de la Location viva al escribir.
func NewKhataUseCase(p *lifecycle.Policy[entity.Khata], locations *lifecycle.Policy[entity.Location], log *logger.Logger) *MasterUseCase[entity.Khata] {
	resolve := func(ctx context.Context, locationID string) (string, error) {
		loc, err := locations.FindOneLive(ctx, locationID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return "", fmt.Errorf("%w: la ubicación %s no existe", domain.ErrInvalidInput, locationID)
			}
			return "", err
		}
		return loc.Data.Name, nil
	}
	return NewMasterUseCase(p, log,
		WithFilterable[entity.Khata]("name", "code", "type", "locationID"),
		WithBeforeCreate(func(ctx context.Context, k *entity.Khata) error {
			name, err := resolve(ctx, k.LocationID)
			if err != nil {
				return err
			}
			k.LocationName = name
			return nil
		}),
		WithBeforeUpdate[entity.Khata](func(ctx context.Context, patch lifecycle.Patch) error {
			delete(patch, "locationName")
			id, ok := patch["locationID"].(string)
			if !ok {
				return nil
			}
			name, err := resolve(ctx, id)
			if err != nil {
				return err
			}
			patch["locationName"] = name
			return nil
		}),
	)
}
