package masters

import (
	"context"
	"time"

	"github.com/jhoicas/textile-stock-api/internal/domain/entity"
	"github.com/jhoicas/textile-stock-api/internal/domain/lifecycle"
)

// CatalogRenderer genera el documento del catálogo de calidades.
type CatalogRenderer interface {
	RenderQualityCatalog(qualities []*lifecycle.Record[entity.Quality], generatedAt time.Time) ([]byte, error)
}

// QualityCatalog catálogo PDF de las calidades vivas y activas.
type QualityCatalog struct {
	qualities *MasterUseCase[entity.Quality]
	renderer  CatalogRenderer
	now       func() time.Time
}

// NewQualityCatalog construye el caso de uso del catálogo.
func NewQualityCatalog(qualities *MasterUseCase[entity.Quality], renderer CatalogRenderer) *QualityCatalog {
	return &QualityCatalog{qualities: qualities, renderer: renderer, now: time.Now}
}

// Generate devuelve los bytes del catálogo.
func (c *QualityCatalog) Generate(ctx context.Context) ([]byte, error) {
	list, err := c.qualities.ListActive(ctx, nil)
	if err != nil {
		return nil, err
	}
	return c.renderer.RenderQualityCatalog(list, c.now())
}
