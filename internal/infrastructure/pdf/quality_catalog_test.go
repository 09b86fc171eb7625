package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/textile-stock-api/internal/domain/entity"
	"github.com/jhoicas/textile-stock-api/internal/domain/lifecycle"
)

func TestRenderQualityCatalog_GeneraPDF(t *testing.T) {
	q := &lifecycle.Record[entity.Quality]{Data: entity.Quality{
		Name:    "Georgette 60",
		HSNCode: "5407",
		GSTRate: decimal.NewFromInt(5),
		Width:   decimal.NewFromInt(44),
		WarpDetails: []entity.YarnComponent{
			{Denier: decimal.NewFromInt(75), TwistPerMeter: decimal.NewFromInt(20)},
		},
	}}

	out, err := NewQualityCatalogRenderer("").RenderQualityCatalog(
		[]*lifecycle.Record[entity.Quality]{q}, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRenderQualityCatalog_SinCalidades(t *testing.T) {
	out, err := NewQualityCatalogRenderer("Catálogo").RenderQualityCatalog(nil, time.Now())
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestYarnSummary(t *testing.T) {
	q := entity.Quality{
		WarpDetails: []entity.YarnComponent{{Denier: decimal.NewFromInt(75), TwistPerMeter: decimal.NewFromInt(20)}},
		WeftDetails: []entity.YarnComponent{
			{Denier: decimal.NewFromInt(150), TwistPerMeter: decimal.Zero},
			{Denier: decimal.NewFromInt(100), TwistPerMeter: decimal.NewFromInt(5)},
		},
	}
	assert.Equal(t, "Urdimbre: 75D/20  ·  Trama: 150D/0, 100D/5", yarnSummary(q))
	assert.Empty(t, yarnSummary(entity.Quality{}))
}
