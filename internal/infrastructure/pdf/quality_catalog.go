// Package pdf genera el catálogo imprimible de calidades de tela.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título del catálogo │  Fecha de generación         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Calidad | HSN | GST% | Ancho | Peso | Reed x Picks   │
//	│         (una fila extra con urdimbre/trama por calidad)      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: Total de calidades activas                          │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"strings"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/textile-stock-api/internal/domain/entity"
	"github.com/jhoicas/textile-stock-api/internal/domain/lifecycle"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Renderer ──────────────────────────────────────────────────────────────────

// QualityCatalogRenderer implementa masters.CatalogRenderer usando Maroto v2.
type QualityCatalogRenderer struct {
	title string
}

// NewQualityCatalogRenderer construye el renderer; title vacío usa el título por defecto.
func NewQualityCatalogRenderer(title string) *QualityCatalogRenderer {
	return &QualityCatalogRenderer{title: nonEmpty(title, "Catálogo de calidades")}
}

// RenderQualityCatalog genera el PDF y devuelve sus bytes.
func (r *QualityCatalogRenderer) RenderQualityCatalog(
	qualities []*lifecycle.Record[entity.Quality],
	generatedAt time.Time,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(r.title, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(r.title, generatedAt))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	for _, q := range qualities {
		m.AddRows(qualityRows(q.Data)...)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(footerRow(len(qualities)))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar catálogo: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(title string, generatedAt time.Time) core.Row {
	return row.New(14).Add(
		col.New(8).Add(
			text.New(title, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
		),
		col.New(4).Add(
			text.New("Generado: "+generatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 3, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Calidad", 4, align.Left),
		h("HSN", 2, align.Center),
		h("GST%", 1, align.Center),
		h("Ancho", 1, align.Right),
		h("Peso std.", 2, align.Right),
		h("Reed x Picks", 2, align.Right),
	)
}

// qualityRows: fila principal y, si hay, una fila de detalle de hilos.
func qualityRows(q entity.Quality) []core.Row {
	cell := func(value string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(value, props.Text{
			Size: 8, Align: a, Top: 1, Left: 1, Right: 1,
		}))
	}
	rows := []core.Row{
		row.New(7).Add(
			cell(q.Name, 4, align.Left),
			cell(nonEmpty(q.HSNCode, "-"), 2, align.Center),
			cell(q.GSTRate.String(), 1, align.Center),
			cell(q.Width.String(), 1, align.Right),
			cell(q.StandardWeight.String(), 2, align.Right),
			cell(q.Reed.String()+" x "+q.Picks.String(), 2, align.Right),
		),
	}
	if yarn := yarnSummary(q); yarn != "" {
		rows = append(rows, row.New(5).Add(
			col.New(12).Add(text.New(yarn, props.Text{
				Size: 7, Top: 0.5, Left: 3, Color: colorGray,
			})),
		))
	}
	return rows
}

func footerRow(total int) core.Row {
	return row.New(8).Add(
		col.New(12).Add(text.New(fmt.Sprintf("Total de calidades activas: %d", total), props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 2,
		})),
	)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// yarnSummary resume urdimbre y trama como "Urdimbre: 75D/20 · Trama: 150D/0".
func yarnSummary(q entity.Quality) string {
	parts := make([]string, 0, 2)
	if s := yarnList(q.WarpDetails); s != "" {
		parts = append(parts, "Urdimbre: "+s)
	}
	if s := yarnList(q.WeftDetails); s != "" {
		parts = append(parts, "Trama: "+s)
	}
	return strings.Join(parts, "  ·  ")
}

func yarnList(components []entity.YarnComponent) string {
	out := make([]string, 0, len(components))
	for _, y := range components {
		out = append(out, y.Denier.String()+"D/"+y.TwistPerMeter.String())
	}
	return strings.Join(out, ", ")
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
