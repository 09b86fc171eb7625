package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/textile-stock-api/internal/application/dto"
)

// Columnas obligatorias de la cabecera; el orden en el archivo es libre.
var qualityColumns = []string{
	"name", "reed", "picks", "ends", "width", "totalDenier", "standardWeight",
	"weavingRate", "warpingRate", "pasaraiRate", "foldingRate", "hsnCode", "gstRate",
}

// decoder envuelve la entrada según la codificación del export (las hojas de cálculo
// en Windows suelen guardar en windows-1252).
func decoder(r io.Reader, charset string) (io.Reader, error) {
	switch strings.ToLower(charset) {
	case "", "utf-8", "utf8":
		return r, nil
	case "windows-1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	case "iso-8859-1", "latin1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("codificación no soportada %q", charset)
	}
}

// parseQualities lee el CSV de calidades. Las filas inválidas se reportan con su número de línea.
func parseQualities(r io.Reader) ([]dto.CreateQualityRequest, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("leer cabecera: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimPrefix(strings.TrimSpace(h), "\ufeff")] = i
	}
	for _, name := range qualityColumns {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("falta la columna %q", name)
		}
	}

	var out []dto.CreateQualityRequest
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		get := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		num := func(name string) (*decimal.Decimal, error) {
			raw := get(name)
			if raw == "" {
				return nil, nil
			}
			d, err := decimal.NewFromString(raw)
			if err != nil {
				return nil, fmt.Errorf("línea %d: %s no es numérico: %q", line, name, raw)
			}
			return &d, nil
		}

		q := dto.CreateQualityRequest{
			Name:        get("name"),
			HSNCode:     get("hsnCode"),
			Description: get("description"),
		}
		targets := map[string]**decimal.Decimal{
			"reed": &q.Reed, "picks": &q.Picks, "ends": &q.Ends, "width": &q.Width,
			"totalDenier": &q.TotalDenier, "standardWeight": &q.StandardWeight,
			"shrinkage": &q.Shrinkage, "weavingRate": &q.WeavingRate,
			"warpingRate": &q.WarpingRate, "pasaraiRate": &q.PasaraiRate,
			"foldingRate": &q.FoldingRate, "gstRate": &q.GSTRate,
		}
		for name, dst := range targets {
			if *dst, err = num(name); err != nil {
				return nil, err
			}
		}
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		out = append(out, q)
	}
}
