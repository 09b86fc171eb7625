package lifecycle

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jhoicas/textile-stock-api/internal/domain"
	"github.com/shopspring/decimal"
)

// StatsScale decimales del promedio. Todos los adaptadores redondean igual.
const StatsScale = 4

// FieldStats agregados de un campo numérico de negocio. Sin valores, Min/Max/Avg quedan en cero.
type FieldStats struct {
	Field string          `json:"field"`
	Count int64           `json:"count"`
	Min   decimal.Decimal `json:"min"`
	Max   decimal.Decimal `json:"max"`
	Avg   decimal.Decimal `json:"avg"`
}

// Aggregator capacidad opcional de un Store: agrega un campo numérico en el propio motor.
// Los valores que no son números (ni texto numérico) se ignoran.
type Aggregator interface {
	Aggregate(ctx context.Context, f Filter, field string) (FieldStats, error)
}

// AggregateDocs calcula los agregados en memoria sobre documentos ya filtrados.
func AggregateDocs(docs []*Document, field string) FieldStats {
	st := FieldStats{Field: field}
	sum := decimal.Zero
	for _, doc := range docs {
		v, ok := toDecimal(doc.Fields[field])
		if !ok {
			continue
		}
		if st.Count == 0 || v.LessThan(st.Min) {
			st.Min = v
		}
		if st.Count == 0 || v.GreaterThan(st.Max) {
			st.Max = v
		}
		sum = sum.Add(v)
		st.Count++
	}
	st.Avg = Average(sum, st.Count)
	return st
}

// Average promedio redondeado a StatsScale; cero si no hay valores.
func Average(sum decimal.Decimal, count int64) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return sum.Div(decimal.NewFromInt(count)).Round(StatsScale)
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n), true
	case float32:
		return decimal.NewFromFloat32(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int32:
		return decimal.NewFromInt32(n), true
	case int64:
		return decimal.NewFromInt(n), true
	case decimal.Decimal:
		return n, true
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	case string:
		if strings.TrimSpace(n) == "" {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(n)
		return d, err == nil
	default:
		return decimal.Zero, false
	}
}

// Stats agrega campos numéricos sobre los registros vivos y activos que cumplen la consulta.
// Usa el motor del Store si implementa Aggregator; si no, agrega el resultado de Find.
func (p *Policy[T]) Stats(ctx context.Context, q Query, fields ...string) (out []FieldStats, err error) {
	defer func() { p.observe(OpStats, err) }()
	for _, field := range fields {
		if field == "" || IsReserved(field) {
			return nil, fmt.Errorf("%w: campo %q no agregable", domain.ErrInvalidInput, field)
		}
	}
	f := Filter{Match: NormalizeQuery(q), State: StateLive, ActiveOnly: true}
	out = make([]FieldStats, 0, len(fields))

	if agg, ok := p.store.(Aggregator); ok {
		for _, field := range fields {
			st, err := agg.Aggregate(ctx, f, field)
			if err != nil {
				return nil, err
			}
			out = append(out, st)
		}
		return out, nil
	}

	docs, err := p.store.Find(ctx, f)
	if err != nil {
		return nil, err
	}
	for _, field := range fields {
		out = append(out, AggregateDocs(docs, field))
	}
	return out, nil
}
