package dto

import "github.com/jhoicas/textile-stock-api/internal/domain/lifecycle"

// SummaryResponse resumen numérico de una colección maestra.
type SummaryResponse struct {
	Collection string                 `json:"collection"`
	Fields     []lifecycle.FieldStats `json:"fields"`
}
