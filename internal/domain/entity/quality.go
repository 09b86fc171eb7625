package entity

import "github.com/shopspring/decimal"

func init() {
	// Tarifas y medidas viajan como números JSON, igual que en los documentos existentes.
	decimal.MarshalJSONWithoutQuotes = true
}

// YarnComponent componente de hilo (urdimbre o trama) embebido en Quality.
type YarnComponent struct {
	Denier        decimal.Decimal `json:"denier"`
	TwistPerMeter decimal.Decimal `json:"twistPerMeter"`
	Weight        decimal.Decimal `json:"weight"`
}

// Quality calidad de tela: construcción, tarifas de proceso e impuestos.
// Los campos de auditoría viven en lifecycle.Audit.
type Quality struct {
	Name           string          `json:"name"`
	Reed           decimal.Decimal `json:"reed"`
	Picks          decimal.Decimal `json:"picks"`
	Ends           decimal.Decimal `json:"ends"`
	Width          decimal.Decimal `json:"width"`
	TotalDenier    decimal.Decimal `json:"totalDenier"`
	StandardWeight decimal.Decimal `json:"standardWeight"`
	Shrinkage      decimal.Decimal `json:"shrinkage"`
	WeavingRate    decimal.Decimal `json:"weavingRate"`
	WarpingRate    decimal.Decimal `json:"warpingRate"`
	PasaraiRate    decimal.Decimal `json:"pasaraiRate"`
	FoldingRate    decimal.Decimal `json:"foldingRate"`
	HSNCode        string          `json:"hsnCode"`
	GSTRate        decimal.Decimal `json:"gstRate"` // porcentaje
	Description    string          `json:"description,omitempty"`
	WarpDetails    []YarnComponent `json:"warpDetails"`
	WeftDetails    []YarnComponent `json:"weftDetails"`
}
