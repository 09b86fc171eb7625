package entity

// Tipos de Khata.
const (
	KhataInternal = "internal"
	KhataExternal = "external"
)

// Khata cuenta de producción (propia o de un tercero) asociada a una Location.
// LocationName es una copia tomada al escribir; no se sincroniza si la Location cambia.
type Khata struct {
	Name         string `json:"name"`
	Code         string `json:"code"`
	Description  string `json:"description,omitempty"`
	Type         string `json:"type"`
	LocationID   string `json:"locationID"`
	LocationName string `json:"locationName"`
}
