package entity

// Location planta, bodega o sede física.
type Location struct {
	Name      string `json:"name"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	StateCode string `json:"stateCode"`
	PinCode   string `json:"pinCode"`
}
