package entity

// Broker intermediario comercial.
type Broker struct {
	Name  string `json:"name"`
	Code  string `json:"code"`
	Phone string `json:"phone,omitempty"`
}
