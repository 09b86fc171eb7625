package dto

import (
	"github.com/jhoicas/textile-stock-api/internal/domain/entity"
	"github.com/jhoicas/textile-stock-api/internal/domain/lifecycle"
)

// CreateBrokerRequest entrada para crear un intermediario.
type CreateBrokerRequest struct {
	Name     string `json:"name"`
	Code     string `json:"code"`
	Phone    string `json:"phone"`
	IsActive *bool  `json:"isActive"`
}

// Validate reglas del intermediario.
func (r CreateBrokerRequest) Validate() error {
	if err := requiredString("name", r.Name, 100); err != nil {
		return err
	}
	if err := requiredString("code", r.Code, 20); err != nil {
		return err
	}
	return optionalString("phone", &r.Phone, 20)
}

// Entity construye el intermediario.
func (r CreateBrokerRequest) Entity() entity.Broker {
	return entity.Broker{Name: r.Name, Code: r.Code, Phone: r.Phone}
}

// Active estado de negocio inicial (nil = activo).
func (r CreateBrokerRequest) Active() *bool { return r.IsActive }

// UpdateBrokerRequest actualización parcial de un intermediario.
type UpdateBrokerRequest struct {
	Name     *string `json:"name"`
	Code     *string `json:"code"`
	Phone    *string `json:"phone"`
	IsActive *bool   `json:"isActive"`
}

// Validate valida solo los campos presentes.
func (r UpdateBrokerRequest) Validate() error {
	if r.Name != nil {
		if err := requiredString("name", *r.Name, 100); err != nil {
			return err
		}
	}
	if r.Code != nil {
		if err := requiredString("code", *r.Code, 20); err != nil {
			return err
		}
	}
	return optionalString("phone", r.Phone, 20)
}

// Patch campos presentes con nombres JSON.
func (r UpdateBrokerRequest) Patch() lifecycle.Patch {
	p := patchBuilder{}
	p.str("name", r.Name)
	p.str("code", r.Code)
	p.str("phone", r.Phone)
	p.boolean(lifecycle.FieldIsActive, r.IsActive)
	return lifecycle.Patch(p)
}
