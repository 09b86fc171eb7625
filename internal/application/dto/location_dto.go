package dto

import (
	"github.com/asaskevich/govalidator"
	"github.com/jhoicas/textile-stock-api/internal/domain/entity"
	"github.com/jhoicas/textile-stock-api/internal/domain/lifecycle"
)

// CreateLocationRequest entrada para crear una ubicación.
type CreateLocationRequest struct {
	Name      string `json:"name"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	StateCode string `json:"stateCode"`
	PinCode   string `json:"pinCode"`
	IsActive  *bool  `json:"isActive"`
}

// Validate reglas de la ubicación.
func (r CreateLocationRequest) Validate() error {
	if err := requiredString("name", r.Name, 100); err != nil {
		return err
	}
	if err := optionalString("address", &r.Address, 200); err != nil {
		return err
	}
	if err := requiredString("city", r.City, 100); err != nil {
		return err
	}
	if err := requiredString("state", r.State, 100); err != nil {
		return err
	}
	if err := validStateCode(&r.StateCode); err != nil {
		return err
	}
	return validPinCode(&r.PinCode)
}

// Entity construye la ubicación.
func (r CreateLocationRequest) Entity() entity.Location {
	return entity.Location{
		Name:      r.Name,
		Address:   r.Address,
		City:      r.City,
		State:     r.State,
		StateCode: r.StateCode,
		PinCode:   r.PinCode,
	}
}

// Active estado de negocio inicial (nil = activo).
func (r CreateLocationRequest) Active() *bool { return r.IsActive }

// UpdateLocationRequest actualización parcial de una ubicación.
type UpdateLocationRequest struct {
	Name      *string `json:"name"`
	Address   *string `json:"address"`
	City      *string `json:"city"`
	State     *string `json:"state"`
	StateCode *string `json:"stateCode"`
	PinCode   *string `json:"pinCode"`
	IsActive  *bool   `json:"isActive"`
}

// Validate valida solo los campos presentes.
func (r UpdateLocationRequest) Validate() error {
	for field, v := range map[string]*string{"name": r.Name, "city": r.City, "state": r.State} {
		if v != nil {
			if err := requiredString(field, *v, 100); err != nil {
				return err
			}
		}
	}
	if err := optionalString("address", r.Address, 200); err != nil {
		return err
	}
	if r.StateCode != nil {
		if err := validStateCode(r.StateCode); err != nil {
			return err
		}
	}
	return validPinCode(r.PinCode)
}

// Patch campos presentes con nombres JSON.
func (r UpdateLocationRequest) Patch() lifecycle.Patch {
	p := patchBuilder{}
	p.str("name", r.Name)
	p.str("address", r.Address)
	p.str("city", r.City)
	p.str("state", r.State)
	p.str("stateCode", r.StateCode)
	p.str("pinCode", r.PinCode)
	p.boolean(lifecycle.FieldIsActive, r.IsActive)
	return lifecycle.Patch(p)
}

// validStateCode código de estado GST: dos dígitos.
func validStateCode(code *string) error {
	if len(*code) != 2 || !govalidator.IsNumeric(*code) {
		return invalid("stateCode debe tener 2 dígitos")
	}
	return nil
}

// validPinCode PIN postal opcional de 6 dígitos.
func validPinCode(code *string) error {
	if code == nil || *code == "" {
		return nil
	}
	if len(*code) != 6 || !govalidator.IsNumeric(*code) {
		return invalid("pinCode debe tener 6 dígitos")
	}
	return nil
}
