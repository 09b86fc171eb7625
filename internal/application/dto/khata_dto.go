package dto

import (
	"github.com/jhoicas/textile-stock-api/internal/domain/entity"
	"github.com/jhoicas/textile-stock-api/internal/domain/lifecycle"
)

// CreateKhataRequest entrada para crear una khata. locationName lo completa el servidor.
type CreateKhataRequest struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description"`
	Type        string `json:"type"`
	LocationID  string `json:"locationID"`
	IsActive    *bool  `json:"isActive"`
}

// Validate reglas de la khata.
func (r CreateKhataRequest) Validate() error {
	if err := requiredString("name", r.Name, 100); err != nil {
		return err
	}
	if err := requiredString("code", r.Code, 20); err != nil {
		return err
	}
	if err := optionalString("description", &r.Description, 500); err != nil {
		return err
	}
	if err := oneOf("type", r.Type, entity.KhataInternal, entity.KhataExternal); err != nil {
		return err
	}
	return requiredString("locationID", r.LocationID, 64)
}

// Entity construye la khata sin locationName.
func (r CreateKhataRequest) Entity() entity.Khata {
	return entity.Khata{
		Name:        r.Name,
		Code:        r.Code,
		Description: r.Description,
		Type:        r.Type,
		LocationID:  r.LocationID,
	}
}

// Active estado de negocio inicial (nil = activo).
func (r CreateKhataRequest) Active() *bool { return r.IsActive }

// UpdateKhataRequest actualización parcial de una khata.
type UpdateKhataRequest struct {
	Name        *string `json:"name"`
	Code        *string `json:"code"`
	Description *string `json:"description"`
	Type        *string `json:"type"`
	LocationID  *string `json:"locationID"`
	IsActive    *bool   `json:"isActive"`
}

// Validate valida solo los campos presentes.
func (r UpdateKhataRequest) Validate() error {
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
	if err := optionalString("description", r.Description, 500); err != nil {
		return err
	}
	if r.Type != nil {
		if err := oneOf("type", *r.Type, entity.KhataInternal, entity.KhataExternal); err != nil {
			return err
		}
	}
	if r.LocationID != nil {
		return requiredString("locationID", *r.LocationID, 64)
	}
	return nil
}

// Patch campos presentes con nombres JSON.
func (r UpdateKhataRequest) Patch() lifecycle.Patch {
	p := patchBuilder{}
	p.str("name", r.Name)
	p.str("code", r.Code)
	p.str("description", r.Description)
	p.str("type", r.Type)
	p.str("locationID", r.LocationID)
	p.boolean(lifecycle.FieldIsActive, r.IsActive)
	return lifecycle.Patch(p)
}
