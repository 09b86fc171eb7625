package dto

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/asaskevich/govalidator"
	"github.com/jhoicas/textile-stock-api/internal/domain"
	"github.com/shopspring/decimal"
)

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, fmt.Sprintf(format, args...))
}

// requiredString exige texto no vacío de hasta max caracteres.
func requiredString(field, v string, max int) error {
	if !govalidator.StringLength(strings.TrimSpace(v), "1", strconv.Itoa(max)) {
		return invalid("%s es obligatorio (máx. %d caracteres)", field, max)
	}
	return nil
}

func optionalString(field string, v *string, max int) error {
	if v == nil || *v == "" {
		return nil
	}
	if !govalidator.StringLength(*v, "0", strconv.Itoa(max)) {
		return invalid("%s admite máx. %d caracteres", field, max)
	}
	return nil
}

// nonNegative valida un decimal >= 0; si required, nil es error.
func nonNegative(field string, d *decimal.Decimal, required bool) error {
	if d == nil {
		if required {
			return invalid("%s es obligatorio", field)
		}
		return nil
	}
	if d.IsNegative() {
		return invalid("%s no puede ser negativo", field)
	}
	return nil
}

func oneOf(field string, v string, allowed ...string) error {
	if !govalidator.IsIn(v, allowed...) {
		return invalid("%s debe ser uno de %s", field, strings.Join(allowed, ", "))
	}
	return nil
}

func deref(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

// patchBuilder acumula solo los campos presentes en una actualización parcial.
type patchBuilder map[string]any

func (p patchBuilder) str(key string, v *string) {
	if v != nil {
		p[key] = strings.TrimSpace(*v)
	}
}

func (p patchBuilder) dec(key string, v *decimal.Decimal) {
	if v != nil {
		p[key] = *v
	}
}

func (p patchBuilder) boolean(key string, v *bool) {
	if v != nil {
		p[key] = *v
	}
}
