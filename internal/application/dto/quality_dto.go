package dto

import (
	"github.com/asaskevich/govalidator"
	"github.com/jhoicas/textile-stock-api/internal/domain/entity"
	"github.com/jhoicas/textile-stock-api/internal/domain/lifecycle"
	"github.com/shopspring/decimal"
)

// YarnComponentRequest componente de hilo en la entrada.
type YarnComponentRequest struct {
	Denier        *decimal.Decimal `json:"denier"`
	TwistPerMeter *decimal.Decimal `json:"twistPerMeter"`
	Weight        *decimal.Decimal `json:"weight"`
}

func (y YarnComponentRequest) validate(field string) error {
	if err := nonNegative(field+".denier", y.Denier, true); err != nil {
		return err
	}
	if err := nonNegative(field+".twistPerMeter", y.TwistPerMeter, true); err != nil {
		return err
	}
	return nonNegative(field+".weight", y.Weight, true)
}

func yarnComponents(field string, in []YarnComponentRequest) ([]entity.YarnComponent, error) {
	out := make([]entity.YarnComponent, 0, len(in))
	for _, y := range in {
		if err := y.validate(field); err != nil {
			return nil, err
		}
		out = append(out, entity.YarnComponent{Denier: deref(y.Denier), TwistPerMeter: deref(y.TwistPerMeter), Weight: deref(y.Weight)})
	}
	return out, nil
}

// CreateQualityRequest entrada para crear una calidad.
type CreateQualityRequest struct {
	Name           string                 `json:"name"`
	Reed           *decimal.Decimal       `json:"reed"`
	Picks          *decimal.Decimal       `json:"picks"`
	Ends           *decimal.Decimal       `json:"ends"`
	Width          *decimal.Decimal       `json:"width"`
	TotalDenier    *decimal.Decimal       `json:"totalDenier"`
	StandardWeight *decimal.Decimal       `json:"standardWeight"`
	Shrinkage      *decimal.Decimal       `json:"shrinkage"`
	WeavingRate    *decimal.Decimal       `json:"weavingRate"`
	WarpingRate    *decimal.Decimal       `json:"warpingRate"`
	PasaraiRate    *decimal.Decimal       `json:"pasaraiRate"`
	FoldingRate    *decimal.Decimal       `json:"foldingRate"`
	HSNCode        string                 `json:"hsnCode"`
	GSTRate        *decimal.Decimal       `json:"gstRate"`
	Description    string                 `json:"description"`
	IsActive       *bool                  `json:"isActive"`
	WarpDetails    []YarnComponentRequest `json:"warpDetails"`
	WeftDetails    []YarnComponentRequest `json:"weftDetails"`
}

// measure campo decimal con su nombre JSON.
type measure struct {
	field string
	value *decimal.Decimal
}

// measures en el orden de declaración, para que el error reportado sea siempre el mismo.
func (r CreateQualityRequest) measures() []measure {
	return []measure{
		{"reed", r.Reed}, {"picks", r.Picks}, {"ends", r.Ends}, {"width", r.Width},
		{"totalDenier", r.TotalDenier}, {"standardWeight", r.StandardWeight},
		{"weavingRate", r.WeavingRate}, {"warpingRate", r.WarpingRate},
		{"pasaraiRate", r.PasaraiRate}, {"foldingRate", r.FoldingRate}, {"gstRate", r.GSTRate},
	}
}

// Validate reglas de negocio de la calidad.
func (r CreateQualityRequest) Validate() error {
	if err := requiredString("name", r.Name, 100); err != nil {
		return err
	}
	for _, m := range r.measures() {
		if err := nonNegative(m.field, m.value, true); err != nil {
			return err
		}
	}
	if err := nonNegative("shrinkage", r.Shrinkage, false); err != nil {
		return err
	}
	if err := validHSN(&r.HSNCode, true); err != nil {
		return err
	}
	if err := optionalString("description", &r.Description, 500); err != nil {
		return err
	}
	if _, err := yarnComponents("warpDetails", r.WarpDetails); err != nil {
		return err
	}
	_, err := yarnComponents("weftDetails", r.WeftDetails)
	return err
}

// Entity construye la calidad (shrinkage por defecto 0).
func (r CreateQualityRequest) Entity() entity.Quality {
	warp, _ := yarnComponents("warpDetails", r.WarpDetails)
	weft, _ := yarnComponents("weftDetails", r.WeftDetails)
	return entity.Quality{
		Name:           r.Name,
		Reed:           deref(r.Reed),
		Picks:          deref(r.Picks),
		Ends:           deref(r.Ends),
		Width:          deref(r.Width),
		TotalDenier:    deref(r.TotalDenier),
		StandardWeight: deref(r.StandardWeight),
		Shrinkage:      deref(r.Shrinkage),
		WeavingRate:    deref(r.WeavingRate),
		WarpingRate:    deref(r.WarpingRate),
		PasaraiRate:    deref(r.PasaraiRate),
		FoldingRate:    deref(r.FoldingRate),
		HSNCode:        r.HSNCode,
		GSTRate:        deref(r.GSTRate),
		Description:    r.Description,
		WarpDetails:    warp,
		WeftDetails:    weft,
	}
}

// Active estado de negocio inicial (nil = activo).
func (r CreateQualityRequest) Active() *bool { return r.IsActive }

// UpdateQualityRequest actualización parcial de una calidad.
type UpdateQualityRequest struct {
	Name           *string                `json:"name"`
	Reed           *decimal.Decimal       `json:"reed"`
	Picks          *decimal.Decimal       `json:"picks"`
	Ends           *decimal.Decimal       `json:"ends"`
	Width          *decimal.Decimal       `json:"width"`
	TotalDenier    *decimal.Decimal       `json:"totalDenier"`
	StandardWeight *decimal.Decimal       `json:"standardWeight"`
	Shrinkage      *decimal.Decimal       `json:"shrinkage"`
	WeavingRate    *decimal.Decimal       `json:"weavingRate"`
	WarpingRate    *decimal.Decimal       `json:"warpingRate"`
	PasaraiRate    *decimal.Decimal       `json:"pasaraiRate"`
	FoldingRate    *decimal.Decimal       `json:"foldingRate"`
	HSNCode        *string                `json:"hsnCode"`
	GSTRate        *decimal.Decimal       `json:"gstRate"`
	Description    *string                `json:"description"`
	IsActive       *bool                  `json:"isActive"`
	WarpDetails    []YarnComponentRequest `json:"warpDetails"`
	WeftDetails    []YarnComponentRequest `json:"weftDetails"`
}

func (r UpdateQualityRequest) measures() []measure {
	return []measure{
		{"reed", r.Reed}, {"picks", r.Picks}, {"ends", r.Ends}, {"width", r.Width},
		{"totalDenier", r.TotalDenier}, {"standardWeight", r.StandardWeight}, {"shrinkage", r.Shrinkage},
		{"weavingRate", r.WeavingRate}, {"warpingRate", r.WarpingRate},
		{"pasaraiRate", r.PasaraiRate}, {"foldingRate", r.FoldingRate}, {"gstRate", r.GSTRate},
	}
}

// Validate valida solo los campos presentes.
func (r UpdateQualityRequest) Validate() error {
	if r.Name != nil {
		if err := requiredString("name", *r.Name, 100); err != nil {
			return err
		}
	}
	for _, m := range r.measures() {
		if err := nonNegative(m.field, m.value, false); err != nil {
			return err
		}
	}
	if err := validHSN(r.HSNCode, false); err != nil {
		return err
	}
	if err := optionalString("description", r.Description, 500); err != nil {
		return err
	}
	if _, err := yarnComponents("warpDetails", r.WarpDetails); err != nil {
		return err
	}
	_, err := yarnComponents("weftDetails", r.WeftDetails)
	return err
}

// Patch campos presentes con nombres JSON.
func (r UpdateQualityRequest) Patch() lifecycle.Patch {
	p := patchBuilder{}
	p.str("name", r.Name)
	for _, m := range r.measures() {
		p.dec(m.field, m.value)
	}
	p.str("hsnCode", r.HSNCode)
	p.str("description", r.Description)
	p.boolean(lifecycle.FieldIsActive, r.IsActive)
	if r.WarpDetails != nil {
		p["warpDetails"], _ = yarnComponents("warpDetails", r.WarpDetails)
	}
	if r.WeftDetails != nil {
		p["weftDetails"], _ = yarnComponents("weftDetails", r.WeftDetails)
	}
	return lifecycle.Patch(p)
}

// validHSN código HSN: solo dígitos, hasta 8.
func validHSN(code *string, required bool) error {
	if code == nil {
		return nil
	}
	if *code == "" {
		if required {
			return invalid("hsnCode es obligatorio")
		}
		return invalid("hsnCode no puede quedar vacío")
	}
	if len(*code) > 8 || !govalidator.IsNumeric(*code) {
		return invalid("hsnCode debe tener hasta 8 dígitos")
	}
	return nil
}
