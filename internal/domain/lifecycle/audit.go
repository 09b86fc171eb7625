// Package lifecycle implementa la política de ciclo de vida compartida por todas las entidades
// maestras: creación con auditoría, actualización, borrado lógico, restauración y borrado físico.
//
// Un registro está "vivo" si y solo si DeletedAt es nil. Los campos de auditoría son propiedad
// de la política: ningún payload de negocio puede escribirlos.
package lifecycle

import (
	"encoding/json"
	"fmt"
)

// Nombres de los campos de auditoría tal como se serializan (JSON y documentos).
const (
	FieldKey       = "_id"
	FieldID        = "id"
	FieldIsActive  = "isActive"
	FieldCreatedBy = "createdBy"
	FieldCreatedAt = "createdAt"
	FieldUpdatedBy = "updatedBy"
	FieldUpdatedAt = "updatedAt"
	FieldDeletedBy = "deletedBy"
	FieldDeletedAt = "deletedAt"
	// FieldName es la clave secundaria de orden estable para listados.
	FieldName = "name"
)

// ReservedFields campos que solo la política puede escribir.
var ReservedFields = []string{
	FieldKey, FieldID, FieldCreatedBy, FieldCreatedAt,
	FieldUpdatedBy, FieldUpdatedAt, FieldDeletedBy, FieldDeletedAt,
}

// IsReserved informa si el campo pertenece a la auditoría (incluye isActive).
func IsReserved(field string) bool {
	if field == FieldIsActive {
		return true
	}
	for _, f := range ReservedFields {
		if f == field {
			return true
		}
	}
	return false
}

// Audit campos comunes a todo registro auditado. Timestamps en epoch milisegundos.
type Audit struct {
	Key       string // clave interna asignada por el almacenamiento
	ID        string // identificador estable (UUID) usado en referencias externas
	IsActive  bool   // estado de negocio, independiente del borrado
	CreatedBy string
	CreatedAt int64
	UpdatedBy *string // nil hasta la primera actualización
	UpdatedAt *int64
	DeletedBy *string // nil mientras el registro está vivo
	DeletedAt *int64
}

// IsLive informa si el registro no está borrado lógicamente.
func (a Audit) IsLive() bool { return a.DeletedAt == nil }

// Fields devuelve los campos de auditoría como mapa serializable.
// updatedBy/updatedAt se omiten hasta existir; deletedBy/deletedAt se emiten como null si está vivo.
func (a Audit) Fields() map[string]any {
	m := map[string]any{
		FieldKey:       a.Key,
		FieldID:        a.ID,
		FieldIsActive:  a.IsActive,
		FieldCreatedBy: a.CreatedBy,
		FieldCreatedAt: a.CreatedAt,
		FieldDeletedBy: nil,
		FieldDeletedAt: nil,
	}
	if a.UpdatedBy != nil {
		m[FieldUpdatedBy] = *a.UpdatedBy
	}
	if a.UpdatedAt != nil {
		m[FieldUpdatedAt] = *a.UpdatedAt
	}
	if a.DeletedBy != nil {
		m[FieldDeletedBy] = *a.DeletedBy
	}
	if a.DeletedAt != nil {
		m[FieldDeletedAt] = *a.DeletedAt
	}
	return m
}

// Record registro completo: auditoría + campos de negocio de tipo T.
type Record[T any] struct {
	Audit
	Data T
}

// MarshalJSON aplana auditoría y campos de negocio en un único objeto, como el documento en disco.
func (r Record[T]) MarshalJSON() ([]byte, error) {
	body, err := EncodeFields(r.Data)
	if err != nil {
		return nil, err
	}
	for k, v := range r.Audit.Fields() {
		body[k] = v
	}
	return json.Marshal(body)
}

// EncodeFields convierte un valor de negocio en un mapa de campos JSON.
func EncodeFields(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("lifecycle: codificar campos: %w", err)
	}
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("lifecycle: el payload debe ser un objeto: %w", err)
	}
	return fields, nil
}

// DecodeFields reconstruye el valor de negocio T a partir de sus campos.
func DecodeFields[T any](fields map[string]any) (T, error) {
	var out T
	raw, err := json.Marshal(fields)
	if err != nil {
		return out, fmt.Errorf("lifecycle: serializar documento: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("lifecycle: decodificar documento: %w", err)
	}
	return out, nil
}
