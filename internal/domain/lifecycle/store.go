package lifecycle

import (
	"context"
	"encoding/json"
	"reflect"
	"sort"
)

// State precondición de borrado sobre la que opera una consulta o mutación.
type State int

const (
	StateLive    State = iota // deletedAt == null
	StateDeleted              // deletedAt != null
	StateAny                  // sin filtro de borrado
)

// Admits informa si un registro con esa auditoría cumple la precondición.
func (s State) Admits(a Audit) bool {
	switch s {
	case StateLive:
		return a.IsLive()
	case StateDeleted:
		return !a.IsLive()
	default:
		return true
	}
}

// Query igualdad sobre campos de negocio (nombres JSON).
type Query map[string]any

// Filter criterio completo de búsqueda.
type Filter struct {
	Match      Query
	State      State
	ActiveOnly bool
}

// Document representación neutra de un registro: auditoría + campos de negocio planos.
type Document struct {
	Audit
	Fields map[string]any
}

// Name clave de orden secundaria del documento.
func (d *Document) Name() string {
	s, _ := d.Fields[FieldName].(string)
	return s
}

// Clone copia superficial del documento (los campos de negocio se copian por clave).
func (d *Document) Clone() *Document {
	out := &Document{Audit: d.Audit, Fields: make(map[string]any, len(d.Fields))}
	for k, v := range d.Fields {
		out.Fields[k] = v
	}
	return out
}

// Stamp actor y momento (epoch ms) de una mutación.
type Stamp struct {
	By string
	At int64
}

// Mutation cambios que el almacenamiento aplica de forma atómica sobre un documento
// que cumple la precondición de estado.
type Mutation struct {
	Fields       map[string]any // merge superficial sobre los campos de negocio
	IsActive     *bool
	Updated      *Stamp
	Deleted      *Stamp
	ClearDeleted bool
}

// Apply aplica la mutación en memoria. Los adaptadores con motor propio la traducen a su dialecto.
func (m Mutation) Apply(doc *Document) {
	if doc.Fields == nil {
		doc.Fields = map[string]any{}
	}
	for k, v := range m.Fields {
		doc.Fields[k] = v
	}
	if m.IsActive != nil {
		doc.IsActive = *m.IsActive
	}
	if m.Updated != nil {
		by, at := m.Updated.By, m.Updated.At
		doc.UpdatedBy, doc.UpdatedAt = &by, &at
	}
	if m.ClearDeleted {
		doc.DeletedBy, doc.DeletedAt = nil, nil
	}
	if m.Deleted != nil {
		by, at := m.Deleted.By, m.Deleted.At
		doc.DeletedBy, doc.DeletedAt = &by, &at
	}
}

// Store puerto de persistencia de una colección de documentos auditados (DIP).
// Los registros inexistentes se reportan con domain.ErrNotFound y las violaciones de
// unicidad con domain.ErrDuplicate.
type Store interface {
	// Insert persiste un documento nuevo y asigna Audit.Key.
	Insert(ctx context.Context, doc *Document) error
	// Find devuelve los documentos que cumplen el filtro ordenados por name ascendente (orden de bytes).
	Find(ctx context.Context, f Filter) ([]*Document, error)
	// FindOne busca por identificador estable bajo la precondición de estado.
	FindOne(ctx context.Context, id string, state State) (*Document, error)
	// Update aplica la mutación en una sola operación condicional y devuelve el documento resultante.
	Update(ctx context.Context, id string, state State, m Mutation) (*Document, error)
	// Delete elimina físicamente el documento, sin importar su estado.
	Delete(ctx context.Context, id string) error
}

// Matches evalúa el filtro en memoria. Los valores se comparan tras normalizarlos a JSON.
func Matches(doc *Document, f Filter) bool {
	if !f.State.Admits(doc.Audit) {
		return false
	}
	if f.ActiveOnly && !doc.IsActive {
		return false
	}
	for k, want := range f.Match {
		got, ok := doc.Fields[k]
		if !ok || !reflect.DeepEqual(normalize(got), normalize(want)) {
			return false
		}
	}
	return true
}

// SortByName ordena por name ascendente con comparación ordinal; empata por fecha de creación.
func SortByName(docs []*Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		a, b := docs[i].Name(), docs[j].Name()
		if a != b {
			return a < b
		}
		return docs[i].CreatedAt < docs[j].CreatedAt
	})
}

// NormalizeQuery pasa los valores por JSON para que coincidan con lo persistido.
func NormalizeQuery(q Query) Query {
	if len(q) == 0 {
		return q
	}
	out := make(Query, len(q))
	for k, v := range q {
		out[k] = normalize(v)
	}
	return out
}

func normalize(v any) any {
	raw, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return v
	}
	return out
}
