package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/textile-stock-api/internal/domain"
)

// Operaciones de la política (etiquetas para métricas y logs).
const (
	OpCreate     = "create"
	OpFind       = "find"
	OpFindOne    = "find_one"
	OpUpdate     = "update"
	OpSoftDelete = "soft_delete"
	OpRestore    = "restore"
	OpHardDelete = "hard_delete"
	OpStats      = "stats"
)

// Recorder observa el resultado de cada operación (métricas). err nil = éxito.
type Recorder interface {
	Observe(collection, operation string, err error)
}

type nopRecorder struct{}

func (nopRecorder) Observe(string, string, error) {}

// Patch actualización parcial: campos de negocio por nombre JSON.
type Patch map[string]any

type options struct {
	now      func() time.Time
	newID    func() string
	recorder Recorder
}

// Option configura una Policy.
type Option func(*options)

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator reemplaza el generador de identificadores estables.
func WithIDGenerator(newID func() string) Option {
	return func(o *options) { o.newID = newID }
}

// WithRecorder registra un observador de operaciones.
func WithRecorder(r Recorder) Option {
	return func(o *options) {
		if r != nil {
			o.recorder = r
		}
	}
}

// Policy aplica las reglas de ciclo de vida sobre una colección de registros de tipo T.
// No guarda estado entre llamadas: todo el estado vive en el Store.
type Policy[T any] struct {
	collection string
	store      Store
	opts       options
}

// NewPolicy construye la política para una colección.
func NewPolicy[T any](collection string, store Store, opts ...Option) *Policy[T] {
	o := options{
		now:      time.Now,
		newID:    uuid.NewString,
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Policy[T]{collection: collection, store: store, opts: o}
}

// Collection nombre de la colección gobernada.
func (p *Policy[T]) Collection() string { return p.collection }

// Create inserta un registro nuevo con identificador estable fresco, vivo y activo salvo que isActive indique lo contrario.
// No valida campos de negocio: eso corresponde al llamador.
func (p *Policy[T]) Create(ctx context.Context, payload T, isActive *bool, actor string) (rec *Record[T], err error) {
	defer func() { p.observe(OpCreate, err) }()
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	fields, err := EncodeFields(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	for k := range fields {
		if IsReserved(k) {
			delete(fields, k)
		}
	}
	active := true
	if isActive != nil {
		active = *isActive
	}
	doc := &Document{
		Audit: Audit{
			ID:        p.opts.newID(),
			IsActive:  active,
			CreatedBy: actor,
			CreatedAt: p.stamp(),
		},
		Fields: fields,
	}
	if err := p.store.Insert(ctx, doc); err != nil {
		return nil, err
	}
	return p.decode(doc)
}

// FindLive devuelve los registros vivos que cumplen la consulta, ordenados por name.
func (p *Policy[T]) FindLive(ctx context.Context, q Query) ([]*Record[T], error) {
	return p.find(ctx, Filter{Match: q, State: StateLive})
}

// FindAll como FindLive, o sin filtro de borrado si includeDeleted.
func (p *Policy[T]) FindAll(ctx context.Context, q Query, includeDeleted bool) ([]*Record[T], error) {
	state := StateLive
	if includeDeleted {
		state = StateAny
	}
	return p.find(ctx, Filter{Match: q, State: state})
}

// FindActive devuelve los registros vivos con isActive = true.
func (p *Policy[T]) FindActive(ctx context.Context, q Query) ([]*Record[T], error) {
	return p.find(ctx, Filter{Match: q, State: StateLive, ActiveOnly: true})
}

func (p *Policy[T]) find(ctx context.Context, f Filter) (out []*Record[T], err error) {
	defer func() { p.observe(OpFind, err) }()
	f.Match = NormalizeQuery(f.Match)
	docs, err := p.store.Find(ctx, f)
	if err != nil {
		return nil, err
	}
	out = make([]*Record[T], 0, len(docs))
	for _, d := range docs {
		rec, err := p.decode(d)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// FindOneLive devuelve el registro vivo con ese identificador estable.
// Un registro borrado lógicamente con el mismo id se trata como inexistente.
func (p *Policy[T]) FindOneLive(ctx context.Context, id string) (rec *Record[T], err error) {
	defer func() { p.observe(OpFindOne, err) }()
	doc, err := p.store.FindOne(ctx, id, StateLive)
	if err != nil {
		return nil, p.wrapNotFound(err, id)
	}
	return p.decode(doc)
}

// Update mezcla el patch sobre un registro vivo y sella updatedBy/updatedAt.
// Las claves de auditoría del patch se ignoran; isActive se respeta como estado de negocio.
func (p *Policy[T]) Update(ctx context.Context, id string, patch Patch, actor string) (rec *Record[T], err error) {
	defer func() { p.observe(OpUpdate, err) }()
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	m := Mutation{Updated: &Stamp{By: actor, At: p.stamp()}}
	if len(patch) > 0 {
		m.Fields = map[string]any{}
		for k, v := range NormalizeQuery(Query(patch)) {
			switch {
			case k == FieldIsActive:
				active, ok := v.(bool)
				if !ok {
					return nil, fmt.Errorf("%w: isActive debe ser booleano", domain.ErrInvalidInput)
				}
				m.IsActive = &active
			case IsReserved(k):
				// propiedad de la política
			default:
				m.Fields[k] = v
			}
		}
	}
	doc, err := p.store.Update(ctx, id, StateLive, m)
	if err != nil {
		return nil, p.wrapNotFound(err, id)
	}
	return p.decode(doc)
}

// SoftDelete marca como borrado un registro vivo y fuerza isActive = false.
// No es idempotente: sobre un registro ya borrado responde ErrNotFound.
func (p *Policy[T]) SoftDelete(ctx context.Context, id, actor string) (rec *Record[T], err error) {
	defer func() { p.observe(OpSoftDelete, err) }()
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	inactive := false
	m := Mutation{
		IsActive: &inactive,
		Deleted:  &Stamp{By: actor, At: p.stamp()},
	}
	doc, err := p.store.Update(ctx, id, StateLive, m)
	if err != nil {
		return nil, p.wrapNotFound(err, id)
	}
	return p.decode(doc)
}

// Restore limpia las marcas de borrado de un registro borrado y sella updatedBy/updatedAt.
// Sobre un registro vivo responde ErrNotFound.
func (p *Policy[T]) Restore(ctx context.Context, id, actor string) (rec *Record[T], err error) {
	defer func() { p.observe(OpRestore, err) }()
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	m := Mutation{
		ClearDeleted: true,
		Updated:      &Stamp{By: actor, At: p.stamp()},
	}
	doc, err := p.store.Update(ctx, id, StateDeleted, m)
	if err != nil {
		return nil, p.wrapNotFound(err, id)
	}
	return p.decode(doc)
}

// HardDelete elimina físicamente el registro, vivo o borrado. No registra actor.
func (p *Policy[T]) HardDelete(ctx context.Context, id string) (err error) {
	defer func() { p.observe(OpHardDelete, err) }()
	if err := p.store.Delete(ctx, id); err != nil {
		return p.wrapNotFound(err, id)
	}
	return nil
}

func (p *Policy[T]) decode(doc *Document) (*Record[T], error) {
	data, err := DecodeFields[T](doc.Fields)
	if err != nil {
		return nil, err
	}
	return &Record[T]{Audit: doc.Audit, Data: data}, nil
}

func (p *Policy[T]) stamp() int64 { return p.opts.now().UnixMilli() }

func (p *Policy[T]) observe(op string, err error) {
	p.opts.recorder.Observe(p.collection, op, err)
}

func (p *Policy[T]) wrapNotFound(err error, id string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%w: %s con id %s", domain.ErrNotFound, p.collection, id)
	}
	return err
}

func requireActor(actor string) error {
	if strings.TrimSpace(actor) == "" {
		return fmt.Errorf("%w: actor requerido", domain.ErrInvalidInput)
	}
	return nil
}
