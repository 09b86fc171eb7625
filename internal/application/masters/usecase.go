// Package masters enlaza cada entidad maestra con su política de ciclo de vida
// y agrega las reglas propias de la entidad (filtros permitidos, desnormalización).
package masters

import (
	"context"
	"errors"

	"github.com/jhoicas/textile-stock-api/internal/application/dto"
	"github.com/jhoicas/textile-stock-api/internal/domain"
	"github.com/jhoicas/textile-stock-api/internal/domain/lifecycle"
	"github.com/jhoicas/textile-stock-api/pkg/logger"
)

// Option configura un MasterUseCase.
type Option[T any] func(*MasterUseCase[T])

// WithFilterable campos de negocio admitidos como filtro de igualdad en los listados.
func WithFilterable[T any](fields ...string) Option[T] {
	return func(uc *MasterUseCase[T]) { uc.filterable = append(uc.filterable, fields...) }
}

// WithNumeric campos decimales que GET /summary agrega (count, min, max, promedio).
func WithNumeric[T any](fields ...string) Option[T] {
	return func(uc *MasterUseCase[T]) { uc.numeric = append(uc.numeric, fields...) }
}

// WithBeforeCreate hook ejecutado sobre el payload antes de insertar.
func WithBeforeCreate[T any](fn func(ctx context.Context, payload *T) error) Option[T] {
	return func(uc *MasterUseCase[T]) { uc.beforeCreate = fn }
}

// WithBeforeUpdate hook ejecutado sobre el patch antes de actualizar.
func WithBeforeUpdate[T any](fn func(ctx context.Context, patch lifecycle.Patch) error) Option[T] {
	return func(uc *MasterUseCase[T]) { uc.beforeUpdate = fn }
}

// MasterUseCase casos de uso CRUD con borrado lógico para una entidad maestra.
type MasterUseCase[T any] struct {
	policy       *lifecycle.Policy[T]
	log          *logger.Logger
	filterable   []string
	numeric      []string
	beforeCreate func(ctx context.Context, payload *T) error
	beforeUpdate func(ctx context.Context, patch lifecycle.Patch) error
}

// NewMasterUseCase construye el caso de uso sobre la política de la colección.
func NewMasterUseCase[T any](policy *lifecycle.Policy[T], log *logger.Logger, opts ...Option[T]) *MasterUseCase[T] {
	uc := &MasterUseCase[T]{policy: policy, log: log.Component("masters")}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Collection nombre de la colección.
func (uc *MasterUseCase[T]) Collection() string { return uc.policy.Collection() }

// Filterable campos admitidos como filtro.
func (uc *MasterUseCase[T]) Filterable() []string { return uc.filterable }

// Numeric campos agregables; vacío si la entidad no tiene resumen.
func (uc *MasterUseCase[T]) Numeric() []string { return uc.numeric }

// Summary agregados de los campos numéricos sobre los registros vivos y activos.
func (uc *MasterUseCase[T]) Summary(ctx context.Context, params map[string]string) (*dto.SummaryResponse, error) {
	stats, err := uc.policy.Stats(ctx, uc.query(params), uc.numeric...)
	uc.trace(lifecycle.OpStats, "", "", err)
	if err != nil {
		return nil, err
	}
	return &dto.SummaryResponse{Collection: uc.Collection(), Fields: stats}, nil
}

// Create crea un registro vivo.
func (uc *MasterUseCase[T]) Create(ctx context.Context, payload T, isActive *bool, actor string) (*lifecycle.Record[T], error) {
	if uc.beforeCreate != nil {
		if err := uc.beforeCreate(ctx, &payload); err != nil {
			return nil, err
		}
	}
	rec, err := uc.policy.Create(ctx, payload, isActive, actor)
	uc.trace(lifecycle.OpCreate, idOf(rec), actor, err)
	return rec, err
}

// List registros vivos (o todos si includeDeleted) filtrados por los parámetros admitidos.
func (uc *MasterUseCase[T]) List(ctx context.Context, params map[string]string, includeDeleted bool) ([]*lifecycle.Record[T], error) {
	list, err := uc.policy.FindAll(ctx, uc.query(params), includeDeleted)
	uc.trace(lifecycle.OpFind, "", "", err)
	return list, err
}

// ListActive registros vivos con isActive = true.
func (uc *MasterUseCase[T]) ListActive(ctx context.Context, params map[string]string) ([]*lifecycle.Record[T], error) {
	list, err := uc.policy.FindActive(ctx, uc.query(params))
	uc.trace(lifecycle.OpFind, "", "", err)
	return list, err
}

// Get registro vivo por identificador estable.
func (uc *MasterUseCase[T]) Get(ctx context.Context, id string) (*lifecycle.Record[T], error) {
	rec, err := uc.policy.FindOneLive(ctx, id)
	uc.trace(lifecycle.OpFindOne, id, "", err)
	return rec, err
}

// Update aplica una actualización parcial sobre un registro vivo.
func (uc *MasterUseCase[T]) Update(ctx context.Context, id string, patch lifecycle.Patch, actor string) (*lifecycle.Record[T], error) {
	if uc.beforeUpdate != nil {
		if err := uc.beforeUpdate(ctx, patch); err != nil {
			return nil, err
		}
	}
	rec, err := uc.policy.Update(ctx, id, patch, actor)
	uc.trace(lifecycle.OpUpdate, id, actor, err)
	return rec, err
}

// SoftDelete borrado lógico.
func (uc *MasterUseCase[T]) SoftDelete(ctx context.Context, id, actor string) (*lifecycle.Record[T], error) {
	rec, err := uc.policy.SoftDelete(ctx, id, actor)
	uc.trace(lifecycle.OpSoftDelete, id, actor, err)
	return rec, err
}

// Restore revierte un borrado lógico.
func (uc *MasterUseCase[T]) Restore(ctx context.Context, id, actor string) (*lifecycle.Record[T], error) {
	rec, err := uc.policy.Restore(ctx, id, actor)
	uc.trace(lifecycle.OpRestore, id, actor, err)
	return rec, err
}

// HardDelete borrado físico; actor solo queda en el log.
func (uc *MasterUseCase[T]) HardDelete(ctx context.Context, id, actor string) error {
	err := uc.policy.HardDelete(ctx, id)
	uc.trace(lifecycle.OpHardDelete, id, actor, err)
	return err
}

func (uc *MasterUseCase[T]) query(params map[string]string) lifecycle.Query {
	q := lifecycle.Query{}
	for _, field := range uc.filterable {
		if v, ok := params[field]; ok && v != "" {
			q[field] = v
		}
	}
	return q
}

func (uc *MasterUseCase[T]) trace(op, id, actor string, err error) {
	switch {
	case err == nil:
		uc.log.Debug().Str("collection", uc.Collection()).Str("op", op).Str("id", id).Str("actor", actor).Msg("ok")
	case isExpected(err):
		uc.log.Debug().Str("collection", uc.Collection()).Str("op", op).Str("id", id).Err(err).Msg("rechazada")
	default:
		uc.log.Error().Str("collection", uc.Collection()).Str("op", op).Str("id", id).Err(err).Msg("error de almacenamiento")
	}
}

func isExpected(err error) bool {
	return errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrDuplicate)
}

func idOf[T any](rec *lifecycle.Record[T]) string {
	if rec == nil {
		return ""
	}
	return rec.ID
}
