package lifecycle_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/textile-stock-api/internal/domain"
	"github.com/jhoicas/textile-stock-api/internal/domain/lifecycle"
	"github.com/jhoicas/textile-stock-api/internal/infrastructure/memory"
)

func TestStats_SoloVivosYActivos(t *testing.T) {
	ctx := context.Background()
	p := newPolicy[widget](t)

	_, err := p.Create(ctx, widget{Name: "a", Code: "X", Qty: 2}, nil, "ana")
	require.NoError(t, err)
	_, err = p.Create(ctx, widget{Name: "b", Code: "X", Qty: 5}, nil, "ana")
	require.NoError(t, err)
	_, err = p.Create(ctx, widget{Name: "c", Code: "Y", Qty: 4}, nil, "ana")
	require.NoError(t, err)
	gone, err := p.Create(ctx, widget{Name: "d", Code: "X", Qty: 100}, nil, "ana")
	require.NoError(t, err)
	_, err = p.SoftDelete(ctx, gone.ID, "ana")
	require.NoError(t, err)
	inactive := false
	_, err = p.Create(ctx, widget{Name: "e", Code: "X", Qty: 50}, &inactive, "ana")
	require.NoError(t, err)

	stats, err := p.Stats(ctx, nil, "qty")
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, "qty", stats[0].Field)
	assert.Equal(t, int64(3), stats[0].Count)
	assert.True(t, stats[0].Min.Equal(decimal.NewFromInt(2)))
	assert.True(t, stats[0].Max.Equal(decimal.NewFromInt(5)))
	assert.True(t, stats[0].Avg.Equal(decimal.RequireFromString("3.6667")), stats[0].Avg.String())

	stats, err = p.Stats(ctx, lifecycle.Query{"code": "X"}, "qty")
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats[0].Count)
	assert.True(t, stats[0].Avg.Equal(decimal.RequireFromString("3.5")))
}

func TestStats_ColeccionVacia(t *testing.T) {
	stats, err := newPolicy[widget](t).Stats(context.Background(), nil, "qty", "code")
	require.NoError(t, err)
	require.Len(t, stats, 2)
	for _, st := range stats {
		assert.Zero(t, st.Count)
		assert.True(t, st.Avg.IsZero())
	}
	assert.Equal(t, "code", stats[1].Field)
}

func TestStats_CampoDeAuditoriaNoAgregable(t *testing.T) {
	_, err := newPolicy[widget](t).Stats(context.Background(), nil, lifecycle.FieldCreatedAt)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// aggregatingStore registra las llamadas a Aggregate y delega el resto en memoria.
type aggregatingStore struct {
	*memory.Store
	fields []string
	filter lifecycle.Filter
}

func (s *aggregatingStore) Aggregate(_ context.Context, f lifecycle.Filter, field string) (lifecycle.FieldStats, error) {
	s.fields = append(s.fields, field)
	s.filter = f
	return lifecycle.FieldStats{Field: field, Count: 7}, nil
}

func TestStats_UsaElAgregadorDelStore(t *testing.T) {
	store := &aggregatingStore{Store: memory.NewStore()}
	spy := &spyRecorder{}
	p := lifecycle.NewPolicy[widget]("widgets", store, lifecycle.WithRecorder(spy))

	stats, err := p.Stats(context.Background(), lifecycle.Query{"code": "X"}, "qty")
	require.NoError(t, err)
	assert.Equal(t, int64(7), stats[0].Count)
	assert.Equal(t, []string{"qty"}, store.fields)
	assert.Equal(t, lifecycle.StateLive, store.filter.State)
	assert.True(t, store.filter.ActiveOnly)
	assert.Equal(t, lifecycle.Query{"code": "X"}, store.filter.Match)
	assert.Equal(t, []recorded{{"widgets", lifecycle.OpStats, "ok"}}, spy.calls)
}
