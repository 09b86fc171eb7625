package metrics_test

import (
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/jhoicas/textile-stock-api/internal/domain"
	"github.com/jhoicas/textile-stock-api/internal/infrastructure/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, metrics.OutcomeOK},
		{fmt.Errorf("%w: qualities con id x", domain.ErrNotFound), metrics.OutcomeNotFound},
		{domain.ErrInvalidInput, metrics.OutcomeInvalid},
		{domain.ErrDuplicate, metrics.OutcomeInvalid},
		{errors.New("conexión rechazada"), metrics.OutcomeError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, metrics.Outcome(tt.err))
	}
}

func TestObserve_CuentaPorEtiquetas(t *testing.T) {
	m := metrics.New()
	m.Observe("qualities", "create", nil)
	m.Observe("qualities", "create", nil)
	m.Observe("qualities", "soft_delete", domain.ErrNotFound)

	n, err := testutil.GatherAndCount(m.Registry(), "stock_lifecycle_operations_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "dos series distintas")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body),
		`stock_lifecycle_operations_total{collection="qualities",operation="create",outcome="ok"} 2`)
	assert.Contains(t, string(body),
		`stock_lifecycle_operations_total{collection="qualities",operation="soft_delete",outcome="not_found"} 1`)
}
