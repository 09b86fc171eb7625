package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/textile-stock-api/internal/application/masters"
	"github.com/jhoicas/textile-stock-api/pkg/config"
	"github.com/jhoicas/textile-stock-api/pkg/logger"
)

func TestOpen_Memory(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Driver: config.DriverMemory}}

	b, err := Open(context.Background(), cfg, logger.Nop())
	require.NoError(t, err)
	defer b.Close()

	for name := range masters.IndexedFields {
		assert.NotNil(t, b.Store(name), name)
	}
	assert.Nil(t, b.Store("invoices"))
	assert.NotNil(t, b.Users)
}

func TestOpen_DriverDesconocido(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Driver: "sqlite"}}

	_, err := Open(context.Background(), cfg, logger.Nop())
	assert.ErrorContains(t, err, "sqlite")
}
