// Package storage abre el driver de persistencia configurado en STORE_DRIVER.
package storage

import (
	"context"
	"fmt"

	"github.com/jhoicas/textile-stock-api/internal/application/masters"
	"github.com/jhoicas/textile-stock-api/internal/domain/lifecycle"
	"github.com/jhoicas/textile-stock-api/internal/domain/repository"
	"github.com/jhoicas/textile-stock-api/internal/infrastructure/memory"
	"github.com/jhoicas/textile-stock-api/internal/infrastructure/mongodb"
	"github.com/jhoicas/textile-stock-api/internal/infrastructure/postgres"
	"github.com/jhoicas/textile-stock-api/pkg/config"
	"github.com/jhoicas/textile-stock-api/pkg/logger"
)

// Backend colecciones maestras y repositorio de usuarios del driver elegido.
type Backend struct {
	stores map[string]lifecycle.Store
	Users  repository.UserRepository
	close  func()
}

// Store devuelve la colección por nombre; nil si no es una colección maestra.
func (b *Backend) Store(collection string) lifecycle.Store {
	return b.stores[collection]
}

// Open conecta el driver de STORE_DRIVER y prepara esquema o índices de cada colección.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Backend, error) {
	b := &Backend{stores: make(map[string]lifecycle.Store, len(masters.IndexedFields)), close: func() {}}

	switch cfg.Store.Driver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		b.close = pool.Close
		for name, indexed := range masters.IndexedFields {
			s := postgres.NewDocumentStore(pool, name, indexed...)
			if err := s.EnsureSchema(ctx); err != nil {
				pool.Close()
				return nil, fmt.Errorf("esquema %s: %w", name, err)
			}
			b.stores[name] = s
		}
		users := postgres.NewUserRepository(pool)
		if err := users.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("esquema users: %w", err)
		}
		b.Users = users

	case config.DriverMongo:
		client, db, err := mongodb.Connect(ctx, cfg.Mongo)
		if err != nil {
			return nil, fmt.Errorf("conexión a MongoDB: %w", err)
		}
		b.close = func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Warn().Err(err).Msg("desconexión de MongoDB")
			}
		}
		for name, indexed := range masters.IndexedFields {
			s := mongodb.NewDocumentStore(db, name, indexed...)
			if err := s.EnsureIndexes(ctx); err != nil {
				b.close()
				return nil, fmt.Errorf("índices %s: %w", name, err)
			}
			b.stores[name] = s
		}
		users := mongodb.NewUserRepository(db)
		if err := users.EnsureIndexes(ctx); err != nil {
			b.close()
			return nil, fmt.Errorf("índices users: %w", err)
		}
		b.Users = users

	case config.DriverMemory:
		log.Warn().Msg("STORE_DRIVER=memory: los datos se pierden al reiniciar")
		for name := range masters.IndexedFields {
			b.stores[name] = memory.NewStore()
		}
		b.Users = memory.NewUserRepository()

	default:
		return nil, fmt.Errorf("STORE_DRIVER desconocido %q", cfg.Store.Driver)
	}

	log.Info().Str("driver", cfg.Store.Driver).Int("collections", len(b.stores)).Msg("almacenamiento listo")
	return b, nil
}

// Close libera la conexión del driver.
func (b *Backend) Close() { b.close() }
