// Package mongodb implementa los puertos de persistencia sobre MongoDB: una colección por
// entidad, un documento por registro con auditoría y campos de negocio al mismo nivel.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/textile-stock-api/pkg/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Connect abre el cliente, verifica la conexión y devuelve la base de datos configurada.
func Connect(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, *mongo.Database, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(10 * time.Second).
		SetMaxPoolSize(25)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("conectar MongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ping MongoDB: %w", err)
	}
	return client, client.Database(cfg.Database), nil
}
