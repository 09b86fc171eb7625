//go:build integration

package mongodb_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcmongo "github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jhoicas/textile-stock-api/internal/domain"
	"github.com/jhoicas/textile-stock-api/internal/domain/entity"
	"github.com/jhoicas/textile-stock-api/internal/domain/lifecycle"
	"github.com/jhoicas/textile-stock-api/internal/infrastructure/mongodb"
	"github.com/jhoicas/textile-stock-api/pkg/config"
)

type DocumentStoreSuite struct {
	suite.Suite
	container *tcmongo.MongoDBContainer
	client    *mongo.Client
	db        *mongo.Database
	store     *mongodb.DocumentStore
	users     *mongodb.UserRepo
	qualities *lifecycle.Policy[entity.Quality]
}

func TestDocumentStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(DocumentStoreSuite))
}

func (s *DocumentStoreSuite) SetupSuite() {
	ctx := context.Background()
	container, err := tcmongo.Run(ctx, "mongo:7")
	s.Require().NoError(err)
	s.container = container

	uri, err := container.ConnectionString(ctx)
	s.Require().NoError(err)
	s.client, s.db, err = mongodb.Connect(ctx, config.MongoConfig{URI: uri, Database: "stock-management"})
	s.Require().NoError(err)

	s.store = mongodb.NewDocumentStore(s.db, "qualities", "hsnCode")
	s.Require().NoError(s.store.EnsureIndexes(ctx))
	s.Require().NoError(s.store.EnsureIndexes(ctx), "EnsureIndexes es idempotente")
	s.users = mongodb.NewUserRepository(s.db)
	s.Require().NoError(s.users.EnsureIndexes(ctx))
	s.qualities = lifecycle.NewPolicy[entity.Quality]("qualities", s.store)
}

func (s *DocumentStoreSuite) TearDownSuite() {
	if s.client != nil {
		_ = s.client.Disconnect(context.Background())
	}
	if err := testcontainers.TerminateContainer(s.container); err != nil {
		s.T().Logf("terminar contenedor: %v", err)
	}
}

func (s *DocumentStoreSuite) SetupTest() {
	ctx := context.Background()
	for _, name := range []string{"qualities", "users"} {
		_, err := s.db.Collection(name).DeleteMany(ctx, bson.M{})
		s.Require().NoError(err)
	}
}

func (s *DocumentStoreSuite) create(name, hsn string, gst int64) *lifecycle.Record[entity.Quality] {
	rec, err := s.qualities.Create(context.Background(), entity.Quality{
		Name: name, HSNCode: hsn, GSTRate: decimal.NewFromInt(gst), WeavingRate: decimal.RequireFromString("1.2"),
	}, nil, "system")
	s.Require().NoError(err)
	return rec
}

func (s *DocumentStoreSuite) TestEscenarioCalidad() {
	ctx := context.Background()
	q := s.create("Q1", "5407", 5)
	s.Len(q.Key, 24, "la clave interna es un ObjectID")
	s.True(q.IsActive)
	s.Nil(q.DeletedAt)

	del, err := s.qualities.SoftDelete(ctx, q.ID, "system")
	s.Require().NoError(err)
	s.False(del.IsActive)
	s.Equal("system", *del.DeletedBy)

	live, err := s.qualities.FindLive(ctx, nil)
	s.Require().NoError(err)
	s.Empty(live)
	all, err := s.qualities.FindAll(ctx, nil, true)
	s.Require().NoError(err)
	s.Len(all, 1)

	_, err = s.qualities.SoftDelete(ctx, q.ID, "system")
	s.ErrorIs(err, domain.ErrNotFound, "el segundo borrado lógico no encuentra un registro vivo")
	_, err = s.qualities.Update(ctx, q.ID, lifecycle.Patch{"gstRate": 12}, "system")
	s.ErrorIs(err, domain.ErrNotFound)

	res, err := s.qualities.Restore(ctx, q.ID, "admin")
	s.Require().NoError(err)
	s.Nil(res.DeletedAt)
	s.Nil(res.DeletedBy)
	s.Equal("admin", *res.UpdatedBy)
	s.Equal("system", res.CreatedBy)
	s.Equal(q.CreatedAt, res.CreatedAt)

	_, err = s.qualities.Restore(ctx, q.ID, "admin")
	s.ErrorIs(err, domain.ErrNotFound, "restaurar un registro vivo no encuentra nada")

	upd, err := s.qualities.Update(ctx, q.ID, lifecycle.Patch{"gstRate": 12, "createdBy": "mallory"}, "ana")
	s.Require().NoError(err)
	s.True(upd.Data.GSTRate.Equal(decimal.NewFromInt(12)))
	s.Equal("system", upd.CreatedBy)

	s.Require().NoError(s.qualities.HardDelete(ctx, q.ID))
	s.ErrorIs(s.qualities.HardDelete(ctx, q.ID), domain.ErrNotFound)
}

func (s *DocumentStoreSuite) TestOrdenOrdinalYFiltros() {
	ctx := context.Background()
	s.create("b", "5407", 5)
	s.create("B", "5208", 5)
	a := s.create("a", "5407", 5)
	inactive := false
	_, err := s.qualities.Create(ctx, entity.Quality{Name: "c", HSNCode: "5407"}, &inactive, "system")
	s.Require().NoError(err)

	live, err := s.qualities.FindLive(ctx, nil)
	s.Require().NoError(err)
	s.Equal([]string{"B", "a", "b", "c"}, qualityNames(live))

	active, err := s.qualities.FindActive(ctx, lifecycle.Query{"hsnCode": "5407"})
	s.Require().NoError(err)
	s.Equal([]string{"a", "b"}, qualityNames(active))

	got, err := s.qualities.FindOneLive(ctx, a.ID)
	s.Require().NoError(err)
	s.Equal("a", got.Data.Name)
}

func (s *DocumentStoreSuite) TestSoftDeleteConcurrente() {
	ctx := context.Background()
	q := s.create("Q1", "5407", 5)

	var wg sync.WaitGroup
	var ok, notFound atomic.Int32
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.qualities.SoftDelete(ctx, q.ID, "ana")
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, domain.ErrNotFound):
				notFound.Add(1)
			}
		}()
	}
	wg.Wait()
	s.EqualValues(1, ok.Load(), "FindOneAndUpdate con el filtro de estado deja un solo ganador")
	s.EqualValues(19, notFound.Load())
}

func (s *DocumentStoreSuite) TestDocumentoMongooseExistente() {
	ctx := context.Background()
	gst, err := primitive.ParseDecimal128("18")
	s.Require().NoError(err)
	_, err = s.db.Collection("qualities").InsertOne(ctx, bson.M{
		"id": "legacy-1", "name": "Antigua", "hsnCode": "5407",
		"gstRate": gst, "weavingRate": 0.9, "warpDetails": bson.A{bson.M{"denier": 75, "twistPerMeter": 0, "weight": 60}},
		"isActive": true, "createdBy": "seed", "createdAt": int64(1700000000000),
		"deletedAt": nil, "__v": int32(0),
	})
	s.Require().NoError(err)

	rec, err := s.qualities.FindOneLive(ctx, "legacy-1")
	s.Require().NoError(err)
	s.True(rec.Data.GSTRate.Equal(decimal.NewFromInt(18)))
	s.True(rec.Data.WeavingRate.Equal(decimal.RequireFromString("0.9")))
	s.Require().Len(rec.Data.WarpDetails, 1)
	s.True(rec.Data.WarpDetails[0].Denier.Equal(decimal.NewFromInt(75)))
	s.Equal(int64(1700000000000), rec.CreatedAt)
}

func (s *DocumentStoreSuite) TestResumenNumericoEnElServidor() {
	ctx := context.Background()
	s.create("Q1", "5407", 5)
	s.create("Q2", "5407", 12)
	gone := s.create("Q3", "5407", 99)
	_, err := s.qualities.SoftDelete(ctx, gone.ID, "ana")
	s.Require().NoError(err)
	_, err = s.db.Collection("qualities").InsertMany(ctx, []any{
		bson.M{"id": "legacy-1", "name": "L1", "hsnCode": "5407", "gstRate": "18", "isActive": true, "createdAt": int64(1), "deletedAt": nil},
		bson.M{"id": "legacy-2", "name": "L2", "hsnCode": "5407", "gstRate": "n/a", "isActive": true, "createdAt": int64(2), "deletedAt": nil},
		bson.M{"id": "legacy-3", "name": "L3", "hsnCode": "5407", "gstRate": true, "isActive": true, "createdAt": int64(3), "deletedAt": nil},
	})
	s.Require().NoError(err)

	stats, err := s.qualities.Stats(ctx, lifecycle.Query{"hsnCode": "5407"}, "gstRate", "weavingRate")
	s.Require().NoError(err)
	s.Require().Len(stats, 2)

	gst := stats[0]
	s.EqualValues(3, gst.Count)
	s.True(gst.Min.Equal(decimal.NewFromInt(5)), gst.Min.String())
	s.True(gst.Max.Equal(decimal.NewFromInt(18)), gst.Max.String())
	s.True(gst.Avg.Equal(decimal.RequireFromString("11.6667")), gst.Avg.String())

	weaving := stats[1]
	s.EqualValues(2, weaving.Count)
	s.True(weaving.Avg.Equal(decimal.RequireFromString("1.2")), weaving.Avg.String())

	none, err := s.qualities.Stats(ctx, lifecycle.Query{"hsnCode": "0000"}, "gstRate")
	s.Require().NoError(err)
	s.Zero(none[0].Count)
}

func (s *DocumentStoreSuite) TestUserRepo() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)
	u := &entity.User{ID: "u-1", Email: "ana@example.com", PasswordHash: "h", Name: "Ana", Role: entity.RoleAdmin, IsActive: true, CreatedAt: now, UpdatedAt: now}
	s.Require().NoError(s.users.Create(ctx, u))
	s.ErrorIs(s.users.Create(ctx, &entity.User{ID: "u-2", Email: "ana@example.com", Name: "Otra", CreatedAt: now, UpdatedAt: now}), domain.ErrEmailAlreadyExists)

	got, err := s.users.GetByEmail(ctx, "ana@example.com")
	s.Require().NoError(err)
	s.Equal("u-1", got.ID)

	missing, err := s.users.GetByID(ctx, "nadie")
	s.Require().NoError(err)
	s.Nil(missing)

	got.LastLoginAt = &now
	s.Require().NoError(s.users.Update(ctx, got))
	again, err := s.users.GetByID(ctx, "u-1")
	s.Require().NoError(err)
	s.Require().NotNil(again.LastLoginAt)
	s.True(now.Equal(*again.LastLoginAt))
}

func qualityNames(recs []*lifecycle.Record[entity.Quality]) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Data.Name)
	}
	return out
}
