package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/textile-stock-api/internal/domain"
	"github.com/jhoicas/textile-stock-api/internal/domain/lifecycle"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	_ lifecycle.Store      = (*DocumentStore)(nil)
	_ lifecycle.Aggregator = (*DocumentStore)(nil)
)

// DocumentStore colección de documentos auditados sobre MongoDB.
// Las mutaciones usan FindOneAndUpdate con la precondición de estado en el filtro.
type DocumentStore struct {
	coll    *mongo.Collection
	name    string
	indexed []string
}

// NewDocumentStore construye el adaptador para la colección name.
func NewDocumentStore(db *mongo.Database, name string, indexed ...string) *DocumentStore {
	return &DocumentStore{coll: db.Collection(name), name: name, indexed: indexed}
}

// EnsureIndexes crea los índices de la colección (idempotente).
func (s *DocumentStore) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: lifecycle.FieldID, Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: lifecycle.FieldName, Value: 1}}},
		{Keys: bson.D{{Key: lifecycle.FieldIsActive, Value: 1}}},
		{Keys: bson.D{{Key: lifecycle.FieldDeletedAt, Value: 1}}},
	}
	for _, field := range s.indexed {
		models = append(models, mongo.IndexModel{Keys: bson.D{{Key: field, Value: 1}}})
	}
	if _, err := s.coll.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("índices %s: %w", s.name, err)
	}
	return nil
}

// Insert persiste el documento; la clave interna es el ObjectID generado.
func (s *DocumentStore) Insert(ctx context.Context, doc *lifecycle.Document) error {
	m := bson.M{}
	for k, v := range doc.Fields {
		m[k] = v
	}
	m[lifecycle.FieldID] = doc.ID
	m[lifecycle.FieldIsActive] = doc.IsActive
	m[lifecycle.FieldCreatedBy] = doc.CreatedBy
	m[lifecycle.FieldCreatedAt] = doc.CreatedAt
	m[lifecycle.FieldDeletedBy] = nil
	m[lifecycle.FieldDeletedAt] = nil

	res, err := s.coll.InsertOne(ctx, m)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert %s: %w", s.name, err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.Key = oid.Hex()
	} else {
		doc.Key = fmt.Sprint(res.InsertedID)
	}
	return nil
}

// Find lista documentos según el filtro ordenados por name y createdAt.
func (s *DocumentStore) Find(ctx context.Context, f lifecycle.Filter) ([]*lifecycle.Document, error) {
	filter := findFilter(f)
	opts := options.Find().SetSort(bson.D{
		{Key: lifecycle.FieldName, Value: 1},
		{Key: lifecycle.FieldCreatedAt, Value: 1},
	})
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.name, err)
	}
	var raws []bson.M
	if err := cur.All(ctx, &raws); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.name, err)
	}
	list := make([]*lifecycle.Document, 0, len(raws))
	for _, raw := range raws {
		list = append(list, toDocument(raw))
	}
	return list, nil
}

// Aggregate agrega el campo en el servidor. Solo cuentan números y texto convertible a decimal.
func (s *DocumentStore) Aggregate(ctx context.Context, f lifecycle.Filter, field string) (lifecycle.FieldStats, error) {
	match := findFilter(f)
	match[field] = bson.M{"$type": bson.A{"number", "string"}}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$project", Value: bson.M{"v": bson.M{"$convert": bson.M{
			"input": "$" + field, "to": "decimal", "onError": nil, "onNull": nil,
		}}}}},
		{{Key: "$match", Value: bson.M{"v": bson.M{"$ne": nil}}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"count": bson.M{"$sum": 1},
			"min":   bson.M{"$min": "$v"},
			"max":   bson.M{"$max": "$v"},
			"sum":   bson.M{"$sum": "$v"},
		}}},
	}
	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return lifecycle.FieldStats{}, fmt.Errorf("aggregate %s.%s: %w", s.name, field, err)
	}
	var rows []struct {
		Count int64                `bson:"count"`
		Min   primitive.Decimal128 `bson:"min"`
		Max   primitive.Decimal128 `bson:"max"`
		Sum   primitive.Decimal128 `bson:"sum"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return lifecycle.FieldStats{}, fmt.Errorf("decode aggregate %s.%s: %w", s.name, field, err)
	}
	st := lifecycle.FieldStats{Field: field}
	if len(rows) == 0 || rows[0].Count == 0 {
		return st, nil
	}
	r := rows[0]
	sum, err := fromDecimal128(r.Sum)
	if err != nil {
		return lifecycle.FieldStats{}, err
	}
	if st.Min, err = fromDecimal128(r.Min); err != nil {
		return lifecycle.FieldStats{}, err
	}
	if st.Max, err = fromDecimal128(r.Max); err != nil {
		return lifecycle.FieldStats{}, err
	}
	st.Count = r.Count
	st.Avg = lifecycle.Average(sum, r.Count)
	return st, nil
}

// FindOne obtiene un documento por id bajo la precondición de estado.
func (s *DocumentStore) FindOne(ctx context.Context, id string, state lifecycle.State) (*lifecycle.Document, error) {
	filter := stateFilter(state)
	filter[lifecycle.FieldID] = id
	var raw bson.M
	if err := s.coll.FindOne(ctx, filter).Decode(&raw); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get %s: %w", s.name, err)
	}
	return toDocument(raw), nil
}

// Update aplica la mutación con FindOneAndUpdate y devuelve el documento resultante.
func (s *DocumentStore) Update(ctx context.Context, id string, state lifecycle.State, m lifecycle.Mutation) (*lifecycle.Document, error) {
	set := bson.M{}
	for k, v := range m.Fields {
		set[k] = v
	}
	if m.IsActive != nil {
		set[lifecycle.FieldIsActive] = *m.IsActive
	}
	if m.Updated != nil {
		set[lifecycle.FieldUpdatedBy] = m.Updated.By
		set[lifecycle.FieldUpdatedAt] = m.Updated.At
	}
	if m.ClearDeleted {
		set[lifecycle.FieldDeletedBy] = nil
		set[lifecycle.FieldDeletedAt] = nil
	}
	if m.Deleted != nil {
		set[lifecycle.FieldDeletedBy] = m.Deleted.By
		set[lifecycle.FieldDeletedAt] = m.Deleted.At
	}
	if len(set) == 0 {
		return s.FindOne(ctx, id, state)
	}
	filter := stateFilter(state)
	filter[lifecycle.FieldID] = id
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var raw bson.M
	if err := s.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&raw); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update %s: %w", s.name, err)
	}
	return toDocument(raw), nil
}

// Delete elimina físicamente el documento.
func (s *DocumentStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{lifecycle.FieldID: id})
	if err != nil {
		return fmt.Errorf("delete %s: %w", s.name, err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func findFilter(f lifecycle.Filter) bson.M {
	filter := stateFilter(f.State)
	if f.ActiveOnly {
		filter[lifecycle.FieldIsActive] = true
	}
	for k, v := range f.Match {
		filter[k] = v
	}
	return filter
}

func fromDecimal128(d primitive.Decimal128) (decimal.Decimal, error) {
	out, err := decimal.NewFromString(d.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("decimal128 %s: %w", d.String(), err)
	}
	return out, nil
}

// stateFilter {deletedAt: null} también coincide con documentos sin el campo.
func stateFilter(state lifecycle.State) bson.M {
	switch state {
	case lifecycle.StateLive:
		return bson.M{lifecycle.FieldDeletedAt: nil}
	case lifecycle.StateDeleted:
		return bson.M{lifecycle.FieldDeletedAt: bson.M{"$ne": nil}}
	default:
		return bson.M{}
	}
}

func toDocument(raw bson.M) *lifecycle.Document {
	doc := &lifecycle.Document{Fields: map[string]any{}}
	for k, v := range raw {
		switch k {
		case lifecycle.FieldKey:
			if oid, ok := v.(primitive.ObjectID); ok {
				doc.Key = oid.Hex()
			} else {
				doc.Key = fmt.Sprint(v)
			}
		case lifecycle.FieldID:
			doc.ID, _ = v.(string)
		case lifecycle.FieldIsActive:
			doc.IsActive, _ = v.(bool)
		case lifecycle.FieldCreatedBy:
			doc.CreatedBy, _ = v.(string)
		case lifecycle.FieldCreatedAt:
			if n, ok := toInt64(v); ok {
				doc.CreatedAt = n
			}
		case lifecycle.FieldUpdatedBy:
			doc.UpdatedBy = optString(v)
		case lifecycle.FieldUpdatedAt:
			doc.UpdatedAt = optInt64(v)
		case lifecycle.FieldDeletedBy:
			doc.DeletedBy = optString(v)
		case lifecycle.FieldDeletedAt:
			doc.DeletedAt = optInt64(v)
		case "__v":
			// versión de documentos escritos por Mongoose
		default:
			doc.Fields[k] = plain(v)
		}
	}
	return doc
}

// plain convierte tipos BSON anidados a tipos Go serializables como JSON.
func plain(v any) any {
	switch t := v.(type) {
	case bson.M:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = plain(val)
		}
		return out
	case bson.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = plain(e.Value)
		}
		return out
	case bson.A:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = plain(val)
		}
		return out
	case primitive.Decimal128:
		return t.String()
	case primitive.DateTime:
		return int64(t)
	case primitive.ObjectID:
		return t.Hex()
	default:
		return v
	}
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	case primitive.DateTime:
		return int64(n), true
	default:
		return 0, false
	}
}

func optInt64(v any) *int64 {
	n, ok := toInt64(v)
	if !ok {
		return nil
	}
	return &n
}

func optString(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}
