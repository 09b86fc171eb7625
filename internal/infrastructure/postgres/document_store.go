package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/textile-stock-api/internal/domain"
	"github.com/jhoicas/textile-stock-api/internal/domain/lifecycle"
)

var (
	_ lifecycle.Store      = (*DocumentStore)(nil)
	_ lifecycle.Aggregator = (*DocumentStore)(nil)
)

const documentColumns = `internal_key, id, is_active, created_by, created_at, updated_by, updated_at, deleted_by, deleted_at, doc`

// DocumentStore colección de documentos auditados sobre una tabla PostgreSQL.
// Los campos de auditoría son columnas; los de negocio viven en doc (JSONB).
// Cada precondición de estado se expresa en el WHERE del mismo UPDATE que muta la fila.
type DocumentStore struct {
	q       Querier
	name    string
	table   string
	indexed []string
}

// NewDocumentStore construye el adaptador para la colección name. indexed son campos de negocio
// con índice de expresión propio (además del GIN sobre doc).
func NewDocumentStore(q Querier, name string, indexed ...string) *DocumentStore {
	return &DocumentStore{
		q:       q,
		name:    name,
		table:   pgx.Identifier{name}.Sanitize(),
		indexed: indexed,
	}
}

// EnsureSchema crea la tabla e índices si no existen (idempotente).
func (s *DocumentStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			internal_key BIGSERIAL PRIMARY KEY,
			id           TEXT NOT NULL UNIQUE,
			is_active    BOOLEAN NOT NULL DEFAULT TRUE,
			created_by   TEXT NOT NULL,
			created_at   BIGINT NOT NULL,
			updated_by   TEXT,
			updated_at   BIGINT,
			deleted_by   TEXT,
			deleted_at   BIGINT,
			doc          JSONB NOT NULL DEFAULT '{}'::jsonb,
			name         TEXT GENERATED ALWAYS AS (doc->>'name') STORED
		)`, s.table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (name COLLATE "C")`, s.indexName("name"), s.table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (is_active)`, s.indexName("is_active"), s.table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (deleted_at)`, s.indexName("deleted_at"), s.table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s USING GIN (doc jsonb_path_ops)`, s.indexName("doc"), s.table),
	}
	for _, field := range s.indexed {
		stmts = append(stmts, fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s ((doc->>%s))`,
			s.indexName(strings.ToLower(field)), s.table, quoteLiteral(field)))
	}
	for _, stmt := range stmts {
		if _, err := s.q.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema %s: %w", s.name, err)
		}
	}
	return nil
}

// Insert persiste un documento nuevo y asigna la clave interna (BIGSERIAL).
func (s *DocumentStore) Insert(ctx context.Context, doc *lifecycle.Document) error {
	body, err := json.Marshal(doc.Fields)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.name, err)
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (id, is_active, created_by, created_at, doc)
		VALUES ($1, $2, $3, $4, $5::jsonb)
		RETURNING internal_key`, s.table)
	var key int64
	err = s.q.QueryRow(ctx, query, doc.ID, doc.IsActive, doc.CreatedBy, doc.CreatedAt, string(body)).Scan(&key)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert %s: %w", s.name, err)
	}
	doc.Key = strconv.FormatInt(key, 10)
	return nil
}

// Find lista documentos según el filtro, ordenados por name (orden de bytes) y fecha de creación.
func (s *DocumentStore) Find(ctx context.Context, f lifecycle.Filter) ([]*lifecycle.Document, error) {
	where, args, err := s.where(f)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s ORDER BY name COLLATE "C" ASC, created_at ASC`,
		documentColumns, s.table, where)
	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.name, err)
	}
	defer rows.Close()
	var list []*lifecycle.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", s.name, err)
		}
		list = append(list, doc)
	}
	return list, rows.Err()
}

// Aggregate calcula count, min, max y promedio de un campo de doc convertido a NUMERIC.
// Solo cuentan los números JSON y el texto decimal (documentos antiguos con tarifas entre comillas).
func (s *DocumentStore) Aggregate(ctx context.Context, f lifecycle.Filter, field string) (lifecycle.FieldStats, error) {
	where, args, err := s.where(f)
	if err != nil {
		return lifecycle.FieldStats{}, err
	}
	args = append(args, field)
	p := fmt.Sprintf("$%d::text", len(args))
	value := fmt.Sprintf(`CASE
		WHEN jsonb_typeof(doc->%[1]s) = 'number' THEN (doc->>%[1]s)::numeric
		WHEN jsonb_typeof(doc->%[1]s) = 'string' AND doc->>%[1]s ~ '^-?[0-9]+(\.[0-9]+)?$' THEN (doc->>%[1]s)::numeric
	END`, p)
	query := fmt.Sprintf(`SELECT COUNT(v), COALESCE(MIN(v), 0), COALESCE(MAX(v), 0), COALESCE(ROUND(AVG(v), %d), 0)
		FROM (SELECT %s AS v FROM %s WHERE %s) AS vals`, lifecycle.StatsScale, value, s.table, where)

	st := lifecycle.FieldStats{Field: field}
	if err := s.q.QueryRow(ctx, query, args...).Scan(&st.Count, &st.Min, &st.Max, &st.Avg); err != nil {
		return lifecycle.FieldStats{}, fmt.Errorf("aggregate %s.%s: %w", s.name, field, err)
	}
	return st, nil
}

// where traduce el filtro a condiciones SQL con sus argumentos posicionales.
func (s *DocumentStore) where(f lifecycle.Filter) (string, []any, error) {
	conds := []string{stateCondition(f.State)}
	var args []any
	if f.ActiveOnly {
		conds = append(conds, "is_active")
	}
	if len(f.Match) > 0 {
		match, err := json.Marshal(f.Match)
		if err != nil {
			return "", nil, fmt.Errorf("encode filter %s: %w", s.name, err)
		}
		args = append(args, string(match))
		conds = append(conds, fmt.Sprintf("doc @> $%d::jsonb", len(args)))
	}
	return strings.Join(conds, " AND "), args, nil
}

// FindOne obtiene un documento por id bajo la precondición de estado.
func (s *DocumentStore) FindOne(ctx context.Context, id string, state lifecycle.State) (*lifecycle.Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 AND %s`, documentColumns, s.table, stateCondition(state))
	doc, err := scanDocument(s.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get %s: %w", s.name, err)
	}
	return doc, nil
}

// Update aplica la mutación con un único UPDATE condicional ... RETURNING.
func (s *DocumentStore) Update(ctx context.Context, id string, state lifecycle.State, m lifecycle.Mutation) (*lifecycle.Document, error) {
	args := []any{id}
	var sets []string
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if len(m.Fields) > 0 {
		patch, err := json.Marshal(m.Fields)
		if err != nil {
			return nil, fmt.Errorf("encode patch %s: %w", s.name, err)
		}
		sets = append(sets, "doc = doc || "+arg(string(patch))+"::jsonb")
	}
	if m.IsActive != nil {
		sets = append(sets, "is_active = "+arg(*m.IsActive))
	}
	if m.Updated != nil {
		sets = append(sets, "updated_by = "+arg(m.Updated.By), "updated_at = "+arg(m.Updated.At))
	}
	if m.ClearDeleted {
		sets = append(sets, "deleted_by = NULL", "deleted_at = NULL")
	}
	if m.Deleted != nil {
		sets = append(sets, "deleted_by = "+arg(m.Deleted.By), "deleted_at = "+arg(m.Deleted.At))
	}
	if len(sets) == 0 {
		return s.FindOne(ctx, id, state)
	}
	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = $1 AND %s RETURNING %s`,
		s.table, strings.Join(sets, ", "), stateCondition(state), documentColumns)
	doc, err := scanDocument(s.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update %s: %w", s.name, err)
	}
	return doc, nil
}

// Delete elimina físicamente la fila.
func (s *DocumentStore) Delete(ctx context.Context, id string) error {
	cmd, err := s.q.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, s.table), id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", s.name, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *DocumentStore) indexName(suffix string) string {
	return pgx.Identifier{s.name + "_" + suffix + "_idx"}.Sanitize()
}

func stateCondition(state lifecycle.State) string {
	switch state {
	case lifecycle.StateLive:
		return "deleted_at IS NULL"
	case lifecycle.StateDeleted:
		return "deleted_at IS NOT NULL"
	default:
		return "TRUE"
	}
}

func scanDocument(row pgx.Row) (*lifecycle.Document, error) {
	var (
		doc  lifecycle.Document
		key  int64
		body []byte
	)
	if err := row.Scan(&key, &doc.ID, &doc.IsActive, &doc.CreatedBy, &doc.CreatedAt,
		&doc.UpdatedBy, &doc.UpdatedAt, &doc.DeletedBy, &doc.DeletedAt, &body); err != nil {
		return nil, err
	}
	doc.Key = strconv.FormatInt(key, 10)
	doc.Fields = map[string]any{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &doc.Fields); err != nil {
			return nil, fmt.Errorf("decode doc: %w", err)
		}
	}
	return &doc, nil
}
