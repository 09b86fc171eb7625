package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/textile-stock-api/internal/application/auth"
	"github.com/jhoicas/textile-stock-api/internal/application/masters"
	"github.com/jhoicas/textile-stock-api/internal/domain/entity"
	"github.com/jhoicas/textile-stock-api/internal/domain/lifecycle"
	"github.com/jhoicas/textile-stock-api/internal/infrastructure/memory"
	"github.com/jhoicas/textile-stock-api/internal/infrastructure/metrics"
	apphttp "github.com/jhoicas/textile-stock-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/textile-stock-api/pkg/jwt"
	"github.com/jhoicas/textile-stock-api/pkg/logger"
)

const adminID = "admin-1"

type stubRenderer struct{}

func (stubRenderer) RenderQualityCatalog(q []*lifecycle.Record[entity.Quality], _ time.Time) ([]byte, error) {
	return []byte("%PDF-1.4 " + string(rune('0'+len(q)))), nil
}

// newAPI app completa sobre stores en memoria.
func newAPI(t *testing.T) *fiber.App {
	t.Helper()
	log := logger.Nop()
	m := metrics.New()
	rec := lifecycle.WithRecorder(m)

	locPolicy := lifecycle.NewPolicy[entity.Location](masters.CollectionLocations, memory.NewStore(), rec)
	qualityUC := masters.NewQualityUseCase(
		lifecycle.NewPolicy[entity.Quality](masters.CollectionQualities, memory.NewStore(), rec), log)

	app := fiber.New()
	app.Use(apphttp.RequestLogger(log))
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC: auth.NewAuthUseCase(memory.NewUserRepository(), auth.JWTConfig{
			Secret: testJWTSecret, Issuer: testIssuer, AccessTTL: time.Hour, RefreshTTL: time.Hour,
		}),
		QualityUC:  qualityUC,
		LocationUC: masters.NewLocationUseCase(locPolicy, log),
		KhataUC: masters.NewKhataUseCase(
			lifecycle.NewPolicy[entity.Khata](masters.CollectionKhatas, memory.NewStore()), locPolicy, log),
		BrokerUC: masters.NewBrokerUseCase(
			lifecycle.NewPolicy[entity.Broker](masters.CollectionBrokers, memory.NewStore()), log),
		Catalog:   masters.NewQualityCatalog(qualityUC, stubRenderer{}),
		Metrics:   m,
		JWTSecret: testJWTSecret,
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, bearer string, body any) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", bearer)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func decodeObject(t *testing.T, raw []byte) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m), string(raw))
	return m
}

func decodeList(t *testing.T, raw []byte) []map[string]any {
	t.Helper()
	var l []map[string]any
	require.NoError(t, json.Unmarshal(raw, &l), string(raw))
	return l
}

func ids(list []map[string]any) []string {
	out := make([]string, 0, len(list))
	for _, m := range list {
		out = append(out, m["id"].(string))
	}
	return out
}

var q1 = map[string]any{
	"name": "Q1", "reed": 60, "picks": 52, "ends": 4800, "width": 48,
	"totalDenier": 150, "standardWeight": 120, "weavingRate": 1.2, "warpingRate": 0.3,
	"pasaraiRate": 0.1, "foldingRate": 0.05, "hsnCode": "5407", "gstRate": 5,
}

// Ciclo completo: alta, borrado lógico, listados, restauración y borrado físico.
func TestQuality_CicloDeVidaCompleto(t *testing.T) {
	app := newAPI(t)
	system := tokenFor(t, "system", entity.RoleUser, pkgjwt.TokenAccess)
	admin := tokenFor(t, adminID, entity.RoleAdmin, pkgjwt.TokenAccess)

	resp, raw := call(t, app, http.MethodPost, "/api/masters/quality", system, q1)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	created := decodeObject(t, raw)
	id := created["id"].(string)
	assert.Equal(t, true, created["isActive"])
	assert.Equal(t, 1.2, created["weavingRate"])
	assert.Equal(t, float64(5), created["gstRate"])
	assert.Nil(t, created["deletedAt"])
	assert.Equal(t, "system", created["createdBy"])
	assert.NotContains(t, created, "updatedBy")
	assert.NotEmpty(t, created["_id"])

	resp, raw = call(t, app, http.MethodDelete, "/api/masters/quality/"+id, system, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	deleted := decodeObject(t, raw)
	assert.Equal(t, false, deleted["isActive"])
	assert.NotNil(t, deleted["deletedAt"])
	assert.Equal(t, "system", deleted["deletedBy"])

	_, raw = call(t, app, http.MethodGet, "/api/masters/quality", system, nil)
	assert.NotContains(t, ids(decodeList(t, raw)), id)
	_, raw = call(t, app, http.MethodGet, "/api/masters/quality?includeDeleted=true", system, nil)
	assert.Contains(t, ids(decodeList(t, raw)), id)

	resp, _ = call(t, app, http.MethodGet, "/api/masters/quality/"+id, system, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = call(t, app, http.MethodDelete, "/api/masters/quality/"+id, system, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "el segundo borrado lógico no es idempotente")
	resp, _ = call(t, app, http.MethodPut, "/api/masters/quality/"+id, system, map[string]any{"gstRate": 12})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "no se actualiza un registro borrado")

	resp, raw = call(t, app, http.MethodPost, "/api/masters/quality/"+id+"/restore", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	restored := decodeObject(t, raw)
	assert.Nil(t, restored["deletedAt"])
	assert.Nil(t, restored["deletedBy"])
	assert.Equal(t, adminID, restored["updatedBy"])
	assert.Equal(t, false, restored["isActive"], "restaurar no reactiva")

	resp, _ = call(t, app, http.MethodPost, "/api/masters/quality/"+id+"/restore", admin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "restaurar un registro vivo es NotFound")

	resp, _ = call(t, app, http.MethodDelete, "/api/masters/quality/"+id+"/permanent", system, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "solo admin borra físicamente")
	resp, _ = call(t, app, http.MethodDelete, "/api/masters/quality/"+id+"/permanent", admin, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = call(t, app, http.MethodGet, "/api/masters/quality/"+id, system, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_, raw = call(t, app, http.MethodGet, "/api/masters/quality?includeDeleted=true", system, nil)
	assert.NotContains(t, ids(decodeList(t, raw)), id)
	resp, _ = call(t, app, http.MethodDelete, "/api/masters/quality/"+id+"/permanent", admin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestQuality_UpdateIgnoraCamposDeAuditoria(t *testing.T) {
	app := newAPI(t)
	bearer := tokenFor(t, "u-1", entity.RoleUser, pkgjwt.TokenAccess)

	_, raw := call(t, app, http.MethodPost, "/api/masters/quality", bearer, q1)
	id := decodeObject(t, raw)["id"].(string)

	resp, raw := call(t, app, http.MethodPut, "/api/masters/quality/"+id, bearer,
		map[string]any{"gstRate": 12, "createdBy": "intruso", "id": "otro"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	updated := decodeObject(t, raw)
	assert.Equal(t, id, updated["id"])
	assert.Equal(t, "u-1", updated["createdBy"])
	assert.Equal(t, "u-1", updated["updatedBy"])
	assert.Equal(t, float64(12), updated["gstRate"])
	assert.Equal(t, "Q1", updated["name"])
}

func TestQuality_ValidacionYAutenticacion(t *testing.T) {
	app := newAPI(t)
	bearer := tokenFor(t, "u-1", entity.RoleUser, pkgjwt.TokenAccess)

	resp, _ := call(t, app, http.MethodPost, "/api/masters/quality", "", q1)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, raw := call(t, app, http.MethodPost, "/api/masters/quality", bearer, map[string]any{"name": "sin medidas"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(raw), "VALIDATION")

	req := httptest.NewRequest(http.MethodPost, "/api/masters/quality", strings.NewReader("{no-json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer)
	res, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestQuality_ListadosOrdenadosYFiltrados(t *testing.T) {
	app := newAPI(t)
	bearer := tokenFor(t, "u-1", entity.RoleUser, pkgjwt.TokenAccess)

	for _, name := range []string{"b", "B", "a"} {
		body := map[string]any{}
		for k, v := range q1 {
			body[k] = v
		}
		body["name"] = name
		if name == "a" {
			body["hsnCode"] = "5208"
			body["isActive"] = false
		}
		resp, raw := call(t, app, http.MethodPost, "/api/masters/quality", bearer, body)
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	}

	_, raw := call(t, app, http.MethodGet, "/api/masters/quality", bearer, nil)
	var names []string
	for _, m := range decodeList(t, raw) {
		names = append(names, m["name"].(string))
	}
	assert.Equal(t, []string{"B", "a", "b"}, names, "orden ordinal por bytes")

	_, raw = call(t, app, http.MethodGet, "/api/masters/quality?hsnCode=5407", bearer, nil)
	assert.Len(t, decodeList(t, raw), 2)

	_, raw = call(t, app, http.MethodGet, "/api/masters/quality/active", bearer, nil)
	assert.Len(t, decodeList(t, raw), 2, "a está inactiva")
}

func TestKhata_DesnormalizaUbicacionPorHTTP(t *testing.T) {
	app := newAPI(t)
	bearer := tokenFor(t, "u-1", entity.RoleUser, pkgjwt.TokenAccess)

	resp, raw := call(t, app, http.MethodPost, "/api/masters/location", bearer, map[string]any{
		"name": "Unidad Surat", "city": "Surat", "state": "Gujarat", "stateCode": "24",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	locID := decodeObject(t, raw)["id"].(string)

	resp, raw = call(t, app, http.MethodPost, "/api/masters/khata", bearer, map[string]any{
		"name": "Propia", "code": "K1", "type": "internal", "locationID": locID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	assert.Equal(t, "Unidad Surat", decodeObject(t, raw)["locationName"])

	resp, _ = call(t, app, http.MethodPost, "/api/masters/khata", bearer, map[string]any{
		"name": "Ajena", "code": "K2", "type": "external", "locationID": "no-existe",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestQuality_Summary(t *testing.T) {
	app := newAPI(t)
	bearer := tokenFor(t, "u-1", entity.RoleUser, pkgjwt.TokenAccess)

	_, _ = call(t, app, http.MethodPost, "/api/masters/quality", bearer, q1)
	q2 := map[string]any{}
	for k, v := range q1 {
		q2[k] = v
	}
	q2["name"], q2["gstRate"] = "Q2", 12
	_, _ = call(t, app, http.MethodPost, "/api/masters/quality", bearer, q2)

	resp, raw := call(t, app, http.MethodGet, "/api/masters/quality/summary", bearer, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	out := decodeObject(t, raw)
	assert.Equal(t, masters.CollectionQualities, out["collection"])
	var gst map[string]any
	for _, f := range out["fields"].([]any) {
		if m := f.(map[string]any); m["field"] == "gstRate" {
			gst = m
		}
	}
	require.NotNil(t, gst)
	assert.Equal(t, float64(2), gst["count"])
	assert.Equal(t, float64(5), gst["min"])
	assert.Equal(t, float64(12), gst["max"])
	assert.Equal(t, 8.5, gst["avg"])

	resp, _ = call(t, app, http.MethodGet, "/api/masters/location/summary", bearer, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "sin campos numéricos no hay resumen")
}

func TestQualityCatalog_PDF(t *testing.T) {
	app := newAPI(t)
	bearer := tokenFor(t, "u-1", entity.RoleUser, pkgjwt.TokenAccess)
	_, _ = call(t, app, http.MethodPost, "/api/masters/quality", bearer, q1)

	resp, raw := call(t, app, http.MethodGet, "/api/masters/quality/catalog.pdf", bearer, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Equal(t, "%PDF-1.4 1", string(raw))
}

func TestAuth_RegistroLoginMe(t *testing.T) {
	app := newAPI(t)

	resp, raw := call(t, app, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email": "Ana@Example.com", "password": "secret1", "name": "Ana",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	resp, _ = call(t, app, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email": "ana@example.com", "password": "secret1", "name": "Ana",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = call(t, app, http.MethodPost, "/api/auth/login", "", map[string]any{"email": "ana@example.com", "password": "mala-clave"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, raw = call(t, app, http.MethodPost, "/api/auth/login", "", map[string]any{"email": "ana@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	login := decodeObject(t, raw)

	resp, raw = call(t, app, http.MethodGet, "/api/auth/me", "Bearer "+login["accessToken"].(string), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	me := decodeObject(t, raw)
	assert.Equal(t, "ana@example.com", me["email"])
	assert.Equal(t, entity.RoleUser, me["role"])
	assert.NotNil(t, me["lastLoginAt"])

	resp, raw = call(t, app, http.MethodPost, "/api/auth/refresh", "", map[string]any{"refreshToken": login["refreshToken"]})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	resp, _ = call(t, app, http.MethodPost, "/api/auth/refresh", "", map[string]any{"refreshToken": login["accessToken"]})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuth_RegistroPublicoNoOtorgaAdmin(t *testing.T) {
	app := newAPI(t)

	resp, raw := call(t, app, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email": "mallory@example.com", "password": "secret1", "name": "Mallory", "role": entity.RoleAdmin,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	reg := decodeObject(t, raw)
	assert.Equal(t, entity.RoleUser, reg["user"].(map[string]any)["role"])
	bearer := "Bearer " + reg["accessToken"].(string)

	_, raw = call(t, app, http.MethodPost, "/api/masters/quality", bearer, q1)
	id := decodeObject(t, raw)["id"].(string)

	resp, _ = call(t, app, http.MethodDelete, "/api/masters/quality/"+id+"/permanent", bearer, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = call(t, app, http.MethodGet, "/api/masters/quality/"+id, bearer, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "el registro sigue vivo")
}

func TestMetrics_Expuestas(t *testing.T) {
	app := newAPI(t)
	bearer := tokenFor(t, "u-1", entity.RoleUser, pkgjwt.TokenAccess)
	_, _ = call(t, app, http.MethodGet, "/api/masters/quality/nope", bearer, nil)

	resp, raw := call(t, app, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), `stock_lifecycle_operations_total{collection="qualities",operation="find_one",outcome="not_found"} 1`)
}
