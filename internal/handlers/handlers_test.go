package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"dutoan_backend/internal/repositories"
	"dutoan_backend/internal/services"
)

type testEnv struct {
	router     *gin.Engine
	dir        string
	masterData string
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	log := zap.NewNop()
	store := repositories.NewFileProjectRepository(filepath.Join(dir, "projects.json"))
	require.NoError(t, store.Ensure(context.Background()))

	projectService := services.NewProjectService(store, log)
	masterData := filepath.Join(dir, "master_data.json")

	project := NewProjectHandler(projectService, log)
	stats := NewStatisticsHandler(services.NewStatisticsService(projectService))
	export := NewExportHandler(services.NewExportService(projectService, filepath.Join(dir, "exports"), log), log)
	master := NewMasterDataHandler(services.NewMasterDataService(masterData), log)

	r := gin.New()
	r.GET("/api/projects", project.ListProjects)
	r.POST("/api/projects", project.CreateProject)
	r.GET("/api/projects/:id", project.GetProject)
	r.PUT("/api/projects/:id", project.UpdateProject)
	r.DELETE("/api/projects/:id", project.DeleteProject)
	r.GET("/api/statistics", stats.GetStatistics)
	r.POST("/api/export", export.ExportProject)
	r.GET("/master-data", master.GetMasterData)

	return &testEnv{router: r, dir: dir, masterData: masterData}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	e.router.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func TestProjectLifecycle(t *testing.T) {
	env := setupTestEnv(t)

	rr := env.do(t, http.MethodGet, "/api/projects", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())

	rr = env.do(t, http.MethodPost, "/api/projects", `{"name":"Nhà phố"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	created := decode(t, rr)
	id := created["id"].(string)
	assert.Equal(t, "Nhà phố", created["name"])
	assert.Len(t, created["sheets"], 4)

	// sheets keep their fixed order on the wire
	raw := rr.Body.String()
	assert.Less(t, strings.Index(raw, "Vật liệu"), strings.Index(raw, "Nhân công"))
	assert.Less(t, strings.Index(raw, "Máy thi công"), strings.Index(raw, "Tổng hợp"))

	rr = env.do(t, http.MethodGet, "/api/projects/"+id, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, created, decode(t, rr))

	rr = env.do(t, http.MethodPut, "/api/projects/"+id, `{"name":"Renamed","id":"other"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	updated := decode(t, rr)
	assert.Equal(t, "Renamed", updated["name"])
	assert.Equal(t, id, updated["id"])
	assert.Equal(t, created["createdAt"], updated["createdAt"])
	assert.Equal(t, created["sheets"], updated["sheets"])

	rr = env.do(t, http.MethodDelete, "/api/projects/"+id, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true}`, rr.Body.String())

	rr = env.do(t, http.MethodGet, "/api/projects/"+id, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"Project not found"}`, rr.Body.String())
}

func TestCreateProject_EmptyBodyUsesDefaults(t *testing.T) {
	env := setupTestEnv(t)

	rr := env.do(t, http.MethodPost, "/api/projects", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "New Project", decode(t, rr)["name"])
}

func TestBadBodies(t *testing.T) {
	env := setupTestEnv(t)

	rr := env.do(t, http.MethodPost, "/api/projects", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"Invalid request body"}`, rr.Body.String())

	rr = env.do(t, http.MethodPost, "/api/projects", `[1,2]`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodPost, "/api/projects", `{"sheets":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodPost, "/api/projects", `{}`)
	require.Equal(t, http.StatusOK, rr.Code)
	id := decode(t, rr)["id"].(string)

	rr = env.do(t, http.MethodPut, "/api/projects/"+id, `{"data":{}}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodPost, "/api/export", `not json`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUnknownIDs(t *testing.T) {
	env := setupTestEnv(t)

	rr := env.do(t, http.MethodGet, "/api/projects/nope", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = env.do(t, http.MethodPut, "/api/projects/nope", `{"name":"x"}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"Project not found"}`, rr.Body.String())

	rr = env.do(t, http.MethodDelete, "/api/projects/nope", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true}`, rr.Body.String())

	rr = env.do(t, http.MethodPost, "/api/export", `{"projectId":"nope"}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestStatistics(t *testing.T) {
	env := setupTestEnv(t)

	rr := env.do(t, http.MethodPost, "/api/projects", `{
		"name": "Kho",
		"sheets": {"Vật liệu": {"headers": ["tenVatTu"], "data": [
			{"tenVatTu": "Cát", "khoiLuong": 2, "thanhTienGiaTB": 40}
		]}},
		"data": [{"material": "Cát", "quantity": 1, "unitPrice": 10}]
	}`)
	require.Equal(t, http.StatusOK, rr.Code)
	id := decode(t, rr)["id"].(string)

	rr = env.do(t, http.MethodGet, "/api/statistics", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{
		"totalProjects": 1,
		"projects": [{
			"id": "`+id+`", "name": "Kho",
			"materials": [{"name": "Cát", "totalQuantity": 3, "totalCost": 50}],
			"totalCost": 50, "itemCount": 2
		}]
	}`, rr.Body.String())
}

func TestExport(t *testing.T) {
	env := setupTestEnv(t)

	rr := env.do(t, http.MethodPost, "/api/projects", `{
		"name": "Báo giá",
		"sheets": {"S": {"headers": ["a", "b"], "data": [{"a": 1, "b": 2}]}}
	}`)
	require.Equal(t, http.StatusOK, rr.Code)
	id := decode(t, rr)["id"].(string)

	rr = env.do(t, http.MethodPost, "/api/export", `{"projectId":"`+id+`"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "attachment")

	f, err := excelize.OpenReader(rr.Body)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("S")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}, {"1", "2"}}, rows)

	// the file stays in the export directory
	_, err = os.Stat(filepath.Join(env.dir, "exports", "export_Báo_giá_"+id+".xlsx"))
	assert.NoError(t, err)
}

func TestMasterData(t *testing.T) {
	env := setupTestEnv(t)

	rr := env.do(t, http.MethodGet, "/master-data", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"Master data file not found."}`, rr.Body.String())

	require.NoError(t, os.WriteFile(env.masterData, []byte(`{"units":["m3","kg"]}`), 0o644))
	rr = env.do(t, http.MethodGet, "/master-data", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, `{"units":["m3","kg"]}`, rr.Body.String())
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	require.NoError(t, os.WriteFile(env.masterData, []byte(`{broken`), 0o644))
	rr = env.do(t, http.MethodGet, "/master-data", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestStatistics_OverflowingRowStillEncodes(t *testing.T) {
	env := setupTestEnv(t)

	rr := env.do(t, http.MethodPost, "/api/projects", `{"name":"Normal","data":[{"material":"Cát","quantity":1,"unitPrice":2}]}`)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = env.do(t, http.MethodPost, "/api/projects", `{"name":"Huge","data":[{"material":"Thép","quantity":"1e200","unitPrice":"1e200"}]}`)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(t, http.MethodGet, "/api/statistics", "")
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, 2.0, body["totalProjects"])
	assert.Len(t, body["projects"], 2)
}

func TestLargeIntegersSurviveWrites(t *testing.T) {
	env := setupTestEnv(t)

	rr := env.do(t, http.MethodPost, "/api/projects", `{
		"name": "Mã hiệu",
		"sheets": {"Vật liệu": {"headers": ["maHieu"], "data": [{"maHieu": 12345678901234567891}]}}
	}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"maHieu":12345678901234567891`)
	id := decode(t, rr)["id"].(string)

	// an unrelated write rewrites the whole collection
	rr = env.do(t, http.MethodPost, "/api/projects", `{"name":"Other"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(t, http.MethodGet, "/api/projects/"+id, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"maHieu":12345678901234567891`)
}

func TestExport_EmptyBodyIsNotFound(t *testing.T) {
	env := setupTestEnv(t)

	rr := env.do(t, http.MethodPost, "/api/export", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = env.do(t, http.MethodPost, "/api/export", `{"projectId":`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
