package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"forjafila/internal/core"
	"forjafila/internal/db"
	"forjafila/internal/pkg/logger"
)

func newTestRouter(t *testing.T) (*gin.Engine, *sql.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	database, err := db.Open(db.Config{Path: ":memory:"})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	jobs := db.NewJobOperations(database)
	products := db.NewProductOperations(database)
	filaments := db.NewFilamentOperations(database)
	lifecycle := core.NewLifecycle(jobs, products, filaments, logger.Nop())

	engine := gin.New()
	handler := NewQueueHandler(lifecycle, logger.Nop())
	handler.RegisterRoutes(engine.Group("/api"))
	return engine, database
}

func seedProduct(t *testing.T, database *sql.DB, nome string, peso float64) int64 {
	t.Helper()
	result, err := database.Exec("INSERT INTO products (nome, peso, stl_link) VALUES (?, ?, '')", nome, peso)
	if err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	id, _ := result.LastInsertId()
	return id
}

func seedFilament(t *testing.T, database *sql.DB, nome string) int64 {
	t.Helper()
	result, err := database.Exec(
		"INSERT INTO filaments (nome, cor, peso_total, custo_por_grama) VALUES (?, 'preto', 1000, 0.15)", nome)
	if err != nil {
		t.Fatalf("failed to seed filament: %v", err)
	}
	id, _ := result.LastInsertId()
	return id
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode error body %q: %v", w.Body.String(), err)
	}
	return body["error"]
}

func TestCreateJob_Success(t *testing.T) {
	engine, database := newTestRouter(t)
	produtoID := seedProduct(t, database, "Vaso Espiral", 120)

	w := doJSON(t, engine, http.MethodPost, "/api/queue", CreateJobRequest{
		ProdutoID:       produtoID,
		QuantidadeTotal: 3,
		ClienteNome:     "Maria",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}

	var job db.PrintJob
	if err := json.Unmarshal(w.Body.Bytes(), &job); err != nil {
		t.Fatalf("failed to decode job: %v", err)
	}
	if job.ID == 0 {
		t.Error("job id not assigned")
	}
	if job.Identificador != fmt.Sprintf("JOB-%06d", job.ID) {
		t.Errorf("identifier = %q, want derived JOB number", job.Identificador)
	}
	if job.Status != "FILA" {
		t.Errorf("status = %q, want FILA", job.Status)
	}
}

func TestCreateJob_UnknownProduct(t *testing.T) {
	engine, _ := newTestRouter(t)

	w := doJSON(t, engine, http.MethodPost, "/api/queue", CreateJobRequest{ProdutoID: 999})
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404: %s", w.Code, w.Body.String())
	}
	if msg := decodeError(t, w); msg != "produto não encontrado" {
		t.Errorf("error = %q", msg)
	}
}

func TestCreateJob_MissingProduct(t *testing.T) {
	engine, _ := newTestRouter(t)

	w := doJSON(t, engine, http.MethodPost, "/api/queue", CreateJobRequest{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
	}
}

func TestCreateJob_DuplicateIdentifier(t *testing.T) {
	engine, database := newTestRouter(t)
	produtoID := seedProduct(t, database, "Chaveiro", 8)

	first := doJSON(t, engine, http.MethodPost, "/api/queue", CreateJobRequest{
		ProdutoID:     produtoID,
		Identificador: "PEDIDO-42",
	})
	if first.Code != http.StatusCreated {
		t.Fatalf("first create status = %d: %s", first.Code, first.Body.String())
	}

	second := doJSON(t, engine, http.MethodPost, "/api/queue", CreateJobRequest{
		ProdutoID:     produtoID,
		Identificador: "pedido-42",
	})
	if second.Code != http.StatusConflict {
		t.Fatalf("duplicate create status = %d, want 409: %s", second.Code, second.Body.String())
	}
}

func TestUpdateJob_QuantityOverTarget(t *testing.T) {
	engine, database := newTestRouter(t)
	produtoID := seedProduct(t, database, "Suporte", 30)

	created := doJSON(t, engine, http.MethodPost, "/api/queue", CreateJobRequest{
		ProdutoID:       produtoID,
		QuantidadeTotal: 5,
	})
	var job db.PrintJob
	if err := json.Unmarshal(created.Body.Bytes(), &job); err != nil {
		t.Fatalf("failed to decode job: %v", err)
	}

	impressa, falha := 4, 2
	w := doJSON(t, engine, http.MethodPut, fmt.Sprintf("/api/queue/%d", job.ID), UpdateJobRequest{
		QuantidadeImpressa: &impressa,
		QuantidadeFalha:    &falha,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
	}
}

func TestUpdateJob_NotFound(t *testing.T) {
	engine, _ := newTestRouter(t)

	w := doJSON(t, engine, http.MethodPut, "/api/queue/777", UpdateJobRequest{})
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404: %s", w.Code, w.Body.String())
	}
}

func TestUpdateJob_InvalidID(t *testing.T) {
	engine, _ := newTestRouter(t)

	w := doJSON(t, engine, http.MethodPut, "/api/queue/abc", UpdateJobRequest{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
	}
}

func TestDeleteJob_NotFound(t *testing.T) {
	engine, _ := newTestRouter(t)

	w := doJSON(t, engine, http.MethodDelete, "/api/queue/555", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404: %s", w.Code, w.Body.String())
	}
}

func TestDeleteJob_Success(t *testing.T) {
	engine, database := newTestRouter(t)
	produtoID := seedProduct(t, database, "Miniatura", 15)

	created := doJSON(t, engine, http.MethodPost, "/api/queue", CreateJobRequest{ProdutoID: produtoID})
	var job db.PrintJob
	if err := json.Unmarshal(created.Body.Bytes(), &job); err != nil {
		t.Fatalf("failed to decode job: %v", err)
	}

	w := doJSON(t, engine, http.MethodDelete, fmt.Sprintf("/api/queue/%d", job.ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	list := doJSON(t, engine, http.MethodGet, "/api/queue", nil)
	var entries []QueueEntryResponse
	if err := json.Unmarshal(list.Body.Bytes(), &entries); err != nil {
		t.Fatalf("failed to decode queue: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("queue length after delete = %d, want 0", len(entries))
	}
}

func TestReorderQueue_AppliesPositions(t *testing.T) {
	engine, database := newTestRouter(t)
	produtoID := seedProduct(t, database, "Engrenagem", 20)

	var ids []int64
	for i := 0; i < 3; i++ {
		created := doJSON(t, engine, http.MethodPost, "/api/queue", CreateJobRequest{ProdutoID: produtoID})
		var job db.PrintJob
		if err := json.Unmarshal(created.Body.Bytes(), &job); err != nil {
			t.Fatalf("failed to decode job: %v", err)
		}
		ids = append(ids, job.ID)
	}

	// Reverse the queue; the entry with id 0 must be dropped, not errored.
	w := doJSON(t, engine, http.MethodPut, "/api/queue/reorder", ReorderRequest{
		Jobs: []db.PositionUpdate{
			{ID: ids[0], Posicao: 3},
			{ID: ids[1], Posicao: 2},
			{ID: ids[2], Posicao: 1},
			{ID: 0, Posicao: 9},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	list := doJSON(t, engine, http.MethodGet, "/api/queue", nil)
	var entries []QueueEntryResponse
	if err := json.Unmarshal(list.Body.Bytes(), &entries); err != nil {
		t.Fatalf("failed to decode queue: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("queue length = %d, want 3", len(entries))
	}
	for i, wantID := range []int64{ids[2], ids[1], ids[0]} {
		if entries[i].ID != wantID {
			t.Errorf("position %d holds job %d, want %d", i, entries[i].ID, wantID)
		}
	}
}

func TestReorderQueue_MalformedBody(t *testing.T) {
	engine, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPut, "/api/queue/reorder", bytes.NewReader([]byte("not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
	}
}

func TestGetQueue_IncludesCostEstimate(t *testing.T) {
	engine, database := newTestRouter(t)
	produtoID := seedProduct(t, database, "Luminária", 80)
	filamentoID := seedFilament(t, database, "PLA Âmbar")

	created := doJSON(t, engine, http.MethodPost, "/api/queue", CreateJobRequest{
		ProdutoID:       produtoID,
		QuantidadeTotal: 2,
		Materials:       []db.MaterialLine{{FilamentoID: filamentoID, PesoGasto: 10}},
	})
	if created.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", created.Code, created.Body.String())
	}

	list := doJSON(t, engine, http.MethodGet, "/api/queue", nil)
	if list.Code != http.StatusOK {
		t.Fatalf("list status = %d: %s", list.Code, list.Body.String())
	}

	var entries []QueueEntryResponse
	if err := json.Unmarshal(list.Body.Bytes(), &entries); err != nil {
		t.Fatalf("failed to decode queue: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("queue length = %d, want 1", len(entries))
	}
	// 10g * 0.15/g * 2 units
	if entries[0].CustoEstimadoMaterial != "3.00" {
		t.Errorf("cost estimate = %q, want 3.00", entries[0].CustoEstimadoMaterial)
	}
	if len(entries[0].Materials) != 1 {
		t.Errorf("materials length = %d, want 1", len(entries[0].Materials))
	}
}
