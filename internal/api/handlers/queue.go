package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"forjafila/internal/core"
	"forjafila/internal/db"
	"forjafila/internal/pkg/logger"
)

type CreateJobRequest struct {
	ProdutoID            int64             `json:"produtoId"`
	FilamentoID          int64             `json:"filamentoId"`
	QuantidadeTotal      int               `json:"quantidadeTotal"`
	Prioridade           int               `json:"prioridade"`
	TempoEstimadoMinutos int               `json:"tempoEstimadoMinutos"`
	ClienteNome          string            `json:"clienteNome"`
	ClienteContato       string            `json:"clienteContato"`
	EtapaCliente         string            `json:"etapaCliente"`
	Observacoes          string            `json:"observacoes"`
	Identificador        string            `json:"identificador"`
	Materials            []db.MaterialLine `json:"materials"`
}

type UpdateJobRequest struct {
	Status             *string `json:"status"`
	EtapaCliente       *string `json:"etapaCliente"`
	QuantidadeImpressa *int    `json:"quantidadeImpressa"`
	QuantidadeFalha    *int    `json:"quantidadeFalha"`
	Observacoes        *string `json:"observacoes"`
	ClienteNome        *string `json:"clienteNome"`
	ClienteContato     *string `json:"clienteContato"`
}

type ReorderRequest struct {
	Jobs []db.PositionUpdate `json:"jobs"`
}

// QueueEntryResponse augments a queue entry with the derived material cost
// estimate for the full target quantity.
type QueueEntryResponse struct {
	*db.QueueEntry
	CustoEstimadoMaterial string `json:"custoEstimadoMaterial"`
}

type QueueHandler struct {
	lifecycle *core.Lifecycle
	log       *logger.Logger
}

func NewQueueHandler(lifecycle *core.Lifecycle, log *logger.Logger) *QueueHandler {
	return &QueueHandler{lifecycle: lifecycle, log: log}
}

func (h *QueueHandler) GetQueue(c *gin.Context) {
	entries, err := h.lifecycle.List(c.Request.Context())
	if err != nil {
		h.log.Error("failed to list queue", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao buscar fila de impressão"})
		return
	}

	responses := make([]QueueEntryResponse, 0, len(entries))
	for _, e := range entries {
		responses = append(responses, QueueEntryResponse{
			QueueEntry:            e,
			CustoEstimadoMaterial: estimateCost(e),
		})
	}

	c.JSON(http.StatusOK, responses)
}

func (h *QueueHandler) CreateJob(c *gin.Context) {
	var req CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job, err := h.lifecycle.Create(c.Request.Context(), core.CreateJobInput{
		ProdutoID:            req.ProdutoID,
		FilamentoID:          req.FilamentoID,
		QuantidadeTotal:      req.QuantidadeTotal,
		Prioridade:           req.Prioridade,
		TempoEstimadoMinutos: req.TempoEstimadoMinutos,
		ClienteNome:          req.ClienteNome,
		ClienteContato:       req.ClienteContato,
		EtapaCliente:         req.EtapaCliente,
		Observacoes:          req.Observacoes,
		Identificador:        req.Identificador,
		Materials:            req.Materials,
	})
	if err != nil {
		h.respondError(c, err, "Erro ao adicionar à fila")
		return
	}

	c.JSON(http.StatusCreated, job)
}

func (h *QueueHandler) UpdateJob(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	var req UpdateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job, err := h.lifecycle.Update(c.Request.Context(), id, core.UpdateJobInput{
		Status:             req.Status,
		EtapaCliente:       req.EtapaCliente,
		QuantidadeImpressa: req.QuantidadeImpressa,
		QuantidadeFalha:    req.QuantidadeFalha,
		Observacoes:        req.Observacoes,
		ClienteNome:        req.ClienteNome,
		ClienteContato:     req.ClienteContato,
	})
	if err != nil {
		h.respondError(c, err, "Erro ao atualizar tarefa")
		return
	}

	c.JSON(http.StatusOK, job)
}

func (h *QueueHandler) DeleteJob(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	if err := h.lifecycle.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err, "Erro ao remover tarefa")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Tarefa removida da fila"})
}

// ReorderQueue applies a bulk position overwrite. Invalid entries are
// dropped silently; only a malformed body is an error.
func (h *QueueHandler) ReorderQueue(c *gin.Context) {
	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Jobs == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Formato inválido para reordenação"})
		return
	}

	if err := h.lifecycle.Reorder(c.Request.Context(), req.Jobs); err != nil {
		h.respondError(c, err, "Erro ao atualizar ordem da fila")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Ordem da fila atualizada com sucesso"})
}

func (h *QueueHandler) respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, core.ErrMissingProduct), errors.Is(err, core.ErrQuantityExceedsTarget):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, core.ErrProductNotFound), errors.Is(err, core.ErrFilamentNotFound), errors.Is(err, core.ErrJobNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, core.ErrIdentifierTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.log.Error("queue operation failed", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

func estimateCost(e *db.QueueEntry) string {
	lines := make([]core.CostLine, 0, len(e.Materials))
	for _, m := range e.Materials {
		lines = append(lines, core.CostLine{PesoGasto: m.PesoGasto, CustoPorGrama: m.CustoPorGrama})
	}

	var fallback *core.CostLine
	if e.FilamentoCusto != nil && e.ProdutoPeso != nil {
		fallback = &core.CostLine{PesoGasto: *e.ProdutoPeso, CustoPorGrama: *e.FilamentoCusto}
	}

	return core.EstimateMaterialCost(lines, fallback, e.QuantidadeTotal).StringFixed(2)
}

func (h *QueueHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/queue", h.GetQueue)
	r.POST("/queue", h.CreateJob)
	r.PUT("/queue/reorder", h.ReorderQueue)
	r.PUT("/queue/:id", h.UpdateJob)
	r.DELETE("/queue/:id", h.DeleteJob)
}
