package core

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"forjafila/internal/db"
	"forjafila/internal/pkg/logger"
)

var (
	ErrMissingProduct        = errors.New("produto é obrigatório")
	ErrProductNotFound       = errors.New("produto não encontrado")
	ErrFilamentNotFound      = errors.New("filamento não encontrado")
	ErrJobNotFound           = errors.New("tarefa não encontrada")
	ErrIdentifierTaken       = errors.New("identificador já está em uso")
	ErrQuantityExceedsTarget = errors.New("soma de sucesso + falha não pode passar da meta total")
)

// CreateJobInput is the caller-facing payload for enqueueing a job.
type CreateJobInput struct {
	ProdutoID            int64
	FilamentoID          int64
	QuantidadeTotal      int
	Prioridade           int
	TempoEstimadoMinutos int
	ClienteNome          string
	ClienteContato       string
	EtapaCliente         string
	Observacoes          string
	Identificador        string
	Materials            []db.MaterialLine
}

// UpdateJobInput is a partial update: nil fields keep the stored value.
type UpdateJobInput struct {
	Status             *string
	EtapaCliente       *string
	QuantidadeImpressa *int
	QuantidadeFalha    *int
	Observacoes        *string
	ClienteNome        *string
	ClienteContato     *string
}

// Lifecycle orchestrates job creation, progress updates, deletion and
// reordering, and drives the filament ledger as a side effect of quantity
// changes.
type Lifecycle struct {
	jobs      *db.JobOperations
	products  *db.ProductOperations
	filaments *db.FilamentOperations
	log       *logger.Logger
	now       func() time.Time
}

func NewLifecycle(jobs *db.JobOperations, products *db.ProductOperations, filaments *db.FilamentOperations, log *logger.Logger) *Lifecycle {
	return &Lifecycle{
		jobs:      jobs,
		products:  products,
		filaments: filaments,
		log:       log,
		now:       time.Now,
	}
}

// List returns the queue in its canonical order. Legacy rows persisted
// before identifier backfill existed still get a derived identifier.
func (l *Lifecycle) List(ctx context.Context) ([]*db.QueueEntry, error) {
	entries, err := l.jobs.ListQueue(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.Identificador == "" {
			e.Identificador = BuildIdentifier(e.ID)
		}
	}
	return entries, nil
}

// Create validates the referenced entities, assigns the next tail position
// and persists the job together with its material lines.
func (l *Lifecycle) Create(ctx context.Context, in CreateJobInput) (*db.PrintJob, error) {
	if in.ProdutoID <= 0 {
		return nil, ErrMissingProduct
	}

	if _, err := l.products.GetProductByID(ctx, in.ProdutoID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if in.FilamentoID > 0 {
		if _, err := l.filaments.GetFilamentByID(ctx, in.FilamentoID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrFilamentNotFound
			}
			return nil, err
		}
	}

	identifier := NormalizeIdentifier(in.Identificador)
	if identifier != "" {
		if _, err := l.jobs.GetJobByIdentifier(ctx, identifier); err == nil {
			return nil, ErrIdentifierTaken
		} else if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
	}

	maxPos, err := l.jobs.MaxPosition(ctx)
	if err != nil {
		return nil, err
	}

	job := &db.PrintJob{
		Identificador:   identifier,
		ProdutoID:       in.ProdutoID,
		QuantidadeTotal: ClampMin(in.QuantidadeTotal, 1),
		Prioridade:      ClampMin(in.Prioridade, 1),
		Posicao:         maxPos + 1,
		EtapaCliente:    string(ParseCustomerStage(in.EtapaCliente)),
		Status:          string(StatusFila),
		ClienteNome:     optionalString(in.ClienteNome),
		ClienteContato:  optionalString(in.ClienteContato),
		Observacoes:     optionalString(in.Observacoes),
	}
	if in.FilamentoID > 0 {
		job.FilamentoID = &in.FilamentoID
	}
	if in.TempoEstimadoMinutos > 0 {
		job.TempoEstimadoMinutos = &in.TempoEstimadoMinutos
	}

	if err := l.jobs.CreateJob(ctx, job, in.Materials, BuildIdentifier); err != nil {
		return nil, err
	}

	l.log.Info("job created",
		"job_id", job.ID,
		"identificador", job.Identificador,
		"produto_id", job.ProdutoID,
		"posicao", job.Posicao,
	)
	return l.jobs.GetJobByID(ctx, job.ID)
}

// Update applies a partial status/progress update. The success+failure sum
// is validated against the target before anything is written; the resulting
// delta against the previous sum drives ledger consumption or refund.
func (l *Lifecycle) Update(ctx context.Context, id int64, in UpdateJobInput) (*db.PrintJob, error) {
	current, err := l.jobs.GetJobByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}

	nextStatus := ProductionStatus(current.Status)
	if in.Status != nil {
		nextStatus = ParseProductionStatus(*in.Status)
	}

	nextStage := ParseCustomerStage(current.EtapaCliente)
	if in.EtapaCliente != nil {
		nextStage = ParseCustomerStage(*in.EtapaCliente)
	}

	nextSuccess := current.QuantidadeImpressa
	if in.QuantidadeImpressa != nil {
		nextSuccess = ClampMin(*in.QuantidadeImpressa, 0)
	}

	nextFail := current.QuantidadeFalha
	if in.QuantidadeFalha != nil {
		nextFail = ClampMin(*in.QuantidadeFalha, 0)
	}

	totalProduced := nextSuccess + nextFail
	if totalProduced > current.QuantidadeTotal {
		return nil, ErrQuantityExceedsTarget
	}

	dataInicio := current.DataInicio
	if nextStatus == StatusImprimindo && dataInicio == nil {
		t := l.now()
		dataInicio = &t
	}

	dataConclusao := current.DataConclusao
	if (nextStatus == StatusConcluido || totalProduced == current.QuantidadeTotal) && dataConclusao == nil {
		t := l.now()
		dataConclusao = &t
	}

	upd := db.JobUpdate{
		Status:             string(nextStatus),
		EtapaCliente:       string(nextStage),
		QuantidadeImpressa: nextSuccess,
		QuantidadeFalha:    nextFail,
		ClienteNome:        mergeOptional(in.ClienteNome, current.ClienteNome),
		ClienteContato:     mergeOptional(in.ClienteContato, current.ClienteContato),
		Observacoes:        mergeOptional(in.Observacoes, current.Observacoes),
		DataInicio:         dataInicio,
		DataConclusao:      dataConclusao,
	}

	if err := l.jobs.UpdateJob(ctx, id, upd); err != nil {
		return nil, err
	}

	previousProduced := current.QuantidadeImpressa + current.QuantidadeFalha
	delta := totalProduced - previousProduced
	if delta != 0 {
		if err := l.applyLedgerDelta(ctx, current, delta); err != nil {
			l.log.Error("ledger update failed", "job_id", id, "delta", delta, "error", err)
			return nil, err
		}
	}

	return l.jobs.GetJobByID(ctx, id)
}

// applyLedgerDelta consumes or refunds filament for the produced-unit delta.
// Material lines win; a job without lines falls back to its legacy filament
// combined with the product's fixed per-unit weight.
func (l *Lifecycle) applyLedgerDelta(ctx context.Context, job *db.PrintJob, delta int) error {
	units := math.Abs(float64(delta))

	materials, err := l.jobs.ListJobMaterials(ctx, job.ID)
	if err != nil {
		return err
	}

	if len(materials) > 0 {
		for _, m := range materials {
			weight := m.PesoGasto * units
			if delta > 0 {
				err = l.filaments.Consume(ctx, m.FilamentoID, weight)
			} else {
				err = l.filaments.Refund(ctx, m.FilamentoID, weight)
			}
			if err != nil {
				return err
			}
		}
		return nil
	}

	if job.FilamentoID == nil {
		return nil
	}

	product, err := l.products.GetProductByID(ctx, job.ProdutoID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	}

	weight := product.Peso * units
	if delta > 0 {
		return l.filaments.Consume(ctx, *job.FilamentoID, weight)
	}
	return l.filaments.Refund(ctx, *job.FilamentoID, weight)
}

// Delete hard-deletes the job and its material lines. Already-consumed
// filament stays consumed: the material was physically spent and removing
// the record does not bring it back.
func (l *Lifecycle) Delete(ctx context.Context, id int64) error {
	if err := l.jobs.DeleteJob(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrJobNotFound
		}
		return err
	}
	l.log.Info("job deleted", "job_id", id)
	return nil
}

// Reorder overwrites queue positions in bulk. Invalid entries are dropped,
// valid ones are applied atomically.
func (l *Lifecycle) Reorder(ctx context.Context, entries []db.PositionUpdate) error {
	if err := l.jobs.Reorder(ctx, entries); err != nil {
		return fmt.Errorf("reorder failed: %w", err)
	}
	return nil
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func mergeOptional(next *string, current *string) *string {
	if next == nil {
		return current
	}
	return optionalString(*next)
}
