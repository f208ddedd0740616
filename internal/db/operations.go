package db

import (
	"context"
	"database/sql"
	"fmt"
)

type ProductOperations struct {
	db *sql.DB
}

func NewProductOperations(database *sql.DB) *ProductOperations {
	return &ProductOperations{db: database}
}

func (o *ProductOperations) GetProductByID(ctx context.Context, id int64) (*Product, error) {
	p := &Product{}
	err := o.db.QueryRowContext(ctx, GetProductByID, id).Scan(
		&p.ID, &p.Nome, &p.Peso, &p.StlLink, &p.Preco, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

type FilamentOperations struct {
	db *sql.DB
}

func NewFilamentOperations(database *sql.DB) *FilamentOperations {
	return &FilamentOperations{db: database}
}

func (o *FilamentOperations) GetFilamentByID(ctx context.Context, id int64) (*Filament, error) {
	f := &Filament{}
	err := o.db.QueryRowContext(ctx, GetFilamentByID, id).Scan(
		&f.ID, &f.Nome, &f.Cor, &f.PesoTotal, &f.PesoUsado, &f.CustoPorGrama,
		&f.PrecoPago, &f.PesoCarretel, &f.QuantidadeCarreteis, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to get filament: %w", err)
	}
	return f, nil
}

// Consume adds weight to the filament's used-weight counter. There is no
// hard cap: over-consumption is visible in the inventory screen and left to
// operator attention. A zero or unknown filament id is a no-op.
func (o *FilamentOperations) Consume(ctx context.Context, id int64, weight float64) error {
	if id <= 0 {
		return nil
	}
	if _, err := o.db.ExecContext(ctx, ConsumeFilament, weight, id); err != nil {
		return fmt.Errorf("failed to consume filament: %w", err)
	}
	return nil
}

// Refund subtracts weight from the used-weight counter, clamped at zero.
// A zero or unknown filament id is a no-op.
func (o *FilamentOperations) Refund(ctx context.Context, id int64, weight float64) error {
	if id <= 0 {
		return nil
	}
	if _, err := o.db.ExecContext(ctx, RefundFilament, weight, id); err != nil {
		return fmt.Errorf("failed to refund filament: %w", err)
	}
	return nil
}

type JobOperations struct {
	db *sql.DB
}

func NewJobOperations(database *sql.DB) *JobOperations {
	return &JobOperations{db: database}
}

// CreateJob inserts the job and its material lines in a single transaction.
// When the job carries no identifier, fallbackIdentifier derives one from the
// assigned row id and it is backfilled before the transaction commits, so a
// job is never visible without an identifier.
func (o *JobOperations) CreateJob(ctx context.Context, j *PrintJob, materials []MaterialLine, fallbackIdentifier func(int64) string) error {
	tx, err := o.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	var identificador interface{}
	if j.Identificador != "" {
		identificador = j.Identificador
	}

	result, err := tx.ExecContext(ctx, InsertJob,
		identificador, j.ProdutoID, j.FilamentoID,
		j.QuantidadeTotal, j.Prioridade, j.TempoEstimadoMinutos, j.Posicao,
		j.ClienteNome, j.ClienteContato, j.EtapaCliente, j.Status, j.Observacoes)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to create job: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to get job id: %w", err)
	}
	j.ID = id

	if j.Identificador == "" {
		j.Identificador = fallbackIdentifier(id)
		if _, err := tx.ExecContext(ctx, BackfillJobIdentifier, j.Identificador, id); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to backfill job identifier: %w", err)
		}
	}

	for _, m := range materials {
		if _, err := tx.ExecContext(ctx, InsertJobMaterial, id, m.FilamentoID, m.PesoGasto); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to create job material: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit job creation: %w", err)
	}
	return nil
}

func (o *JobOperations) GetJobByID(ctx context.Context, id int64) (*PrintJob, error) {
	j, err := scanJob(o.db.QueryRowContext(ctx, GetJobByID, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return j, nil
}

// GetJobByIdentifier looks a job up by its upper-cased identifier.
func (o *JobOperations) GetJobByIdentifier(ctx context.Context, identifier string) (*PrintJob, error) {
	j, err := scanJob(o.db.QueryRowContext(ctx, GetJobByIdentifier, identifier))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to get job by identifier: %w", err)
	}
	return j, nil
}

func (o *JobOperations) MaxPosition(ctx context.Context) (int, error) {
	var pos int
	if err := o.db.QueryRowContext(ctx, MaxJobPosition).Scan(&pos); err != nil {
		return 0, fmt.Errorf("failed to get max position: %w", err)
	}
	return pos, nil
}

// ListQueue returns every job joined with its product and legacy-filament
// display fields, ordered by status class, then position, then creation time.
// Each entry carries its material lines.
func (o *JobOperations) ListQueue(ctx context.Context) ([]*QueueEntry, error) {
	rows, err := o.db.QueryContext(ctx, ListQueue)
	if err != nil {
		return nil, fmt.Errorf("failed to list queue: %w", err)
	}
	defer rows.Close()

	var entries []*QueueEntry
	for rows.Next() {
		e := &QueueEntry{}
		var identificador sql.NullString
		if err := rows.Scan(
			&e.ID, &identificador, &e.ProdutoID, &e.FilamentoID,
			&e.QuantidadeTotal, &e.QuantidadeImpressa, &e.QuantidadeFalha,
			&e.Prioridade, &e.TempoEstimadoMinutos, &e.Posicao,
			&e.ClienteNome, &e.ClienteContato, &e.EtapaCliente, &e.Status, &e.Observacoes,
			&e.DataInicio, &e.DataConclusao, &e.CreatedAt, &e.UpdatedAt,
			&e.ProdutoNome, &e.ProdutoPeso, &e.ProdutoStlLink,
			&e.FilamentoNome, &e.FilamentoCor, &e.FilamentoCusto); err != nil {
			return nil, fmt.Errorf("failed to scan queue entry: %w", err)
		}
		e.Identificador = identificador.String
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read queue: %w", err)
	}

	for _, e := range entries {
		materials, err := o.ListJobMaterials(ctx, e.ID)
		if err != nil {
			return nil, err
		}
		e.Materials = materials
	}
	return entries, nil
}

func (o *JobOperations) ListJobMaterials(ctx context.Context, jobID int64) ([]JobMaterial, error) {
	rows, err := o.db.QueryContext(ctx, ListJobMaterials, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to list job materials: %w", err)
	}
	defer rows.Close()

	materials := make([]JobMaterial, 0)
	for rows.Next() {
		var m JobMaterial
		if err := rows.Scan(&m.ID, &m.PrintJobID, &m.FilamentoID, &m.PesoGasto, &m.Nome, &m.Cor, &m.CustoPorGrama); err != nil {
			return nil, fmt.Errorf("failed to scan job material: %w", err)
		}
		materials = append(materials, m)
	}
	return materials, rows.Err()
}

func (o *JobOperations) UpdateJob(ctx context.Context, id int64, upd JobUpdate) error {
	_, err := o.db.ExecContext(ctx, UpdateJob,
		upd.Status, upd.EtapaCliente,
		upd.QuantidadeImpressa, upd.QuantidadeFalha,
		upd.ClienteNome, upd.ClienteContato, upd.Observacoes,
		upd.DataInicio, upd.DataConclusao, id)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	return nil
}

// Reorder applies a bulk position overwrite in one transaction. Entries with
// a non-positive id or position are skipped, never errored.
func (o *JobOperations) Reorder(ctx context.Context, entries []PositionUpdate) error {
	tx, err := o.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for _, e := range entries {
		if e.ID <= 0 || e.Posicao <= 0 {
			continue
		}
		if _, err := tx.ExecContext(ctx, UpdateJobPosition, e.Posicao, e.ID); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to update job position: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reorder: %w", err)
	}
	return nil
}

// DeleteJob removes the job and its material lines. Returns sql.ErrNoRows
// when the job does not exist.
func (o *JobOperations) DeleteJob(ctx context.Context, id int64) error {
	tx, err := o.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, DeleteJobMaterials, id); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete job materials: %w", err)
	}

	result, err := tx.ExecContext(ctx, DeleteJob, id)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete job: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if affected == 0 {
		tx.Rollback()
		return sql.ErrNoRows
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit job deletion: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row rowScanner) (*PrintJob, error) {
	j := &PrintJob{}
	var identificador sql.NullString
	err := row.Scan(
		&j.ID, &identificador, &j.ProdutoID, &j.FilamentoID,
		&j.QuantidadeTotal, &j.QuantidadeImpressa, &j.QuantidadeFalha,
		&j.Prioridade, &j.TempoEstimadoMinutos, &j.Posicao,
		&j.ClienteNome, &j.ClienteContato, &j.EtapaCliente, &j.Status, &j.Observacoes,
		&j.DataInicio, &j.DataConclusao, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	j.Identificador = identificador.String
	return j, nil
}
