package db

import (
	"time"
)

type Product struct {
	ID        int64     `json:"id"`
	Nome      string    `json:"nome"`
	Peso      float64   `json:"peso"`
	StlLink   string    `json:"stlLink"`
	Preco     *float64  `json:"preco"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Filament struct {
	ID                  int64     `json:"id"`
	Nome                string    `json:"nome"`
	Cor                 string    `json:"cor"`
	PesoTotal           float64   `json:"pesoTotal"`
	PesoUsado           float64   `json:"pesoUsado"`
	CustoPorGrama       float64   `json:"custoPorGrama"`
	PrecoPago           *float64  `json:"precoPago"`
	PesoCarretel        *float64  `json:"pesoCarretel"`
	QuantidadeCarreteis int       `json:"quantidadeCarreteis"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

type PrintJob struct {
	ID                   int64      `json:"id"`
	Identificador        string     `json:"identificador"`
	ProdutoID            int64      `json:"produtoId"`
	FilamentoID          *int64     `json:"filamentoId"`
	QuantidadeTotal      int        `json:"quantidadeTotal"`
	QuantidadeImpressa   int        `json:"quantidadeImpressa"`
	QuantidadeFalha      int        `json:"quantidadeFalha"`
	Prioridade           int        `json:"prioridade"`
	TempoEstimadoMinutos *int       `json:"tempoEstimadoMinutos"`
	Posicao              int        `json:"posicao"`
	ClienteNome          *string    `json:"clienteNome"`
	ClienteContato       *string    `json:"clienteContato"`
	EtapaCliente         string     `json:"etapaCliente"`
	Status               string     `json:"status"`
	Observacoes          *string    `json:"observacoes"`
	DataInicio           *time.Time `json:"dataInicio"`
	DataConclusao        *time.Time `json:"dataConclusao"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

// JobMaterial is one material line of a multi-material job, joined with the
// filament's display fields.
type JobMaterial struct {
	ID            int64   `json:"id"`
	PrintJobID    int64   `json:"printJobId"`
	FilamentoID   int64   `json:"filamentoId"`
	PesoGasto     float64 `json:"pesoGasto"`
	Nome          string  `json:"nome"`
	Cor           string  `json:"cor"`
	CustoPorGrama float64 `json:"custoPorGrama"`
}

// QueueEntry is a job as returned by the queue listing: the job row joined
// with product and legacy-filament display fields plus its material lines.
type QueueEntry struct {
	PrintJob
	ProdutoNome    *string       `json:"produtoNome"`
	ProdutoPeso    *float64      `json:"produtoPeso"`
	ProdutoStlLink *string       `json:"produtoStlLink"`
	FilamentoNome  *string       `json:"filamentoNome"`
	FilamentoCor   *string       `json:"filamentoCor"`
	FilamentoCusto *float64      `json:"filamentoCusto"`
	Materials      []JobMaterial `json:"materials"`
}

// PositionUpdate is one entry of a bulk reorder request.
type PositionUpdate struct {
	ID      int64 `json:"id"`
	Posicao int   `json:"posicao"`
}

// MaterialLine is a material association supplied at job creation.
type MaterialLine struct {
	FilamentoID int64   `json:"filamentoId"`
	PesoGasto   float64 `json:"pesoGasto"`
}

// JobUpdate carries the full set of mutable columns written by a job update.
type JobUpdate struct {
	Status             string
	EtapaCliente       string
	QuantidadeImpressa int
	QuantidadeFalha    int
	ClienteNome        *string
	ClienteContato     *string
	Observacoes        *string
	DataInicio         *time.Time
	DataConclusao      *time.Time
}
