package core

import (
	"fmt"
	"strings"
)

// ProductionStatus tracks where a job sits in the physical print workflow.
type ProductionStatus string

const (
	StatusFila       ProductionStatus = "FILA"
	StatusImprimindo ProductionStatus = "IMPRIMINDO"
	StatusPausado    ProductionStatus = "PAUSADO"
	StatusConcluido  ProductionStatus = "CONCLUIDO"
	StatusCancelado  ProductionStatus = "CANCELADO"
)

// CustomerStage tracks customer communication, independent of production
// status. The two dimensions may disagree without being an error.
type CustomerStage string

const (
	StageNovoPedido            CustomerStage = "NOVO_PEDIDO"
	StageModelagem             CustomerStage = "MODELAGEM"
	StageEmAnalise             CustomerStage = "EM_ANALISE"
	StageCotacao               CustomerStage = "COTACAO"
	StageVerificandoQuantidade CustomerStage = "VERIFICANDO_QUANTIDADE"
	StageAguardandoAprovacao   CustomerStage = "AGUARDANDO_APROVACAO"
	StageAprovadoParaImpressao CustomerStage = "APROVADO_PARA_IMPRESSAO"
	StageEmProducao            CustomerStage = "EM_PRODUCAO"
	StageFinalizado            CustomerStage = "FINALIZADO"
	StageEntregue              CustomerStage = "ENTREGUE"
)

// ParseProductionStatus maps an arbitrary input to a known status. Unknown
// values fall back to FILA so malformed client input never blocks the flow.
func ParseProductionStatus(s string) ProductionStatus {
	switch ProductionStatus(s) {
	case StatusFila, StatusImprimindo, StatusPausado, StatusConcluido, StatusCancelado:
		return ProductionStatus(s)
	default:
		return StatusFila
	}
}

// ParseCustomerStage maps an arbitrary input to a known stage, falling back
// to NOVO_PEDIDO for unknown values.
func ParseCustomerStage(s string) CustomerStage {
	switch CustomerStage(s) {
	case StageNovoPedido, StageModelagem, StageEmAnalise, StageCotacao,
		StageVerificandoQuantidade, StageAguardandoAprovacao,
		StageAprovadoParaImpressao, StageEmProducao, StageFinalizado, StageEntregue:
		return CustomerStage(s)
	default:
		return StageNovoPedido
	}
}

// StatusRank gives the queue display priority class: active prints first,
// then waiting, paused, and finally finished work.
func StatusRank(s ProductionStatus) int {
	switch s {
	case StatusImprimindo:
		return 1
	case StatusFila:
		return 2
	case StatusPausado:
		return 3
	case StatusConcluido:
		return 4
	case StatusCancelado:
		return 5
	default:
		return 6
	}
}

// BuildIdentifier derives the display identifier for jobs created without
// one, from the assigned row id.
func BuildIdentifier(id int64) string {
	return fmt.Sprintf("JOB-%06d", id)
}

// NormalizeIdentifier canonicalizes an externally supplied identifier.
// Identifiers are compared case-insensitively, so they are stored upper-cased.
func NormalizeIdentifier(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func ClampMin(v, min int) int {
	if v < min {
		return min
	}
	return v
}
