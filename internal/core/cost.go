package core

import (
	"github.com/shopspring/decimal"
)

// CostLine is one (per-unit weight, cost per gram) pair used for the
// estimated material cost of a job.
type CostLine struct {
	PesoGasto     float64
	CustoPorGrama float64
}

// EstimateMaterialCost returns the estimated material cost for printing the
// full target quantity: sum of per-unit-weight x cost-per-gram over the
// material lines, times quantity. When a job has no material lines the
// legacy fallback line (product weight + single filament cost) is used
// instead; with neither, the estimate is zero.
func EstimateMaterialCost(lines []CostLine, fallback *CostLine, quantity int) decimal.Decimal {
	if len(lines) == 0 {
		if fallback == nil {
			return decimal.Zero
		}
		lines = []CostLine{*fallback}
	}

	perUnit := decimal.Zero
	for _, line := range lines {
		cost := decimal.NewFromFloat(line.PesoGasto).Mul(decimal.NewFromFloat(line.CustoPorGrama))
		perUnit = perUnit.Add(cost)
	}
	return perUnit.Mul(decimal.NewFromInt(int64(quantity)))
}
