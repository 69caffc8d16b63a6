package tco

import (
	"math"

	"coutloa/internal/models"
)

// ExcessPenalty charges every kilometer driven beyond the contracted total
// plus the franchise. A deal with no recorded actual mileage pays nothing.
// The result is never negative: staying under the allowance earns no credit.
func ExcessPenalty(cfg models.LeaseConfig) float64 {
	actualKm, ok := ActualTotalKm(cfg.Deal)
	if !ok {
		return 0
	}
	rate := math.Max(0, cfg.Deal.ExcessRateEurPerKm)
	freeKm := math.Max(0, cfg.Deal.ExcessFreeKm)
	overKm := math.Max(0, actualKm-ContractTotalKm(cfg.Deal)-freeKm)
	return overKm * rate
}
