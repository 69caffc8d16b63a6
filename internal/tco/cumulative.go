package tco

import (
	"math"

	"coutloa/internal/models"
)

// CumulativeByMonth expands a deal into its cumulative month-end cost curve,
// one series per computed scenario. Entry costs (upfront, accessories, other
// fixed, charging credits) land in month 1, running costs accrue linearly,
// and end-of-lease settlements (excess penalty, restitution fees or the
// buyout flows) land in the final month, so the curve ends on the scenario
// total.
func CumulativeByMonth(cfg models.LeaseConfig) (models.Cumulative, error) {
	if err := cfg.Validate(); err != nil {
		return models.Cumulative{}, err
	}

	c := models.Cumulative{Months: cfg.Deal.Months}
	c.Restitution = cumulativeSeries(cfg, models.ScenarioRestitution)
	if cfg.Buyout.Enabled {
		c.Buyout = cumulativeSeries(cfg, models.ScenarioBuyout)
	}
	return c, nil
}

func cumulativeSeries(cfg models.LeaseConfig, kind models.ScenarioKind) []float64 {
	months := cfg.Deal.Months

	entry := cfg.Deal.UpfrontCosts + cfg.Deal.AccessoriesTotal + cfg.Deal.OtherFixedCosts
	if cfg.Deal.ChargingCreditsTotal != 0 {
		entry -= math.Abs(cfg.Deal.ChargingCreditsTotal)
	}

	running := cfg.Deal.MonthlyRent*float64(months) +
		EnergyCost(cfg) +
		MaintenanceCost(cfg) +
		TiresCost(cfg) +
		InsuranceCost(cfg) -
		IKTotal(cfg)

	var settlement float64
	if penaltyApplies(cfg.PenaltyScenarios, kind) {
		settlement += ExcessPenalty(cfg)
	}
	if kind == models.ScenarioBuyout {
		settlement += cfg.Buyout.OptionFee + cfg.Buyout.ResidualValue
		if cfg.Buyout.ResaleValueAfterBuyout != nil {
			settlement -= *cfg.Buyout.ResaleValueAfterBuyout
		}
	} else {
		settlement += cfg.Deal.RestitutionFees
	}

	series := make([]float64, months)
	for m := 1; m <= months; m++ {
		v := entry + running*(float64(m)/float64(months))
		if m == months {
			v += settlement
		}
		series[m-1] = v
	}
	return series
}
