package tco

import "coutloa/internal/models"

// MaintenanceCost prorates the yearly maintenance budget over the lease term.
func MaintenanceCost(cfg models.LeaseConfig) float64 {
	return cfg.Maintenance.MaintEurPerYear * yearsFromMonths(cfg.Deal.Months)
}

// TiresCost charges the tire sets expected beyond what the contract includes.
func TiresCost(cfg models.LeaseConfig) float64 {
	extra := cfg.Maintenance.ExpectedTireSetsTotal - cfg.Maintenance.TireSetsIncluded
	if extra <= 0 {
		return 0
	}
	return float64(extra) * cfg.Maintenance.TireSetCost
}

func InsuranceCost(cfg models.LeaseConfig) float64 {
	return cfg.Insurance.EurPerMonth * float64(cfg.Deal.Months)
}
