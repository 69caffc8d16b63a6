package tco

import "coutloa/internal/models"

// EnergyCost values electricity on the contractual mileage by convention:
// the contract was sized for those kilometers, and driving more or less
// shows up in the excess-penalty line, not here. The free share (employer
// charging) is removed first, then the paid kWh split between home and
// public pricing.
func EnergyCost(cfg models.LeaseConfig) float64 {
	totalKm := ContractTotalKm(cfg.Deal)
	kwhTotal := totalKm * (cfg.Energy.KwhPer100Km / 100.0)

	paidKwh := kwhTotal * (1.0 - clamp01(cfg.Energy.ShareFree))

	homeKwh := paidKwh * clamp01(cfg.Energy.ShareHomeOfPaid)
	publicKwh := paidKwh - homeKwh

	return homeKwh*cfg.Energy.HomePriceEurPerKwh + publicKwh*cfg.Energy.PublicPriceEurPerKwh
}
