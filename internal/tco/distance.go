package tco

import "coutloa/internal/models"

// ContractTotalKm is the mileage the contract was sized for over the full term.
func ContractTotalKm(d models.DealParams) float64 {
	return d.AnnualKm * (float64(d.Months) / 12.0)
}

// ActualTotalKm returns the recorded real mileage over the term, the total
// figure taking precedence over the annual one. ok is false when the deal
// records neither.
func ActualTotalKm(d models.DealParams) (km float64, ok bool) {
	if d.ActualTotalKm != nil {
		return *d.ActualTotalKm, true
	}
	if d.ActualAnnualKm != nil {
		return *d.ActualAnnualKm * (float64(d.Months) / 12.0), true
	}
	return 0, false
}
