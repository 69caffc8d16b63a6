package tco

import (
	"math"

	"coutloa/internal/models"
)

// Barème kilométrique voitures, millésime 2024/2025 (identiques). Each CV
// class carries three distance bands with closed upper bounds; the yearly
// amount for a distance d in a band is d*rate + flat.
type ikBand struct {
	maxKm float64
	rate  float64
	flat  float64
}

type ikClass struct {
	cv    int
	bands [3]ikBand
}

var ikScale = []ikClass{
	// 3 CV et moins
	{cv: 3, bands: [3]ikBand{{5000, 0.529, 0}, {20000, 0.316, 1065.0}, {math.Inf(1), 0.370, 0}}},
	{cv: 4, bands: [3]ikBand{{5000, 0.606, 0}, {20000, 0.340, 1330.0}, {math.Inf(1), 0.407, 0}}},
	{cv: 5, bands: [3]ikBand{{5000, 0.636, 0}, {20000, 0.357, 1385.0}, {math.Inf(1), 0.427, 0}}},
	{cv: 6, bands: [3]ikBand{{5000, 0.665, 0}, {20000, 0.374, 1435.0}, {math.Inf(1), 0.447, 0}}},
	// 7 CV et plus
	{cv: 7, bands: [3]ikBand{{5000, 0.697, 0}, {20000, 0.394, 1517.0}, {math.Inf(1), 0.470, 0}}},
}

// classFor clamps an out-of-range fiscal horsepower to the nearest defined
// class instead of failing: below 3 CV the lowest class applies, above 7 CV
// the highest.
func classFor(cv int) ikClass {
	for _, c := range ikScale {
		if cv <= c.cv {
			return c
		}
	}
	return ikScale[len(ikScale)-1]
}

// ScaleAmount returns the yearly mileage indemnity for an annual distance.
// A distance sitting exactly on a band threshold belongs to the lower band.
// Electric vehicles get the official +20% after the band formula.
func ScaleAmount(distanceKm float64, cv int, electric bool) float64 {
	d := math.Max(0, distanceKm)
	class := classFor(cv)
	var amount float64
	for _, b := range class.bands {
		if d <= b.maxKm {
			amount = d*b.rate + b.flat
			break
		}
	}
	if electric {
		amount *= 1.20
	}
	return amount
}

// IKTotal computes the indemnity over the whole lease from the daily
// professional usage. The company cap trims each day's eligible distance;
// with annualization the scale is applied per year and summed, otherwise it
// is applied once to the full distance.
func IKTotal(cfg models.LeaseConfig) float64 {
	ik := cfg.IK
	if !ik.Enabled {
		return 0
	}
	months := cfg.Deal.Months

	workedDays := ik.WorkedDays
	if ik.DaysIsAnnual {
		workedDays = ik.WorkedDays * (float64(months) / 12.0)
	}

	perDay := ik.KmPerDay
	if ik.CompanyCapKmPerDay > 0 {
		perDay = math.Min(ik.KmPerDay, ik.CompanyCapKmPerDay)
	}
	totalKm := perDay * workedDays
	if totalKm <= 0 {
		return 0
	}

	years := math.Max(float64(months)/12.0, 1e-9)
	if ik.Annualize {
		kmPerYear := totalKm / years
		return ScaleAmount(kmPerYear, ik.VehicleCV, ik.IsElectric) * years
	}
	return ScaleAmount(totalKm, ik.VehicleCV, ik.IsElectric)
}
