// Package tco computes the cost breakdown of an LOA deal: every line item,
// the French mileage-indemnity scale, the excess-mileage penalty and the
// restitution / buyout scenario totals. All functions are pure over the
// resolved LeaseConfig; amounts stay unrounded until rendering.
package tco

func yearsFromMonths(months int) float64 {
	return float64(months) / 12.0
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
