package models

import "fmt"

// Validate checks a resolved config before any computation starts. It returns
// the first offending field as *ConfigurationError or *InvalidValueError; a
// config that passes produces a full report, there is no partial failure later.
// Charging credits may be entered with either sign, the engine deducts their
// absolute value.
func (c LeaseConfig) Validate() error {
	if c.Deal.Months == 0 {
		return &ConfigurationError{Field: "deal.months"}
	}
	if c.Deal.Months < 0 {
		return &InvalidValueError{Field: "deal.months", Value: float64(c.Deal.Months)}
	}

	nonNegative := []struct {
		field string
		value float64
	}{
		{"deal.monthly_rent", c.Deal.MonthlyRent},
		{"deal.annual_km", c.Deal.AnnualKm},
		{"deal.upfront_costs", c.Deal.UpfrontCosts},
		{"deal.accessories_total", c.Deal.AccessoriesTotal},
		{"deal.other_fixed_costs", c.Deal.OtherFixedCosts},
		{"deal.restitution_fees", c.Deal.RestitutionFees},
		{"deal.excess_rate_eur_per_km", c.Deal.ExcessRateEurPerKm},
		{"deal.excess_free_km", c.Deal.ExcessFreeKm},
		{"energy.kwh_per_100km", c.Energy.KwhPer100Km},
		{"energy.home_price_eur_per_kwh", c.Energy.HomePriceEurPerKwh},
		{"energy.public_price_eur_per_kwh", c.Energy.PublicPriceEurPerKwh},
		{"maintenance.maint_eur_per_year", c.Maintenance.MaintEurPerYear},
		{"maintenance.tire_set_cost", c.Maintenance.TireSetCost},
		{"maintenance.tire_sets_included", float64(c.Maintenance.TireSetsIncluded)},
		{"maintenance.expected_tire_sets_total", float64(c.Maintenance.ExpectedTireSetsTotal)},
		{"insurance.eur_per_month", c.Insurance.EurPerMonth},
		{"buyout.option_fee", c.Buyout.OptionFee},
		{"buyout.residual_value", c.Buyout.ResidualValue},
		{"ik.km_per_day", c.IK.KmPerDay},
		{"ik.company_cap_km_per_day", c.IK.CompanyCapKmPerDay},
		{"ik.worked_days", c.IK.WorkedDays},
	}
	for _, f := range nonNegative {
		if f.value < 0 {
			return &InvalidValueError{Field: f.field, Value: f.value}
		}
	}

	if c.Deal.ActualAnnualKm != nil && *c.Deal.ActualAnnualKm < 0 {
		return &InvalidValueError{Field: "deal.actual_annual_km", Value: *c.Deal.ActualAnnualKm}
	}
	if c.Deal.ActualTotalKm != nil && *c.Deal.ActualTotalKm < 0 {
		return &InvalidValueError{Field: "deal.actual_total_km", Value: *c.Deal.ActualTotalKm}
	}
	if c.Buyout.ResaleValueAfterBuyout != nil && *c.Buyout.ResaleValueAfterBuyout < 0 {
		return &InvalidValueError{Field: "buyout.resale_value_after_buyout", Value: *c.Buyout.ResaleValueAfterBuyout}
	}

	switch c.PenaltyScenarios {
	case "", PenaltyBoth, PenaltyRestitution, PenaltyBuyout, PenaltyNone:
	default:
		return fmt.Errorf("penalty_scenarios: valeur inconnue %q", string(c.PenaltyScenarios))
	}
	return nil
}
