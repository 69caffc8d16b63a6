package lease

import (
	"github.com/spf13/viper"

	"coutloa/internal/models"
)

// Built-in defaults, the weakest configuration layer. A deal file only has
// to carry what differs from them. The actual-mileage readings and the
// post-buyout resale value stay unset on purpose: absent means "not
// recorded", not zero.
func setDefaults(v *viper.Viper) {
	v.SetDefault("deal.monthly_rent", 350.0)
	v.SetDefault("deal.months", 48)
	v.SetDefault("deal.annual_km", 15000.0)
	v.SetDefault("deal.upfront_costs", 0.0)
	v.SetDefault("deal.accessories_total", 0.0)
	v.SetDefault("deal.other_fixed_costs", 0.0)
	v.SetDefault("deal.charging_credits_total", 0.0)
	v.SetDefault("deal.restitution_fees", 0.0)
	v.SetDefault("deal.excess_rate_eur_per_km", 0.0)
	v.SetDefault("deal.excess_free_km", 0.0)

	v.SetDefault("energy.kwh_per_100km", 17.0)
	v.SetDefault("energy.share_free", 0.0)
	v.SetDefault("energy.home_price_eur_per_kwh", 0.23)
	v.SetDefault("energy.public_price_eur_per_kwh", 0.45)
	v.SetDefault("energy.share_home_of_paid", 1.0)

	v.SetDefault("maintenance.maint_eur_per_year", 200.0)
	v.SetDefault("maintenance.tire_set_cost", 700.0)
	v.SetDefault("maintenance.tire_sets_included", 0)
	v.SetDefault("maintenance.expected_tire_sets_total", 0)

	v.SetDefault("insurance.eur_per_month", 65.0)

	v.SetDefault("buyout.enabled", false)
	v.SetDefault("buyout.option_fee", 0.0)
	v.SetDefault("buyout.residual_value", 0.0)

	v.SetDefault("ik.enabled", false)
	v.SetDefault("ik.vehicle_cv", 5)
	v.SetDefault("ik.is_electric", true)
	v.SetDefault("ik.km_per_day", 0.0)
	v.SetDefault("ik.company_cap_km_per_day", 0.0)
	v.SetDefault("ik.worked_days", 0.0)
	v.SetDefault("ik.days_is_annual", true)
	v.SetDefault("ik.annualize", true)

	v.SetDefault("penalty_scenarios", string(models.PenaltyBoth))
}
