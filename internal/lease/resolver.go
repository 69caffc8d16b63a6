// Package lease resolves a deal configuration from its three layers: the
// built-in defaults, the JSON deal file, then explicit overrides, strongest
// last. The result is one validated, immutable LeaseConfig.
package lease

import (
	"fmt"
	"io"
	"math"

	"github.com/spf13/viper"

	"coutloa/internal/models"
)

// Overrides carries the values a caller pins explicitly, CLI flags or API
// query fragments. A nil field leaves the underlying layers untouched,
// matching flag-was-not-given semantics.
type Overrides struct {
	Months          *int
	MonthlyRent     *float64
	AnnualKm        *float64
	Upfront         *float64
	Accessories     *float64
	OtherFixed      *float64
	ChargingCredits *float64
	RestitutionFees *float64
	ActualAnnualKm  *float64
	ActualTotalKm   *float64
	ExcessRate      *float64
	ExcessFreeKm    *float64

	KwhPer100     *float64
	ShareFree     *float64
	HomePrice     *float64
	PublicPrice   *float64
	ShareHomePaid *float64

	MaintYear         *float64
	TireCost          *float64
	TireIncluded      *int
	TireExpectedTotal *int
	InsMonth          *float64

	Buyout    *bool
	OptionFee *float64
	VR        *float64
	Resale    *float64

	IKEnabled      *bool
	IKCv           *int
	IKElectric     *bool
	IKKmDay        *float64
	IKCapKmDay     *float64
	IKDays         *float64
	IKDaysIsAnnual *bool
	IKAnnualize    *bool

	PenaltyScenarios *string
}

func (o Overrides) apply(v *viper.Viper) {
	setF := func(key string, p *float64) {
		if p != nil {
			v.Set(key, *p)
		}
	}
	setI := func(key string, p *int) {
		if p != nil {
			v.Set(key, *p)
		}
	}
	setB := func(key string, p *bool) {
		if p != nil {
			v.Set(key, *p)
		}
	}

	setI("deal.months", o.Months)
	setF("deal.monthly_rent", o.MonthlyRent)
	setF("deal.annual_km", o.AnnualKm)
	setF("deal.upfront_costs", o.Upfront)
	setF("deal.accessories_total", o.Accessories)
	setF("deal.other_fixed_costs", o.OtherFixed)
	setF("deal.charging_credits_total", o.ChargingCredits)
	setF("deal.restitution_fees", o.RestitutionFees)
	setF("deal.actual_annual_km", o.ActualAnnualKm)
	setF("deal.actual_total_km", o.ActualTotalKm)
	// A negative rate or franchise from the command line means zero, the
	// flags have always been forgiving here.
	if o.ExcessRate != nil {
		v.Set("deal.excess_rate_eur_per_km", math.Max(0, *o.ExcessRate))
	}
	if o.ExcessFreeKm != nil {
		v.Set("deal.excess_free_km", math.Max(0, *o.ExcessFreeKm))
	}

	setF("energy.kwh_per_100km", o.KwhPer100)
	setF("energy.share_free", o.ShareFree)
	setF("energy.home_price_eur_per_kwh", o.HomePrice)
	setF("energy.public_price_eur_per_kwh", o.PublicPrice)
	setF("energy.share_home_of_paid", o.ShareHomePaid)

	setF("maintenance.maint_eur_per_year", o.MaintYear)
	setF("maintenance.tire_set_cost", o.TireCost)
	setI("maintenance.tire_sets_included", o.TireIncluded)
	setI("maintenance.expected_tire_sets_total", o.TireExpectedTotal)
	setF("insurance.eur_per_month", o.InsMonth)

	setB("buyout.enabled", o.Buyout)
	setF("buyout.option_fee", o.OptionFee)
	setF("buyout.residual_value", o.VR)
	setF("buyout.resale_value_after_buyout", o.Resale)

	setB("ik.enabled", o.IKEnabled)
	setI("ik.vehicle_cv", o.IKCv)
	setB("ik.is_electric", o.IKElectric)
	setF("ik.km_per_day", o.IKKmDay)
	setF("ik.company_cap_km_per_day", o.IKCapKmDay)
	setF("ik.worked_days", o.IKDays)
	setB("ik.days_is_annual", o.IKDaysIsAnnual)
	setB("ik.annualize", o.IKAnnualize)

	if o.PenaltyScenarios != nil {
		v.Set("penalty_scenarios", *o.PenaltyScenarios)
	}
}

// Resolve reads the JSON deal file at path and layers overrides on top of
// the built-in defaults. An empty path resolves defaults and overrides only.
func Resolve(path string, o Overrides) (models.LeaseConfig, error) {
	v := viper.New()
	setDefaults(v)
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return models.LeaseConfig{}, fmt.Errorf("lecture de %s: %w", path, err)
		}
	}
	o.apply(v)
	return finish(v)
}

// ResolveReader layers overrides over a JSON deal document already in
// memory, the path the HTTP handlers take.
func ResolveReader(r io.Reader, o Overrides) (models.LeaseConfig, error) {
	v := viper.New()
	v.SetConfigType("json")
	setDefaults(v)
	if r != nil {
		if err := v.ReadConfig(r); err != nil {
			return models.LeaseConfig{}, fmt.Errorf("lecture de la configuration: %w", err)
		}
	}
	o.apply(v)
	return finish(v)
}

func finish(v *viper.Viper) (models.LeaseConfig, error) {
	var cfg models.LeaseConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return models.LeaseConfig{}, fmt.Errorf("configuration invalide: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return models.LeaseConfig{}, err
	}
	return cfg, nil
}
