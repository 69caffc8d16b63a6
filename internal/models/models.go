package models

type DealParams struct {
	MonthlyRent          float64  `json:"monthly_rent" mapstructure:"monthly_rent"`
	Months               int      `json:"months" mapstructure:"months"`
	AnnualKm             float64  `json:"annual_km" mapstructure:"annual_km"`
	UpfrontCosts         float64  `json:"upfront_costs" mapstructure:"upfront_costs"`
	AccessoriesTotal     float64  `json:"accessories_total" mapstructure:"accessories_total"`
	OtherFixedCosts      float64  `json:"other_fixed_costs" mapstructure:"other_fixed_costs"`
	ChargingCreditsTotal float64  `json:"charging_credits_total" mapstructure:"charging_credits_total"`
	RestitutionFees      float64  `json:"restitution_fees" mapstructure:"restitution_fees"`
	ActualAnnualKm       *float64 `json:"actual_annual_km,omitempty" mapstructure:"actual_annual_km"`
	ActualTotalKm        *float64 `json:"actual_total_km,omitempty" mapstructure:"actual_total_km"`
	ExcessRateEurPerKm   float64  `json:"excess_rate_eur_per_km" mapstructure:"excess_rate_eur_per_km"`
	ExcessFreeKm         float64  `json:"excess_free_km" mapstructure:"excess_free_km"`
}

type EnergyParams struct {
	KwhPer100Km          float64 `json:"kwh_per_100km" mapstructure:"kwh_per_100km"`
	ShareFree            float64 `json:"share_free" mapstructure:"share_free"`
	HomePriceEurPerKwh   float64 `json:"home_price_eur_per_kwh" mapstructure:"home_price_eur_per_kwh"`
	PublicPriceEurPerKwh float64 `json:"public_price_eur_per_kwh" mapstructure:"public_price_eur_per_kwh"`
	ShareHomeOfPaid      float64 `json:"share_home_of_paid" mapstructure:"share_home_of_paid"`
}

type MaintenanceParams struct {
	MaintEurPerYear       float64 `json:"maint_eur_per_year" mapstructure:"maint_eur_per_year"`
	TireSetCost           float64 `json:"tire_set_cost" mapstructure:"tire_set_cost"`
	TireSetsIncluded      int     `json:"tire_sets_included" mapstructure:"tire_sets_included"`
	ExpectedTireSetsTotal int     `json:"expected_tire_sets_total" mapstructure:"expected_tire_sets_total"`
}

type InsuranceParams struct {
	EurPerMonth float64 `json:"eur_per_month" mapstructure:"eur_per_month"`
}

type BuyoutParams struct {
	Enabled                bool     `json:"enabled" mapstructure:"enabled"`
	OptionFee              float64  `json:"option_fee" mapstructure:"option_fee"`
	ResidualValue          float64  `json:"residual_value" mapstructure:"residual_value"`
	ResaleValueAfterBuyout *float64 `json:"resale_value_after_buyout,omitempty" mapstructure:"resale_value_after_buyout"`
}

type IKParams struct {
	Enabled            bool    `json:"enabled" mapstructure:"enabled"`
	VehicleCV          int     `json:"vehicle_cv" mapstructure:"vehicle_cv"`
	IsElectric         bool    `json:"is_electric" mapstructure:"is_electric"`
	KmPerDay           float64 `json:"km_per_day" mapstructure:"km_per_day"`
	CompanyCapKmPerDay float64 `json:"company_cap_km_per_day" mapstructure:"company_cap_km_per_day"`
	WorkedDays         float64 `json:"worked_days" mapstructure:"worked_days"`
	DaysIsAnnual       bool    `json:"days_is_annual" mapstructure:"days_is_annual"`
	Annualize          bool    `json:"annualize" mapstructure:"annualize"`
}

// PenaltyScope says in which scenarios the excess-mileage penalty is charged.
type PenaltyScope string

const (
	PenaltyBoth        PenaltyScope = "both"
	PenaltyRestitution PenaltyScope = "restitution"
	PenaltyBuyout      PenaltyScope = "buyout"
	PenaltyNone        PenaltyScope = "none"
)

// LeaseConfig is the canonical resolved configuration of one LOA deal.
// Produced once by the resolver, never mutated afterwards.
type LeaseConfig struct {
	Deal             DealParams        `json:"deal" mapstructure:"deal"`
	Energy           EnergyParams      `json:"energy" mapstructure:"energy"`
	Maintenance      MaintenanceParams `json:"maintenance" mapstructure:"maintenance"`
	Insurance        InsuranceParams   `json:"insurance" mapstructure:"insurance"`
	Buyout           BuyoutParams      `json:"buyout" mapstructure:"buyout"`
	IK               IKParams          `json:"ik" mapstructure:"ik"`
	PenaltyScenarios PenaltyScope      `json:"penalty_scenarios,omitempty" mapstructure:"penalty_scenarios"`
}

type ScenarioKind string

const (
	ScenarioRestitution ScenarioKind = "restitution"
	ScenarioBuyout      ScenarioKind = "buyout"
)

// CostLine is one row of the breakdown. Deductions carry negative totals
// and negative shares.
type CostLine struct {
	Label    string  `json:"poste"`
	Total    float64 `json:"total_eur"`
	PerMonth float64 `json:"per_month_eur"`
	Share    float64 `json:"share_pct"`
}

type ScenarioReport struct {
	Kind          ScenarioKind `json:"kind"`
	Lines         []CostLine   `json:"lines"`
	Total         float64      `json:"total_eur"`
	TotalPerMonth float64      `json:"total_per_month_eur"`
}

// Breakdown is the full engine output: header figures plus one report per
// computed scenario. Amounts are unrounded; renderers round at output.
type Breakdown struct {
	Months      int             `json:"months"`
	ContractKm  float64         `json:"contract_km"`
	ActualKm    *float64        `json:"actual_km,omitempty"`
	Restitution ScenarioReport  `json:"restitution"`
	Buyout      *ScenarioReport `json:"buyout,omitempty"`
}

// Effective is the scenario the lessee actually ends on: buyout when the
// deal enables it, restitution otherwise.
func (b Breakdown) Effective() ScenarioReport {
	if b.Buyout != nil {
		return *b.Buyout
	}
	return b.Restitution
}

// Cumulative holds the month-by-month cumulative TCO, index 0 = end of month 1.
// The last value of each series equals the scenario total.
type Cumulative struct {
	Months      int       `json:"months"`
	Restitution []float64 `json:"restitution"`
	Buyout      []float64 `json:"buyout,omitempty"`
}

func (c Cumulative) Effective() []float64 {
	if c.Buyout != nil {
		return c.Buyout
	}
	return c.Restitution
}

type CompareOffer struct {
	Name       string    `json:"name"`
	Months     int       `json:"months"`
	Total      float64   `json:"total_eur"`
	Breakdown  Breakdown `json:"breakdown"`
	Cumulative []float64 `json:"cumulative"`
	Summary    string    `json:"summary"`
}

type CompareResult struct {
	Offers    []CompareOffer `json:"offers"`
	Cheapest  int            `json:"cheapest"`
	MaxMonths int            `json:"max_months"`
}

// TariffSet is the electricity price pair used to pre-fill deal defaults.
type TariffSet struct {
	HomeEurPerKwh   float64 `json:"home_eur_per_kwh"`
	PublicEurPerKwh float64 `json:"public_eur_per_kwh"`
	Source          string  `json:"source"`
	FetchedAt       string  `json:"fetched_at,omitempty"`
	FromFeed        bool    `json:"from_feed"`
}
