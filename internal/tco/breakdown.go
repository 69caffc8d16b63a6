package tco

import (
	"math"

	"coutloa/internal/models"
)

// Row labels, printed as-is in reports. Both scenarios carry all fifteen
// rows; the ones that do not apply stay at zero.
const (
	labelRent            = "Loyers LOA"
	labelEnergy          = "Énergie (électricité)"
	labelMaintenance     = "Entretien"
	labelTires           = "Pneus"
	labelInsurance       = "Assurance"
	labelUpfront         = "Immat/MISE EN MAIN"
	labelAccessories     = "Accessoires"
	labelOtherFixed      = "Divers fixes"
	labelChargingCredits = "Crédits recharge (déduits)"
	labelExcessPenalty   = "Dépassement kilométrique (pénalité)"
	labelIK              = "Indemnités kilométriques (déduites)"
	labelRestitutionFees = "Frais de restitution"
	labelOptionFee       = "Frais d’option d’achat"
	labelResidualValue   = "Valeur de rachat (VR)"
	labelResale          = "Revente (déduite)"
)

// Compute validates the config, then assembles the scenario reports. The
// restitution scenario is always produced, the buyout one only when the deal
// enables it. Same config in, identical breakdown out.
func Compute(cfg models.LeaseConfig) (models.Breakdown, error) {
	if err := cfg.Validate(); err != nil {
		return models.Breakdown{}, err
	}

	b := models.Breakdown{
		Months:     cfg.Deal.Months,
		ContractKm: ContractTotalKm(cfg.Deal),
	}
	if actualKm, ok := ActualTotalKm(cfg.Deal); ok {
		b.ActualKm = &actualKm
	}

	b.Restitution = scenario(cfg, models.ScenarioRestitution)
	if cfg.Buyout.Enabled {
		buyout := scenario(cfg, models.ScenarioBuyout)
		b.Buyout = &buyout
	}
	return b, nil
}

func penaltyApplies(scope models.PenaltyScope, kind models.ScenarioKind) bool {
	switch scope {
	case models.PenaltyNone:
		return false
	case models.PenaltyRestitution:
		return kind == models.ScenarioRestitution
	case models.PenaltyBuyout:
		return kind == models.ScenarioBuyout
	default:
		return true
	}
}

func scenario(cfg models.LeaseConfig, kind models.ScenarioKind) models.ScenarioReport {
	months := cfg.Deal.Months
	lines := make([]models.CostLine, 0, 15)
	add := func(label string, total float64) {
		lines = append(lines, models.CostLine{Label: label, Total: total})
	}

	add(labelRent, cfg.Deal.MonthlyRent*float64(months))
	add(labelEnergy, EnergyCost(cfg))
	add(labelMaintenance, MaintenanceCost(cfg))
	add(labelTires, TiresCost(cfg))
	add(labelInsurance, InsuranceCost(cfg))
	add(labelUpfront, cfg.Deal.UpfrontCosts)
	add(labelAccessories, cfg.Deal.AccessoriesTotal)
	add(labelOtherFixed, cfg.Deal.OtherFixedCosts)

	credits := cfg.Deal.ChargingCreditsTotal
	if credits != 0 {
		credits = -math.Abs(credits)
	}
	add(labelChargingCredits, credits)

	var penalty float64
	if penaltyApplies(cfg.PenaltyScenarios, kind) {
		penalty = ExcessPenalty(cfg)
	}
	add(labelExcessPenalty, penalty)

	ik := IKTotal(cfg)
	if ik != 0 {
		ik = -ik
	}
	add(labelIK, ik)

	if kind == models.ScenarioBuyout {
		add(labelRestitutionFees, 0)
		add(labelOptionFee, cfg.Buyout.OptionFee)
		add(labelResidualValue, cfg.Buyout.ResidualValue)
		resale := 0.0
		if cfg.Buyout.ResaleValueAfterBuyout != nil && *cfg.Buyout.ResaleValueAfterBuyout != 0 {
			resale = -*cfg.Buyout.ResaleValueAfterBuyout
		}
		add(labelResale, resale)
	} else {
		add(labelRestitutionFees, cfg.Deal.RestitutionFees)
		add(labelOptionFee, 0)
		add(labelResidualValue, 0)
		add(labelResale, 0)
	}

	var total float64
	for _, l := range lines {
		total += l.Total
	}
	for i := range lines {
		lines[i].PerMonth = lines[i].Total / float64(months)
		if math.Abs(total) > 1e-9 {
			lines[i].Share = lines[i].Total / total * 100.0
		}
	}

	return models.ScenarioReport{
		Kind:          kind,
		Lines:         lines,
		Total:         total,
		TotalPerMonth: total / float64(months),
	}
}
