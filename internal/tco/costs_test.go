package tco

import (
	"testing"

	"coutloa/internal/models"
)

func energyBase() models.LeaseConfig {
	return models.LeaseConfig{
		Deal: models.DealParams{Months: 12, AnnualKm: 12000},
		Energy: models.EnergyParams{
			KwhPer100Km:          17.0,
			HomePriceEurPerKwh:   0.23,
			PublicPriceEurPerKwh: 0.45,
			ShareHomeOfPaid:      1.0,
		},
	}
}

func TestEnergyCost_ToutADomicile(t *testing.T) {
	cfg := energyBase()
	// 12000 km x 17 kWh/100km = 2040 kWh, tout à 0.23.
	if got := EnergyCost(cfg); !almostEqual(got, 2040*0.23) {
		t.Errorf("obtenu %g, attendu %g", got, 2040*0.23)
	}
}

func TestEnergyCost_RepartitionDomicilePublic(t *testing.T) {
	cfg := energyBase()
	cfg.Energy.ShareHomeOfPaid = 0.5
	want := 1020*0.23 + 1020*0.45
	if got := EnergyCost(cfg); !almostEqual(got, want) {
		t.Errorf("répartition 50/50: obtenu %g, attendu %g", got, want)
	}
}

func TestEnergyCost_PartGratuite(t *testing.T) {
	cfg := energyBase()
	cfg.Energy.ShareFree = 0.25
	if got := EnergyCost(cfg); !almostEqual(got, 2040*0.75*0.23) {
		t.Errorf("25%% offert: obtenu %g, attendu %g", got, 2040*0.75*0.23)
	}

	cfg.Energy.ShareFree = 1.5 // borné à 1
	if got := EnergyCost(cfg); got != 0 {
		t.Errorf("part gratuite bornée à 100%%: obtenu %g, attendu 0", got)
	}
}

func TestEnergyCost_SurKilometrageContractuel(t *testing.T) {
	cfg := energyBase()
	base := EnergyCost(cfg)

	// Le relevé réel ne change pas le poste énergie, seulement la pénalité.
	actual := 30000.0
	cfg.Deal.ActualAnnualKm = &actual
	if got := EnergyCost(cfg); got != base {
		t.Errorf("l'énergie se calcule sur le contractuel: %g != %g", got, base)
	}
}

func TestMaintenanceCost_Prorata(t *testing.T) {
	cfg := models.LeaseConfig{
		Deal:        models.DealParams{Months: 18},
		Maintenance: models.MaintenanceParams{MaintEurPerYear: 200},
	}
	if got := MaintenanceCost(cfg); !almostEqual(got, 300) {
		t.Errorf("200/an sur 18 mois: obtenu %g, attendu 300", got)
	}
}

func TestTiresCost_Inclus(t *testing.T) {
	cfg := models.LeaseConfig{
		Maintenance: models.MaintenanceParams{
			TireSetCost: 700, TireSetsIncluded: 2, ExpectedTireSetsTotal: 2,
		},
	}
	if got := TiresCost(cfg); got != 0 {
		t.Errorf("trains inclus suffisants: obtenu %g, attendu 0", got)
	}

	cfg.Maintenance.ExpectedTireSetsTotal = 3
	if got := TiresCost(cfg); !almostEqual(got, 700) {
		t.Errorf("un train en plus: obtenu %g, attendu 700", got)
	}
}

func TestInsuranceCost_ParMois(t *testing.T) {
	cfg := models.LeaseConfig{
		Deal:      models.DealParams{Months: 37},
		Insurance: models.InsuranceParams{EurPerMonth: 65},
	}
	if got := InsuranceCost(cfg); !almostEqual(got, 2405) {
		t.Errorf("65/mois sur 37 mois: obtenu %g, attendu 2405", got)
	}
}

func TestContractTotalKm(t *testing.T) {
	d := models.DealParams{Months: 37, AnnualKm: 12000}
	if got := ContractTotalKm(d); !almostEqual(got, 37000) {
		t.Errorf("12000 km/an sur 37 mois: obtenu %g, attendu 37000", got)
	}
}
