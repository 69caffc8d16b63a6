package lease

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"coutloa/internal/models"
)

func writeDeal(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deal.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestResolve_DefautsSeuls(t *testing.T) {
	cfg, err := Resolve("", Overrides{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.Deal.MonthlyRent != 350 || cfg.Deal.Months != 48 || cfg.Deal.AnnualKm != 15000 {
		t.Errorf("deal par défaut inattendu: %+v", cfg.Deal)
	}
	if cfg.Energy.KwhPer100Km != 17.0 || cfg.Energy.ShareHomeOfPaid != 1.0 {
		t.Errorf("énergie par défaut inattendue: %+v", cfg.Energy)
	}
	if cfg.Insurance.EurPerMonth != 65 {
		t.Errorf("assurance par défaut: %g", cfg.Insurance.EurPerMonth)
	}
	if cfg.IK.Enabled || !cfg.IK.DaysIsAnnual || !cfg.IK.Annualize || cfg.IK.VehicleCV != 5 {
		t.Errorf("IK par défaut inattendu: %+v", cfg.IK)
	}
	if cfg.Deal.ActualAnnualKm != nil || cfg.Deal.ActualTotalKm != nil || cfg.Buyout.ResaleValueAfterBuyout != nil {
		t.Error("les relevés et la revente devraient rester absents sans saisie")
	}
	if cfg.PenaltyScenarios != models.PenaltyBoth {
		t.Errorf("scope pénalité par défaut %q, attendu both", cfg.PenaltyScenarios)
	}
}

func TestResolve_FichierSurDefauts(t *testing.T) {
	path := writeDeal(t, `{
		"deal": {"months": 37, "monthly_rent": 189, "annual_km": 12000, "actual_annual_km": 16500},
		"ik": {"enabled": true, "km_per_day": 10, "worked_days": 100, "days_is_annual": false, "annualize": false}
	}`)

	cfg, err := Resolve(path, Overrides{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.Deal.Months != 37 || cfg.Deal.MonthlyRent != 189 {
		t.Errorf("le fichier devrait primer sur les défauts: %+v", cfg.Deal)
	}
	if cfg.Deal.ActualAnnualKm == nil || *cfg.Deal.ActualAnnualKm != 16500 {
		t.Errorf("relevé annuel non lu: %v", cfg.Deal.ActualAnnualKm)
	}
	if !cfg.IK.Enabled || cfg.IK.DaysIsAnnual || cfg.IK.Annualize {
		t.Errorf("section IK non lue: %+v", cfg.IK)
	}
	// Intact là où le fichier ne dit rien.
	if cfg.IK.VehicleCV != 5 || cfg.Insurance.EurPerMonth != 65 || cfg.Maintenance.MaintEurPerYear != 200 {
		t.Error("les défauts devraient subsister sur les champs absents du fichier")
	}
}

func TestResolve_OverridePrime(t *testing.T) {
	path := writeDeal(t, `{"deal": {"monthly_rent": 189, "months": 37}}`)

	rent := 250.0
	buyout := true
	vr := 9500.0
	cfg, err := Resolve(path, Overrides{MonthlyRent: &rent, Buyout: &buyout, VR: &vr})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.Deal.MonthlyRent != 250 {
		t.Errorf("l'override devrait primer sur le fichier: %g", cfg.Deal.MonthlyRent)
	}
	if cfg.Deal.Months != 37 {
		t.Errorf("le fichier devrait subsister sans override: %d", cfg.Deal.Months)
	}
	if !cfg.Buyout.Enabled || cfg.Buyout.ResidualValue != 9500 {
		t.Errorf("rachat non appliqué: %+v", cfg.Buyout)
	}
}

func TestResolve_TauxNegatifsBornes(t *testing.T) {
	rate := -0.5
	free := -100.0
	cfg, err := Resolve("", Overrides{ExcessRate: &rate, ExcessFreeKm: &free})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.Deal.ExcessRateEurPerKm != 0 || cfg.Deal.ExcessFreeKm != 0 {
		t.Errorf("taux et franchise négatifs devraient être ramenés à 0: %+v", cfg.Deal)
	}
}

func TestResolve_FichierInvalide(t *testing.T) {
	path := writeDeal(t, `{"deal": {`)
	if _, err := Resolve(path, Overrides{}); err == nil {
		t.Fatal("JSON tronqué accepté")
	}

	if _, err := Resolve(filepath.Join(t.TempDir(), "absent.json"), Overrides{}); err == nil {
		t.Fatal("fichier absent accepté")
	}
}

func TestResolve_ValidationApresFusion(t *testing.T) {
	path := writeDeal(t, `{"deal": {"monthly_rent": -50}}`)
	_, err := Resolve(path, Overrides{})
	var invalid *models.InvalidValueError
	if !errors.As(err, &invalid) {
		t.Fatalf("attendu InvalidValueError, obtenu %v", err)
	}

	path = writeDeal(t, `{"penalty_scenarios": "jamais"}`)
	if _, err := Resolve(path, Overrides{}); err == nil {
		t.Fatal("scope pénalité inconnu accepté")
	}
}

func TestResolveReader(t *testing.T) {
	r := strings.NewReader(`{"deal": {"months": 24, "monthly_rent": 420}}`)
	cfg, err := ResolveReader(r, Overrides{})
	if err != nil {
		t.Fatalf("ResolveReader: %v", err)
	}
	if cfg.Deal.Months != 24 || cfg.Deal.MonthlyRent != 420 {
		t.Errorf("document en mémoire non lu: %+v", cfg.Deal)
	}

	cfg, err = ResolveReader(nil, Overrides{})
	if err != nil {
		t.Fatalf("ResolveReader sans document: %v", err)
	}
	if cfg.Deal.MonthlyRent != 350 {
		t.Errorf("sans document les défauts devraient s'appliquer: %g", cfg.Deal.MonthlyRent)
	}
}
