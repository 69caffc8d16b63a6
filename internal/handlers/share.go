package handlers

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"coutloa/internal/models"
)

// compactDeal is the wire form of a resolved configuration inside a share
// code. Single-letter keys keep the code short; booleans stay explicit
// because several of them default to true.
type compactDeal struct {
	MonthlyRent          float64             `json:"r,omitempty"`
	Months               int                 `json:"m,omitempty"`
	AnnualKm             float64             `json:"k,omitempty"`
	UpfrontCosts         float64             `json:"u,omitempty"`
	AccessoriesTotal     float64             `json:"ac,omitempty"`
	OtherFixedCosts      float64             `json:"o,omitempty"`
	ChargingCreditsTotal float64             `json:"cc,omitempty"`
	RestitutionFees      float64             `json:"rf,omitempty"`
	ActualAnnualKm       *float64            `json:"aa,omitempty"`
	ActualTotalKm        *float64            `json:"at,omitempty"`
	ExcessRateEurPerKm   float64             `json:"xr,omitempty"`
	ExcessFreeKm         float64             `json:"xf,omitempty"`
	KwhPer100Km          float64             `json:"e,omitempty"`
	ShareFree            float64             `json:"sf,omitempty"`
	HomePriceEurPerKwh   float64             `json:"hp,omitempty"`
	PublicPriceEurPerKwh float64             `json:"pp,omitempty"`
	ShareHomeOfPaid      float64             `json:"sh,omitempty"`
	MaintEurPerYear      float64             `json:"my,omitempty"`
	TireSetCost          float64             `json:"tc,omitempty"`
	TireSetsIncluded     int                 `json:"ti,omitempty"`
	ExpectedTireSets     int                 `json:"te,omitempty"`
	InsuranceEurPerMonth float64             `json:"i,omitempty"`
	BuyoutEnabled        bool                `json:"b"`
	OptionFee            float64             `json:"of,omitempty"`
	ResidualValue        float64             `json:"vr,omitempty"`
	ResaleValue          *float64            `json:"rv,omitempty"`
	IKEnabled            bool                `json:"ik"`
	VehicleCV            int                 `json:"cv,omitempty"`
	IsElectric           bool                `json:"el"`
	KmPerDay             float64             `json:"kd,omitempty"`
	CompanyCapKmPerDay   float64             `json:"ck,omitempty"`
	WorkedDays           float64             `json:"wd,omitempty"`
	DaysIsAnnual         bool                `json:"da"`
	Annualize            bool                `json:"an"`
	PenaltyScenarios     models.PenaltyScope `json:"ps,omitempty"`
}

func toCompact(c models.LeaseConfig) compactDeal {
	return compactDeal{
		MonthlyRent: c.Deal.MonthlyRent, Months: c.Deal.Months, AnnualKm: c.Deal.AnnualKm,
		UpfrontCosts: c.Deal.UpfrontCosts, AccessoriesTotal: c.Deal.AccessoriesTotal,
		OtherFixedCosts: c.Deal.OtherFixedCosts, ChargingCreditsTotal: c.Deal.ChargingCreditsTotal,
		RestitutionFees: c.Deal.RestitutionFees, ActualAnnualKm: c.Deal.ActualAnnualKm,
		ActualTotalKm: c.Deal.ActualTotalKm, ExcessRateEurPerKm: c.Deal.ExcessRateEurPerKm,
		ExcessFreeKm: c.Deal.ExcessFreeKm,
		KwhPer100Km: c.Energy.KwhPer100Km, ShareFree: c.Energy.ShareFree,
		HomePriceEurPerKwh: c.Energy.HomePriceEurPerKwh, PublicPriceEurPerKwh: c.Energy.PublicPriceEurPerKwh,
		ShareHomeOfPaid: c.Energy.ShareHomeOfPaid,
		MaintEurPerYear: c.Maintenance.MaintEurPerYear, TireSetCost: c.Maintenance.TireSetCost,
		TireSetsIncluded: c.Maintenance.TireSetsIncluded, ExpectedTireSets: c.Maintenance.ExpectedTireSetsTotal,
		InsuranceEurPerMonth: c.Insurance.EurPerMonth,
		BuyoutEnabled: c.Buyout.Enabled, OptionFee: c.Buyout.OptionFee,
		ResidualValue: c.Buyout.ResidualValue, ResaleValue: c.Buyout.ResaleValueAfterBuyout,
		IKEnabled: c.IK.Enabled, VehicleCV: c.IK.VehicleCV, IsElectric: c.IK.IsElectric,
		KmPerDay: c.IK.KmPerDay, CompanyCapKmPerDay: c.IK.CompanyCapKmPerDay,
		WorkedDays: c.IK.WorkedDays, DaysIsAnnual: c.IK.DaysIsAnnual, Annualize: c.IK.Annualize,
		PenaltyScenarios: c.PenaltyScenarios,
	}
}

func fromCompact(d compactDeal) models.LeaseConfig {
	return models.LeaseConfig{
		Deal: models.DealParams{
			MonthlyRent: d.MonthlyRent, Months: d.Months, AnnualKm: d.AnnualKm,
			UpfrontCosts: d.UpfrontCosts, AccessoriesTotal: d.AccessoriesTotal,
			OtherFixedCosts: d.OtherFixedCosts, ChargingCreditsTotal: d.ChargingCreditsTotal,
			RestitutionFees: d.RestitutionFees, ActualAnnualKm: d.ActualAnnualKm,
			ActualTotalKm: d.ActualTotalKm, ExcessRateEurPerKm: d.ExcessRateEurPerKm,
			ExcessFreeKm: d.ExcessFreeKm,
		},
		Energy: models.EnergyParams{
			KwhPer100Km: d.KwhPer100Km, ShareFree: d.ShareFree,
			HomePriceEurPerKwh: d.HomePriceEurPerKwh, PublicPriceEurPerKwh: d.PublicPriceEurPerKwh,
			ShareHomeOfPaid: d.ShareHomeOfPaid,
		},
		Maintenance: models.MaintenanceParams{
			MaintEurPerYear: d.MaintEurPerYear, TireSetCost: d.TireSetCost,
			TireSetsIncluded: d.TireSetsIncluded, ExpectedTireSetsTotal: d.ExpectedTireSets,
		},
		Insurance: models.InsuranceParams{EurPerMonth: d.InsuranceEurPerMonth},
		Buyout: models.BuyoutParams{
			Enabled: d.BuyoutEnabled, OptionFee: d.OptionFee,
			ResidualValue: d.ResidualValue, ResaleValueAfterBuyout: d.ResaleValue,
		},
		IK: models.IKParams{
			Enabled: d.IKEnabled, VehicleCV: d.VehicleCV, IsElectric: d.IsElectric,
			KmPerDay: d.KmPerDay, CompanyCapKmPerDay: d.CompanyCapKmPerDay,
			WorkedDays: d.WorkedDays, DaysIsAnnual: d.DaysIsAnnual, Annualize: d.Annualize,
		},
		PenaltyScenarios: d.PenaltyScenarios,
	}
}

const codePrefix = "CLO-"

// EncodeDealHandler turns a configuration into a shareable code. The body
// fragment is resolved over the defaults first, so a code always carries a
// complete simulation.
func EncodeDealHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Méthode non autorisée", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Corps de requête illisible", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	cfg, err := resolveFragment(raw)
	if err != nil {
		writeConfigError(w, err)
		return
	}

	data, err := json.Marshal(toCompact(cfg))
	if err != nil {
		http.Error(w, "Erreur d'encodage", http.StatusInternalServerError)
		return
	}
	code := codePrefix + base64.RawURLEncoding.EncodeToString(data)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	json.NewEncoder(w).Encode(map[string]string{"code": code})
}

// DecodeDealHandler expands a share code back into the full configuration.
func DecodeDealHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Méthode non autorisée", http.StatusMethodNotAllowed)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" || !strings.HasPrefix(code, codePrefix) {
		http.Error(w, "Code invalide", http.StatusBadRequest)
		return
	}
	if len(code) > 1024 {
		http.Error(w, "Code trop long", http.StatusBadRequest)
		return
	}

	data, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(code, codePrefix))
	if err != nil {
		http.Error(w, "Code malformé", http.StatusBadRequest)
		return
	}

	var compact compactDeal
	if err := json.Unmarshal(data, &compact); err != nil {
		http.Error(w, "Code indéchiffrable", http.StatusBadRequest)
		return
	}

	cfg := fromCompact(compact)
	if err := cfg.Validate(); err != nil {
		writeConfigError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	json.NewEncoder(w).Encode(cfg)
}
