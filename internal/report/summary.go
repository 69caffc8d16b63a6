package report

import (
	"fmt"
	"strings"

	"coutloa/internal/models"
)

// Summarize condenses an offer into the few lines shown as comparison
// tooltip or next to the cumulative chart.
func Summarize(cfg models.LeaseConfig, b models.Breakdown) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Durée: %d mois | %g km/an | Loyer: %s/mois\n",
		cfg.Deal.Months, cfg.Deal.AnnualKm, Eur(cfg.Deal.MonthlyRent))

	if cfg.Buyout.Enabled {
		fmt.Fprintf(&sb, "Rachat en fin de contrat: option %s + VR %s",
			Eur(cfg.Buyout.OptionFee), Eur(cfg.Buyout.ResidualValue))
		if cfg.Buyout.ResaleValueAfterBuyout != nil {
			fmt.Fprintf(&sb, ", revente espérée %s", Eur(*cfg.Buyout.ResaleValueAfterBuyout))
		}
		sb.WriteByte('\n')
	} else {
		sb.WriteString("Restitution en fin de contrat")
		if cfg.Deal.RestitutionFees > 0 {
			fmt.Fprintf(&sb, " (frais %s)", Eur(cfg.Deal.RestitutionFees))
		}
		sb.WriteByte('\n')
	}

	if b.ActualKm != nil {
		fmt.Fprintf(&sb, "Relevé réel: %.0f km sur la durée\n", *b.ActualKm)
	}
	if cfg.IK.Enabled {
		motor := "thermique"
		if cfg.IK.IsElectric {
			motor = "électrique"
		}
		fmt.Fprintf(&sb, "IK: %d CV %s, %g km/jour\n", cfg.IK.VehicleCV, motor, cfg.IK.KmPerDay)
	}

	eff := b.Effective()
	fmt.Fprintf(&sb, "TCO: %s (%s/mois)", Eur(eff.Total), Eur(eff.TotalPerMonth))
	return sb.String()
}
