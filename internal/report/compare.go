package report

import (
	"errors"
	"fmt"

	"coutloa/internal/models"
	"coutloa/internal/tco"
)

// NamedConfig pairs an offer label (file name, share code) with its
// resolved configuration.
type NamedConfig struct {
	Name   string
	Config models.LeaseConfig
}

// BuildCompare computes every offer and ranks them on the effective
// scenario total, buyout when the offer enables it, restitution otherwise.
// One bad offer fails the whole comparison with its name in the error.
func BuildCompare(offers []NamedConfig) (models.CompareResult, error) {
	if len(offers) == 0 {
		return models.CompareResult{}, errors.New("aucune offre à comparer")
	}

	res := models.CompareResult{Offers: make([]models.CompareOffer, 0, len(offers))}
	for _, o := range offers {
		b, err := tco.Compute(o.Config)
		if err != nil {
			return models.CompareResult{}, fmt.Errorf("offre %q: %w", o.Name, err)
		}
		cum, err := tco.CumulativeByMonth(o.Config)
		if err != nil {
			return models.CompareResult{}, fmt.Errorf("offre %q: %w", o.Name, err)
		}

		res.Offers = append(res.Offers, models.CompareOffer{
			Name:       o.Name,
			Months:     b.Months,
			Total:      b.Effective().Total,
			Breakdown:  b,
			Cumulative: cum.Effective(),
			Summary:    Summarize(o.Config, b),
		})
		if b.Months > res.MaxMonths {
			res.MaxMonths = b.Months
		}
	}

	for i, o := range res.Offers {
		if o.Total < res.Offers[res.Cheapest].Total {
			res.Cheapest = i
		}
	}
	return res, nil
}
