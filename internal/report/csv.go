package report

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"coutloa/internal/models"
)

// frDec writes a number with a decimal comma for French spreadsheet locales.
func frDec(x float64, decimals int) string {
	return strings.Replace(strconv.FormatFloat(x, 'f', decimals, 64), ".", ",", 1)
}

// WriteCSV exports every scenario row plus its TOTAL line, semicolon
// separated the way French Excel expects.
func WriteCSV(w io.Writer, b models.Breakdown) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write([]string{"scenario", "poste", "total_eur", "par_mois_eur", "part_pct"}); err != nil {
		return err
	}
	writeRows := func(r models.ScenarioReport) error {
		for _, l := range r.Lines {
			record := []string{
				string(r.Kind), l.Label,
				frDec(l.Total, 2), frDec(l.PerMonth, 2), frDec(l.Share, 1),
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
		return cw.Write([]string{
			string(r.Kind), "TOTAL",
			frDec(r.Total, 2), frDec(r.TotalPerMonth, 2), frDec(100.0, 1),
		})
	}

	if err := writeRows(b.Restitution); err != nil {
		return err
	}
	if b.Buyout != nil {
		if err := writeRows(*b.Buyout); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
