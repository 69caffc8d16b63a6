// Package report renders a computed breakdown for humans: the terminal
// table, the French money/percent formats, the CSV export, the one-paragraph
// offer summary and the side-by-side comparison.
package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"coutloa/internal/models"
)

const reportTitle = "=== TCO LOA (détail par poste + coût mensuel + IK + dépassement km) ==="

// Eur renders an amount the French way: "11 587,67 €".
func Eur(x float64) string {
	s := strconv.FormatFloat(x, 'f', 2, 64)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, decPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(d)
	}
	b.WriteByte(',')
	b.WriteString(decPart)
	b.WriteString(" €")
	return b.String()
}

// Pct renders a share with one decimal: "60.3%".
func Pct(x float64) string {
	return fmt.Sprintf("%.1f%%", x)
}

// Accented labels are multi-byte, so the columns align on runes, not bytes.
func padLeft(s string, w int) string {
	if n := utf8.RuneCountInString(s); n < w {
		return strings.Repeat(" ", w-n) + s
	}
	return s
}

func padRight(s string, w int) string {
	if n := utf8.RuneCountInString(s); n < w {
		return s + strings.Repeat(" ", w-n)
	}
	return s
}

// RenderText produces the terminal report: title, duration and mileage
// header, then one table per computed scenario.
func RenderText(b models.Breakdown) string {
	var sb strings.Builder
	sb.WriteString(reportTitle)
	sb.WriteByte('\n')

	header := fmt.Sprintf("Durée: %d mois | Kilométrage contractuel: %d km", b.Months, int(math.Round(b.ContractKm)))
	if b.ActualKm != nil && math.Abs(*b.ActualKm-b.ContractKm) > 1e-6 {
		header += fmt.Sprintf(" | Réel: %d km", int(math.Round(*b.ActualKm)))
	}
	sb.WriteString(header)
	sb.WriteString("\n\n")

	writeScenario(&sb, b.Restitution)
	if b.Buyout != nil {
		sb.WriteByte('\n')
		writeScenario(&sb, *b.Buyout)
	}
	return sb.String()
}

func writeScenario(sb *strings.Builder, r models.ScenarioReport) {
	if r.Kind == models.ScenarioBuyout {
		sb.WriteString("-- Scénario BUYOUT --\n")
	} else {
		sb.WriteString("-- Scénario RESTITUTION --\n")
	}

	rule := strings.Repeat("-", 84)
	fmt.Fprintf(sb, "%s %s %s %s\n",
		padRight("Poste", 42), padLeft("Total (€)", 14), padLeft("/mois (€)", 14), padLeft("Part", 7))
	sb.WriteString(rule)
	sb.WriteByte('\n')
	for _, l := range r.Lines {
		fmt.Fprintf(sb, "%s %s %s %s\n",
			padRight(l.Label, 42), padLeft(Eur(l.Total), 14), padLeft(Eur(l.PerMonth), 14), padLeft(Pct(l.Share), 7))
	}
	sb.WriteString(rule)
	sb.WriteByte('\n')
	fmt.Fprintf(sb, "%s %s %s %s\n",
		padRight("TOTAL", 42), padLeft(Eur(r.Total), 14), padLeft(Eur(r.TotalPerMonth), 14), padLeft(Pct(100.0), 7))
}
