package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"coutloa/internal/config"
	sentryutil "coutloa/internal/sentry"
)

// Patterns for the figures a French LOA contract spells out. Amounts come
// with thin or non-breaking spaces as thousands separators and a decimal
// comma, e.g. "3 500,00 €".
var (
	rentRe = regexp.MustCompile(
		`(?i)loyers?\s+mensuels?\s*(?:de|:|\s)\s*([0-9][0-9\s\x{00a0}\x{202f}.,]*)\s*€`)
	monthsRe = regexp.MustCompile(
		`(?i)(?:durée\s+de\s+|duree\s+de\s+|sur\s+|en\s+)?(\d{2,3})\s+(?:mois|loyers)`)
	annualKmRe = regexp.MustCompile(
		`(?i)([0-9][0-9\s\x{00a0}\x{202f}.]*)\s*km\s*(?:/|par)\s*an`)
	totalKmRe = regexp.MustCompile(
		`(?i)kilom[eé]trage[^0-9]{0,40}?([0-9][0-9\s\x{00a0}\x{202f}.]*)\s*km`)
	residualRe = regexp.MustCompile(
		`(?i)(?:option\s+d['’]achat|valeur\s+r[eé]siduelle|valeur\s+de\s+rachat)[^0-9]{0,60}?([0-9][0-9\s\x{00a0}\x{202f}.,]*)\s*€`)
	upfrontRe = regexp.MustCompile(
		`(?i)(?:premier\s+loyer(?:\s+major[eé])?|apport\s+initial)[^0-9]{0,40}?([0-9][0-9\s\x{00a0}\x{202f}.,]*)\s*€`)
	excessRateRe = regexp.MustCompile(
		`(?i)([0-9][0-9,.]*)\s*(?:€|euros?|centimes?)\s*(?:/|par)\s*km`)
)

// parseFrenchAmount turns "3 500,00" or "12.000" into a float. Dots and
// spaces are thousands separators, the comma is the decimal mark.
func parseFrenchAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	for _, sep := range []string{" ", " ", " ", "."} {
		s = strings.ReplaceAll(s, sep, "")
	}
	s = strings.Replace(s, ",", ".", 1)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// parseCentimes reads a per-km rate that may be quoted in centimes
// ("15 centimes par km") or euros ("0,15 € / km").
func parseCentimes(matched []string) (float64, bool) {
	v, ok := parseFrenchAmount(matched[1])
	if !ok {
		return 0, false
	}
	if strings.Contains(strings.ToLower(matched[0]), "centime") {
		v /= 100
	}
	// Rates above a few euros per km are a misread, not a tariff.
	if v <= 0 || v > 5 {
		return 0, false
	}
	return v, true
}

type contractFields struct {
	MonthlyRent        *float64 `json:"monthly_rent,omitempty"`
	Months             *int     `json:"months,omitempty"`
	AnnualKm           *float64 `json:"annual_km,omitempty"`
	UpfrontCosts       *float64 `json:"upfront_costs,omitempty"`
	ResidualValue      *float64 `json:"residual_value,omitempty"`
	ExcessRateEurPerKm *float64 `json:"excess_rate_eur_per_km,omitempty"`
}

type contractResponse struct {
	Found  bool           `json:"found"`
	Pages  int            `json:"pages"`
	Fields contractFields `json:"fields"`
}

func extractContractFields(text string) contractFields {
	var f contractFields

	if m := rentRe.FindStringSubmatch(text); len(m) == 2 {
		if v, ok := parseFrenchAmount(m[1]); ok && v > 0 {
			f.MonthlyRent = &v
		}
	}
	if m := monthsRe.FindStringSubmatch(text); len(m) == 2 {
		if n, err := strconv.Atoi(m[1]); err == nil && n >= 12 && n <= 72 {
			f.Months = &n
		}
	}
	if m := annualKmRe.FindStringSubmatch(text); len(m) == 2 {
		if v, ok := parseFrenchAmount(m[1]); ok && v >= 1000 && v <= 100000 {
			f.AnnualKm = &v
		}
	} else if m := totalKmRe.FindStringSubmatch(text); len(m) == 2 {
		// Total contractual mileage; the caller divides by the duration.
		if v, ok := parseFrenchAmount(m[1]); ok && f.Months != nil && *f.Months > 0 {
			annual := v / (float64(*f.Months) / 12.0)
			if annual >= 1000 && annual <= 100000 {
				f.AnnualKm = &annual
			}
		}
	}
	if m := upfrontRe.FindStringSubmatch(text); len(m) == 2 {
		if v, ok := parseFrenchAmount(m[1]); ok && v > 0 {
			f.UpfrontCosts = &v
		}
	}
	if m := residualRe.FindStringSubmatch(text); len(m) == 2 {
		if v, ok := parseFrenchAmount(m[1]); ok && v > 0 {
			f.ResidualValue = &v
		}
	}
	if m := excessRateRe.FindStringSubmatch(text); len(m) == 2 {
		if v, ok := parseCentimes(m); ok {
			f.ExcessRateEurPerKm = &v
		}
	}
	return f
}

func (f contractFields) any() bool {
	return f.MonthlyRent != nil || f.Months != nil || f.AnnualKm != nil ||
		f.UpfrontCosts != nil || f.ResidualValue != nil || f.ExcessRateEurPerKm != nil
}

// ParseContractHandler extracts the key figures from an uploaded LOA
// contract PDF so the simulator form can be pre-filled. An unreadable PDF is
// answered with found=false, not an error: scanned contracts without a text
// layer are common.
func ParseContractHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Méthode non autorisée", http.StatusMethodNotAllowed)
		return
	}

	maxBytes := config.Cfg.ContractMaxBytes
	if maxBytes <= 0 {
		maxBytes = 5 << 20
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		http.Error(w, "Fichier trop volumineux", http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Fichier manquant", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		sentryutil.CaptureError(err, map[string]string{"handler": "parse-contract", "phase": "read"})
		http.Error(w, "Erreur de lecture du fichier", http.StatusInternalServerError)
		return
	}

	if mime := http.DetectContentType(data); mime != "application/pdf" {
		http.Error(w, "Format invalide: seuls les PDF sont acceptés", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	w.Header().Set("Pragma", "no-cache")

	pdfReader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		sentryutil.CaptureError(err, map[string]string{"handler": "parse-contract", "phase": "pdf-parse"})
		json.NewEncoder(w).Encode(contractResponse{Found: false})
		return
	}

	var textBuilder strings.Builder
	for i := 1; i <= pdfReader.NumPage(); i++ {
		p := pdfReader.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		textBuilder.WriteString(text)
		textBuilder.WriteString(" ")
	}

	text := textBuilder.String()
	fields := extractContractFields(text)
	if !fields.any() && strings.TrimSpace(text) != "" {
		// Readable text but nothing recognized: a layout our patterns miss.
		sentryutil.CaptureMessage("contrat lisible sans champ reconnu",
			sentryutil.LevelWarning(), map[string]string{"handler": "parse-contract"})
	}
	json.NewEncoder(w).Encode(contractResponse{
		Found:  fields.any(),
		Pages:  pdfReader.NumPage(),
		Fields: fields,
	})
}
