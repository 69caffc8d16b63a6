package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"coutloa/internal/models"
	"coutloa/internal/report"
	sentryutil "coutloa/internal/sentry"
	"coutloa/internal/tco"
)

// transliterate maps French typography onto the Latin glyphs the core PDF
// fonts can render.
func transliterate(s string) string {
	replacer := strings.NewReplacer(
		"à", "a", "â", "a", "ä", "a", "ç", "c",
		"é", "e", "è", "e", "ê", "e", "ë", "e",
		"î", "i", "ï", "i", "ô", "o", "ö", "o",
		"ù", "u", "û", "u", "ü", "u", "œ", "oe",
		"À", "A", "Â", "A", "Ç", "C",
		"É", "E", "È", "E", "Ê", "E",
		"Î", "I", "Ô", "O", "Û", "U",
		"€", "EUR", "–", "-", "’", "'",
		" ", " ", " ", " ",
	)
	return replacer.Replace(s)
}

func readBreakdown(w http.ResponseWriter, r *http.Request) (models.LeaseConfig, models.Breakdown, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Corps de requête illisible", http.StatusBadRequest)
		return models.LeaseConfig{}, models.Breakdown{}, false
	}
	defer r.Body.Close()

	cfg, err := resolveFragment(raw)
	if err != nil {
		writeConfigError(w, err)
		return models.LeaseConfig{}, models.Breakdown{}, false
	}
	b, err := tco.Compute(cfg)
	if err != nil {
		writeConfigError(w, err)
		return models.LeaseConfig{}, models.Breakdown{}, false
	}
	return cfg, b, true
}

// ReportTextHandler renders the fixed-width console report for one deal.
func ReportTextHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Méthode non autorisée", http.StatusMethodNotAllowed)
		return
	}
	_, b, ok := readBreakdown(w, r)
	if !ok {
		return
	}
	IncrementReportCounter()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	io.WriteString(w, report.RenderText(b))
}

// ReportCSVHandler streams the breakdown as a semicolon-separated CSV,
// decimal commas included, so it opens cleanly in a French spreadsheet.
func ReportCSVHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Méthode non autorisée", http.StatusMethodNotAllowed)
		return
	}
	_, b, ok := readBreakdown(w, r)
	if !ok {
		return
	}
	IncrementReportCounter()
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="cout-loa.csv"`)
	if err := report.WriteCSV(w, b); err != nil {
		sentryutil.CaptureError(err, map[string]string{"handler": "report-csv", "phase": "write"})
	}
}

// ---------- PDF report ----------
// Swiss-style document: navy header band, summary card, one cost table per
// scenario.

var (
	pdfNavy    = [3]int{33, 55, 92}
	pdfNavyLt  = [3]int{51, 82, 127}
	pdfGreen   = [3]int{42, 107, 69}
	pdfCream   = [3]int{248, 247, 243}
	pdfInk90   = [3]int{38, 38, 38}
	pdfInk50   = [3]int{107, 107, 107}
	pdfInk30   = [3]int{160, 160, 160}
	pdfInk15   = [3]int{217, 217, 217}
	pdfInk08   = [3]int{235, 235, 235}
	pdfWhite   = [3]int{255, 255, 255}
	pdfRowAlt  = [3]int{246, 247, 250}
	pdfWarnInk = [3]int{146, 64, 14}
)

const (
	pdfPageW    = 210.0
	pdfPageH    = 297.0
	pdfMarginL  = 18.0
	pdfMarginR  = 18.0
	pdfContentW = pdfPageW - pdfMarginL - pdfMarginR
)

func setFill(pdf *gofpdf.Fpdf, c [3]int) { pdf.SetFillColor(c[0], c[1], c[2]) }
func setText(pdf *gofpdf.Fpdf, c [3]int) { pdf.SetTextColor(c[0], c[1], c[2]) }
func setDraw(pdf *gofpdf.Fpdf, c [3]int) { pdf.SetDrawColor(c[0], c[1], c[2]) }

func pdfEuro(x float64) string { return transliterate(report.Eur(x)) }

func ensureSpace(pdf *gofpdf.Fpdf, needed float64) {
	if pdf.GetY()+needed > pdfPageH-25 {
		pdf.AddPage()
		pdf.SetY(pdfMarginL + 6)
	}
}

func scenarioTitle(kind models.ScenarioKind) string {
	if kind == models.ScenarioBuyout {
		return "Scénario avec levée d'option (rachat)"
	}
	return "Scénario restitution du véhicule"
}

func drawScenarioTable(pdf *gofpdf.Fpdf, r models.ScenarioReport) {
	ensureSpace(pdf, 30)

	labelW := pdfContentW * 0.46
	numW := pdfContentW * 0.20
	shareW := pdfContentW - labelW - 2*numW

	// Section heading with a small accent bar
	y := pdf.GetY()
	setFill(pdf, pdfNavy)
	pdf.Rect(pdfMarginL, y, 2.5, 6, "F")
	pdf.SetXY(pdfMarginL+5, y)
	pdf.SetFont("Helvetica", "B", 11)
	setText(pdf, pdfNavy)
	pdf.CellFormat(pdfContentW-5, 6, transliterate(scenarioTitle(r.Kind)), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	// Header row
	pdf.SetFont("Helvetica", "B", 7.5)
	setText(pdf, pdfInk50)
	setFill(pdf, pdfInk08)
	pdf.SetX(pdfMarginL)
	pdf.CellFormat(labelW, 6, "POSTE", "", 0, "L", true, 0, "")
	pdf.CellFormat(numW, 6, "TOTAL", "", 0, "R", true, 0, "")
	pdf.CellFormat(numW, 6, "PAR MOIS", "", 0, "R", true, 0, "")
	pdf.CellFormat(shareW, 6, "PART", "", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 8.5)
	for i, line := range r.Lines {
		ensureSpace(pdf, 6)
		fill := i%2 == 1
		if fill {
			setFill(pdf, pdfRowAlt)
		}
		setText(pdf, pdfInk90)
		if line.Total < 0 {
			setText(pdf, pdfGreen)
		}
		pdf.SetX(pdfMarginL)
		pdf.CellFormat(labelW, 5.5, transliterate(line.Label), "", 0, "L", fill, 0, "")
		pdf.CellFormat(numW, 5.5, pdfEuro(line.Total), "", 0, "R", fill, 0, "")
		pdf.CellFormat(numW, 5.5, pdfEuro(line.PerMonth), "", 0, "R", fill, 0, "")
		pdf.CellFormat(shareW, 5.5, report.Pct(line.Share), "", 1, "R", fill, 0, "")
	}

	// Total row
	setDraw(pdf, pdfInk15)
	pdf.SetLineWidth(0.3)
	pdf.Line(pdfMarginL, pdf.GetY()+0.5, pdfPageW-pdfMarginR, pdf.GetY()+0.5)
	pdf.Ln(1.5)
	pdf.SetFont("Helvetica", "B", 9)
	setText(pdf, pdfNavy)
	pdf.SetX(pdfMarginL)
	pdf.CellFormat(labelW, 6, "TOTAL", "", 0, "L", false, 0, "")
	pdf.CellFormat(numW, 6, pdfEuro(r.Total), "", 0, "R", false, 0, "")
	pdf.CellFormat(numW, 6, pdfEuro(r.TotalPerMonth), "", 0, "R", false, 0, "")
	pdf.CellFormat(shareW, 6, report.Pct(100.0), "", 1, "R", false, 0, "")
	pdf.Ln(7)
}

func dealCell(pdf *gofpdf.Fpdf, x, y, w float64, label, value string) {
	pdf.SetXY(x, y)
	pdf.SetFont("Helvetica", "", 7)
	setText(pdf, pdfInk50)
	pdf.CellFormat(w-6, 3.5, transliterate(label), "", 1, "L", false, 0, "")
	pdf.SetXY(x, y+4.5)
	pdf.SetFont("Helvetica", "B", 9.5)
	setText(pdf, pdfInk90)
	pdf.CellFormat(w-6, 4.5, transliterate(value), "", 0, "L", false, 0, "")
}

// ReportPDFHandler builds a printable PDF of the breakdown.
func ReportPDFHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Méthode non autorisée", http.StatusMethodNotAllowed)
		return
	}
	cfg, b, ok := readBreakdown(w, r)
	if !ok {
		return
	}
	IncrementReportCounter()

	now := time.Now()
	dateStr := now.Format("2006-01-02")
	dateDisplay := now.Format("02/01/2006")

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMarginL, 15, pdfMarginR)
	pdf.SetAutoPageBreak(false, 20)

	isFirstPage := true

	pdf.SetFooterFunc(func() {
		pdf.SetY(-14)
		setDraw(pdf, pdfInk08)
		pdf.SetLineWidth(0.3)
		pdf.Line(pdfMarginL, pdf.GetY(), pdfPageW-pdfMarginR, pdf.GetY())
		pdf.SetY(-11)
		pdf.SetFont("Helvetica", "", 6.5)
		setText(pdf, pdfInk30)
		pdf.SetX(pdfMarginL)
		pdf.CellFormat(pdfContentW/2, 8, "coutloa.fr", "", 0, "L", false, 0, "")
		pdf.CellFormat(pdfContentW/2, 8, fmt.Sprintf("%d", pdf.PageNo()), "", 0, "R", false, 0, "")
	})

	pdf.SetHeaderFunc(func() {
		if isFirstPage {
			return
		}
		pdf.SetY(8)
		pdf.SetX(pdfMarginL)
		pdf.SetFont("Helvetica", "B", 8)
		setText(pdf, pdfNavy)
		pdf.CellFormat(pdfContentW/2, 4, "CoutLOA", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 7)
		setText(pdf, pdfInk30)
		pdf.CellFormat(pdfContentW/2, 4, transliterate("Rapport du "+dateDisplay), "", 0, "R", false, 0, "")
		setDraw(pdf, pdfNavy)
		pdf.SetLineWidth(0.5)
		pdf.Line(pdfMarginL, 13.5, pdfPageW-pdfMarginR, 13.5)
	})

	pdf.AddPage()

	// Navy header band
	headerH := 54.0
	setFill(pdf, pdfNavy)
	pdf.Rect(0, 0, pdfPageW, headerH, "F")
	setFill(pdf, pdfNavyLt)
	pdf.Rect(0, headerH-3, pdfPageW, 3, "F")

	pdf.SetXY(pdfMarginL, 15)
	pdf.SetFont("Helvetica", "B", 26)
	setText(pdf, pdfWhite)
	pdf.CellFormat(pdfContentW, 10, "CoutLOA", "", 1, "L", false, 0, "")

	pdf.SetXY(pdfMarginL, 27)
	pdf.SetDrawColor(255, 255, 255)
	pdf.SetLineWidth(0.3)
	pdf.Line(pdfMarginL, 28, pdfMarginL+35, 28)

	pdf.SetXY(pdfMarginL, 31)
	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(208, 216, 228)
	pdf.CellFormat(pdfContentW, 6, transliterate("Coût total de détention d'une LOA"), "", 1, "L", false, 0, "")

	pdf.SetXY(pdfMarginL, 39)
	pdf.SetFont("Helvetica", "", 8.5)
	pdf.SetTextColor(168, 180, 200)
	pdf.CellFormat(pdfContentW, 5, transliterate("Généré le "+dateDisplay), "", 1, "L", false, 0, "")

	// Summary card overlapping the band
	eff := b.Effective()
	cardW := 150.0
	cardX := (pdfPageW - cardW) / 2
	cardY := headerH - 10
	cardH := 28.0

	setFill(pdf, [3]int{210, 210, 210})
	pdf.RoundedRect(cardX+1.5, cardY+1.5, cardW, cardH, 4, "1234", "F")
	setFill(pdf, pdfWhite)
	pdf.RoundedRect(cardX, cardY, cardW, cardH, 4, "1234", "F")

	pdf.SetXY(cardX+12, cardY+5)
	pdf.SetFont("Courier", "B", 26)
	setText(pdf, pdfNavy)
	pdf.CellFormat(cardW/2-12, 10, pdfEuro(eff.Total), "", 0, "L", false, 0, "")
	pdf.SetXY(cardX+12, cardY+18)
	pdf.SetFont("Helvetica", "", 8.5)
	setText(pdf, pdfInk50)
	pdf.CellFormat(cardW/2-12, 4, transliterate("coût total sur la durée"), "", 0, "L", false, 0, "")

	setDraw(pdf, pdfInk15)
	pdf.SetLineWidth(0.3)
	pdf.Line(cardX+cardW/2, cardY+5, cardX+cardW/2, cardY+cardH-5)

	pdf.SetXY(cardX+cardW/2+8, cardY+5)
	pdf.SetFont("Courier", "B", 26)
	setText(pdf, pdfGreen)
	pdf.CellFormat(cardW/2-20, 10, pdfEuro(eff.TotalPerMonth), "", 0, "R", false, 0, "")
	pdf.SetXY(cardX+cardW/2+8, cardY+18)
	pdf.SetFont("Helvetica", "", 8.5)
	setText(pdf, pdfInk50)
	pdf.CellFormat(cardW/2-20, 4, "par mois", "", 0, "R", false, 0, "")

	// Deal facts
	factsY := cardY + cardH + 12
	pdf.SetY(factsY)
	pdf.SetX(pdfMarginL)
	pdf.SetFont("Helvetica", "B", 7)
	setText(pdf, pdfInk30)
	pdf.CellFormat(pdfContentW, 4, "CONTRAT", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	boxY := pdf.GetY()
	boxH := 28.0
	setFill(pdf, pdfCream)
	pdf.RoundedRect(pdfMarginL, boxY, pdfContentW, boxH, 3, "1234", "F")

	colW := pdfContentW / 3
	row1 := boxY + 5
	row2 := boxY + 16

	dealCell(pdf, pdfMarginL+6, row1, colW, "Durée", fmt.Sprintf("%d mois", cfg.Deal.Months))
	dealCell(pdf, pdfMarginL+6+colW, row1, colW, "Loyer mensuel", pdfEuro(cfg.Deal.MonthlyRent))
	dealCell(pdf, pdfMarginL+6+colW*2, row1, colW, "Kilométrage contractuel", fmt.Sprintf("%.0f km", b.ContractKm))

	scenario := "Restitution"
	if cfg.Buyout.Enabled {
		scenario = "Levée d'option"
	}
	dealCell(pdf, pdfMarginL+6, row2, colW, "Fin de contrat", scenario)
	actual := "non renseigné"
	if b.ActualKm != nil {
		actual = fmt.Sprintf("%.0f km", *b.ActualKm)
	}
	dealCell(pdf, pdfMarginL+6+colW, row2, colW, "Relevé réel", actual)
	ik := "désactivées"
	if cfg.IK.Enabled {
		ik = fmt.Sprintf("%d CV, %.0f km/jour", cfg.IK.VehicleCV, cfg.IK.KmPerDay)
	}
	dealCell(pdf, pdfMarginL+6+colW*2, row2, colW, "Indemnités kilométriques", ik)

	pdf.SetY(boxY + boxH + 10)

	isFirstPage = false

	drawScenarioTable(pdf, b.Restitution)
	if b.Buyout != nil {
		drawScenarioTable(pdf, *b.Buyout)
	}

	ensureSpace(pdf, 14)
	pdf.SetFont("Helvetica", "I", 7)
	setText(pdf, pdfWarnInk)
	pdf.SetX(pdfMarginL)
	pdf.CellFormat(pdfContentW, 3.5, transliterate("Ces résultats sont indicatifs et dépendent des hypothèses saisies."), "", 1, "C", false, 0, "")
	pdf.CellFormat(pdfContentW, 3.5, transliterate("Vérifiez toujours les conditions exactes de votre contrat avant de signer."), "", 1, "C", false, 0, "")

	disposition := "attachment"
	if r.URL.Query().Get("mode") == "inline" {
		disposition = "inline"
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`%s; filename="cout-loa-%s.pdf"`, disposition, dateStr))

	if err := pdf.Output(w); err != nil {
		sentryutil.CaptureError(err, map[string]string{"handler": "report-pdf", "phase": "output"})
		http.Error(w, "Erreur de génération du PDF", http.StatusInternalServerError)
	}
}
