package handlers

import (
	"bytes"
	"encoding/json"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"coutloa/internal/config"
	"coutloa/internal/guides"
	"coutloa/internal/models"
	"coutloa/internal/store"
)

func init() {
	InitCounter()
	SetQuoteStore(store.NewMemory(0))
	config.Cfg.BaseURL = "https://coutloa.fr"
	config.Cfg.ContractMaxBytes = 5 << 20
}

// exampleBody is the e-208-type deal: 37 mois à 189 €, 12000 km/an, relevé
// réel 16500 km/an, crédits recharge 498 €, IK 5 CV électrique.
const exampleBody = `{
  "deal": {
    "monthly_rent": 189,
    "months": 37,
    "annual_km": 12000,
    "actual_annual_km": 16500,
    "excess_rate_eur_per_km": 0.10,
    "charging_credits_total": 498
  },
  "ik": {
    "enabled": true,
    "vehicle_cv": 5,
    "is_electric": true,
    "km_per_day": 10,
    "worked_days": 100,
    "days_is_annual": false,
    "annualize": false
  }
}`

func postJSON(t *testing.T, handler http.HandlerFunc, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func TestSimulateHandler_ExempleComplet(t *testing.T) {
	w := postJSON(t, SimulateHandler, "/api/simulate", exampleBody)

	if w.Code != http.StatusOK {
		t.Fatalf("attendu 200, obtenu %d: %s", w.Code, w.Body.String())
	}
	if cc := w.Header().Get("Cache-Control"); !strings.Contains(cc, "no-store") {
		t.Errorf("Cache-Control attendu no-store, obtenu %q", cc)
	}

	var resp simulateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("JSON invalide: %v", err)
	}
	if got := math.Round(resp.Breakdown.Restitution.Total*100) / 100; got != 11587.67 {
		t.Errorf("total restitution: obtenu %.2f, attendu 11587.67", got)
	}
	if len(resp.Cumulative.Restitution) != 37 {
		t.Errorf("courbe cumulée: %d points, attendu 37", len(resp.Cumulative.Restitution))
	}
	if resp.Config.Insurance.EurPerMonth != 65 {
		t.Errorf("assurance par défaut: obtenu %g, attendu 65", resp.Config.Insurance.EurPerMonth)
	}
	if !strings.Contains(resp.Summary, "37 mois") {
		t.Errorf("résumé sans la durée: %q", resp.Summary)
	}
}

func TestSimulateHandler_DefautsSeuls(t *testing.T) {
	w := postJSON(t, SimulateHandler, "/api/simulate", `{}`)

	if w.Code != http.StatusOK {
		t.Fatalf("attendu 200, obtenu %d: %s", w.Code, w.Body.String())
	}

	var resp simulateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("JSON invalide: %v", err)
	}
	if resp.Config.Deal.Months != 48 {
		t.Errorf("durée par défaut: obtenu %d, attendu 48", resp.Config.Deal.Months)
	}
	// 48 loyers de 350 + 10200 kWh à 0.23 + 4 ans d'entretien + 48 mois
	// d'assurance
	if got := math.Round(resp.Breakdown.Restitution.Total*100) / 100; got != 23066.00 {
		t.Errorf("total par défaut: obtenu %.2f, attendu 23066.00", got)
	}
}

func TestSimulateHandler_ConfigInvalide(t *testing.T) {
	w := postJSON(t, SimulateHandler, "/api/simulate", `{"deal":{"monthly_rent":-5}}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("attendu 400 pour un loyer négatif, obtenu %d", w.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("JSON invalide: %v", err)
	}
	if resp["error"] == "" {
		t.Error("le message d'erreur devrait être présent")
	}
}

func TestSimulateHandler_MethodeInterdite(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/simulate", nil)
	w := httptest.NewRecorder()

	SimulateHandler(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("attendu 405, obtenu %d", w.Code)
	}
}

func TestCompareHandler_DeuxOffres(t *testing.T) {
	body := `{"offers":[
	  {"name":"offre-a.json","config":{"deal":{"monthly_rent":350,"months":48}}},
	  {"name":"offre-b.json","config":{"deal":{"monthly_rent":280,"months":48}}}
	]}`
	w := postJSON(t, CompareHandler, "/api/compare", body)

	if w.Code != http.StatusOK {
		t.Fatalf("attendu 200, obtenu %d: %s", w.Code, w.Body.String())
	}

	var result models.CompareResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("JSON invalide: %v", err)
	}
	if len(result.Offers) != 2 {
		t.Fatalf("attendu 2 offres, obtenu %d", len(result.Offers))
	}
	if result.Cheapest != 1 {
		t.Errorf("l'offre B devrait être la moins chère, obtenu index %d", result.Cheapest)
	}
	if result.MaxMonths != 48 {
		t.Errorf("durée maximale: obtenu %d, attendu 48", result.MaxMonths)
	}
}

func TestCompareHandler_OffreInvalide(t *testing.T) {
	body := `{"offers":[{"name":"cassée","config":{"deal":{"months":-3}}}]}`
	w := postJSON(t, CompareHandler, "/api/compare", body)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("attendu 400, obtenu %d: %s", w.Code, w.Body.String())
	}
}

func TestEncodeDecodeDeal(t *testing.T) {
	// Electric is true by default; encoding must keep the explicit false.
	body := `{"deal":{"monthly_rent":189,"months":37},"ik":{"enabled":true,"vehicle_cv":4,"is_electric":false}}`
	w := postJSON(t, EncodeDealHandler, "/api/encode", body)

	if w.Code != http.StatusOK {
		t.Fatalf("encodage: attendu 200, obtenu %d: %s", w.Code, w.Body.String())
	}

	var encResult map[string]string
	json.Unmarshal(w.Body.Bytes(), &encResult)
	code := encResult["code"]
	if code == "" || !strings.HasPrefix(code, "CLO-") {
		t.Fatalf("attendu un code préfixé CLO-, obtenu: %s", code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/api/decode?code="+code, nil)
	w2 := httptest.NewRecorder()

	DecodeDealHandler(w2, req2)

	if w2.Code != http.StatusOK {
		t.Fatalf("décodage: attendu 200, obtenu %d: %s", w2.Code, w2.Body.String())
	}

	var cfg models.LeaseConfig
	if err := json.Unmarshal(w2.Body.Bytes(), &cfg); err != nil {
		t.Fatalf("JSON invalide: %v", err)
	}
	if cfg.Deal.MonthlyRent != 189 {
		t.Errorf("loyer: obtenu %g, attendu 189", cfg.Deal.MonthlyRent)
	}
	if cfg.Deal.Months != 37 {
		t.Errorf("durée: obtenu %d, attendu 37", cfg.Deal.Months)
	}
	if cfg.IK.IsElectric {
		t.Error("is_electric devrait rester false après un aller-retour")
	}
	if !cfg.IK.DaysIsAnnual {
		t.Error("days_is_annual devrait garder sa valeur par défaut true")
	}
	if cfg.Insurance.EurPerMonth != 65 {
		t.Errorf("assurance: obtenu %g, attendu le défaut 65", cfg.Insurance.EurPerMonth)
	}
}

func TestDecodeDealHandler_CodeInvalide(t *testing.T) {
	for _, code := range []string{"", "XYZ-abc", "CLO-%%%"} {
		req := httptest.NewRequest(http.MethodGet, "/api/decode?code="+code, nil)
		w := httptest.NewRecorder()

		DecodeDealHandler(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("code %q: attendu 400, obtenu %d", code, w.Code)
		}
	}
}

func TestExtractContractFields(t *testing.T) {
	text := `CONTRAT DE LOCATION AVEC OPTION D'ACHAT
Le présent contrat porte sur une durée de 37 mois.
Loyer mensuel de 349,00 € TTC, assurance non comprise.
Kilométrage: 12 500 km par an, tout kilomètre supplémentaire
facturé 0,15 € par km au-delà de la franchise.
Premier loyer majoré de 3 000,00 € payable à la livraison.
Option d'achat finale : 9 800,00 € à l'issue du contrat.`

	f := extractContractFields(text)

	if f.MonthlyRent == nil || *f.MonthlyRent != 349 {
		t.Errorf("loyer: obtenu %v, attendu 349", f.MonthlyRent)
	}
	if f.Months == nil || *f.Months != 37 {
		t.Errorf("durée: obtenu %v, attendu 37", f.Months)
	}
	if f.AnnualKm == nil || *f.AnnualKm != 12500 {
		t.Errorf("kilométrage: obtenu %v, attendu 12500", f.AnnualKm)
	}
	if f.UpfrontCosts == nil || *f.UpfrontCosts != 3000 {
		t.Errorf("premier loyer: obtenu %v, attendu 3000", f.UpfrontCosts)
	}
	if f.ResidualValue == nil || *f.ResidualValue != 9800 {
		t.Errorf("option d'achat: obtenu %v, attendu 9800", f.ResidualValue)
	}
	if f.ExcessRateEurPerKm == nil || *f.ExcessRateEurPerKm != 0.15 {
		t.Errorf("tarif dépassement: obtenu %v, attendu 0.15", f.ExcessRateEurPerKm)
	}
}

func TestExtractContractFields_TexteVide(t *testing.T) {
	f := extractContractFields("facture d'électricité sans rapport")
	if f.any() {
		t.Errorf("aucun champ ne devrait être extrait: %+v", f)
	}
}

func TestParseFrenchAmount(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"349,00", 349, true},
		{"12 500", 12500, true},
		{"9 800,50", 9800.50, true},
		{"12.000", 12000, true},
		{"abc", 0, false},
	}
	for _, c := range cases {
		got, ok := parseFrenchAmount(c.in)
		if ok != c.ok || got != c.want {
			t.Errorf("parseFrenchAmount(%q) = %g, %v; attendu %g, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestParseContractHandler_FormatInvalide(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "contrat.txt")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte("ceci n'est pas un PDF"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/contract", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()

	ParseContractHandler(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("attendu 400 pour un fichier texte, obtenu %d", w.Code)
	}
}

func TestQuotesHandler_CycleComplet(t *testing.T) {
	body := `{"name":"e-208 37 mois","config":{"deal":{"monthly_rent":189,"months":37}}}`
	w := postJSON(t, QuotesHandler, "/api/quotes", body)

	if w.Code != http.StatusCreated {
		t.Fatalf("enregistrement: attendu 201, obtenu %d: %s", w.Code, w.Body.String())
	}
	var q store.Quote
	if err := json.Unmarshal(w.Body.Bytes(), &q); err != nil {
		t.Fatalf("JSON invalide: %v", err)
	}
	if q.ID == "" {
		t.Fatal("le devis devrait recevoir un id")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/quotes?id="+q.ID, nil)
	w2 := httptest.NewRecorder()
	QuotesHandler(w2, req)

	if w2.Code != http.StatusOK {
		t.Fatalf("lecture: attendu 200, obtenu %d", w2.Code)
	}
	var got store.Quote
	json.Unmarshal(w2.Body.Bytes(), &got)
	if got.Name != "e-208 37 mois" {
		t.Errorf("nom: obtenu %q", got.Name)
	}
	if got.Config.Deal.MonthlyRent != 189 {
		t.Errorf("loyer: obtenu %g, attendu 189", got.Config.Deal.MonthlyRent)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/quotes?id="+q.ID, nil)
	w3 := httptest.NewRecorder()
	QuotesHandler(w3, req)
	if w3.Code != http.StatusOK {
		t.Fatalf("suppression: attendu 200, obtenu %d", w3.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/quotes?id="+q.ID, nil)
	w4 := httptest.NewRecorder()
	QuotesHandler(w4, req)
	if w4.Code != http.StatusNotFound {
		t.Fatalf("après suppression: attendu 404, obtenu %d", w4.Code)
	}
}

func TestReportTextHandler(t *testing.T) {
	w := postJSON(t, ReportTextHandler, "/api/report/text", exampleBody)

	if w.Code != http.StatusOK {
		t.Fatalf("attendu 200, obtenu %d: %s", w.Code, w.Body.String())
	}
	out := w.Body.String()
	if !strings.Contains(out, "=== TCO LOA") {
		t.Error("le rapport devrait commencer par le titre TCO LOA")
	}
	if !strings.Contains(out, "TOTAL") {
		t.Error("le rapport devrait contenir la ligne TOTAL")
	}
}

func TestReportCSVHandler(t *testing.T) {
	w := postJSON(t, ReportCSVHandler, "/api/report/csv", exampleBody)

	if w.Code != http.StatusOK {
		t.Fatalf("attendu 200, obtenu %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/csv") {
		t.Errorf("Content-Type: obtenu %q", ct)
	}
	if !strings.HasPrefix(w.Body.String(), "scenario;poste") {
		t.Errorf("en-tête CSV inattendu: %q", strings.SplitN(w.Body.String(), "\n", 2)[0])
	}
}

func TestReportPDFHandler(t *testing.T) {
	w := postJSON(t, ReportPDFHandler, "/api/report/pdf", exampleBody)

	if w.Code != http.StatusOK {
		t.Fatalf("attendu 200, obtenu %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type: obtenu %q", ct)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")) {
		t.Error("le corps devrait être un document PDF")
	}
}

func TestRateLimiter_Bloque(t *testing.T) {
	rl := NewRateLimiter(1, 2, time.Minute)

	if !rl.allow("203.0.113.7") {
		t.Fatal("première requête refusée")
	}
	if !rl.allow("203.0.113.7") {
		t.Fatal("deuxième requête refusée, le burst devrait couvrir")
	}
	if rl.allow("203.0.113.7") {
		t.Error("troisième requête acceptée, le bucket devrait être vide")
	}
	if !rl.allow("203.0.113.8") {
		t.Error("une autre IP ne devrait pas être pénalisée")
	}
}

func TestNotFoundHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/inconnu", nil)
	w := httptest.NewRecorder()
	NotFoundHandler(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("attendu 404, obtenu %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Errorf("route API: attendu du JSON, obtenu %q", ct)
	}

	req = httptest.NewRequest(http.MethodGet, "/page-inconnue", nil)
	w = httptest.NewRecorder()
	NotFoundHandler(w, req)
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("route publique: attendu du HTML, obtenu %q", ct)
	}
	if !strings.Contains(w.Body.String(), "Page introuvable") {
		t.Error("la page d'erreur devrait être en français")
	}
}

func TestHealthHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()

	HealthHandler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("attendu 200, obtenu %d", w.Code)
	}
	var result map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("JSON invalide: %v", err)
	}
	if result["status"] != "ok" {
		t.Error("le statut devrait être ok")
	}
}

func TestStatusHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	w := httptest.NewRecorder()

	StatusHandler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("attendu 200, obtenu %d", w.Code)
	}
	var result map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("JSON invalide: %v", err)
	}
	if result["quotes_backend"] != "mémoire" {
		t.Errorf("backend: obtenu %v, attendu mémoire", result["quotes_backend"])
	}
}

func TestTariffsHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/tariffs", nil)
	w := httptest.NewRecorder()

	TariffsHandler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("attendu 200, obtenu %d", w.Code)
	}
	var tariffs models.TariffSet
	if err := json.Unmarshal(w.Body.Bytes(), &tariffs); err != nil {
		t.Fatalf("JSON invalide: %v", err)
	}
	if tariffs.HomeEurPerKwh <= 0 {
		t.Error("le tarif domicile devrait être positif")
	}
}

func TestGuidePages(t *testing.T) {
	dir := t.TempDir()
	article := `---
slug: test-loyer
title: Comprendre son loyer
description: Ce que couvre le loyer mensuel d'une LOA.
date: 2026-03-10
theme: contrat
---

Le loyer couvre la **dépréciation** du véhicule.
`
	if err := os.WriteFile(filepath.Join(dir, "test-loyer.md"), []byte(article), 0644); err != nil {
		t.Fatal(err)
	}
	if err := guides.LoadAll(dir); err != nil {
		t.Fatalf("LoadAll: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/guides", nil)
	w := httptest.NewRecorder()
	GuidesAPIHandler(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("attendu 200, obtenu %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "test-loyer") {
		t.Error("la liste devrait contenir le guide chargé")
	}

	req = httptest.NewRequest(http.MethodGet, "/guides/test-loyer", nil)
	w = httptest.NewRecorder()
	GuidePageHandler(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("page du guide: attendu 200, obtenu %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Comprendre son loyer") {
		t.Error("la page devrait afficher le titre du guide")
	}

	req = httptest.NewRequest(http.MethodGet, "/guides/absent", nil)
	w = httptest.NewRecorder()
	GuidePageHandler(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("guide absent: attendu 404, obtenu %d", w.Code)
	}
}

func TestSitemapHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/sitemap.xml", nil)
	w := httptest.NewRecorder()

	SitemapHandler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("attendu 200, obtenu %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "<urlset") {
		t.Error("le sitemap devrait contenir un urlset")
	}
	if !strings.Contains(body, "https://coutloa.fr/guides") {
		t.Error("le sitemap devrait référencer la section guides")
	}
}
