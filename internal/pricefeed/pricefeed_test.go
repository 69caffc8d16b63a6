package pricefeed

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"coutloa/internal/config"
)

const samplePage = `<html><body>
<h1>Tarifs électricité</h1>
<table>
<tr><td>Tarif domicile (base)</td><td>0,2276 €/kWh</td></tr>
<tr><td>Borne publique (AC)</td><td>0,52 €/kWh</td></tr>
</table>
</body></html>`

func TestCurrent_ValeursIntegrees(t *testing.T) {
	ts := Current()
	if ts.HomeEurPerKwh != 0.23 || ts.PublicEurPerKwh != 0.45 {
		t.Errorf("tarifs intégrés inattendus: %+v", ts)
	}
	if ts.FromFeed {
		t.Error("sans flux, FromFeed devrait être faux")
	}
}

func TestParseTariffs(t *testing.T) {
	ts, err := ParseTariffs([]byte(samplePage))
	if err != nil {
		t.Fatalf("ParseTariffs: %v", err)
	}
	if ts.HomeEurPerKwh != 0.2276 {
		t.Errorf("domicile: %g, attendu 0.2276", ts.HomeEurPerKwh)
	}
	if ts.PublicEurPerKwh != 0.52 {
		t.Errorf("borne: %g, attendu 0.52", ts.PublicEurPerKwh)
	}
}

func TestParseTariffs_PageSansTarifs(t *testing.T) {
	if _, err := ParseTariffs([]byte("<html><body><p>Maintenance en cours</p></body></html>")); err == nil {
		t.Fatal("page sans tarifs acceptée")
	}

	// Un montant hors de toute plausibilité pour un kWh ne compte pas.
	page := `<p>domicile 12,50 €</p><p>borne publique 0,52 €</p>`
	if _, err := ParseTariffs([]byte(page)); err == nil {
		t.Fatal("prix aberrant accepté")
	}
}

func TestRunFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	config.Cfg.TariffFeedURL = srv.URL
	config.Cfg.UserAgent = "test"
	RunFetch()

	ts := Current()
	if !ts.FromFeed {
		t.Fatal("après un fetch réussi, FromFeed devrait être vrai")
	}
	if ts.HomeEurPerKwh != 0.2276 || ts.PublicEurPerKwh != 0.52 {
		t.Errorf("tarifs du flux inattendus: %+v", ts)
	}
	if st := GetStatus(); st.FetchCount == 0 || st.LastError != "" {
		t.Errorf("statut inattendu: %+v", st)
	}
}

func TestRunFetch_Echec(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	before := Current()
	config.Cfg.TariffFeedURL = srv.URL
	RunFetch()

	if got := Current(); got != before {
		t.Errorf("un fetch raté ne devrait pas toucher les tarifs: %+v", got)
	}
	if st := GetStatus(); st.LastError == "" {
		t.Error("l'échec devrait être enregistré dans le statut")
	}
}
