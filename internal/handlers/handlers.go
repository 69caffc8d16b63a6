package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"coutloa/internal/lease"
	"coutloa/internal/models"
	"coutloa/internal/report"
	sentryutil "coutloa/internal/sentry"
	"coutloa/internal/tco"
)

const maxJSONBody = 1 << 20

// resolveFragment merges a JSON deal fragment over the documented defaults
// and validates the result. An empty fragment resolves to the defaults.
func resolveFragment(raw []byte) (models.LeaseConfig, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return lease.ResolveReader(nil, lease.Overrides{})
	}
	return lease.ResolveReader(bytes.NewReader(raw), lease.Overrides{})
}

// writeConfigError maps resolution and validation failures to a 400 with the
// French message the engine produced. Malformed JSON ends up here too; it is
// always the caller's input that is at fault.
func writeConfigError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

type simulateResponse struct {
	Config     models.LeaseConfig `json:"config"`
	Breakdown  models.Breakdown   `json:"breakdown"`
	Cumulative models.Cumulative  `json:"cumulative"`
	Summary    string             `json:"summary"`
}

// SimulateHandler computes the full cost breakdown for one deal. The body is
// a JSON configuration fragment in the same schema as the config file;
// omitted fields take the documented defaults.
func SimulateHandler(w http.ResponseWriter, r *http.Request) {
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

	IncrementCounter()

	breakdown, err := tco.Compute(cfg)
	if err != nil {
		writeConfigError(w, err)
		return
	}
	cumulative, err := tco.CumulativeByMonth(cfg)
	if err != nil {
		sentryutil.CaptureError(err, map[string]string{"handler": "simulate", "phase": "cumulative"})
		http.Error(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	// No caching - results depend entirely on the posted deal
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	json.NewEncoder(w).Encode(simulateResponse{
		Config:     cfg,
		Breakdown:  breakdown,
		Cumulative: cumulative,
		Summary:    report.Summarize(cfg, breakdown),
	})
}

type compareRequest struct {
	Offers []struct {
		Name   string          `json:"name"`
		Config json.RawMessage `json:"config"`
	} `json:"offers"`
}

// CompareHandler ranks several offers side by side. Each offer carries its
// own configuration fragment, resolved independently over the defaults.
func CompareHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Méthode non autorisée", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sentryutil.CaptureError(err, map[string]string{"handler": "compare", "phase": "decode"})
		http.Error(w, "Corps de requête invalide", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	offers := make([]report.NamedConfig, 0, len(req.Offers))
	for _, o := range req.Offers {
		cfg, err := resolveFragment(o.Config)
		if err != nil {
			writeConfigError(w, err)
			return
		}
		name := o.Name
		if name == "" {
			name = "offre sans nom"
		}
		offers = append(offers, report.NamedConfig{Name: name, Config: cfg})
	}

	result, err := report.BuildCompare(offers)
	if err != nil {
		writeConfigError(w, err)
		return
	}

	IncrementCounter()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	json.NewEncoder(w).Encode(result)
}
