package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	sentryutil "coutloa/internal/sentry"
	"coutloa/internal/store"
)

var quoteStore store.QuoteStore

// SetQuoteStore wires the persistence backend picked at startup.
func SetQuoteStore(s store.QuoteStore) {
	quoteStore = s
}

type saveQuoteRequest struct {
	Name   string          `json:"name"`
	Config json.RawMessage `json:"config"`
}

// QuotesHandler saves, fetches and deletes named quotes.
// POST saves the body's configuration under a generated id, GET ?id= fetches
// it back, DELETE ?id= removes it.
func QuotesHandler(w http.ResponseWriter, r *http.Request) {
	if quoteStore == nil {
		http.Error(w, "Sauvegarde de devis indisponible", http.StatusServiceUnavailable)
		return
	}

	switch r.Method {
	case http.MethodPost:
		saveQuote(w, r)
	case http.MethodGet:
		getQuote(w, r)
	case http.MethodDelete:
		deleteQuote(w, r)
	default:
		http.Error(w, "Méthode non autorisée", http.StatusMethodNotAllowed)
	}
}

func saveQuote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	var req saveQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Corps de requête invalide", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	cfg, err := resolveFragment(req.Config)
	if err != nil {
		writeConfigError(w, err)
		return
	}
	name := req.Name
	if name == "" {
		name = "devis sans nom"
	}

	q, err := quoteStore.Save(r.Context(), name, cfg)
	if err != nil {
		sentryutil.CaptureError(err, map[string]string{"handler": "quotes", "phase": "save"})
		http.Error(w, "Erreur d'enregistrement du devis", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(q)
}

func getQuote(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Paramètre id manquant", http.StatusBadRequest)
		return
	}

	q, err := quoteStore.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Devis introuvable", http.StatusNotFound)
			return
		}
		sentryutil.CaptureError(err, map[string]string{"handler": "quotes", "phase": "get"})
		http.Error(w, "Erreur de lecture du devis", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	json.NewEncoder(w).Encode(q)
}

func deleteQuote(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Paramètre id manquant", http.StatusBadRequest)
		return
	}

	if err := quoteStore.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Devis introuvable", http.StatusNotFound)
			return
		}
		sentryutil.CaptureError(err, map[string]string{"handler": "quotes", "phase": "delete"})
		http.Error(w, "Erreur de suppression du devis", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"deleted": true})
}
