package handlers

import (
	"html/template"
	"log"
	"net/http"
	"sync"

	"coutloa/internal/config"
)

var (
	indexTmpl     *template.Template
	indexTmplOnce sync.Once
)

type indexData struct {
	BaseURL string
}

func loadIndexTemplate() {
	var err error
	indexTmpl, err = template.ParseFiles("static/index.html")
	if err != nil {
		log.Printf("[index] erreur de chargement du template: %v, repli sur le fichier statique", err)
		indexTmpl = nil
	}
}

// IndexHandler serves index.html through a template so the canonical URL
// follows the configured base.
func IndexHandler(w http.ResponseWriter, r *http.Request) {
	indexTmplOnce.Do(loadIndexTemplate)

	if indexTmpl == nil {
		http.ServeFile(w, r, "static/index.html")
		return
	}

	data := indexData{BaseURL: config.Cfg.BaseURL}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTmpl.Execute(w, data); err != nil {
		log.Printf("[index] template execute error: %v", err)
		http.ServeFile(w, r, "static/index.html")
	}
}
