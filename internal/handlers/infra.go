package handlers

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"
	"time"

	"coutloa/internal/config"
	"coutloa/internal/guides"
	"coutloa/internal/pricefeed"
	"coutloa/internal/store"
)

var startTime = time.Now()

// HealthHandler answers liveness probes.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// StatusHandler returns detailed service state: uptime, tariff feed,
// storage backend, content counts.
func StatusHandler(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(startTime)

	backend := "aucun"
	switch quoteStore.(type) {
	case *store.Memory:
		backend = "mémoire"
	case *store.Redis:
		backend = "redis"
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":         "ok",
		"uptime_seconds": int(uptime.Seconds()),
		"uptime_human":   formatDuration(uptime),
		"tariff_feed":    pricefeed.GetStatus(),
		"quotes_backend": backend,
		"guides_count":   len(guides.GetAll()),
		"simulations":    GetCounter(),
		"reports":        GetReportCounter(),
	})
}

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

// TariffsHandler exposes the electricity prices the simulator pre-fills.
func TariffsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	json.NewEncoder(w).Encode(pricefeed.Current())
}

// StatsHandler reports the running usage counters.
func StatsHandler(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"simulations":         GetCounter(),
		"reports":             GetReportCounter(),
		"last_update_display": now.Format("02/01/2006") + " à " + now.Format("15:04"),
	})
}

// ---------- Sitemap ----------

type siteURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

type urlSet struct {
	XMLName xml.Name  `xml:"urlset"`
	XMLNS   string    `xml:"xmlns,attr"`
	URLs    []siteURL `xml:"url"`
}

func SitemapHandler(w http.ResponseWriter, r *http.Request) {
	baseURL := config.Cfg.BaseURL
	today := time.Now().Format("2006-01-02")

	urls := []siteURL{
		{Loc: baseURL + "/", LastMod: today, ChangeFreq: "weekly", Priority: "1.0"},
		{Loc: baseURL + "/guides", LastMod: today, ChangeFreq: "weekly", Priority: "0.7"},
	}
	for _, g := range guides.GetAll() {
		urls = append(urls, siteURL{
			Loc:        baseURL + "/guides/" + g.Slug,
			LastMod:    g.Date.Format("2006-01-02"),
			ChangeFreq: "monthly",
			Priority:   "0.6",
		})
	}

	sitemap := urlSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write([]byte(xml.Header))
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	enc.Encode(sitemap)
}

// RobotsTxtHandler serves robots.txt with the sitemap link.
func RobotsTxtHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Write([]byte("User-agent: *\nAllow: /\nAllow: /guides\nAllow: /guides/\nDisallow: /api/\n\nSitemap: " + config.Cfg.BaseURL + "/sitemap.xml\n"))
}
