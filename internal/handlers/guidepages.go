package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"coutloa/internal/guides"
)

// GuidesAPIHandler lists the published guides as JSON, without bodies.
func GuidesAPIHandler(w http.ResponseWriter, r *http.Request) {
	type item struct {
		Slug        string   `json:"slug"`
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Date        string   `json:"date"`
		Theme       string   `json:"theme"`
		Tags        []string `json:"tags,omitempty"`
	}

	all := guides.GetAll()
	items := make([]item, 0, len(all))
	for _, g := range all {
		items = append(items, item{
			Slug:        g.Slug,
			Title:       g.Title,
			Description: g.Description,
			Date:        g.Date.Format("2006-01-02"),
			Theme:       g.Theme,
			Tags:        g.Tags,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	json.NewEncoder(w).Encode(items)
}

// GuidesPageHandler serves the HTML index of guides, optionally filtered
// by theme (?theme=contrat).
func GuidesPageHandler(w http.ResponseWriter, r *http.Request) {
	var all []guides.Guide
	if theme := r.URL.Query().Get("theme"); theme != "" {
		all = guides.GetByTheme(theme)
	} else {
		all = guides.GetAll()
	}

	var sb strings.Builder
	sb.WriteString(guidePageHead("Guides LOA", "Comprendre sa LOA: loyers, kilométrage, indemnités, levée d'option."))
	sb.WriteString(`<h1>Guides</h1>
<p class="lede">Décoder une offre de location avec option d'achat, poste par poste.</p>`)

	if len(all) == 0 {
		sb.WriteString(`<p>Aucun guide publié pour le moment.</p>`)
	}
	for _, g := range all {
		sb.WriteString(`<article class="card">
<h2><a href="/guides/` + htmlEscape(g.Slug) + `">` + htmlEscape(g.Title) + `</a></h2>
<p class="meta">` + g.Date.Format("02/01/2006"))
		if g.Theme != "" {
			sb.WriteString(` · ` + htmlEscape(g.Theme))
		}
		sb.WriteString(`</p>
<p>` + htmlEscape(g.Description) + `</p>
</article>`)
	}

	sb.WriteString(guidePageFoot())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write([]byte(sb.String()))
}

// GuidePageHandler serves one guide as HTML: /guides/{slug}.
func GuidePageHandler(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/guides/"), "/")
	if slug == "" {
		GuidesPageHandler(w, r)
		return
	}

	g := guides.GetBySlug(slug)
	if g == nil {
		NotFoundHandler(w, r)
		return
	}

	var sb strings.Builder
	sb.WriteString(guidePageHead(g.Title, g.Description))
	sb.WriteString(`<p><a href="/guides" class="back">← Tous les guides</a></p>
<h1>` + htmlEscape(g.Title) + `</h1>
<p class="meta">` + g.Date.Format("02/01/2006"))
	if g.Theme != "" {
		sb.WriteString(` · ` + htmlEscape(g.Theme))
	}
	sb.WriteString(`</p>
<div class="content">` + g.HTMLContent + `</div>`)

	// Related guides (same theme, excluding current)
	var related []guides.Guide
	for _, rg := range guides.GetByTheme(g.Theme) {
		if rg.Slug != g.Slug {
			related = append(related, rg)
		}
	}
	if len(related) > 3 {
		related = related[:3]
	}
	if len(related) > 0 {
		sb.WriteString(`<h2>À lire aussi</h2>
<ul>`)
		for _, rg := range related {
			sb.WriteString(`
<li><a href="/guides/` + htmlEscape(rg.Slug) + `">` + htmlEscape(rg.Title) + `</a></li>`)
		}
		sb.WriteString(`
</ul>`)
	}

	sb.WriteString(guidePageFoot())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write([]byte(sb.String()))
}

func guidePageHead(title, description string) string {
	return `<!DOCTYPE html>
<html lang="fr">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>` + htmlEscape(title) + ` — CoûtLOA</title>
<meta name="description" content="` + htmlEscape(truncate(description, 160)) + `">
<style>
body{font-family:system-ui,sans-serif;max-width:760px;margin:0 auto;padding:20px;color:#1C1C1F;line-height:1.65}
h1{font-family:Georgia,serif;font-weight:400;color:#21375C;border-bottom:2px solid #33527F;padding-bottom:10px}
h2{color:#21375C;font-size:1.2em}
a{color:#33527F;text-decoration:none}a:hover{text-decoration:underline}
.lede{color:#404045;font-size:1.05em}
.meta{color:#76767C;font-size:.9em}
.card{margin:24px 0;padding:16px;background:#FAFAF7;border:1px solid #D4D4D7;border-radius:8px}
.card h2{margin:0 0 6px}
.content table{border-collapse:collapse}
.content td,.content th{border:1px solid #D4D4D7;padding:6px 10px}
.back{display:inline-block;margin-bottom:8px}
footer{margin-top:40px;padding-top:20px;border-top:1px solid #D4D4D7;color:#76767C;font-size:.85em;text-align:center}
</style>
</head>
<body>
`
}

func guidePageFoot() string {
	return `
<footer>
<p>CoûtLOA — Simulateur indépendant. Les montants sont indicatifs.</p>
<p><a href="/">Calculer le coût de votre LOA →</a></p>
</footer>
</body>
</html>`
}

func htmlEscape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	return s
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
