package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
)

// NotFoundHandler serves a styled 404 page, or a JSON error for API routes.
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "endpoint introuvable"})
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(errorPageHTML("404", "Page introuvable", "La page que vous cherchez n'existe pas ou a été déplacée.")))
}

// InternalErrorHandler serves a styled 500 page, or a JSON error for API routes.
func InternalErrorHandler(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "erreur interne du serveur"})
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	w.Write([]byte(errorPageHTML("500", "Erreur du serveur", "Une erreur s'est produite. Réessayez dans quelques instants.")))
}

func errorPageHTML(code, title, message string) string {
	return `<!DOCTYPE html>
<html lang="fr">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>` + title + ` — CoûtLOA</title>
<meta name="robots" content="noindex">
<meta name="theme-color" content="#21375C">
<style>
:root{--ink:#1C1C1F;--ink-75:#404045;--ink-50:#76767C;--ink-15:#D4D4D7;--paper:#FAFAF7;--navy:#21375C;--navy-mid:#33527F;--accent:#B4532A;--radius:5px}
*{margin:0;padding:0;box-sizing:border-box}
body{font-family:system-ui,-apple-system,sans-serif;background:var(--paper);color:var(--ink);min-height:100vh;display:flex;flex-direction:column;font-size:15px;line-height:1.65}
h1{font-family:Georgia,serif;font-weight:400}
a{color:var(--navy-mid);text-decoration:none}a:hover{text-decoration:underline}
.topbar{background:var(--navy);color:rgba(255,255,255,0.85);font-size:.72rem;padding:7px 0;text-align:center;letter-spacing:.02em}
.header{background:#fff;border-bottom:1px solid var(--ink-15);height:54px;display:flex;align-items:center;justify-content:center}
.logo{display:flex;align-items:center;gap:8px;text-decoration:none;color:var(--ink)}
.logo-mark{width:26px;height:26px;background:var(--navy);border-radius:4px;display:flex;align-items:center;justify-content:center;color:#fff;font-family:Georgia,serif;font-size:.75rem;font-weight:700}
.error-wrap{flex:1;display:flex;align-items:center;justify-content:center;text-align:center;padding:40px 24px}
.error-code{font-family:Georgia,serif;font-size:clamp(5rem,15vw,8rem);color:var(--accent);line-height:1;margin-bottom:8px;opacity:.85}
.error-wrap h1{font-size:clamp(1.3rem,3vw,1.8rem);margin-bottom:12px}
.error-wrap p{color:var(--ink-75);max-width:480px;margin:0 auto 24px;font-size:1rem}
.btn-home{display:inline-block;padding:12px 28px;background:var(--navy);color:#fff;border-radius:var(--radius);font-weight:600;font-size:.95rem;text-decoration:none}
.btn-home:hover{background:var(--navy-mid);text-decoration:none}
footer{border-top:1px solid var(--ink-15);padding:24px 0;text-align:center;color:var(--ink-50);font-size:.82rem}
footer a{color:var(--navy-mid);margin:0 8px}
</style>
</head>
<body>
<div class="topbar">CoûtLOA — Simulateur indépendant du coût réel d'une LOA</div>
<header class="header"><a href="/" class="logo"><div class="logo-mark">C</div> CoûtLOA</a></header>
<main class="error-wrap">
<div>
<div class="error-code">` + code + `</div>
<h1>` + title + `</h1>
<p>` + message + `</p>
<a href="/" class="btn-home">Retour à l'accueil</a>
</div>
</main>
<footer><a href="/">Accueil</a><a href="/guides">Guides</a></footer>
</body>
</html>`
}
