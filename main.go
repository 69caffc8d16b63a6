package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"coutloa/internal/config"
	"coutloa/internal/guides"
	"coutloa/internal/handlers"
	"coutloa/internal/lease"
	"coutloa/internal/logger"
	"coutloa/internal/middleware"
	"coutloa/internal/models"
	"coutloa/internal/pricefeed"
	"coutloa/internal/report"
	sentryutil "coutloa/internal/sentry"
	"coutloa/internal/store"
	"coutloa/internal/tco"
)

var (
	flagConfig = pflag.String("config", "", "Fichier JSON du contrat")
	flagServe  = pflag.Bool("serve", false, "Démarrer le serveur HTTP")

	flagSummary = pflag.Bool("summary", false, "Afficher le résumé court au lieu du tableau")
	flagCSV     = pflag.Bool("csv", false, "Sortie CSV (séparateur ;)")
	flagJSON    = pflag.Bool("json", false, "Sortie JSON complète")

	flagMonths          = pflag.Int("months", 0, "Durée en mois")
	flagMonthlyRent     = pflag.Float64("monthly-rent", 0, "Loyer LOA mensuel (€)")
	flagAnnualKm        = pflag.Float64("annual-km", 0, "Kilométrage contractuel (km/an)")
	flagUpfront         = pflag.Float64("upfront", 0, "Immat / mise en main (€)")
	flagAccessories     = pflag.Float64("accessories", 0, "Accessoires (€)")
	flagOtherFixed      = pflag.Float64("other-fixed", 0, "Divers fixes (€)")
	flagChargingCredits = pflag.Float64("charging-credits", 0, "Crédits recharge déduits (€)")
	flagRestitutionFees = pflag.Float64("restitution-fees", 0, "Frais de restitution (€)")
	flagActualAnnualKm  = pflag.Float64("actual-annual-km", 0, "Relevé réel (km/an)")
	flagActualTotalKm   = pflag.Float64("actual-total-km", 0, "Relevé réel total (km), prioritaire")
	flagExcessRate      = pflag.Float64("excess-rate", 0, "Tarif dépassement (€/km)")
	flagExcessFreeKm    = pflag.Float64("excess-free-km", 0, "Franchise de dépassement (km)")

	flagKwhPer100     = pflag.Float64("kwh-per-100", 0, "Conso (kWh/100km)")
	flagShareFree     = pflag.Float64("share-free", 0, "Part d'énergie gratuite 0..1")
	flagHomePrice     = pflag.Float64("home-price", 0, "Prix domicile (€/kWh)")
	flagPublicPrice   = pflag.Float64("public-price", 0, "Prix borne publique (€/kWh)")
	flagShareHomePaid = pflag.Float64("share-home-paid", 0, "Part domicile de l'énergie payante 0..1")

	flagMaintYear         = pflag.Float64("maint-year", 0, "Entretien (€/an)")
	flagTireCost          = pflag.Float64("tire-cost", 0, "Coût d'un train de pneus (€)")
	flagTireIncluded      = pflag.Int("tire-included", 0, "Trains de pneus inclus")
	flagTireExpectedTotal = pflag.Int("tire-expected-total", 0, "Trains de pneus attendus sur la durée")
	flagInsMonth          = pflag.Float64("ins-month", 0, "Assurance (€/mois)")

	flagBuyout    = pflag.Bool("buyout", false, "Activer le scénario rachat")
	flagNoBuyout  = pflag.Bool("no-buyout", false, "Désactiver le scénario rachat")
	flagOptionFee = pflag.Float64("option-fee", 0, "Frais d'option (€)")
	flagVR        = pflag.Float64("vr", 0, "Valeur de rachat (€)")
	flagResale    = pflag.Float64("resale", 0, "Revente espérée après rachat (€)")

	flagIK            = pflag.Bool("ik", false, "Activer les indemnités kilométriques")
	flagNoIK          = pflag.Bool("no-ik", false, "Désactiver les indemnités kilométriques")
	flagIKCv          = pflag.Int("ik-cv", 0, "Puissance fiscale (CV)")
	flagIKEv          = pflag.Bool("ik-ev", false, "Véhicule électrique (majoration 20%)")
	flagIKNoEv        = pflag.Bool("ik-no-ev", false, "Véhicule non électrique")
	flagIKKmDay       = pflag.Float64("ik-km-day", 0, "IK: km par jour (bruts)")
	flagIKCapKmDay    = pflag.Float64("ik-cap-km-day", 0, "IK: plafond employeur (km/jour)")
	flagIKDays        = pflag.Float64("ik-days", 0, "IK: jours travaillés")
	flagIKDaysAnnual  = pflag.Bool("ik-days-is-annual", false, "IK: les jours s'entendent par an")
	flagIKDaysTotal   = pflag.Bool("ik-days-is-total", false, "IK: les jours s'entendent sur la durée")
	flagIKAnnualize   = pflag.Bool("ik-annualize", false, "IK: annualiser sur la durée du contrat")
	flagIKNoAnnualize = pflag.Bool("ik-no-annualize", false, "IK: ne pas annualiser")

	flagPenaltyScenarios = pflag.String("penalty-scenarios", "", "Scénarios pénalisés: both, restitution, buyout, none")
)

func changedF(name string, p *float64) *float64 {
	if pflag.CommandLine.Changed(name) {
		return p
	}
	return nil
}

func changedI(name string, p *int) *int {
	if pflag.CommandLine.Changed(name) {
		return p
	}
	return nil
}

func changedS(name string, p *string) *string {
	if pflag.CommandLine.Changed(name) {
		return p
	}
	return nil
}

// triState turns an on/off flag pair into an optional bool; the off flag
// wins when both are given.
func triState(on, off string) *bool {
	if pflag.CommandLine.Changed(off) {
		v := false
		return &v
	}
	if pflag.CommandLine.Changed(on) {
		v := true
		return &v
	}
	return nil
}

func buildOverrides() lease.Overrides {
	return lease.Overrides{
		Months:          changedI("months", flagMonths),
		MonthlyRent:     changedF("monthly-rent", flagMonthlyRent),
		AnnualKm:        changedF("annual-km", flagAnnualKm),
		Upfront:         changedF("upfront", flagUpfront),
		Accessories:     changedF("accessories", flagAccessories),
		OtherFixed:      changedF("other-fixed", flagOtherFixed),
		ChargingCredits: changedF("charging-credits", flagChargingCredits),
		RestitutionFees: changedF("restitution-fees", flagRestitutionFees),
		ActualAnnualKm:  changedF("actual-annual-km", flagActualAnnualKm),
		ActualTotalKm:   changedF("actual-total-km", flagActualTotalKm),
		ExcessRate:      changedF("excess-rate", flagExcessRate),
		ExcessFreeKm:    changedF("excess-free-km", flagExcessFreeKm),

		KwhPer100:     changedF("kwh-per-100", flagKwhPer100),
		ShareFree:     changedF("share-free", flagShareFree),
		HomePrice:     changedF("home-price", flagHomePrice),
		PublicPrice:   changedF("public-price", flagPublicPrice),
		ShareHomePaid: changedF("share-home-paid", flagShareHomePaid),

		MaintYear:         changedF("maint-year", flagMaintYear),
		TireCost:          changedF("tire-cost", flagTireCost),
		TireIncluded:      changedI("tire-included", flagTireIncluded),
		TireExpectedTotal: changedI("tire-expected-total", flagTireExpectedTotal),
		InsMonth:          changedF("ins-month", flagInsMonth),

		Buyout:    triState("buyout", "no-buyout"),
		OptionFee: changedF("option-fee", flagOptionFee),
		VR:        changedF("vr", flagVR),
		Resale:    changedF("resale", flagResale),

		IKEnabled:      triState("ik", "no-ik"),
		IKCv:           changedI("ik-cv", flagIKCv),
		IKElectric:     triState("ik-ev", "ik-no-ev"),
		IKKmDay:        changedF("ik-km-day", flagIKKmDay),
		IKCapKmDay:     changedF("ik-cap-km-day", flagIKCapKmDay),
		IKDays:         changedF("ik-days", flagIKDays),
		IKDaysIsAnnual: triState("ik-days-is-annual", "ik-days-is-total"),
		IKAnnualize:    triState("ik-annualize", "ik-no-annualize"),

		PenaltyScenarios: changedS("penalty-scenarios", flagPenaltyScenarios),
	}
}

func runOnce() {
	cfg, err := lease.Resolve(*flagConfig, buildOverrides())
	if err != nil {
		fmt.Fprintln(os.Stderr, "erreur:", err)
		os.Exit(1)
	}

	breakdown, err := tco.Compute(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "erreur:", err)
		os.Exit(1)
	}

	switch {
	case *flagJSON:
		cumulative, err := tco.CumulativeByMonth(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, "erreur:", err)
			os.Exit(1)
		}
		out := struct {
			Config     models.LeaseConfig `json:"config"`
			Breakdown  models.Breakdown   `json:"breakdown"`
			Cumulative models.Cumulative  `json:"cumulative"`
		}{cfg, breakdown, cumulative}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			fmt.Fprintln(os.Stderr, "erreur:", err)
			os.Exit(1)
		}
	case *flagCSV:
		if err := report.WriteCSV(os.Stdout, breakdown); err != nil {
			fmt.Fprintln(os.Stderr, "erreur:", err)
			os.Exit(1)
		}
	case *flagSummary:
		fmt.Println(report.Summarize(cfg, breakdown))
	default:
		fmt.Print(report.RenderText(breakdown))
	}
}

func runServer() {
	// Load configuration from .env and environment variables
	config.Load()

	// Initialize Sentry (non-blocking if SENTRY_DSN is empty)
	sentryutil.Init()
	defer sentryutil.Flush()

	// Initialize persistent simulation counter
	handlers.InitCounter()

	// Quote store: Redis when configured and reachable, in-process memory otherwise
	var quoteStore store.QuoteStore
	if config.Cfg.RedisAddr != "" {
		rs := store.NewRedis(
			config.Cfg.RedisAddr,
			config.Cfg.RedisPassword,
			config.Cfg.RedisDB,
			config.Cfg.QuoteTTL,
		)
		pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
		err := rs.Ping(pingCtx)
		cancelPing()
		if err != nil {
			logger.Warn("quotes: redis unreachable, falling back to memory", map[string]any{
				"addr": config.Cfg.RedisAddr, "error": err.Error(),
			})
			rs.Close()
		} else {
			quoteStore = rs
			logger.Info("quotes: redis backend", map[string]any{"addr": config.Cfg.RedisAddr})
		}
	}
	if quoteStore == nil {
		quoteStore = store.NewMemory(config.Cfg.QuoteTTL)
		logger.Info("quotes: in-memory backend", nil)
	}
	handlers.SetQuoteStore(quoteStore)

	// Electricity tariff refresh (respects TARIFF_FEED_ENABLED)
	pricefeed.StartScheduler()

	// Editorial guides
	if err := guides.LoadAll(config.Cfg.GuidesDir); err != nil {
		log.Printf("guides: %v", err)
	}

	// Rate limiter from config
	limiter := handlers.NewRateLimiter(
		config.Cfg.RateLimitRPS,
		config.Cfg.RateLimitBurst,
		time.Second,
	)

	// Create mux
	mux := http.NewServeMux()

	// API routes
	mux.HandleFunc("/api/simulate", handlers.SimulateHandler)
	mux.HandleFunc("/api/compare", handlers.CompareHandler)
	mux.HandleFunc("/api/report/text", handlers.ReportTextHandler)
	mux.HandleFunc("/api/report/csv", handlers.ReportCSVHandler)
	mux.HandleFunc("/api/report/pdf", handlers.ReportPDFHandler)
	mux.HandleFunc("/api/contract", handlers.ParseContractHandler)
	mux.HandleFunc("/api/encode-deal", handlers.EncodeDealHandler)
	mux.HandleFunc("/api/decode-deal", handlers.DecodeDealHandler)
	mux.HandleFunc("/api/quotes", handlers.QuotesHandler)
	mux.HandleFunc("/api/tariffs", handlers.TariffsHandler)
	mux.HandleFunc("/api/guides", handlers.GuidesAPIHandler)
	mux.HandleFunc("/api/stats", handlers.StatsHandler)
	mux.HandleFunc("/api/health", handlers.HealthHandler)
	mux.HandleFunc("/api/status", handlers.StatusHandler)

	// Guide pages
	mux.HandleFunc("/guides", handlers.GuidesPageHandler)
	mux.HandleFunc("/guides/", handlers.GuidePageHandler)

	// SEO routes
	mux.HandleFunc("/sitemap.xml", handlers.SitemapHandler)
	mux.HandleFunc("/robots.txt", handlers.RobotsTxtHandler)

	// Serve static files (index.html served via template handler for canonical URL injection)
	mux.HandleFunc("/index.html", handlers.IndexHandler)
	fs := http.FileServer(http.Dir("static"))
	mux.Handle("/static/", http.StripPrefix("/static/", fs))
	// Root handler: serve index.html via template, fallback to static for other files
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			handlers.IndexHandler(w, r)
			return
		}
		// Block dotfile paths (.env, .git, etc.)
		if strings.Contains(r.URL.Path, "/.") {
			handlers.NotFoundHandler(w, r)
			return
		}
		// Check if static file exists, otherwise serve 404
		if _, err := os.Stat("static" + r.URL.Path); err != nil {
			handlers.NotFoundHandler(w, r)
			return
		}
		fs.ServeHTTP(w, r)
	})

	// Wrap with middleware: Recovery → SecurityHeaders → Gzip (if enabled) → Rate Limiter
	var handler http.Handler = limiter.Middleware(mux)
	if config.Cfg.GzipEnabled {
		handler = middleware.Gzip(handler)
	}
	handler = middleware.SecurityHeaders(handler)
	handler = middleware.Recovery(handler)

	logger.Info("server starting", map[string]any{"port": config.Cfg.Port})
	fmt.Printf("CoûtLOA en écoute sur http://localhost:%s\n", config.Cfg.Port)
	log.Fatal(http.ListenAndServe(":"+config.Cfg.Port, handler))
}

func main() {
	pflag.Parse()

	if *flagServe {
		runServer()
		return
	}
	runOnce()
}
