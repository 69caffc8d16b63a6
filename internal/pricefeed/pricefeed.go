// Package pricefeed keeps the electricity tariff pair (home kWh, public
// charging kWh) used to pre-fill deal defaults. When TARIFF_FEED_URL is set
// it re-reads the published price page on a schedule; otherwise the
// regulated fallback prices apply.
package pricefeed

import (
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/html"

	"coutloa/internal/config"
	"coutloa/internal/logger"
	"coutloa/internal/models"
	sentryutil "coutloa/internal/sentry"
)

// Regulated-ish defaults, also the values the engine documents.
const (
	fallbackHome   = 0.23
	fallbackPublic = 0.45
)

type tariffCache struct {
	mu         sync.RWMutex
	current    models.TariffSet
	lastError  string
	fetchCount int
}

var cache = &tariffCache{
	current: models.TariffSet{
		HomeEurPerKwh:   fallbackHome,
		PublicEurPerKwh: fallbackPublic,
		Source:          "barème intégré",
	},
}

var httpClient = &http.Client{
	Timeout: 30 * time.Second,
	CheckRedirect: func(req *http.Request, via []*http.Request) error {
		if len(via) >= 3 {
			return fmt.Errorf("too many redirects")
		}
		return nil
	},
}

var (
	homeRegex   = regexp.MustCompile(`(?i)(?:domicile|base|heures\s+pleines|résidentiel)\D{0,60}?(\d+[.,]\d+)\s*€`)
	publicRegex = regexp.MustCompile(`(?i)(?:borne|publique?|rapide|itinérance)\D{0,60}?(\d+[.,]\d+)\s*€`)
)

// Status is what the infra endpoint reports about the feed.
type Status struct {
	Enabled    bool             `json:"enabled"`
	FetchCount int              `json:"fetch_count"`
	LastError  string           `json:"last_error,omitempty"`
	Current    models.TariffSet `json:"current"`
}

// Current returns the tariff pair in effect, feed values when the last
// fetch succeeded, fallback prices otherwise.
func Current() models.TariffSet {
	cache.mu.RLock()
	defer cache.mu.RUnlock()
	return cache.current
}

func GetStatus() Status {
	cache.mu.RLock()
	defer cache.mu.RUnlock()
	return Status{
		Enabled:    config.Cfg.TariffFeedEnabled && config.Cfg.TariffFeedURL != "",
		FetchCount: cache.fetchCount,
		LastError:  cache.lastError,
		Current:    cache.current,
	}
}

// StartScheduler runs an initial fetch and then refreshes at the configured
// interval. Disabled feeds keep the fallback prices without any goroutine.
func StartScheduler() {
	if !config.Cfg.TariffFeedEnabled || config.Cfg.TariffFeedURL == "" {
		logger.Info("pricefeed: disabled, using built-in tariffs", nil)
		return
	}
	go func() {
		RunFetch()
		ticker := time.NewTicker(config.Cfg.TariffFeedInterval)
		defer ticker.Stop()
		for range ticker.C {
			RunFetch()
		}
	}()
}

// RunFetch reads the price page once and swaps the cached tariff pair. A
// failed fetch keeps the previous values and records the error.
func RunFetch() {
	url := config.Cfg.TariffFeedURL
	logger.Info("pricefeed: fetching tariffs", map[string]any{"url": url})

	body, err := fetchURL(url)
	if err == nil {
		var ts models.TariffSet
		ts, err = ParseTariffs(body)
		if err == nil {
			ts.Source = url
			ts.FetchedAt = time.Now().UTC().Format(time.RFC3339)
			ts.FromFeed = true
			cache.mu.Lock()
			cache.current = ts
			cache.fetchCount++
			cache.lastError = ""
			cache.mu.Unlock()
			logger.Info("pricefeed: tariffs updated", map[string]any{
				"home": ts.HomeEurPerKwh, "public": ts.PublicEurPerKwh,
			})
			return
		}
	}

	logger.Error("pricefeed: fetch failed", map[string]any{"url": url, "error": err.Error()})
	sentryutil.CaptureError(err, map[string]string{"component": "pricefeed"})
	cache.mu.Lock()
	cache.fetchCount++
	cache.lastError = err.Error()
	cache.mu.Unlock()
}

func fetchURL(url string) ([]byte, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", config.Cfg.UserAgent)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 2*1024*1024))
}

// ParseTariffs extracts the two labeled prices from a published price page.
// Both must be present and plausible for the page to count.
func ParseTariffs(body []byte) (models.TariffSet, error) {
	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return models.TariffSet{}, fmt.Errorf("page illisible: %w", err)
	}
	text := getTextContent(doc)

	home, okHome := findPrice(homeRegex, text)
	public, okPublic := findPrice(publicRegex, text)
	if !okHome || !okPublic {
		return models.TariffSet{}, fmt.Errorf("tarifs absents de la page (domicile=%v, borne=%v)", okHome, okPublic)
	}
	return models.TariffSet{HomeEurPerKwh: home, PublicEurPerKwh: public}, nil
}

func findPrice(re *regexp.Regexp, text string) (float64, bool) {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.Replace(m[1], ",", ".", 1), 64)
	if err != nil || v <= 0 || v >= 5 {
		return 0, false
	}
	return v, true
}

func getTextContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(getTextContent(c))
		sb.WriteByte(' ')
	}
	return sb.String()
}
