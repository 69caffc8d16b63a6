package guides

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/yuin/goldmark"
	"gopkg.in/yaml.v3"
)

// Guide is one editorial article: how to read an LOA offer, what the IK
// scale covers, and so on.
type Guide struct {
	Slug        string    `yaml:"slug"`
	Title       string    `yaml:"title"`
	Description string    `yaml:"description"`
	Date        time.Time `yaml:"date"`
	Theme       string    `yaml:"theme"`
	Tags        []string  `yaml:"tags"`
	HTMLContent string    `yaml:"-"`
}

var (
	guides []Guide
	mu     sync.RWMutex
)

// LoadAll reads every .md file from dir, parses YAML frontmatter plus the
// markdown body, and keeps them sorted by date descending. Files that do
// not parse are skipped, one bad article must not take the section down.
func LoadAll(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	md := goldmark.New()
	var loaded []Guide

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}

		g, err := parseGuide(data, md)
		if err != nil {
			continue
		}
		loaded = append(loaded, g)
	}

	sort.Slice(loaded, func(i, j int) bool {
		return loaded[i].Date.After(loaded[j].Date)
	})

	mu.Lock()
	guides = loaded
	mu.Unlock()

	return nil
}

func parseGuide(data []byte, md goldmark.Markdown) (Guide, error) {
	content := string(data)
	content = strings.TrimPrefix(content, "\xef\xbb\xbf")

	parts := strings.SplitN(content, "---", 3)
	if len(parts) < 3 {
		return Guide{}, fmt.Errorf("frontmatter absent")
	}

	var g Guide
	if err := yaml.Unmarshal([]byte(parts[1]), &g); err != nil {
		return Guide{}, err
	}

	var buf bytes.Buffer
	if err := md.Convert([]byte(strings.TrimSpace(parts[2])), &buf); err != nil {
		return Guide{}, err
	}
	g.HTMLContent = buf.String()

	return g, nil
}

// GetAll returns all guides sorted by date descending.
func GetAll() []Guide {
	mu.RLock()
	defer mu.RUnlock()
	result := make([]Guide, len(guides))
	copy(result, guides)
	return result
}

// GetBySlug returns a guide by its slug, or nil if not found.
func GetBySlug(slug string) *Guide {
	mu.RLock()
	defer mu.RUnlock()
	for i := range guides {
		if guides[i].Slug == slug {
			g := guides[i]
			return &g
		}
	}
	return nil
}

// GetByTheme returns all guides under a theme.
func GetByTheme(theme string) []Guide {
	mu.RLock()
	defer mu.RUnlock()
	var result []Guide
	for _, g := range guides {
		if g.Theme == theme {
			result = append(result, g)
		}
	}
	return result
}
