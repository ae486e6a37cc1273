// Package topics loads the catalogue of comparison topics.
package topics

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cloo-solutions/pmstd/internal/domain"
)

//go:embed topics.yaml
var defaultCatalog []byte

type catalogFile struct {
	Topics []domain.Topic `yaml:"topics"`
}

// Catalog is an ordered, slug-addressable set of topics.
type Catalog struct {
	topics []domain.Topic
	bySlug map[string]int
}

// Default returns the embedded catalogue.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalogue from path, or the embedded one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read topics file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML into a catalogue. Missing slugs are derived from names;
// keywords are lower-cased and de-duplicated.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse topics: %w", err)
	}

	c := &Catalog{bySlug: make(map[string]int, len(f.Topics))}
	for i, t := range f.Topics {
		t.Name = strings.TrimSpace(t.Name)
		if t.Name == "" {
			return nil, fmt.Errorf("topic %d: name is required", i)
		}
		if t.Slug == "" {
			t.Slug = domain.Slugify(t.Name)
		}
		t.Keywords = cleanKeywords(t.Keywords)
		if len(t.Keywords) == 0 {
			return nil, fmt.Errorf("topic %q: at least one keyword is required", t.Name)
		}
		if _, dup := c.bySlug[t.Slug]; dup {
			return nil, fmt.Errorf("topic %q: duplicate slug %q", t.Name, t.Slug)
		}
		c.bySlug[t.Slug] = len(c.topics)
		c.topics = append(c.topics, t)
	}
	return c, nil
}

// All returns the topics in catalogue order.
func (c *Catalog) All() []domain.Topic {
	out := make([]domain.Topic, len(c.topics))
	copy(out, c.topics)
	return out
}

// Find looks a topic up by slug or by case-insensitive name.
func (c *Catalog) Find(ref string) (domain.Topic, bool) {
	if i, ok := c.bySlug[domain.Slugify(ref)]; ok {
		return c.topics[i], true
	}
	return domain.Topic{}, false
}

func cleanKeywords(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, k := range in {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
