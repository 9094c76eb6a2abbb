package stats

import "strings"

// Category selects how a feature's values are read from an entry.
type Category string

const (
	// CategoryList features are top-level tag lists (intent, predicate).
	CategoryList Category = "list"
	// CategoryRole features are bucketed by value and by semantic role.
	CategoryRole Category = "role"
	// CategoryGeneric features are matched against node keys.
	CategoryGeneric Category = "generic"
)

// Neutral collects entries that carry none of a feature's values.
const Neutral = "neutral"

// Feature describes one analysable dimension of the knowledge graph.
type Feature struct {
	Name     string   `yaml:"name" json:"name"`
	Category Category `yaml:"category" json:"category"`
	Values   []string `yaml:"values" json:"values"`
}

// Catalog indexes features by upper-cased name.
type Catalog struct {
	features map[string]Feature
	order    []string
}

// NewCatalog builds a catalog. Features without a category get one from
// DefaultCategory.
func NewCatalog(features []Feature) *Catalog {
	c := &Catalog{features: make(map[string]Feature, len(features))}
	for _, f := range features {
		if f.Category == "" {
			f.Category = DefaultCategory(f.Name)
		}
		key := strings.ToUpper(f.Name)
		if _, ok := c.features[key]; !ok {
			c.order = append(c.order, key)
		}
		c.features[key] = f
	}
	return c
}

// Lookup returns the named feature. Unknown names come back as generic
// features without declared values.
func (c *Catalog) Lookup(name string) (Feature, bool) {
	f, ok := c.features[strings.ToUpper(name)]
	if !ok {
		return Feature{Name: name, Category: DefaultCategory(name)}, false
	}
	return f, true
}

// Features returns the catalog in declaration order.
func (c *Catalog) Features() []Feature {
	out := make([]Feature, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, c.features[k])
	}
	return out
}

// DefaultCategory infers a category from a feature name.
func DefaultCategory(name string) Category {
	switch n := strings.ToUpper(name); {
	case n == "INTENT" || n == "PREDICATE":
		return CategoryList
	case strings.Contains(n, "DEICTIC"):
		return CategoryRole
	default:
		return CategoryGeneric
	}
}
