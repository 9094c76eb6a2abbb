package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/alterfero/dig4el-sub001/internal/util"
	"github.com/alterfero/dig4el-sub001/pkg/graph"
	"github.com/alterfero/dig4el-sub001/pkg/order"
	"github.com/alterfero/dig4el-sub001/pkg/position"
	"github.com/alterfero/dig4el-sub001/pkg/stats"
)

// Config is the analysis configuration shared by the CLI, server and worker.
type Config struct {
	// Delimiters maps a language name to its token boundaries.
	Delimiters        map[string][]string `yaml:"delimiters"`
	DefaultDelimiters []string            `yaml:"default_delimiters"`
	// DomainElements overrides the built-in domain-element ids.
	DomainElements      order.DomainElements `yaml:"domain_elements,omitempty"`
	Features            []stats.Feature      `yaml:"features"`
	NormalizeUnresolved bool                 `yaml:"normalize_unresolved"`
	ParallelLoads       int                  `yaml:"parallel_loads"`
	// Repair lets malformed source JSON be repaired instead of rejected.
	Repair bool `yaml:"repair"`
}

// Default returns the built-in configuration.
func Default() *Config {
	punctuation := []string{" ", ",", ".", "!", "?", ";", ":", "\"", "\n"}
	return &Config{
		Delimiters: map[string][]string{
			"english":   punctuation,
			"french":    append([]string{"'", "’"}, punctuation...),
			"spanish":   append([]string{"¿", "¡"}, punctuation...),
			"tahitian":  punctuation,
			"marquesan": punctuation,
		},
		DefaultDelimiters: []string{" "},
		ParallelLoads:     4,
		Features: []stats.Feature{
			{Name: "INTENT", Category: stats.CategoryList, Values: []string{"ASSERT", "ASK", "ORDER", "NEGATIVE"}},
			{Name: "PREDICATE", Category: stats.CategoryList, Values: []string{"EVENT", "STATE", "PROPERTY", "EXISTENCE"}},
			{Name: "PERSONAL DEICTIC", Category: stats.CategoryRole},
			{Name: "POLARITY", Category: stats.CategoryGeneric, Values: []string{"POSITIVE", "NEGATIVE"}},
			{Name: "DEFINITENESS", Category: stats.CategoryGeneric, Values: []string{"DEFINITE", "INDEFINITE"}},
		},
	}
}

// Load reads a YAML file over the defaults. A missing file yields the
// defaults. NORMALIZE_UNRESOLVED overrides the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}
	cfg.NormalizeUnresolved = util.GetEnvBool("NORMALIZE_UNRESOLVED", cfg.NormalizeUnresolved)
	cfg.Repair = util.GetEnvBool("REPAIR_JSON", cfg.Repair)
	return cfg, nil
}

// Table builds the delimiter table.
func (c *Config) Table() *position.Table {
	return position.NewTable(c.Delimiters, c.DefaultDelimiters)
}

// Builder creates a graph builder from the configuration.
func (c *Config) Builder() (*graph.Builder, error) {
	return graph.NewBuilder(graph.NewBuilderParams{
		Delimiters:    c.Table(),
		ParallelLoads: c.ParallelLoads,
		Repair:        c.Repair,
	})
}

// Elements returns the built-in domain-element ids overlaid with the
// configured ones.
func (c *Config) Elements() order.DomainElements {
	return order.DefaultDomainElements().Merge(c.DomainElements)
}

// Catalog indexes the configured features.
func (c *Config) Catalog() *stats.Catalog {
	return stats.NewCatalog(c.Features)
}
