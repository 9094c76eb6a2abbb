package graph

import (
	"errors"

	"github.com/alterfero/dig4el-sub001/pkg/loader"
	"github.com/alterfero/dig4el-sub001/pkg/position"
)

// Builder joins questionnaires and recordings into a knowledge graph.
//
// A Builder should be created using NewBuilder.
type Builder struct {
	delimiters    *position.Table
	parallelLoads int
	maxRetries    int
	parseOptions  loader.ParseOptions
}

// NewBuilderParams defines the configuration parameters for creating
// a new Builder.
//
// Delimiters is the per-language delimiter table used for tokenization.
// ParallelLoads controls how many source files are read concurrently.
// MaxRetries bounds the read attempts per source file.
// Repair lets the loader repair malformed JSON instead of failing.
type NewBuilderParams struct {
	Delimiters    *position.Table
	ParallelLoads int
	MaxRetries    int
	Repair        bool
}

// NewBuilder creates and returns a new Builder configured with the
// provided parameters.
//
// Example:
//
//	table := position.NewTable(cfg.Delimiters, cfg.DefaultDelimiters)
//	builder, err := graph.NewBuilder(graph.NewBuilderParams{
//		Delimiters:    table,
//		ParallelLoads: 4,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
func NewBuilder(params NewBuilderParams) (*Builder, error) {
	if params.Delimiters == nil {
		return nil, errors.New("delimiter table is required")
	}
	parallel := params.ParallelLoads
	if parallel <= 0 {
		parallel = 4
	}
	maxRetries := params.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &Builder{
		delimiters:    params.Delimiters,
		parallelLoads: parallel,
		maxRetries:    maxRetries,
		parseOptions:  loader.ParseOptions{Repair: params.Repair},
	}, nil
}

// Delimiters returns the delimiter table the builder tokenizes with.
func (b *Builder) Delimiters() *position.Table {
	return b.delimiters
}
