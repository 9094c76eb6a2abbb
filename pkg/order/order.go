package order

import (
	"sort"

	"github.com/alterfero/dig4el-sub001/pkg/common"
	"github.com/alterfero/dig4el-sub001/pkg/logger"
	"github.com/alterfero/dig4el-sub001/pkg/position"
	"github.com/alterfero/dig4el-sub001/pkg/stats"
)

// NoDominantOrder collects classifications that could not be resolved.
const NoDominantOrder = "No dominant order"

// Observation aggregates every classification that produced one label.
type Observation struct {
	Label         string                  `json:"label"`
	DomainElement string                  `json:"domain_element,omitempty"`
	// Count is the number of classified units (events or nouns) in a raw
	// result and the number of distinct entries after Canonicalize.
	Count         int                     `json:"count"`
	Entries       map[int]stats.Signature `json:"entries"`
}

// Result is the output of one observer run over a knowledge graph.
type Result struct {
	Observer     string         `json:"observer"`
	Language     string         `json:"language"`
	Canonical    bool           `json:"canonical"`
	Observations []*Observation `json:"observations"`
}

// Get returns the observation for a label.
func (r *Result) Get(label string) (*Observation, bool) {
	for _, o := range r.Observations {
		if o.Label == label {
			return o, true
		}
	}
	return nil, false
}

// Total is the sum of all observation counts.
func (r *Result) Total() int {
	total := 0
	for _, o := range r.Observations {
		total += o.Count
	}
	return total
}

// AgentReady maps domain-element ids to observed counts. Labels without an id
// are left out.
func (r *Result) AgentReady() map[string]int {
	out := map[string]int{}
	for _, o := range r.Observations {
		if o.DomainElement == "" {
			continue
		}
		out[o.DomainElement] += o.Count
	}
	return out
}

// Observe runs an observer over every entry of the knowledge graph. When
// canonical is set the result is restricted to assertive entries.
func Observe(kg *common.KnowledgeGraph, obs Observer, r *position.Resolver, elements DomainElements, canonical bool) *Result {
	res := &Result{Observer: obs.Name()}
	if kg != nil {
		res.Language = kg.Language
	}
	ids := elements[obs.Name()]
	byLabel := map[string]*Observation{}
	for _, label := range obs.Labels() {
		o := &Observation{Label: label, DomainElement: ids[label], Entries: map[int]stats.Signature{}}
		byLabel[label] = o
		res.Observations = append(res.Observations, o)
	}

	entries := kg.Entries()
	for i := range entries {
		e := &entries[i]
		for _, label := range obs.Classify(e, r) {
			o, ok := byLabel[label]
			if !ok {
				o = &Observation{Label: label, DomainElement: ids[label], Entries: map[int]stats.Signature{}}
				byLabel[label] = o
				res.Observations = append(res.Observations, o)
			}
			o.Count++
			o.Entries[e.Index] = stats.EntrySignature(e)
		}
	}

	logger.Debug("[Order] Observed", "observer", obs.Name(), "language", res.Language, "total", res.Total())
	if canonical {
		return Canonicalize(res)
	}
	return res
}

// Canonicalize keeps only entries whose signature intent contains ASSERT and
// recomputes every count from the filtered set. The input is left untouched
// and applying it twice yields the same result.
func Canonicalize(r *Result) *Result {
	out := &Result{
		Observer:     r.Observer,
		Language:     r.Language,
		Canonical:    true,
		Observations: make([]*Observation, 0, len(r.Observations)),
	}
	for _, o := range r.Observations {
		kept := make(map[int]stats.Signature, len(o.Entries))
		for idx, sig := range o.Entries {
			if sig.IsCanonical() {
				kept[idx] = sig
			}
		}
		out.Observations = append(out.Observations, &Observation{
			Label:         o.Label,
			DomainElement: o.DomainElement,
			Count:         len(kept),
			Entries:       kept,
		})
	}
	return out
}

// Indices returns the classified entry indices in ascending order.
func (o *Observation) Indices() []int {
	out := make([]int, 0, len(o.Entries))
	for idx := range o.Entries {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}
