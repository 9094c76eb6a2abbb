package stats

import (
	"github.com/alterfero/dig4el-sub001/pkg/common"
	"github.com/alterfero/dig4el-sub001/pkg/position"
)

// WordFrequencies returns the per-mille frequency of every token in the
// translations of the given entries.
func WordFrequencies(kg *common.KnowledgeGraph, indices []int, r *position.Resolver) map[string]float64 {
	counts := map[string]int{}
	total := 0
	seen := map[int]struct{}{}
	for _, idx := range indices {
		if _, ok := seen[idx]; ok {
			continue
		}
		seen[idx] = struct{}{}
		e, ok := kg.Entry(idx)
		if !ok {
			continue
		}
		for _, tok := range r.Tokenize(e.Recording.Translation) {
			counts[tok]++
			total++
		}
	}
	out := make(map[string]float64, len(counts))
	if total == 0 {
		return out
	}
	for w, c := range counts {
		out[w] = float64(c) * 1000 / float64(total)
	}
	return out
}

// FrequencyDifferential compares the vocabulary of the focus bucket against
// the union of every other bucket. An entry that also sits in another bucket
// counts on both sides. For each word of the focus bucket it reports focus
// minus complement per-mille frequency; a word the complement never uses
// keeps its raw focus frequency.
func FrequencyDifferential(kg *common.KnowledgeGraph, locs ValueLocations, focus string, r *position.Resolver) map[string]float64 {
	var complement []int
	for bucket, indices := range locs {
		if bucket == focus {
			continue
		}
		complement = append(complement, indices...)
	}

	focusFreq := WordFrequencies(kg, locs[focus], r)
	otherFreq := WordFrequencies(kg, complement, r)

	out := make(map[string]float64, len(focusFreq))
	for w, f := range focusFreq {
		if o, ok := otherFreq[w]; ok {
			out[w] = f - o
			continue
		}
		out[w] = f
	}
	return out
}
