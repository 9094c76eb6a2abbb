package stats

import (
	"sort"
	"strings"

	"github.com/alterfero/dig4el-sub001/pkg/common"
	"github.com/alterfero/dig4el-sub001/pkg/semantic"
)

// ValueLocations maps a feature value to the indices of the entries that
// carry it. Every entry index lands in at least one bucket, Neutral included.
type ValueLocations map[string][]int

// Buckets returns the bucket names in a stable order.
func (v ValueLocations) Buckets() []string {
	out := make([]string, 0, len(v))
	for k := range v {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// RoleBucket names a role-sensitive bucket.
func RoleBucket(value string, role semantic.Role) string {
	return value + " " + role.String()
}

// ValueLocationsFor indexes the knowledge graph by feature.
func ValueLocationsFor(kg *common.KnowledgeGraph, f Feature) ValueLocations {
	if f.Category == "" {
		f.Category = DefaultCategory(f.Name)
	}
	locs := ValueLocations{Neutral: {}}
	// Role buckets are named per role and only exist once observed.
	if f.Category != CategoryRole {
		for _, v := range f.Values {
			if _, ok := locs[v]; !ok {
				locs[v] = []int{}
			}
		}
	}

	entries := kg.Entries()
	for i := range entries {
		e := &entries[i]
		var buckets []string
		switch f.Category {
		case CategoryList:
			buckets = listBuckets(e, f)
		case CategoryRole:
			buckets = nodeBuckets(e, f.Name, true)
		default:
			buckets = nodeBuckets(e, f.Name, false)
		}
		if len(buckets) == 0 {
			buckets = []string{Neutral}
		}
		for _, b := range buckets {
			locs[b] = append(locs[b], e.Index)
		}
	}
	return locs
}

func listBuckets(e *common.Entry, f Feature) []string {
	var field []string
	switch strings.ToUpper(f.Name) {
	case "PREDICATE":
		field = e.Sentence.Predicate
	default:
		field = e.Sentence.Intent
	}
	var out []string
	for _, v := range f.Values {
		for _, tag := range field {
			if tag == v {
				out = append(out, v)
				break
			}
		}
	}
	return out
}

func nodeBuckets(e *common.Entry, name string, byRole bool) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, n := range e.Sentence.Graph.Nodes() {
		if !strings.Contains(n.Key, name) || !n.HasValue || n.Value == "" {
			continue
		}
		b := n.Value
		if byRole {
			b = RoleBucket(n.Value, n.Role())
		}
		if _, ok := seen[b]; ok {
			continue
		}
		seen[b] = struct{}{}
		out = append(out, b)
	}
	return out
}
