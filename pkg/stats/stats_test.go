package stats

import (
	"math"
	"reflect"
	"testing"

	"github.com/alterfero/dig4el-sub001/pkg/common"
	"github.com/alterfero/dig4el-sub001/pkg/position"
	"github.com/alterfero/dig4el-sub001/pkg/semantic"
	"github.com/google/go-cmp/cmp"
)

func strp(s string) *string { return &s }

func entry(t *testing.T, index int, intent, predicate []string, translation string, raw map[string]semantic.RawNode) common.Entry {
	t.Helper()
	g, err := semantic.New(raw)
	if err != nil {
		t.Fatalf("semantic.New: %v", err)
	}
	return common.Entry{
		Index:    index,
		Language: "english",
		Sentence: common.SentenceData{
			Intent:    intent,
			Predicate: predicate,
			Graph:     g,
		},
		Recording: common.RecordingData{Translation: translation},
	}
}

func fixture(t *testing.T) *common.KnowledgeGraph {
	t.Helper()
	entries := []common.Entry{
		entry(t, 0, []string{"ASSERT"}, []string{"EVENT"}, "I sleep", map[string]semantic.RawNode{
			"PERSONAL DEICTIC": {Value: strp("SPEAKER"), Path: []string{"SLEEP AGENT"}},
			"POLARITY":         {Value: strp("POSITIVE")},
		}),
		entry(t, 1, []string{"ASK"}, []string{"EVENT"}, "you sleep", map[string]semantic.RawNode{
			"PERSONAL DEICTIC": {Value: strp("LISTENER"), Path: []string{"SLEEP AGENT"}},
			"POLARITY":         {Value: strp("")},
		}),
		entry(t, 2, nil, []string{"STATE"}, "rain falls", map[string]semantic.RawNode{
			"RAIN": {Value: strp("RAIN")},
		}),
		entry(t, 3, []string{"ASSERT", "ORDER"}, nil, "I hit you", map[string]semantic.RawNode{
			"PERSONAL DEICTIC": {Value: strp("LISTENER"), Path: []string{"HIT", "HIT PATIENT"}},
		}),
	}
	kg, err := common.NewKnowledgeGraph("english", entries)
	if err != nil {
		t.Fatalf("NewKnowledgeGraph: %v", err)
	}
	return kg
}

func TestEntrySignature(t *testing.T) {
	kg := fixture(t)
	tests := []struct {
		index int
		want  Signature
	}{
		{0, Signature{Intent: "ASSERT", Predicate: "EVENT"}},
		{1, Signature{Intent: "ASK", Predicate: "EVENT"}},
		{2, Signature{Predicate: "STATE", Wildcard: true}},
		{3, Signature{Intent: "ASSERT", Wildcard: true}},
	}
	for _, tt := range tests {
		e, _ := kg.Entry(tt.index)
		first := EntrySignature(e)
		second := EntrySignature(e)
		if first != second {
			t.Errorf("entry %d: signature not stable: %+v vs %+v", tt.index, first, second)
		}
		if first != tt.want {
			t.Errorf("entry %d: got %+v, want %+v", tt.index, first, tt.want)
		}
	}
	if !(Signature{Intent: "ASSERT"}).IsCanonical() || (Signature{Intent: "ASK"}).IsCanonical() {
		t.Error("IsCanonical should only accept ASSERT intents")
	}
}

func TestValueLocationsIntentIsExhaustive(t *testing.T) {
	kg := fixture(t)
	f := Feature{Name: "INTENT", Values: []string{"ASSERT", "ASK", "ORDER"}}
	locs := ValueLocationsFor(kg, f)

	want := ValueLocations{
		"ASSERT":  {0, 3},
		"ASK":     {1},
		"ORDER":   {3},
		"neutral": {2},
	}
	if diff := cmp.Diff(want, locs); diff != "" {
		t.Fatalf("locations mismatch (-want +got):\n%s", diff)
	}

	covered := map[int]bool{}
	for _, indices := range locs {
		for _, i := range indices {
			covered[i] = true
		}
	}
	for i := 0; i < kg.Len(); i++ {
		if !covered[i] {
			t.Errorf("entry %d appears in no bucket", i)
		}
	}
}

func TestValueLocationsRoleSensitive(t *testing.T) {
	kg := fixture(t)
	locs := ValueLocationsFor(kg, Feature{Name: "PERSONAL DEICTIC", Values: []string{"SPEAKER", "LISTENER"}})

	if locs.Buckets()[0] != "LISTENER AGENT" {
		t.Errorf("unexpected bucket order: %v", locs.Buckets())
	}
	want := ValueLocations{
		"SPEAKER AGENT":    {0},
		"LISTENER AGENT":   {1},
		"LISTENER PATIENT": {3},
		"neutral":          {2},
	}
	if !reflect.DeepEqual(locs, want) {
		t.Errorf("got %v, want %v", locs, want)
	}
}

func TestValueLocationsGeneric(t *testing.T) {
	kg := fixture(t)
	locs := ValueLocationsFor(kg, Feature{Name: "POLARITY", Values: []string{"NEGATIVE"}})
	want := ValueLocations{
		"POSITIVE": {0},
		"NEGATIVE": {},
		"neutral":  {1, 2, 3},
	}
	if !reflect.DeepEqual(locs, want) {
		t.Errorf("got %v, want %v", locs, want)
	}
}

func TestFrequencyDifferential(t *testing.T) {
	kg := fixture(t)
	r := position.NewResolver([]string{" "})
	locs := ValueLocations{
		"ASSERT":  {0, 3},
		"neutral": {1, 2},
	}
	got := FrequencyDifferential(kg, locs, "ASSERT", r)

	// focus tokens: I sleep I hit you (5); complement: you sleep rain falls (4)
	want := map[string]float64{
		"I":     400,
		"hit":   200,
		"sleep": 200 - 250,
		"you":   200 - 250,
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for w, f := range want {
		if math.Abs(got[w]-f) > 1e-9 {
			t.Errorf("%q: got %v, want %v", w, got[w], f)
		}
	}
}

func TestFrequencyDifferentialOverlappingBuckets(t *testing.T) {
	entries := []common.Entry{
		entry(t, 0, []string{"ASSERT"}, nil, "a b", nil),
		entry(t, 1, []string{"ASSERT", "ORDER"}, nil, "a c", nil),
		entry(t, 2, []string{"ORDER"}, nil, "c c", nil),
	}
	kg, err := common.NewKnowledgeGraph("english", entries)
	if err != nil {
		t.Fatalf("NewKnowledgeGraph: %v", err)
	}
	r := position.NewResolver([]string{" "})
	locs := ValueLocationsFor(kg, Feature{Name: "INTENT", Values: []string{"ASSERT", "ORDER"}})

	// focus {0,1}: a b a c; complement {1,2}: a c c c
	want := map[string]float64{
		"a": 500 - 250,
		"b": 250,
		"c": 250 - 750,
	}
	got := FrequencyDifferential(kg, locs, "ASSERT", r)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for w, f := range want {
		if math.Abs(got[w]-f) > 1e-9 {
			t.Errorf("%q: got %v, want %v", w, got[w], f)
		}
	}
}

func TestCatalogDefaults(t *testing.T) {
	c := NewCatalog([]Feature{{Name: "intent"}, {Name: "PERSONAL DEICTIC"}, {Name: "POLARITY", Category: CategoryGeneric}})
	f, ok := c.Lookup("INTENT")
	if !ok || f.Category != CategoryList {
		t.Errorf("INTENT: got %+v, %v", f, ok)
	}
	if f, _ := c.Lookup("personal deictic"); f.Category != CategoryRole {
		t.Errorf("PERSONAL DEICTIC: got %+v", f)
	}
	if _, ok := c.Lookup("TENSE"); ok {
		t.Error("unknown feature should not be found")
	}
	if len(c.Features()) != 3 {
		t.Errorf("got %d features", len(c.Features()))
	}
}
