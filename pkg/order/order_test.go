package order

import (
	"errors"
	"testing"

	"github.com/alterfero/dig4el-sub001/pkg/common"
	"github.com/alterfero/dig4el-sub001/pkg/position"
	"github.com/alterfero/dig4el-sub001/pkg/semantic"
	"github.com/alterfero/dig4el-sub001/pkg/stats"
	"github.com/google/go-cmp/cmp"
)

func strp(s string) *string { return &s }

type sentence struct {
	intent      []string
	translation string
	words       map[string]string
	graph       map[string]semantic.RawNode
}

func buildKG(t *testing.T, sentences ...sentence) *common.KnowledgeGraph {
	t.Helper()
	entries := make([]common.Entry, 0, len(sentences))
	for i, s := range sentences {
		g, err := semantic.New(s.graph)
		if err != nil {
			t.Fatalf("semantic.New: %v", err)
		}
		entries = append(entries, common.Entry{
			Index:     i,
			Language:  "english",
			Sentence:  common.SentenceData{Intent: s.intent, Predicate: []string{"EVENT"}, Graph: g},
			Recording: common.RecordingData{Translation: s.translation, ConceptWords: s.words},
		})
	}
	kg, err := common.NewKnowledgeGraph("english", entries)
	if err != nil {
		t.Fatalf("NewKnowledgeGraph: %v", err)
	}
	return kg
}

func intransitive(translation, verb, agent string, words map[string]string) sentence {
	return sentence{
		intent:      []string{"ASSERT"},
		translation: translation,
		words:       words,
		graph: map[string]semantic.RawNode{
			verb:            {Requires: []string{verb + " AGENT"}},
			verb + " AGENT": {Requires: []string{verb + " AGENT REFERENCE TO CONCEPT"}},
			verb + " AGENT REFERENCE TO CONCEPT": {Value: strp(agent)},
		},
	}
}

func transitive(intent []string, translation string, words map[string]string) sentence {
	return sentence{
		intent:      intent,
		translation: translation,
		words:       words,
		graph: map[string]semantic.RawNode{
			"EAT":                                {Requires: []string{"EAT AGENT", "EAT PATIENT"}},
			"EAT AGENT":                          {Requires: []string{"EAT AGENT REFERENCE TO CONCEPT"}},
			"EAT AGENT REFERENCE TO CONCEPT":     {Value: strp("MARY")},
			"EAT PATIENT":                        {Requires: []string{"EAT PATIENT REFERENCE TO CONCEPT"}},
			"EAT PATIENT REFERENCE TO CONCEPT":   {Value: strp("FISH")},
		},
	}
}

func TestIntransitive(t *testing.T) {
	r := position.NewResolver([]string{" "})
	kg := buildKG(t,
		intransitive("Mary quickly sleeps", "SLEEP", "MARY", map[string]string{"SLEEP": "sleeps", "MARY": "Mary"}),
		intransitive("sleeps Mary", "SLEEP", "MARY", map[string]string{"SLEEP": "sleeps", "MARY": "Mary"}),
		intransitive("Mary sleeps", "SLEEP", "MARY", map[string]string{"SLEEP": "dort", "MARY": "Mary"}),
		intransitive("Mary sleeps", "SLEEP", "", map[string]string{"SLEEP": "sleeps"}),
	)
	res := Observe(kg, IntransitiveObserver{}, r, DefaultDomainElements(), false)

	counts := map[string]int{}
	for _, o := range res.Observations {
		counts[o.Label] = o.Count
	}
	want := map[string]int{"ae_": 1, "ea_": 1, NoDominantOrder: 2}
	if diff := cmp.Diff(want, counts); diff != "" {
		t.Fatalf("counts mismatch (-want +got):\n%s", diff)
	}
	ae, _ := res.Get("ae_")
	if diff := cmp.Diff([]int{0}, ae.Indices()); diff != "" {
		t.Errorf("ae_ indices (-want +got):\n%s", diff)
	}
	if ae.DomainElement != "8201" {
		t.Errorf("ae_ domain element: got %q", ae.DomainElement)
	}
}

func TestTransitiveAlphabetsAgree(t *testing.T) {
	r := position.NewResolver([]string{" "})
	words := map[string]string{"EAT": "ate", "MARY": "Mary", "FISH": "fish"}
	kg := buildKG(t, transitive([]string{"ASSERT"}, "ate Mary fish", words))

	tests := []struct {
		name     string
		observer Observer
		want     string
	}{
		{"generic", NewTransitiveObserver(GenericAlphabet), "eap"},
		{"subject object", NewTransitiveObserver(SubjectObjectAlphabet), "VSO"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Observe(kg, tt.observer, r, DefaultDomainElements(), false)
			o, ok := res.Get(tt.want)
			if !ok || o.Count != 1 {
				t.Fatalf("expected one %q observation, got %+v", tt.want, res.Observations)
			}
			if got := res.AgentReady(); got["8103"] != 1 {
				t.Errorf("agent ready: got %v", got)
			}
		})
	}
}

func TestTransitiveTieBreak(t *testing.T) {
	tests := []struct {
		event, agent, patient int
		want                  string
	}{
		{0, 1, 2, "VSO"},
		{2, 0, 1, "SOV"},
		{1, 1, 0, "OVS"},
		{3, 3, 3, "VSO"},
		{1, 0, 0, "SOV"},
	}
	obs := NewTransitiveObserver(SubjectObjectAlphabet)
	gen := NewTransitiveObserver(GenericAlphabet)
	for _, tt := range tests {
		got := obs.Order(tt.event, tt.agent, tt.patient)
		if got != tt.want {
			t.Errorf("Order(%d,%d,%d) = %q, want %q", tt.event, tt.agent, tt.patient, got, tt.want)
		}
		for i, label := range obs.Labels() {
			if label == got && gen.Labels()[i] != gen.Order(tt.event, tt.agent, tt.patient) {
				t.Errorf("alphabets disagree for %q", got)
			}
		}
	}
}

func TestAdjectiveNoun(t *testing.T) {
	r := position.NewResolver([]string{" "})
	noun := func(translation string, words map[string]string) sentence {
		return sentence{
			intent:      []string{"ASSERT"},
			translation: translation,
			words:       words,
			graph: map[string]semantic.RawNode{
				"DOG": {Requires: []string{"DOG DEFINITENESS", "DOG QUALIFIER REFERENCE TO CONCEPT"}},
				"DOG QUALIFIER REFERENCE TO CONCEPT": {Value: strp("BIG")},
			},
		}
	}
	kg := buildKG(t,
		noun("the big dog", map[string]string{"DOG": "dog", "BIG": "big"}),
		noun("le chien grand", map[string]string{"DOG": "chien", "BIG": "grand"}),
		noun("the dog", map[string]string{"DOG": "dog", "BIG": "huge"}),
	)

	res := Observe(kg, AdjectiveNounObserver{}, r, DefaultDomainElements(), false)
	if _, ok := res.Get(NoDominantOrder); ok {
		t.Error("unresolved bucket should not exist by default")
	}
	if res.Total() != 2 {
		t.Errorf("unresolved entry should populate no bucket, total %d", res.Total())
	}
	for _, label := range []string{AdjectiveNoun, NounAdjective} {
		if o, _ := res.Get(label); o.Count != 1 {
			t.Errorf("%s: got %d", label, o.Count)
		}
	}

	normalized := Observe(kg, AdjectiveNounObserver{NormalizeUnresolved: true}, r, DefaultDomainElements(), false)
	if o, ok := normalized.Get(NoDominantOrder); !ok || o.Count != 1 {
		t.Errorf("normalized unresolved bucket: %+v", o)
	}
}

func TestCanonicalizeIsIdempotent(t *testing.T) {
	r := position.NewResolver([]string{" "})
	words := map[string]string{"EAT": "ate", "MARY": "Mary", "FISH": "fish"}
	kg := buildKG(t,
		transitive([]string{"ASSERT"}, "ate Mary fish", words),
		transitive([]string{"ASK"}, "ate Mary fish", words),
		transitive([]string{"ASSERT", "NEGATIVE"}, "Mary fish ate", words),
		transitive(nil, "Mary ate fish", words),
	)
	raw := Observe(kg, NewTransitiveObserver(SubjectObjectAlphabet), r, DefaultDomainElements(), false)
	if o, _ := raw.Get("VSO"); o.Count != 2 {
		t.Fatalf("raw VSO: got %d", o.Count)
	}

	once := Canonicalize(raw)
	twice := Canonicalize(once)
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("canonicalize not idempotent (-once +twice):\n%s", diff)
	}
	if o, _ := once.Get("VSO"); o.Count != 1 {
		t.Errorf("canonical VSO: got %d", o.Count)
	}
	if o, _ := once.Get("SVO"); o.Count != 0 {
		t.Errorf("canonical SVO: got %d", o.Count)
	}
	if o, _ := raw.Get("VSO"); o.Count != 2 {
		t.Error("Canonicalize must not modify its input")
	}

	direct := Observe(kg, NewTransitiveObserver(SubjectObjectAlphabet), r, DefaultDomainElements(), true)
	if diff := cmp.Diff(once, direct); diff != "" {
		t.Errorf("Observe canonical differs (-want +got):\n%s", diff)
	}
	want := map[int]stats.Signature{2: {Intent: "ASSERT", Predicate: "EVENT"}}
	if o, _ := direct.Get("SOV"); !cmp.Equal(want, o.Entries) {
		t.Errorf("SOV entries: got %v", o.Entries)
	}
}

func TestCountUnitsVersusEntries(t *testing.T) {
	r := position.NewResolver([]string{" "})
	two := sentence{
		intent:      []string{"ASSERT"},
		translation: "Mary sleeps and Mary runs",
		words:       map[string]string{"SLEEP": "sleeps", "RUN": "runs", "MARY": "Mary"},
		graph: map[string]semantic.RawNode{
			"SLEEP":                            {Requires: []string{"SLEEP AGENT"}},
			"SLEEP AGENT":                      {Requires: []string{"SLEEP AGENT REFERENCE TO CONCEPT"}},
			"SLEEP AGENT REFERENCE TO CONCEPT": {Value: strp("MARY")},
			"RUN":                              {Requires: []string{"RUN AGENT"}},
			"RUN AGENT":                        {Requires: []string{"RUN AGENT REFERENCE TO CONCEPT"}},
			"RUN AGENT REFERENCE TO CONCEPT":   {Value: strp("MARY")},
		},
	}
	kg := buildKG(t, two)

	raw := Observe(kg, IntransitiveObserver{}, r, DefaultDomainElements(), false)
	if o, _ := raw.Get("ae_"); o.Count != 2 || len(o.Entries) != 1 {
		t.Fatalf("raw ae_: count=%d entries=%d, want 2 events in 1 entry", o.Count, len(o.Entries))
	}
	canon := Canonicalize(raw)
	if o, _ := canon.Get("ae_"); o.Count != 1 {
		t.Errorf("canonical ae_: count=%d, want 1 entry", o.Count)
	}
}

func TestByName(t *testing.T) {
	for _, name := range ObserverNames() {
		obs, err := ByName(name, false)
		if err != nil {
			t.Fatalf("ByName(%q): %v", name, err)
		}
		if obs.Name() != name {
			t.Errorf("ByName(%q).Name() = %q", name, obs.Name())
		}
	}
	if _, err := ByName("vso-ish", false); !errors.Is(err, ErrUnknownObserver) {
		t.Errorf("expected ErrUnknownObserver, got %v", err)
	}
}

func TestDomainElementsMerge(t *testing.T) {
	base := DefaultDomainElements()
	merged := base.Merge(DomainElements{NameSubjectObject: {"SOV": "81A-1"}})
	if merged[NameSubjectObject]["SOV"] != "81A-1" || base[NameSubjectObject]["SOV"] != "8101" {
		t.Errorf("merge should override a copy: %v / %v", merged[NameSubjectObject], base[NameSubjectObject])
	}
	if merged[NameTransitive]["ape"] != "8101" {
		t.Errorf("generic alphabet ids: %v", merged[NameTransitive])
	}
}
