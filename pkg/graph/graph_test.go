package graph

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/alterfero/dig4el-sub001/pkg/common"
	"github.com/alterfero/dig4el-sub001/pkg/loader"
	"github.com/alterfero/dig4el-sub001/pkg/position"
	"github.com/alterfero/dig4el-sub001/pkg/semantic"
)

func strp(s string) *string { return &s }

func newBuilder(t *testing.T) *Builder {
	t.Helper()
	b, err := NewBuilder(NewBuilderParams{
		Delimiters: position.NewTable(map[string][]string{"english": {" ", ","}}, []string{" "}),
	})
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	return b
}

func questionnaire() *loader.Questionnaire {
	return &loader.Questionnaire{
		UID: "cq-1",
		Speakers: map[string]common.Participant{
			"A": {Name: "Ana", Gender: "female", Age: "adult"},
			"B": {Name: "Ben", Gender: "male", Age: "child"},
		},
		Dialog: map[string]loader.QuestionnaireTurn{
			"1": {Speaker: "A", Text: "Hello.", Intent: []string{"GREET"}},
			"2": {
				Speaker: "B", Text: "Mary eats fish.", Intent: []string{"ASSERT"}, Predicate: []string{"EVENT"},
				Concept: []string{"EAT", "MARY", "FISH"},
				Graph: map[string]semantic.RawNode{
					"EAT":                            {Requires: []string{"EAT AGENT"}},
					"EAT AGENT":                      {Requires: []string{"EAT AGENT REFERENCE TO CONCEPT"}},
					"EAT AGENT REFERENCE TO CONCEPT": {Value: strp("MARY")},
				},
			},
			"3": {Speaker: "A", Text: "Really?", Intent: []string{"ASK"}},
		},
	}
}

func TestBuild(t *testing.T) {
	b := newBuilder(t)
	registry, err := loader.NewRegistry(questionnaire())
	if err != nil {
		t.Fatal(err)
	}
	recordings := []*loader.Recording{
		{CQUID: "cq-1", Language: "English", Data: map[string]loader.RecordingTurn{
			"1": {CQ: strp("Hello."), Translation: strp("hi")},
			"2": {CQ: strp("Mary eats fish."), Translation: strp("Mary eats fish"),
				ConceptWords: map[string]string{"EAT": "eats", "MARY": "Mary"}},
			"3": {CQ: strp("Really ?"), Translation: strp("really")},
		}},
		{CQUID: "cq-unknown", Data: map[string]loader.RecordingTurn{}},
		{CQUID: "cq-1", Language: "french", Data: map[string]loader.RecordingTurn{}},
		{CQUID: "cq-1", Data: map[string]loader.RecordingTurn{
			"1": {CQ: strp("Hello."), Translation: strp("hi,hi")},
			"2": {Translation: strp("x")},
		}},
	}

	res, err := b.Build(context.Background(), "english", registry, recordings)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if res.Graph.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", res.Graph.Len())
	}
	for i, e := range res.Graph.Entries() {
		if e.Index != i {
			t.Errorf("entry %d has index %d", i, e.Index)
		}
	}
	e, _ := res.Graph.Entry(1)
	if e.Turn != "2" || e.Speaker.Name != "Ben" || e.Listener.Name != "Ana" {
		t.Errorf("unexpected entry: %+v", e)
	}
	if got, err := e.Sentence.Graph.Filler("EAT", semantic.RoleAgent); err != nil || got != "MARY" {
		t.Errorf("Filler = %q, %v", got, err)
	}

	wantIssues := map[IssueKind]int{
		IssueDataIntegrityMismatch:     1,
		IssueUnregisteredQuestionnaire: 1,
		IssueLanguageMismatch:          1,
		IssueMissingField:              3,
	}
	if got := CountIssues(res.Issues); !reflect.DeepEqual(got, wantIssues) {
		t.Errorf("issues = %v, want %v", got, wantIssues)
	}

	if res.TotalWords != 6 {
		t.Errorf("TotalWords = %d, want 6", res.TotalWords)
	}
	if want := []string{"Mary", "eats", "fish", "hi"}; !reflect.DeepEqual(res.UniqueWords, want) {
		t.Errorf("UniqueWords = %v, want %v", res.UniqueWords, want)
	}
}

func TestRunningFrequency(t *testing.T) {
	b := newBuilder(t)
	registry, _ := loader.NewRegistry(&loader.Questionnaire{
		UID:    "cq",
		Dialog: map[string]loader.QuestionnaireTurn{"1": {Text: "t"}},
	})
	res, err := b.Build(context.Background(), "english", registry, []*loader.Recording{
		{CQUID: "cq", Data: map[string]loader.RecordingTurn{"1": {CQ: strp("t"), Translation: strp("a b a")}}},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]float64{"a": 1000 + 1000.0/3, "b": 500}
	for w, f := range want {
		if math.Abs(res.WordFrequency[w]-f) > 1e-9 {
			t.Errorf("%q: got %v, want %v", w, res.WordFrequency[w], f)
		}
	}
}

func TestBuildCanceled(t *testing.T) {
	b := newBuilder(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := b.Build(ctx, "english", nil, []*loader.Recording{{CQUID: "x"}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestNewBuilderRequiresDelimiters(t *testing.T) {
	if _, err := NewBuilder(NewBuilderParams{}); err == nil {
		t.Error("expected error without delimiter table")
	}
}
