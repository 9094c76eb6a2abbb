package semantic

import (
	"encoding/json"
	"errors"
	"testing"
)

func strp(s string) *string { return &s }

func eatGraph(t *testing.T) *Graph {
	t.Helper()
	g, err := New(map[string]RawNode{
		"EAT":                             {Requires: []string{"EAT AGENT", "EAT PATIENT"}},
		"EAT AGENT":                       {Requires: []string{"EAT AGENT REFERENCE TO CONCEPT"}, Path: []string{"EAT"}},
		"EAT AGENT REFERENCE TO CONCEPT":  {Value: strp("MARY"), Path: []string{"EAT", "EAT AGENT"}},
		"EAT PATIENT":                     {Requires: []string{"EAT PATIENT REFERENCE TO CONCEPT"}, Path: []string{"EAT"}},
		"EAT PATIENT REFERENCE TO CONCEPT": {Value: strp(""), Path: []string{"EAT", "EAT PATIENT"}},
		"FISH":                            {Requires: []string{"FISH DEFINITENESS", "FISH QUALIFIER REFERENCE TO CONCEPT"}},
		"FISH QUALIFIER REFERENCE TO CONCEPT": {Value: strp("RED")},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return g
}

func TestClassification(t *testing.T) {
	g := eatGraph(t)

	tests := []struct {
		key  string
		kind Kind
	}{
		{key: "EAT", kind: KindEvent},
		{key: "EAT AGENT", kind: KindPlain},
		{key: "EAT AGENT REFERENCE TO CONCEPT", kind: KindReference},
		{key: "FISH", kind: KindPlain},
		{key: "FISH QUALIFIER REFERENCE TO CONCEPT", kind: KindReference},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			n, ok := g.Lookup(tt.key)
			if !ok {
				t.Fatalf("Lookup(%q) not found", tt.key)
			}
			if n.Kind != tt.kind {
				t.Fatalf("Kind = %v, want %v", n.Kind, tt.kind)
			}
		})
	}

	eat, _ := g.Lookup("EAT")
	if eat.AgentSlot != "EAT AGENT" || !eat.HasPatient() {
		t.Fatalf("unexpected event slots: %+v", eat)
	}
	fish, _ := g.Lookup("FISH")
	if !fish.IsNoun() {
		t.Fatal("FISH should be a noun")
	}
	if len(g.Events()) != 1 || len(g.Nouns()) != 1 {
		t.Fatalf("Events=%d Nouns=%d, want 1 and 1", len(g.Events()), len(g.Nouns()))
	}
}

func TestFiller(t *testing.T) {
	g := eatGraph(t)

	agent, err := g.Filler("EAT", RoleAgent)
	if err != nil || agent != "MARY" {
		t.Fatalf("Filler(agent) = %q, %v; want MARY", agent, err)
	}

	_, err = g.Filler("EAT", RolePatient)
	if !errors.Is(err, ErrEmptyValue) {
		t.Fatalf("Filler(patient) err = %v, want ErrEmptyValue", err)
	}

	_, err = g.Filler("DRINK", RoleAgent)
	if !errors.Is(err, ErrMissingNode) {
		t.Fatalf("Filler(unknown event) err = %v, want ErrMissingNode", err)
	}
}

func TestQualifier(t *testing.T) {
	g := eatGraph(t)
	q, err := g.Qualifier("FISH")
	if err != nil || q != "RED" {
		t.Fatalf("Qualifier() = %q, %v; want RED", q, err)
	}

	nested, err := New(map[string]RawNode{
		"DOG":                                {Requires: []string{"DOG DEFINITENESS", "DOG QUALIFIER"}},
		"DOG QUALIFIER":                      {Requires: []string{"DOG QUALIFIER REFERENCE TO CONCEPT"}},
		"DOG QUALIFIER REFERENCE TO CONCEPT": {Value: strp("BIG")},
	})
	if err != nil {
		t.Fatal(err)
	}
	q, err = nested.Qualifier("DOG")
	if err != nil || q != "BIG" {
		t.Fatalf("nested Qualifier() = %q, %v; want BIG", q, err)
	}
}

func TestNewRejectsCycles(t *testing.T) {
	_, err := New(map[string]RawNode{
		"A": {Requires: []string{"B"}},
		"B": {Requires: []string{"C"}},
		"C": {Requires: []string{"A"}},
	})
	if !errors.Is(err, ErrCycle) {
		t.Fatalf("err = %v, want ErrCycle", err)
	}

	_, err = New(map[string]RawNode{"SELF": {Requires: []string{"SELF"}}})
	if !errors.Is(err, ErrCycle) {
		t.Fatalf("self reference err = %v, want ErrCycle", err)
	}
}

func TestRoleFromPath(t *testing.T) {
	tests := []struct {
		name string
		path []string
		want Role
	}{
		{name: "empty", path: nil, want: RoleOther},
		{name: "agent", path: []string{"EAT", "EAT AGENT"}, want: RoleAgent},
		{name: "nearest wins", path: []string{"SEE PATIENT", "HOUSE POSSESSOR"}, want: RolePossessor},
		{name: "no role", path: []string{"EAT", "EAT TIME"}, want: RoleOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RoleFromPath(tt.path); got != tt.want {
				t.Fatalf("RoleFromPath(%v) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestUnmarshalKeepsValuePresence(t *testing.T) {
	var g Graph
	err := json.Unmarshal([]byte(`{"X":{"requires":[],"path":[]},"Y":{"requires":[],"value":"","path":[]}}`), &g)
	if err != nil {
		t.Fatal(err)
	}
	x, _ := g.Lookup("X")
	y, _ := g.Lookup("Y")
	if x.HasValue {
		t.Fatal("X should have no value")
	}
	if !y.HasValue || y.Value != "" {
		t.Fatalf("Y should carry an empty value, got %+v", y)
	}
}
