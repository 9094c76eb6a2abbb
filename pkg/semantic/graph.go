// Package semantic holds the per-sentence concept graph attached to every
// knowledge-graph entry.
//
// Questionnaires describe the graph as a map of concept keys to
// {requires, value, path}. Keys are role-qualified strings ("EAT AGENT"),
// and role information is encoded in key suffixes. Graph turns that map into
// an arena of nodes addressed by Handle and classifies every node once at
// construction, so callers dispatch on Kind instead of inspecting strings.
package semantic

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrMissingNode is returned when a lookup names a key the graph does not hold.
	ErrMissingNode = errors.New("concept node not found")
	// ErrEmptyValue is returned when a reference node exists but carries no value.
	ErrEmptyValue = errors.New("concept node has no value")
	// ErrCycle is returned by New when a node requires itself, directly or not.
	ErrCycle = errors.New("concept graph contains a cycle")
)

// Handle addresses a node inside one Graph. Handles are not portable
// between graphs.
type Handle int32

// Kind discriminates the structural role of a node.
type Kind int

const (
	KindPlain Kind = iota
	// KindEvent nodes require an agent slot and optionally a patient slot.
	KindEvent
	// KindReference nodes point to the concept filling a role through Value.
	KindReference
)

func (k Kind) String() string {
	switch k {
	case KindEvent:
		return "event"
	case KindReference:
		return "reference"
	default:
		return "plain"
	}
}

// RawNode is the wire form of a concept node.
type RawNode struct {
	Requires []string `json:"requires"`
	Value    *string  `json:"value,omitempty"`
	Path     []string `json:"path"`
}

// Node is a classified concept node.
type Node struct {
	Key      string
	Requires []string
	Value    string
	HasValue bool
	Path     []string
	Kind     Kind

	// AgentSlot and PatientSlot are the required keys ending in " AGENT" and
	// " PATIENT". They are only set on event nodes.
	AgentSlot   string
	PatientSlot string
}

// HasPatient reports whether an event node also requires a patient slot.
func (n Node) HasPatient() bool {
	return n.PatientSlot != ""
}

// IsNoun reports whether any required key ends in " DEFINITENESS".
func (n Node) IsNoun() bool {
	for _, r := range n.Requires {
		if strings.HasSuffix(r, definitenessSuffix) {
			return true
		}
	}
	return false
}

// Role returns the semantic role read off the node's path.
func (n Node) Role() Role {
	return RoleFromPath(n.Path)
}

// Graph owns all concept nodes of one entry.
type Graph struct {
	nodes []Node
	index map[string]Handle
}

// New builds a graph from its wire form. Nodes are stored in key order so
// handles are deterministic for a given input.
func New(raw map[string]RawNode) (*Graph, error) {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	g := &Graph{
		nodes: make([]Node, 0, len(keys)),
		index: make(map[string]Handle, len(keys)),
	}
	for _, k := range keys {
		r := raw[k]
		n := Node{
			Key:      k,
			Requires: append([]string(nil), r.Requires...),
			Path:     append([]string(nil), r.Path...),
		}
		if r.Value != nil {
			n.Value = *r.Value
			n.HasValue = true
		}
		classify(&n)
		g.index[k] = Handle(len(g.nodes))
		g.nodes = append(g.nodes, n)
	}

	if key, ok := g.findCycle(); ok {
		return nil, fmt.Errorf("%w at %q", ErrCycle, key)
	}
	return g, nil
}

func classify(n *Node) {
	for _, r := range n.Requires {
		switch {
		case strings.HasSuffix(r, agentSuffix) && n.AgentSlot == "":
			n.AgentSlot = r
		case strings.HasSuffix(r, patientSuffix) && n.PatientSlot == "":
			n.PatientSlot = r
		}
	}
	switch {
	case n.AgentSlot != "":
		n.Kind = KindEvent
	case strings.HasSuffix(n.Key, referenceSuffix):
		n.Kind = KindReference
	default:
		n.Kind = KindPlain
	}
}

// findCycle walks requires edges between nodes present in the graph.
// Required keys without a node of their own are leaves.
func (g *Graph) findCycle() (string, bool) {
	const (
		unvisited = iota
		active
		done
	)
	state := make([]int, len(g.nodes))

	var visit func(h Handle) (string, bool)
	visit = func(h Handle) (string, bool) {
		state[h] = active
		for _, req := range g.nodes[h].Requires {
			next, ok := g.index[req]
			if !ok {
				continue
			}
			switch state[next] {
			case active:
				return req, true
			case unvisited:
				if key, found := visit(next); found {
					return key, true
				}
			}
		}
		state[h] = done
		return "", false
	}

	for h := range g.nodes {
		if state[h] == unvisited {
			if key, found := visit(Handle(h)); found {
				return key, true
			}
		}
	}
	return "", false
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	if g == nil {
		return 0
	}
	return len(g.nodes)
}

// Handle resolves a key to its handle.
func (g *Graph) Handle(key string) (Handle, bool) {
	if g == nil {
		return 0, false
	}
	h, ok := g.index[key]
	return h, ok
}

// Node returns the node behind a handle.
func (g *Graph) Node(h Handle) Node {
	return g.nodes[h]
}

// Lookup returns the node stored under key.
func (g *Graph) Lookup(key string) (Node, bool) {
	h, ok := g.Handle(key)
	if !ok {
		return Node{}, false
	}
	return g.nodes[h], true
}

// Nodes returns all nodes in handle order.
func (g *Graph) Nodes() []Node {
	if g == nil {
		return nil
	}
	out := make([]Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Events returns the event nodes in handle order.
func (g *Graph) Events() []Node {
	var out []Node
	for _, n := range g.Nodes() {
		if n.Kind == KindEvent {
			out = append(out, n)
		}
	}
	return out
}

// Nouns returns the noun nodes in handle order.
func (g *Graph) Nouns() []Node {
	var out []Node
	for _, n := range g.Nodes() {
		if n.IsNoun() {
			out = append(out, n)
		}
	}
	return out
}

// Filler resolves the concept filling role on the event stored under
// eventKey: graph["<EVENT> AGENT"].requires[0] names the reference node whose
// value is the filler's concept id.
func (g *Graph) Filler(eventKey string, role Role) (string, error) {
	event, ok := g.Lookup(eventKey)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrMissingNode, eventKey)
	}
	slot := ""
	switch role {
	case RoleAgent:
		slot = event.AgentSlot
	case RolePatient:
		slot = event.PatientSlot
	}
	if slot == "" {
		slot = eventKey + role.suffix()
	}
	return g.referenceValue(slot)
}

// Qualifier resolves the concept qualifying a noun, through either a required
// "... QUALIFIER REFERENCE TO CONCEPT" node or a required "... QUALIFIER" node
// that itself requires the reference.
func (g *Graph) Qualifier(nounKey string) (string, error) {
	noun, ok := g.Lookup(nounKey)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrMissingNode, nounKey)
	}
	for _, req := range noun.Requires {
		if strings.HasSuffix(req, qualifierReference) {
			return g.value(req)
		}
	}
	for _, req := range noun.Requires {
		if !strings.HasSuffix(req, qualifierSuffix) {
			continue
		}
		q, ok := g.Lookup(req)
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrMissingNode, req)
		}
		for _, inner := range q.Requires {
			if strings.HasSuffix(inner, referenceSuffix) {
				return g.value(inner)
			}
		}
	}
	return "", fmt.Errorf("%w: %q has no qualifier", ErrMissingNode, nounKey)
}

func (g *Graph) referenceValue(slot string) (string, error) {
	n, ok := g.Lookup(slot)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrMissingNode, slot)
	}
	if len(n.Requires) == 0 {
		return "", fmt.Errorf("%w: %q requires nothing", ErrMissingNode, slot)
	}
	return g.value(n.Requires[0])
}

func (g *Graph) value(key string) (string, error) {
	n, ok := g.Lookup(key)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrMissingNode, key)
	}
	if !n.HasValue || n.Value == "" {
		return "", fmt.Errorf("%w: %q", ErrEmptyValue, key)
	}
	return n.Value, nil
}

// Raw converts the graph back to its wire form.
func (g *Graph) Raw() map[string]RawNode {
	out := make(map[string]RawNode, g.Len())
	for _, n := range g.Nodes() {
		r := RawNode{
			Requires: append([]string{}, n.Requires...),
			Path:     append([]string{}, n.Path...),
		}
		if n.HasValue {
			v := n.Value
			r.Value = &v
		}
		out[n.Key] = r
	}
	return out
}

func (g *Graph) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.Raw())
}

func (g *Graph) UnmarshalJSON(data []byte) error {
	var raw map[string]RawNode
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	built, err := New(raw)
	if err != nil {
		return err
	}
	*g = *built
	return nil
}
