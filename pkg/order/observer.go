package order

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/alterfero/dig4el-sub001/pkg/common"
	"github.com/alterfero/dig4el-sub001/pkg/logger"
	"github.com/alterfero/dig4el-sub001/pkg/position"
	"github.com/alterfero/dig4el-sub001/pkg/semantic"
)

var ErrUnknownObserver = errors.New("unknown observer")

// Observer classifies the entries of a knowledge graph into order labels.
type Observer interface {
	Name() string
	// Labels lists the buckets the observer can produce, in report order.
	Labels() []string
	// Classify returns one label per classified unit of the entry.
	Classify(e *common.Entry, r *position.Resolver) []string
}

const (
	NameIntransitive  = "intransitive"
	NameTransitive    = "transitive"
	NameSubjectObject = "sov"
	NameAdjectiveNoun = "adjective-noun"
)

// ObserverNames lists the registered observers.
func ObserverNames() []string {
	return []string{NameIntransitive, NameTransitive, NameSubjectObject, NameAdjectiveNoun}
}

// ByName returns a registered observer.
func ByName(name string, normalizeUnresolved bool) (Observer, error) {
	switch strings.ToLower(name) {
	case NameIntransitive:
		return IntransitiveObserver{}, nil
	case NameTransitive:
		return NewTransitiveObserver(GenericAlphabet), nil
	case NameSubjectObject:
		return NewTransitiveObserver(SubjectObjectAlphabet), nil
	case NameAdjectiveNoun:
		return AdjectiveNounObserver{NormalizeUnresolved: normalizeUnresolved}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownObserver, name)
	}
}

// locateFiller resolves the filler of role on an event and returns its
// position. ok is false when the filler or its position is unresolved.
func locateFiller(e *common.Entry, r *position.Resolver, event string, role semantic.Role) (int, bool) {
	filler, err := e.Sentence.Graph.Filler(event, role)
	if err != nil {
		logger.Debug("[Order] Unresolved filler", "index", e.Index, "event", event, "role", role.String(), "error", err)
		return position.Unresolved, false
	}
	pos := r.Locate(e, filler)
	return pos, pos != position.Unresolved
}

// IntransitiveObserver orders the event against its agent for events that
// require no patient.
type IntransitiveObserver struct{}

func (IntransitiveObserver) Name() string { return NameIntransitive }

func (IntransitiveObserver) Labels() []string {
	return []string{"ea_", "ae_", NoDominantOrder}
}

func (IntransitiveObserver) Classify(e *common.Entry, r *position.Resolver) []string {
	var labels []string
	for _, ev := range e.Sentence.Graph.Events() {
		if ev.HasPatient() {
			continue
		}
		agentPos, ok := locateFiller(e, r, ev.Key, semantic.RoleAgent)
		eventPos := r.Locate(e, ev.Key)
		if !ok || eventPos == position.Unresolved {
			labels = append(labels, NoDominantOrder)
			continue
		}
		if eventPos < agentPos {
			labels = append(labels, "ea_")
		} else {
			labels = append(labels, "ae_")
		}
	}
	return labels
}

// Alphabet names the event, agent and patient slots in a transitive label.
type Alphabet struct {
	Event   string
	Agent   string
	Patient string
}

var (
	GenericAlphabet       = Alphabet{Event: "e", Agent: "a", Patient: "p"}
	SubjectObjectAlphabet = Alphabet{Event: "V", Agent: "S", Patient: "O"}
)

// label spells a role sequence in the alphabet.
func (a Alphabet) label(roles []semantic.Role) string {
	var b strings.Builder
	for _, r := range roles {
		switch r {
		case semantic.RoleAgent:
			b.WriteString(a.Agent)
		case semantic.RolePatient:
			b.WriteString(a.Patient)
		default:
			b.WriteString(a.Event)
		}
	}
	return b.String()
}

// TransitiveObserver orders event, agent and patient. Ties keep the order
// event, agent, patient.
type TransitiveObserver struct {
	alphabet Alphabet
	name     string
}

func NewTransitiveObserver(a Alphabet) TransitiveObserver {
	name := NameTransitive
	if a == SubjectObjectAlphabet {
		name = NameSubjectObject
	}
	return TransitiveObserver{alphabet: a, name: name}
}

func (t TransitiveObserver) Name() string { return t.name }

// transitiveOrders lists the six orders as S O V in report order.
var transitiveOrders = [][]semantic.Role{
	{semantic.RoleAgent, semantic.RolePatient, semantic.RoleOther},
	{semantic.RoleAgent, semantic.RoleOther, semantic.RolePatient},
	{semantic.RoleOther, semantic.RoleAgent, semantic.RolePatient},
	{semantic.RoleOther, semantic.RolePatient, semantic.RoleAgent},
	{semantic.RolePatient, semantic.RoleOther, semantic.RoleAgent},
	{semantic.RolePatient, semantic.RoleAgent, semantic.RoleOther},
}

func (t TransitiveObserver) Labels() []string {
	out := make([]string, 0, len(transitiveOrders)+1)
	for _, o := range transitiveOrders {
		out = append(out, t.alphabet.label(o))
	}
	return append(out, NoDominantOrder)
}

type slot struct {
	role semantic.Role
	pos  int
}

func (t TransitiveObserver) Classify(e *common.Entry, r *position.Resolver) []string {
	var labels []string
	for _, ev := range e.Sentence.Graph.Events() {
		if !ev.HasPatient() {
			continue
		}
		agentPos, agentOK := locateFiller(e, r, ev.Key, semantic.RoleAgent)
		patientPos, patientOK := locateFiller(e, r, ev.Key, semantic.RolePatient)
		eventPos := r.Locate(e, ev.Key)
		if !agentOK || !patientOK || eventPos == position.Unresolved {
			labels = append(labels, NoDominantOrder)
			continue
		}
		labels = append(labels, t.Order(eventPos, agentPos, patientPos))
	}
	return labels
}

// Order spells the label for the given positions.
func (t TransitiveObserver) Order(eventPos, agentPos, patientPos int) string {
	slots := []slot{
		{semantic.RoleOther, eventPos},
		{semantic.RoleAgent, agentPos},
		{semantic.RolePatient, patientPos},
	}
	sort.SliceStable(slots, func(i, j int) bool { return slots[i].pos < slots[j].pos })
	roles := make([]semantic.Role, len(slots))
	for i, s := range slots {
		roles[i] = s.role
	}
	return t.alphabet.label(roles)
}

const (
	AdjectiveNoun = "Adjective-Noun"
	NounAdjective = "Noun-Adjective"
)

// AdjectiveNounObserver orders nouns against their qualifier. Unresolved
// positions are dropped unless NormalizeUnresolved routes them to
// NoDominantOrder.
type AdjectiveNounObserver struct {
	NormalizeUnresolved bool
}

func (AdjectiveNounObserver) Name() string { return NameAdjectiveNoun }

func (a AdjectiveNounObserver) Labels() []string {
	if a.NormalizeUnresolved {
		return []string{AdjectiveNoun, NounAdjective, NoDominantOrder}
	}
	return []string{AdjectiveNoun, NounAdjective}
}

func (a AdjectiveNounObserver) Classify(e *common.Entry, r *position.Resolver) []string {
	var labels []string
	g := e.Sentence.Graph
	for _, noun := range g.Nouns() {
		qualifier, err := g.Qualifier(noun.Key)
		if err != nil {
			continue
		}
		nounPos := r.Locate(e, noun.Key)
		qualPos := r.Locate(e, qualifier)
		if nounPos == position.Unresolved || qualPos == position.Unresolved || nounPos == qualPos {
			if a.NormalizeUnresolved {
				labels = append(labels, NoDominantOrder)
			}
			continue
		}
		if qualPos < nounPos {
			labels = append(labels, AdjectiveNoun)
		} else {
			labels = append(labels, NounAdjective)
		}
	}
	return labels
}
