package common

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/alterfero/dig4el-sub001/pkg/semantic"
)

// Participant describes a speaker or listener of a questionnaire turn.
type Participant struct {
	Name   string `json:"name,omitempty"`
	Gender string `json:"gender"`
	Age    string `json:"age"`
}

// SentenceData is the questionnaire side of an entry: the expected sentence
// and its semantic description.
type SentenceData struct {
	Text      string          `json:"text"`
	Intent    []string        `json:"intent"`
	Predicate []string        `json:"predicate"`
	Concept   []string        `json:"concept"`
	Graph     *semantic.Graph `json:"graph"`
}

// RecordingData is the language side of an entry.
//
// ConceptWords maps a concept key to the target-language word realising it.
// A value joined with "..." is a discontinuous span; only its first segment
// is used as the position anchor.
type RecordingData struct {
	Translation  string            `json:"translation"`
	ConceptWords map[string]string `json:"concept_words"`
	CQ           string            `json:"cq"`
}

// Entry is one questionnaire turn joined with its recording. Entries are the
// unit of every analysis and are never modified after a build.
type Entry struct {
	Index         int           `json:"index"`
	Speaker       Participant   `json:"speaker"`
	Listener      Participant   `json:"listener"`
	Language      string        `json:"language"`
	Questionnaire string        `json:"cq_uid"`
	Turn          string        `json:"turn"`
	Sentence      SentenceData  `json:"sentence_data"`
	Recording     RecordingData `json:"recording_data"`
}

// ConceptWord returns the word recorded for a concept. The boolean
// distinguishes an absent concept from an empty recording.
func (e *Entry) ConceptWord(concept string) (string, bool) {
	w, ok := e.Recording.ConceptWords[concept]
	return w, ok
}

// KnowledgeGraph holds every entry built for one language, ordered by index.
type KnowledgeGraph struct {
	Language string
	entries  []Entry
}

// NewKnowledgeGraph wraps entries that already carry contiguous 0-based indices.
func NewKnowledgeGraph(language string, entries []Entry) (*KnowledgeGraph, error) {
	for i := range entries {
		if entries[i].Index != i {
			return nil, fmt.Errorf("entry at position %d has index %d, indices must be contiguous from 0", i, entries[i].Index)
		}
	}
	return &KnowledgeGraph{Language: language, entries: entries}, nil
}

// Len returns the number of entries.
func (kg *KnowledgeGraph) Len() int {
	if kg == nil {
		return 0
	}
	return len(kg.entries)
}

// Entry returns the entry with the given index.
func (kg *KnowledgeGraph) Entry(index int) (*Entry, bool) {
	if kg == nil || index < 0 || index >= len(kg.entries) {
		return nil, false
	}
	return &kg.entries[index], true
}

// Entries returns the entries in index order. Callers must not modify them.
func (kg *KnowledgeGraph) Entries() []Entry {
	if kg == nil {
		return nil
	}
	return kg.entries
}

// MarshalJSON writes the graph as {"<index>": Entry}.
func (kg *KnowledgeGraph) MarshalJSON() ([]byte, error) {
	out := make(map[string]Entry, len(kg.entries))
	for _, e := range kg.entries {
		out[strconv.Itoa(e.Index)] = e
	}
	return json.Marshal(out)
}

func (kg *KnowledgeGraph) UnmarshalJSON(data []byte) error {
	var raw map[string]Entry
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	entries := make([]Entry, 0, len(raw))
	for key, e := range raw {
		idx, err := strconv.Atoi(key)
		if err != nil {
			return fmt.Errorf("invalid entry index %q: %w", key, err)
		}
		if idx != e.Index {
			return fmt.Errorf("entry key %q does not match index %d", key, e.Index)
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Index < entries[j].Index })

	language := ""
	if len(entries) > 0 {
		language = entries[0].Language
	}
	built, err := NewKnowledgeGraph(language, entries)
	if err != nil {
		return err
	}
	*kg = *built
	return nil
}

// Snapshot is the persisted result of one build, keyed by language.
type Snapshot struct {
	Language      string             `json:"language"`
	Graph         *KnowledgeGraph    `json:"knowledge_graph"`
	UniqueWords   []string           `json:"unique_words"`
	WordFrequency map[string]float64 `json:"word_frequency"`
	TotalWords    int                `json:"total_word_count"`
	BuiltAt       time.Time          `json:"built_at"`
}
