package loader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/go-playground/validator"
	"github.com/kaptinlin/jsonrepair"

	"github.com/alterfero/dig4el-sub001/pkg/common"
	"github.com/alterfero/dig4el-sub001/pkg/logger"
	"github.com/alterfero/dig4el-sub001/pkg/semantic"
)

var ErrInvalidSource = errors.New("invalid source document")

var validate = validator.New()

// QuestionnaireTurn is one dialog turn of a questionnaire.
type QuestionnaireTurn struct {
	Speaker   string                      `json:"speaker" jsonschema_description:"Key of the speaking participant."`
	Text      string                      `json:"text" validate:"required" jsonschema_description:"Expected sentence, compared with the recording cq."`
	Intent    []string                    `json:"intent"`
	Predicate []string                    `json:"predicate"`
	Concept   []string                    `json:"concept"`
	Graph     map[string]semantic.RawNode `json:"graph"`
}

// Questionnaire is a predefined dialog used to elicit recordings.
type Questionnaire struct {
	UID      string                        `json:"uid" validate:"required"`
	Title    string                        `json:"title,omitempty"`
	Speakers map[string]common.Participant `json:"speakers,omitempty"`
	Dialog   map[string]QuestionnaireTurn  `json:"dialog" validate:"required,dive"`
}

// Turns returns the dialog turn keys in numeric order. Non-numeric keys sort
// after numeric ones, lexically.
func (q *Questionnaire) Turns() []string {
	return sortTurns(q.Dialog)
}

// Listener returns the participant other than speaker, if the questionnaire
// declares exactly two.
func (q *Questionnaire) Listener(speaker string) common.Participant {
	if len(q.Speakers) != 2 {
		return common.Participant{}
	}
	for key, p := range q.Speakers {
		if key != speaker {
			return p
		}
	}
	return common.Participant{}
}

// RecordingTurn is the transcription of one questionnaire turn. Pointer
// fields distinguish an absent key from an empty value.
type RecordingTurn struct {
	CQ           *string           `json:"cq"`
	Translation  *string           `json:"translation"`
	ConceptWords map[string]string `json:"concept_words"`
}

// Recording is a language-specific response set for one questionnaire.
type Recording struct {
	CQUID        string                   `json:"cq_uid" validate:"required"`
	RecordingUID string                   `json:"recording_uid,omitempty"`
	Language     string                   `json:"language,omitempty"`
	Data         map[string]RecordingTurn `json:"data" validate:"required"`
}

// ParseOptions controls how source documents are decoded.
type ParseOptions struct {
	// Repair retries malformed JSON after running it through a JSON repairer.
	Repair bool
}

func decode(data []byte, out any, opts ParseOptions, source string) error {
	err := json.Unmarshal(data, out)
	if err == nil || !opts.Repair {
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidSource, source, err)
		}
		return nil
	}
	repaired, rerr := jsonrepair.JSONRepair(string(data))
	if rerr != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidSource, source, err)
	}
	if err := json.Unmarshal([]byte(repaired), out); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidSource, source, err)
	}
	logger.Warn("[Loader] Repaired malformed JSON", "source", source)
	return nil
}

// ParseQuestionnaire decodes and validates a questionnaire document.
func ParseQuestionnaire(data []byte, opts ParseOptions, source string) (*Questionnaire, error) {
	var q Questionnaire
	if err := decode(data, &q, opts, source); err != nil {
		return nil, err
	}
	if err := validate.Struct(q); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidSource, source, err)
	}
	return &q, nil
}

// ParseRecording decodes and validates a recording document.
func ParseRecording(data []byte, opts ParseOptions, source string) (*Recording, error) {
	var r Recording
	if err := decode(data, &r, opts, source); err != nil {
		return nil, err
	}
	if err := validate.Struct(r); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidSource, source, err)
	}
	return &r, nil
}

// LoadQuestionnaire reads and parses a questionnaire file.
func LoadQuestionnaire(ctx context.Context, f SourceFile, opts ParseOptions) (*Questionnaire, error) {
	data, err := f.GetBytes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.FilePath, err)
	}
	return ParseQuestionnaire(data, opts, f.FilePath)
}

// LoadRecording reads and parses a recording file.
func LoadRecording(ctx context.Context, f SourceFile, opts ParseOptions) (*Recording, error) {
	data, err := f.GetBytes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.FilePath, err)
	}
	return ParseRecording(data, opts, f.FilePath)
}

// Registry indexes questionnaires by uid.
type Registry struct {
	byUID map[string]*Questionnaire
}

// NewRegistry indexes questionnaires. A duplicate uid is an error.
func NewRegistry(questionnaires ...*Questionnaire) (*Registry, error) {
	r := &Registry{byUID: make(map[string]*Questionnaire, len(questionnaires))}
	for _, q := range questionnaires {
		if _, ok := r.byUID[q.UID]; ok {
			return nil, fmt.Errorf("%w: duplicate questionnaire uid %q", ErrInvalidSource, q.UID)
		}
		r.byUID[q.UID] = q
	}
	return r, nil
}

// Get returns the questionnaire registered under uid.
func (r *Registry) Get(uid string) (*Questionnaire, bool) {
	if r == nil {
		return nil, false
	}
	q, ok := r.byUID[uid]
	return q, ok
}

// Len returns the number of registered questionnaires.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.byUID)
}

func sortTurns[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, aerr := strconv.Atoi(keys[i])
		b, berr := strconv.Atoi(keys[j])
		switch {
		case aerr == nil && berr == nil:
			return a < b
		case aerr == nil:
			return true
		case berr == nil:
			return false
		default:
			return keys[i] < keys[j]
		}
	})
	return keys
}
