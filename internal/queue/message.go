package queue

import (
	"errors"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

var ErrInvalidMessage = errors.New("invalid build message")

// BuildMessage asks a worker to rebuild the knowledge graph of one language
// from the documents below the two prefixes.
type BuildMessage struct {
	CorrelationID       string `json:"correlation_id"`
	Language            string `json:"language"`
	QuestionnairePrefix string `json:"questionnaire_prefix"`
	RecordingPrefix     string `json:"recording_prefix"`
}

func NewBuildMessage(language, questionnairePrefix, recordingPrefix string) (BuildMessage, error) {
	id, err := gonanoid.New()
	if err != nil {
		return BuildMessage{}, err
	}
	msg := BuildMessage{
		CorrelationID:       id,
		Language:            strings.TrimSpace(language),
		QuestionnairePrefix: questionnairePrefix,
		RecordingPrefix:     recordingPrefix,
	}
	return msg, msg.validate()
}

func (m BuildMessage) validate() error {
	switch {
	case m.Language == "":
		return errors.Join(ErrInvalidMessage, errors.New("language is empty"))
	case m.QuestionnairePrefix == "":
		return errors.Join(ErrInvalidMessage, errors.New("questionnaire prefix is empty"))
	case m.RecordingPrefix == "":
		return errors.Join(ErrInvalidMessage, errors.New("recording prefix is empty"))
	}
	return nil
}

// SnapshotEvent is published on the event exchange after a build.
type SnapshotEvent struct {
	CorrelationID string         `json:"correlation_id"`
	Language      string         `json:"language"`
	Entries       int            `json:"entries"`
	TotalWords    int            `json:"total_word_count"`
	Issues        map[string]int `json:"issues"`
	DurationMs    int64          `json:"duration_ms"`
}

// SnapshotTopic is the routing key of a language's snapshot events.
func SnapshotTopic(language string) string {
	return "snapshot." + strings.ToLower(language)
}
