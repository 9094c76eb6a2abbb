package loader

import (
	"fmt"

	"github.com/invopop/jsonschema"
)

// Schema returns the JSON schema of a source document kind.
func Schema(kind SourceKind) (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
		DoNotReference:            true,
	}
	switch kind {
	case SourceKindQuestionnaire:
		return reflector.Reflect(&Questionnaire{}), nil
	case SourceKindRecording:
		return reflector.Reflect(&Recording{}), nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", kind)
	}
}
