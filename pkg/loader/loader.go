package loader

import (
	"context"
	"path"
	"strings"
)

type SourceKind string

const (
	SourceKindQuestionnaire SourceKind = "questionnaire"
	SourceKindRecording     SourceKind = "recording"
)

// SourceFile is one questionnaire or recording document. The content is
// fetched through its SourceLoader.
type SourceFile struct {
	ID       string
	FilePath string
	Kind     SourceKind
	Loader   SourceLoader
}

// NewSourceFileParams defines the input parameters for creating a new
// SourceFile.
type NewSourceFileParams struct {
	ID       string
	FilePath string
	Loader   SourceLoader
}

func newSourceFile(params NewSourceFileParams, kind SourceKind) SourceFile {
	id := params.ID
	if id == "" {
		id = strings.TrimSuffix(path.Base(params.FilePath), path.Ext(params.FilePath))
	}
	return SourceFile{
		ID:       id,
		FilePath: params.FilePath,
		Kind:     kind,
		Loader:   params.Loader,
	}
}

// NewQuestionnaireFile creates a SourceFile holding a questionnaire. The ID
// defaults to the file name without extension.
func NewQuestionnaireFile(params NewSourceFileParams) SourceFile {
	return newSourceFile(params, SourceKindQuestionnaire)
}

// NewRecordingFile creates a SourceFile holding a recording.
func NewRecordingFile(params NewSourceFileParams) SourceFile {
	return newSourceFile(params, SourceKindRecording)
}

// GetBytes retrieves the raw content of the file using its Loader.
func (f *SourceFile) GetBytes(ctx context.Context) ([]byte, error) {
	return f.Loader.GetFileBytes(ctx, *f)
}

// SourceLoader defines the interface for loading source documents.
// Implementations may load files from disk, object storage, or other sources.
type SourceLoader interface {
	GetFileBytes(ctx context.Context, file SourceFile) ([]byte, error)
	// List returns the paths of the JSON documents below prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Discover lists prefix through l and wraps every document as kind.
func Discover(ctx context.Context, l SourceLoader, prefix string, kind SourceKind) ([]SourceFile, error) {
	paths, err := l.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	files := make([]SourceFile, 0, len(paths))
	for _, p := range paths {
		files = append(files, newSourceFile(NewSourceFileParams{FilePath: p, Loader: l}, kind))
	}
	return files, nil
}
