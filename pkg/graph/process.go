package graph

import (
	"context"
	"fmt"

	"github.com/alterfero/dig4el-sub001/internal/util"
	"github.com/alterfero/dig4el-sub001/pkg/loader"
	"github.com/alterfero/dig4el-sub001/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// BuildFromSources loads every questionnaire and recording file
// concurrently and builds the knowledge graph from them. Unreadable or
// unparseable files fail the build.
func (b *Builder) BuildFromSources(
	ctx context.Context,
	language string,
	questionnaires []loader.SourceFile,
	recordings []loader.SourceFile,
) (*Result, error) {
	qs := make([]*loader.Questionnaire, len(questionnaires))
	rs := make([]*loader.Recording, len(recordings))

	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(b.parallelLoads)

	logger.Info("[Graph] Loading sources", "questionnaires", len(questionnaires), "recordings", len(recordings))

	for i, file := range questionnaires {
		eg.Go(func() error {
			data, err := b.read(gCtx, file)
			if err != nil {
				return err
			}
			q, err := loader.ParseQuestionnaire(data, b.parseOptions, file.FilePath)
			if err != nil {
				return err
			}
			qs[i] = q
			return nil
		})
	}
	for i, file := range recordings {
		eg.Go(func() error {
			data, err := b.read(gCtx, file)
			if err != nil {
				return err
			}
			r, err := loader.ParseRecording(data, b.parseOptions, file.FilePath)
			if err != nil {
				return err
			}
			rs[i] = r
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load sources:\n%w", err)
	}

	registry, err := loader.NewRegistry(qs...)
	if err != nil {
		return nil, err
	}
	return b.Build(ctx, language, registry, rs)
}

func (b *Builder) read(ctx context.Context, file loader.SourceFile) ([]byte, error) {
	data, err := util.RetryWithContext(ctx, b.maxRetries, func(ctx context.Context) ([]byte, error) {
		return file.GetBytes(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file.FilePath, err)
	}
	return data, nil
}
