package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/alterfero/dig4el-sub001/pkg/graph"
	"github.com/alterfero/dig4el-sub001/pkg/leaselock"
	"github.com/alterfero/dig4el-sub001/pkg/loader"
	"github.com/alterfero/dig4el-sub001/pkg/logger"
	"github.com/alterfero/dig4el-sub001/pkg/store"
)

// Locker serializes builds of the same language across workers.
type Locker interface {
	WithLease(ctx context.Context, key string, opts leaselock.Options, fn func(ctx context.Context) error) error
}

// BuildTimer records build durations. The Postgres store implements it.
type BuildTimer interface {
	AddBuildTime(ctx context.Context, language string, entries int, d time.Duration) error
}

type Processor struct {
	builder *graph.Builder
	sources loader.SourceLoader
	store   store.SnapshotStorage
	locker  Locker
	events  Channel
}

// NewProcessorParams defines the dependencies of a Processor.
//
// Locker and Events are optional. Without a Locker builds are not
// serialized, without Events no snapshot events are published.
type NewProcessorParams struct {
	Builder *graph.Builder
	Sources loader.SourceLoader
	Store   store.SnapshotStorage
	Locker  Locker
	Events  Channel
}

func NewProcessor(params NewProcessorParams) *Processor {
	return &Processor{
		builder: params.Builder,
		sources: params.Sources,
		store:   params.Store,
		locker:  params.Locker,
		events:  params.Events,
	}
}

// ProcessBuildMessage rebuilds and stores the snapshot requested by body.
func (p *Processor) ProcessBuildMessage(ctx context.Context, body []byte) error {
	var msg BuildMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return errors.Join(ErrInvalidMessage, err)
	}
	if err := msg.validate(); err != nil {
		return err
	}

	if p.locker == nil {
		return p.build(ctx, msg)
	}
	return p.locker.WithLease(
		ctx,
		leaselock.BuildKey(msg.Language),
		leaselock.BuildOptions(msg.CorrelationID),
		func(ctx context.Context) error {
			return p.build(ctx, msg)
		},
	)
}

func (p *Processor) build(ctx context.Context, msg BuildMessage) error {
	start := time.Now()
	logger.Info("[Queue] Building knowledge graph", "correlation_id", msg.CorrelationID, "language", msg.Language)

	questionnaires, err := loader.Discover(ctx, p.sources, msg.QuestionnairePrefix, loader.SourceKindQuestionnaire)
	if err != nil {
		return fmt.Errorf("failed to list questionnaires: %w", err)
	}
	recordings, err := loader.Discover(ctx, p.sources, msg.RecordingPrefix, loader.SourceKindRecording)
	if err != nil {
		return fmt.Errorf("failed to list recordings: %w", err)
	}

	result, err := p.builder.BuildFromSources(ctx, msg.Language, questionnaires, recordings)
	if err != nil {
		return err
	}

	snapshot := result.Snapshot()
	if err := p.store.SaveSnapshot(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	duration := time.Since(start)
	entries := result.Graph.Len()
	if timer, ok := p.store.(BuildTimer); ok {
		if err := timer.AddBuildTime(ctx, msg.Language, entries, duration); err != nil {
			logger.Warn("[Queue] Failed to record build time", "language", msg.Language, "err", err)
		}
	}

	issues := make(map[string]int)
	for kind, n := range graph.CountIssues(result.Issues) {
		issues[string(kind)] = n
	}
	logger.Info("[Queue] Snapshot saved",
		"correlation_id", msg.CorrelationID,
		"language", msg.Language,
		"entries", entries,
		"issues", len(result.Issues),
		"duration", duration,
	)

	if p.events == nil {
		return nil
	}
	event, err := json.Marshal(SnapshotEvent{
		CorrelationID: msg.CorrelationID,
		Language:      snapshot.Language,
		Entries:       entries,
		TotalWords:    snapshot.TotalWords,
		Issues:        issues,
		DurationMs:    duration.Milliseconds(),
	})
	if err != nil {
		return err
	}
	if err := PublishTopic(p.events, SnapshotTopic(msg.Language), event); err != nil {
		logger.Warn("[Queue] Failed to publish snapshot event", "language", msg.Language, "err", err)
	}
	return nil
}
