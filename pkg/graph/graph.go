package graph

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/alterfero/dig4el-sub001/pkg/common"
	"github.com/alterfero/dig4el-sub001/pkg/loader"
	"github.com/alterfero/dig4el-sub001/pkg/logger"
	"github.com/alterfero/dig4el-sub001/pkg/position"
	"github.com/alterfero/dig4el-sub001/pkg/semantic"
)

// Result is the output of one build.
type Result struct {
	Graph         *common.KnowledgeGraph
	UniqueWords   []string
	WordFrequency map[string]float64
	TotalWords    int
	Issues        []Issue
}

// Snapshot packages the result for persistence.
func (r *Result) Snapshot() *common.Snapshot {
	return &common.Snapshot{
		Language:      r.Graph.Language,
		Graph:         r.Graph,
		UniqueWords:   r.UniqueWords,
		WordFrequency: r.WordFrequency,
		TotalWords:    r.TotalWords,
		BuiltAt:       time.Now().UTC(),
	}
}

type buildState struct {
	language string
	resolver *position.Resolver
	entries  []common.Entry
	freq     map[string]float64
	total    int
	issues   []Issue
}

func (s *buildState) report(i Issue) {
	logger.Warn("[Graph] "+string(i.Kind), "cq_uid", i.Questionnaire, "turn", i.Turn, "detail", i.Detail)
	s.issues = append(s.issues, i)
}

// countWords updates the running per-mille table. Each occurrence adds
// 1000/total where total is the word count seen so far, so values depend on
// processing order.
func (s *buildState) countWords(translation string) {
	for _, tok := range s.resolver.Tokenize(translation) {
		s.total++
		s.freq[tok] += 1000 / float64(s.total)
	}
}

// Build joins every recording with its registered questionnaire. Anomalies
// skip the affected turn or concept and are returned as Issues; only a
// canceled context aborts the build.
func (b *Builder) Build(ctx context.Context, language string, registry *loader.Registry, recordings []*loader.Recording) (*Result, error) {
	s := &buildState{
		language: language,
		resolver: b.delimiters.Resolver(language),
		freq:     map[string]float64{},
	}

	logger.Info("[Graph] Building", "language", language, "questionnaires", registry.Len(), "recordings", len(recordings))

	for _, rec := range recordings {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if rec.Language != "" && !strings.EqualFold(rec.Language, language) {
			s.report(Issue{
				Kind:          IssueLanguageMismatch,
				Questionnaire: rec.CQUID,
				Detail:        fmt.Sprintf("recording %q is in %q", rec.RecordingUID, rec.Language),
			})
			continue
		}
		q, ok := registry.Get(rec.CQUID)
		if !ok {
			s.report(Issue{
				Kind:          IssueUnregisteredQuestionnaire,
				Questionnaire: rec.CQUID,
				Detail:        "no questionnaire with this uid",
			})
			continue
		}
		s.addRecording(q, rec)
	}

	kg, err := common.NewKnowledgeGraph(language, s.entries)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble knowledge graph: %w", err)
	}

	unique := slices.Sorted(maps.Keys(s.freq))
	logger.Info("[Graph] Build completed", "language", language, "entries", kg.Len(), "words", s.total, "issues", len(s.issues))

	return &Result{
		Graph:         kg,
		UniqueWords:   unique,
		WordFrequency: s.freq,
		TotalWords:    s.total,
		Issues:        s.issues,
	}, nil
}

func (s *buildState) addRecording(q *loader.Questionnaire, rec *loader.Recording) {
	for _, turn := range q.Turns() {
		qt := q.Dialog[turn]
		rt, ok := rec.Data[turn]
		if !ok {
			s.report(Issue{Kind: IssueMissingField, Questionnaire: q.UID, Turn: turn, Detail: "turn not recorded"})
			continue
		}
		if rt.CQ == nil || rt.Translation == nil {
			s.report(Issue{Kind: IssueMissingField, Questionnaire: q.UID, Turn: turn, Detail: "cq or translation missing"})
			continue
		}
		if *rt.CQ != qt.Text {
			s.report(Issue{
				Kind:          IssueDataIntegrityMismatch,
				Questionnaire: q.UID,
				Turn:          turn,
				Detail:        fmt.Sprintf("recorded cq %q differs from %q", *rt.CQ, qt.Text),
			})
			continue
		}
		g, err := semantic.New(qt.Graph)
		if err != nil {
			s.report(Issue{Kind: IssueMalformedGraph, Questionnaire: q.UID, Turn: turn, Detail: err.Error()})
			continue
		}

		words := make(map[string]string, len(rt.ConceptWords))
		for concept, word := range rt.ConceptWords {
			words[concept] = word
		}
		for _, concept := range qt.Concept {
			if _, ok := words[concept]; !ok {
				s.report(Issue{
					Kind:          IssueMissingField,
					Questionnaire: q.UID,
					Turn:          turn,
					Detail:        fmt.Sprintf("concept_words has no entry for %q", concept),
				})
			}
		}

		s.entries = append(s.entries, common.Entry{
			Index:         len(s.entries),
			Speaker:       q.Speakers[qt.Speaker],
			Listener:      q.Listener(qt.Speaker),
			Language:      s.language,
			Questionnaire: q.UID,
			Turn:          turn,
			Sentence: common.SentenceData{
				Text:      qt.Text,
				Intent:    slices.Clone(qt.Intent),
				Predicate: slices.Clone(qt.Predicate),
				Concept:   slices.Clone(qt.Concept),
				Graph:     g,
			},
			Recording: common.RecordingData{
				Translation:  *rt.Translation,
				ConceptWords: words,
				CQ:           *rt.CQ,
			},
		})
		s.countWords(*rt.Translation)
	}
}
