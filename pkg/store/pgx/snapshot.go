package pgx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	pgxv5 "github.com/jackc/pgx/v5"

	"github.com/alterfero/dig4el-sub001/internal/util"
	"github.com/alterfero/dig4el-sub001/pkg/common"
	"github.com/alterfero/dig4el-sub001/pkg/logger"
	"github.com/alterfero/dig4el-sub001/pkg/store"
)

// SaveSnapshot replaces the snapshot of a language inside one transaction.
func (s *SnapshotDBStorage) SaveSnapshot(ctx context.Context, snapshot *common.Snapshot) error {
	language := store.NormalizeLanguage(snapshot.Language)
	entries := snapshot.Graph.Entries()

	freq, err := json.Marshal(snapshot.WordFrequency)
	if err != nil {
		return fmt.Errorf("failed to encode word frequency: %w", err)
	}
	unique := make([]string, 0, len(snapshot.UniqueWords))
	for _, w := range snapshot.UniqueWords {
		unique = append(unique, util.SanitizePostgresText(w))
	}

	logger.Debug("[Store][SaveSnapshot] Writing snapshot", "language", language, "entries", len(entries))

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, upsertSnapshotSQL,
		language, unique, util.SanitizePostgresJSON(freq), snapshot.TotalWords, len(entries), snapshot.BuiltAt,
	); err != nil {
		return fmt.Errorf("failed to upsert snapshot: %w", err)
	}
	if _, err := tx.Exec(ctx, deleteEntriesSQL, language); err != nil {
		return fmt.Errorf("failed to clear entries: %w", err)
	}

	err = store.ChunkRange(len(entries), s.chunkSize, func(start, end int) error {
		batch := &pgxv5.Batch{}
		for _, e := range entries[start:end] {
			data, err := json.Marshal(e)
			if err != nil {
				return fmt.Errorf("failed to encode entry %d: %w", e.Index, err)
			}
			batch.Queue(insertEntrySQL,
				language,
				e.Index,
				util.SanitizePostgresText(e.Questionnaire),
				util.SanitizePostgresText(e.Turn),
				util.SanitizePostgresText(e.Recording.Translation),
				util.SanitizePostgresJSON(data),
			)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return fmt.Errorf("failed to insert entries: %w", err)
	}

	return tx.Commit(ctx)
}

// LoadSnapshot reads a snapshot and its entries in index order.
func (s *SnapshotDBStorage) LoadSnapshot(ctx context.Context, language string) (*common.Snapshot, error) {
	language = store.NormalizeLanguage(language)

	snap := &common.Snapshot{Language: language}
	var freq []byte
	var count int
	err := s.conn.QueryRow(ctx, selectSnapshotSQL, language).Scan(
		&snap.UniqueWords, &freq, &snap.TotalWords, &count, &snap.BuiltAt,
	)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", store.ErrNotFound, language)
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(freq, &snap.WordFrequency); err != nil {
		return nil, fmt.Errorf("failed to decode word frequency: %w", err)
	}

	rows, err := s.conn.Query(ctx, selectEntriesSQL, language)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]common.Entry, 0, count)
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var e common.Entry
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("failed to decode entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	snap.Graph, err = common.NewKnowledgeGraph(language, entries)
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// ListSnapshots returns the summaries of every stored snapshot.
func (s *SnapshotDBStorage) ListSnapshots(ctx context.Context) ([]store.SnapshotInfo, error) {
	rows, err := s.conn.Query(ctx, listSnapshotsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.SnapshotInfo
	for rows.Next() {
		var info store.SnapshotInfo
		var builtAt time.Time
		if err := rows.Scan(&info.Language, &info.Entries, &info.TotalWords, &builtAt); err != nil {
			return nil, err
		}
		info.BuiltAt = builtAt
		out = append(out, info)
	}
	return out, rows.Err()
}

// DeleteSnapshot removes a snapshot and, through the foreign key, its entries.
func (s *SnapshotDBStorage) DeleteSnapshot(ctx context.Context, language string) error {
	language = store.NormalizeLanguage(language)
	tag, err := s.conn.Exec(ctx, deleteSnapshotSQL, language)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %q", store.ErrNotFound, language)
	}
	return nil
}

// EntriesForQuestionnaire returns the entry indices built from one questionnaire.
func (s *SnapshotDBStorage) EntriesForQuestionnaire(ctx context.Context, language, cqUID string) ([]int, error) {
	rows, err := s.conn.Query(ctx, selectIndicesByQuestionnaireSQL, store.NormalizeLanguage(language), cqUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var idx int
		if err := rows.Scan(&idx); err != nil {
			return nil, err
		}
		out = append(out, idx)
	}
	return out, rows.Err()
}

const upsertSnapshotSQL = `
INSERT INTO snapshots (language, unique_words, word_frequency, total_words, entry_count, built_at)
VALUES ($1, $2, $3::jsonb, $4, $5, $6)
ON CONFLICT (language) DO UPDATE
SET unique_words   = EXCLUDED.unique_words,
    word_frequency = EXCLUDED.word_frequency,
    total_words    = EXCLUDED.total_words,
    entry_count    = EXCLUDED.entry_count,
    built_at       = EXCLUDED.built_at;
`

const deleteEntriesSQL = `DELETE FROM snapshot_entries WHERE language = $1;`

const insertEntrySQL = `
INSERT INTO snapshot_entries (language, idx, cq_uid, turn, translation, entry)
VALUES ($1, $2, $3, $4, $5, $6::jsonb);
`

const selectSnapshotSQL = `
SELECT unique_words, word_frequency, total_words, entry_count, built_at
FROM snapshots
WHERE language = $1;
`

const selectEntriesSQL = `
SELECT entry FROM snapshot_entries
WHERE language = $1
ORDER BY idx;
`

const listSnapshotsSQL = `
SELECT language, entry_count, total_words, built_at
FROM snapshots
ORDER BY language;
`

const deleteSnapshotSQL = `DELETE FROM snapshots WHERE language = $1;`

const selectIndicesByQuestionnaireSQL = `
SELECT idx FROM snapshot_entries
WHERE language = $1 AND cq_uid = $2
ORDER BY idx;
`
