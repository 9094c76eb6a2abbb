package pgx

import (
	"context"
	"time"

	"github.com/alterfero/dig4el-sub001/pkg/store"
)

// AddBuildTime records how long a build of a language took.
func (s *SnapshotDBStorage) AddBuildTime(ctx context.Context, language string, entries int, d time.Duration) error {
	_, err := s.conn.Exec(ctx, insertBuildStatSQL, store.NormalizeLanguage(language), entries, d.Milliseconds())
	return err
}

// PredictBuildTime estimates a build duration from the mean time per entry
// of past builds. It returns zero without history.
func (s *SnapshotDBStorage) PredictBuildTime(ctx context.Context, entries int) (time.Duration, error) {
	var msPerEntry *float64
	if err := s.conn.QueryRow(ctx, meanBuildTimeSQL).Scan(&msPerEntry); err != nil {
		return 0, err
	}
	if msPerEntry == nil {
		return 0, nil
	}
	return time.Duration(*msPerEntry*float64(entries)) * time.Millisecond, nil
}

const insertBuildStatSQL = `
INSERT INTO build_stats (language, entries, duration_ms)
VALUES ($1, $2, $3);
`

const meanBuildTimeSQL = `
SELECT SUM(duration_ms)::float8 / NULLIF(SUM(entries), 0)
FROM (SELECT duration_ms, entries FROM build_stats ORDER BY created_at DESC LIMIT 50) recent;
`
