package store

import (
	"sort"
	"strings"

	"github.com/alterfero/dig4el-sub001/pkg/common"
)

func ChunkRange(total, chunkSize int, fn func(start, end int) error) error {
	if total <= 0 {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = total
	}
	for start := 0; start < total; start += chunkSize {
		end := min(start+chunkSize, total)
		if err := fn(start, end); err != nil {
			return err
		}
	}
	return nil
}

// NormalizeLanguage is the storage key for a language name.
func NormalizeLanguage(language string) string {
	return strings.ToLower(strings.TrimSpace(language))
}

// Info derives the summary of a snapshot.
func Info(s *common.Snapshot) SnapshotInfo {
	return SnapshotInfo{
		Language:   NormalizeLanguage(s.Language),
		Entries:    s.Graph.Len(),
		TotalWords: s.TotalWords,
		BuiltAt:    s.BuiltAt,
	}
}

// SortInfos orders summaries by language.
func SortInfos(infos []SnapshotInfo) []SnapshotInfo {
	sort.Slice(infos, func(i, j int) bool { return infos[i].Language < infos[j].Language })
	return infos
}
