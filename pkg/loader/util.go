package loader

import (
	"path"
	"sort"
	"strings"
)

// CacheKey generates a unique cache key for a SourceFile based on its ID and path.
func CacheKey(file SourceFile) string {
	return file.ID + ":" + file.FilePath
}

// IsSourceDocument reports whether p names a JSON document.
func IsSourceDocument(p string) bool {
	return strings.EqualFold(path.Ext(p), ".json")
}

// SortPaths orders listed paths so builds see sources in a stable order.
func SortPaths(paths []string) []string {
	sort.Strings(paths)
	return paths
}
