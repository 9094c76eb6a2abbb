package util

import "strings"

func SanitizePostgresText(value string) string {
	if value == "" {
		return value
	}

	sanitized := strings.ToValidUTF8(value, "")
	return strings.ReplaceAll(sanitized, "\x00", "")
}

// SanitizePostgresJSON drops \u0000 escapes, which jsonb rejects, from
// encoded JSON. Escaped backslashes followed by "u0000" are kept.
func SanitizePostgresJSON(data []byte) []byte {
	const nul = `\u0000`
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] != '\\' {
			out = append(out, data[i])
			continue
		}
		if strings.HasPrefix(string(data[i:min(i+len(nul), len(data))]), nul) {
			i += len(nul) - 1
			continue
		}
		out = append(out, data[i])
		if i+1 < len(data) {
			i++
			out = append(out, data[i])
		}
	}
	return out
}
