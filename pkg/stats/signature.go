package stats

import (
	"strings"

	"github.com/alterfero/dig4el-sub001/pkg/common"
)

// CanonicalIntent marks assertive sentences.
const CanonicalIntent = "ASSERT"

// Signature is a compact classification key for an entry: its first intent,
// its first predicate, and whether either slot is empty. An empty slot acts
// as a wildcard when entries are grouped by signature.
type Signature struct {
	Intent    string `json:"intent"`
	Predicate string `json:"predicate"`
	Wildcard  bool   `json:"wildcard"`
}

// EntrySignature derives the signature of an entry. It is a pure function.
func EntrySignature(e *common.Entry) Signature {
	s := Signature{}
	if len(e.Sentence.Intent) > 0 {
		s.Intent = e.Sentence.Intent[0]
	}
	if len(e.Sentence.Predicate) > 0 {
		s.Predicate = e.Sentence.Predicate[0]
	}
	s.Wildcard = s.Intent == "" || s.Predicate == ""
	return s
}

// IsCanonical reports whether the signature intent contains the ASSERT tag.
func (s Signature) IsCanonical() bool {
	return strings.Contains(s.Intent, CanonicalIntent)
}
