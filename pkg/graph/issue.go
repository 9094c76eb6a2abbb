package graph

import "fmt"

type IssueKind string

const (
	IssueDataIntegrityMismatch     IssueKind = "data_integrity_mismatch"
	IssueMissingField              IssueKind = "missing_field"
	IssueUnregisteredQuestionnaire IssueKind = "unregistered_questionnaire"
	IssueLanguageMismatch          IssueKind = "language_mismatch"
	IssueMalformedGraph            IssueKind = "malformed_graph"
)

// Issue is a recoverable anomaly met during a build. The affected turn,
// concept or recording was skipped.
type Issue struct {
	Kind          IssueKind `json:"kind"`
	Questionnaire string    `json:"cq_uid"`
	Turn          string    `json:"turn,omitempty"`
	Detail        string    `json:"detail"`
}

func (i Issue) String() string {
	if i.Turn == "" {
		return fmt.Sprintf("%s: %s: %s", i.Kind, i.Questionnaire, i.Detail)
	}
	return fmt.Sprintf("%s: %s turn %s: %s", i.Kind, i.Questionnaire, i.Turn, i.Detail)
}

// CountIssues groups issues by kind.
func CountIssues(issues []Issue) map[IssueKind]int {
	out := map[IssueKind]int{}
	for _, i := range issues {
		out[i.Kind]++
	}
	return out
}
