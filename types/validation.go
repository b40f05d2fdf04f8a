package types

import "strings"

// Severity ranks a validation issue. Only SeverityError affects overall
// validity.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// ValidationIssue is a single finding produced by a validation stage.
type ValidationIssue struct {
	Code     string         `json:"code"`
	Message  string         `json:"message"`
	Severity Severity       `json:"severity"`
	Path     string         `json:"path,omitempty"`
	Context  map[string]any `json:"context,omitempty"`
}

// ValidationResult aggregates the issues of one validateArtifact call.
// Valid is true iff no issue has SeverityError.
type ValidationResult struct {
	Valid      bool              `json:"valid"`
	Issues     []ValidationIssue `json:"issues"`
	ArtifactID string            `json:"artifact_id"`
	Timestamp  int64             `json:"timestamp"`
}

// ErrorIssues returns only the error-severity issues.
func (r *ValidationResult) ErrorIssues() []ValidationIssue {
	var out []ValidationIssue
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			out = append(out, issue)
		}
	}
	return out
}

// ErrorSummary joins all error-severity messages with "; ". Empty when
// the result is valid.
func (r *ValidationResult) ErrorSummary() string {
	var msgs []string
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			msgs = append(msgs, issue.Message)
		}
	}
	return strings.Join(msgs, "; ")
}
