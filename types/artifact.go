package types

// ArtifactType classifies the work product an agent produced.
type ArtifactType string

const (
	ArtifactTypeUserTask           ArtifactType = "user_task"
	ArtifactTypeImplementationPlan ArtifactType = "implementation_plan"
	ArtifactTypePseudocode         ArtifactType = "pseudocode"
	ArtifactTypeCode               ArtifactType = "code"
	ArtifactTypeReviewReport       ArtifactType = "review_report"
	ArtifactTypeDocumentation      ArtifactType = "documentation"
	ArtifactTypeTestResults        ArtifactType = "test_results"
	ArtifactTypeErrorReport        ArtifactType = "error_report"
)

// AllArtifactTypes returns the closed set of artifact types.
func AllArtifactTypes() []ArtifactType {
	return []ArtifactType{
		ArtifactTypeUserTask,
		ArtifactTypeImplementationPlan,
		ArtifactTypePseudocode,
		ArtifactTypeCode,
		ArtifactTypeReviewReport,
		ArtifactTypeDocumentation,
		ArtifactTypeTestResults,
		ArtifactTypeErrorReport,
	}
}

// IsValid reports whether t is one of the known artifact types.
func (t ArtifactType) IsValid() bool {
	switch t {
	case ArtifactTypeUserTask, ArtifactTypeImplementationPlan, ArtifactTypePseudocode,
		ArtifactTypeCode, ArtifactTypeReviewReport, ArtifactTypeDocumentation,
		ArtifactTypeTestResults, ArtifactTypeErrorReport:
		return true
	}
	return false
}

// ArtifactStatus is the lifecycle tag of an artifact. The set is open:
// agents may introduce their own statuses, the store only gives meaning
// to the ones below.
type ArtifactStatus string

const (
	StatusInProgress ArtifactStatus = "in_progress"
	StatusCompleted  ArtifactStatus = "completed"
	StatusApproved   ArtifactStatus = "approved"
	StatusRejected   ArtifactStatus = "rejected"
	StatusArchived   ArtifactStatus = "archived"
)

// Well-known metadata keys. Metadata is an open bag; these are the keys
// the store and index understand.
const (
	MetaFilesAffected      = "files_affected"
	MetaReviewedBy         = "reviewed_by"
	MetaApprovalStatus     = "approval_status"
	MetaParentArtifactID   = "parent_artifact_id"
	MetaRelatedArtifactIDs = "related_artifact_ids"
	MetaTags               = "tags"
	MetaPriority           = "priority"
)

// Artifact is a typed, versioned work product exchanged between agents.
// Timestamps are epoch milliseconds. Version starts at 1 and is bumped
// only when content changes.
type Artifact struct {
	ID         string          `json:"id"`
	Type       ArtifactType    `json:"type"`
	Status     ArtifactStatus  `json:"status"`
	Producer   string          `json:"producer"`
	CreatedAt  int64           `json:"created_at"`
	UpdatedAt  int64           `json:"updated_at"`
	Version    int             `json:"version"`
	Summary    ArtifactSummary `json:"summary"`
	Metadata   map[string]any  `json:"metadata,omitempty"`
	ContentRef string          `json:"content_ref"`
}

// ParentArtifactID returns the parent artifact id from metadata, if set.
func (a *Artifact) ParentArtifactID() string {
	if a.Metadata == nil {
		return ""
	}
	if v, ok := a.Metadata[MetaParentArtifactID].(string); ok {
		return v
	}
	return ""
}

// MergeMetadata shallow-merges src into a copy of dst. Keys in src win;
// keys absent from src are preserved. Neither input is mutated.
func MergeMetadata(dst, src map[string]any) map[string]any {
	if len(dst) == 0 && len(src) == 0 {
		return nil
	}
	merged := make(map[string]any, len(dst)+len(src))
	for k, v := range dst {
		merged[k] = v
	}
	for k, v := range src {
		merged[k] = v
	}
	return merged
}

// ArtifactSummary is a compact, type-aware digest of an artifact's
// content, cheap enough to include in agent context windows.
type ArtifactSummary struct {
	Brief         string          `json:"brief"`
	KeyPoints     []string        `json:"key_points"`
	FilesAffected []string        `json:"files_affected,omitempty"`
	Metrics       *SummaryMetrics `json:"metrics,omitempty"`
}

// SummaryMetrics carries type-dependent numeric metrics.
type SummaryMetrics struct {
	LinesOfCode int `json:"lines_of_code,omitempty"`
	IssuesFound int `json:"issues_found,omitempty"`
	TestsCount  int `json:"tests_count,omitempty"`
}
