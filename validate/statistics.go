package validate

import (
	"sync"

	"github.com/BaSui01/artifactflow/types"
)

// Statistics tracks running validation counters. All numbers are since
// construction or the last Reset.
type Statistics struct {
	TotalValidations  int64                        `json:"total_validations"`
	PassedValidations int64                        `json:"passed_validations"`
	FailedValidations int64                        `json:"failed_validations"`
	IssuesByCode      map[string]int64             `json:"issues_by_code"`
	ErrorsByType      map[types.ArtifactType]int64 `json:"errors_by_type"`
	AverageDurationMs float64                      `json:"average_duration_ms"`
}

// statisticsTracker owns the mutable counters behind Statistics.
// Explicit instance state, not package globals.
type statisticsTracker struct {
	mu    sync.Mutex
	stats Statistics
}

func newStatisticsTracker() *statisticsTracker {
	return &statisticsTracker{stats: emptyStatistics()}
}

func emptyStatistics() Statistics {
	return Statistics{
		IssuesByCode: make(map[string]int64),
		ErrorsByType: make(map[types.ArtifactType]int64),
	}
}

// record folds one validation result into the running counters,
// maintaining a rolling average duration.
func (t *statisticsTracker) record(artifactType types.ArtifactType, result *types.ValidationResult, durationMs float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := &t.stats
	s.TotalValidations++
	if result.Valid {
		s.PassedValidations++
	} else {
		s.FailedValidations++
		s.ErrorsByType[artifactType]++
	}

	for _, issue := range result.Issues {
		s.IssuesByCode[issue.Code]++
	}

	n := float64(s.TotalValidations)
	s.AverageDurationMs += (durationMs - s.AverageDurationMs) / n
}

// snapshot returns a copy of the current counters.
func (t *statisticsTracker) snapshot() Statistics {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := t.stats
	out.IssuesByCode = make(map[string]int64, len(t.stats.IssuesByCode))
	for k, v := range t.stats.IssuesByCode {
		out.IssuesByCode[k] = v
	}
	out.ErrorsByType = make(map[types.ArtifactType]int64, len(t.stats.ErrorsByType))
	for k, v := range t.stats.ErrorsByType {
		out.ErrorsByType[k] = v
	}
	return out
}

// reset zeroes all counters.
func (t *statisticsTracker) reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats = emptyStatistics()
}
