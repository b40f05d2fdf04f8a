// Copyright (c) ArtifactFlow Authors.
// Licensed under the MIT License.

package validate

import (
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/artifactflow/internal/metrics"
	"github.com/BaSui01/artifactflow/summarize"
	"github.com/BaSui01/artifactflow/types"
)

// EventType identifies a validation lifecycle event.
type EventType string

const (
	EventValidationStarted   EventType = "validation:started"
	EventValidationCompleted EventType = "validation:completed"
	EventValidationFailed    EventType = "validation:failed"
)

// Event is delivered to registered listeners. Result is nil for
// EventValidationStarted and carries the full result for the terminal
// events.
type Event struct {
	Type       EventType
	ArtifactID string
	Result     *types.ValidationResult
}

// EventListener receives validation lifecycle events. Listeners run
// synchronously on the validating goroutine and must be fast.
type EventListener func(Event)

// Validator runs the staged validation pipeline and owns the rule
// registry, running statistics and event listeners. Safe for concurrent
// use across artifacts.
type Validator struct {
	mu        sync.RWMutex
	rules     []*Rule
	listeners []EventListener
	defaults  *Options

	stats     *statisticsTracker
	logger    *zap.Logger
	collector *metrics.Collector
	now       func() time.Time
}

// NewValidator creates a Validator. Both logger and collector may be
// nil.
func NewValidator(logger *zap.Logger, collector *metrics.Collector) *Validator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Validator{
		stats:     newStatisticsTracker(),
		logger:    logger.With(zap.String("component", "artifact_validator")),
		collector: collector,
		now:       time.Now,
	}
}

// SetDefaultOptions replaces the options applied when a caller passes
// nil, typically from the validation config section. A nil value
// restores DefaultOptions.
func (v *Validator) SetDefaultOptions(opts *Options) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.defaults = opts
}

// normalize resolves nil per-call options against the configured
// defaults before the usual zero-value normalization.
func (v *Validator) normalize(opts *Options) *Options {
	if opts == nil {
		v.mu.RLock()
		opts = v.defaults
		v.mu.RUnlock()
	}
	return opts.normalized()
}

// OnEvent registers a lifecycle event listener.
func (v *Validator) OnEvent(listener EventListener) {
	if listener == nil {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.listeners = append(v.listeners, listener)
}

func (v *Validator) emit(event Event) {
	v.mu.RLock()
	listeners := make([]EventListener, len(v.listeners))
	copy(listeners, v.listeners)
	v.mu.RUnlock()

	for _, listener := range listeners {
		listener(event)
	}
}

// AddValidationRule registers a rule; the registry is re-sorted by
// descending priority on every insertion.
func (v *Validator) AddValidationRule(rule *Rule) error {
	if rule == nil || rule.ID == "" || rule.Check == nil {
		return types.NewError(types.ErrInvalidArgument, "validation rule requires an id and a check")
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	v.rules = append(v.rules, rule)
	sortRules(v.rules)

	v.logger.Debug("validation rule added",
		zap.String("rule_id", rule.ID),
		zap.Int("priority", rule.Priority),
	)
	return nil
}

// RemoveValidationRule unregisters a rule by id. Returns false when no
// such rule exists.
func (v *Validator) RemoveValidationRule(id string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	for i, rule := range v.rules {
		if rule.ID == id {
			v.rules = append(v.rules[:i], v.rules[i+1:]...)
			return true
		}
	}
	return false
}

// ValidateArtifact runs the full pipeline: content → schema →
// integrity → custom rules. With FailFast, the pipeline returns right
// after the content or schema stage once an error-severity issue has
// accumulated; integrity and custom rules are then skipped.
func (v *Validator) ValidateArtifact(artifact *types.Artifact, content string, opts *Options) *types.ValidationResult {
	opts = v.normalize(opts)
	started := v.now()

	artifactID := ""
	artifactType := types.ArtifactType("")
	if artifact != nil {
		artifactID = artifact.ID
		artifactType = artifact.Type
	}

	v.emit(Event{Type: EventValidationStarted, ArtifactID: artifactID})

	issues := v.ValidateContent(content, artifactType, opts)
	if opts.FailFast && hasError(issues) {
		return v.finalize(artifact, issues, started)
	}

	issues = append(issues, v.ValidateSchema(artifact, opts)...)
	if opts.FailFast && hasError(issues) {
		return v.finalize(artifact, issues, started)
	}

	issues = append(issues, v.ValidateIntegrity(content, opts)...)
	issues = append(issues, v.runRules(artifact, content, opts)...)

	return v.finalize(artifact, issues, started)
}

// ValidateContent is stage 1: size, length and blankness checks, then
// the type-specific structural check, then any per-call custom rules.
func (v *Validator) ValidateContent(content string, artifactType types.ArtifactType, opts *Options) []types.ValidationIssue {
	opts = v.normalize(opts)
	var issues []types.ValidationIssue

	if int64(len(content)) > opts.MaxContentSizeBytes {
		issues = append(issues, types.ValidationIssue{
			Code:     CodeContentTooLarge,
			Message:  "content exceeds the maximum allowed size",
			Severity: types.SeverityError,
		})
	}

	if len(content) < opts.MinContentLength {
		issues = append(issues, types.ValidationIssue{
			Code:     CodeContentTooShort,
			Message:  "content is shorter than the minimum length",
			Severity: types.SeverityError,
		})
	}

	if strings.TrimSpace(content) == "" {
		issues = append(issues, types.ValidationIssue{
			Code:     CodeContentEmpty,
			Message:  "content is empty or blank",
			Severity: types.SeverityError,
		})
	}

	if *opts.ValidateStructure {
		issues = append(issues, structuralIssues(artifactType, content)...)
	}

	for _, rule := range opts.CustomRules {
		if len(rule.Types) > 0 && !containsType(rule.Types, artifactType) {
			continue
		}
		if rule.Check == nil {
			continue
		}
		if issue := rule.Check(content, artifactType); issue != nil {
			issues = append(issues, *issue)
		}
	}

	return issues
}

// ValidateSchema is stage 2: field-level assertions on the artifact
// record itself. In strict mode findings are errors, otherwise
// warnings.
func (v *Validator) ValidateSchema(artifact *types.Artifact, opts *Options) []types.ValidationIssue {
	opts = v.normalize(opts)

	severity := types.SeverityWarning
	if *opts.Strict {
		severity = types.SeverityError
	}

	var issues []types.ValidationIssue
	if artifact == nil {
		return []types.ValidationIssue{{
			Code:     CodeSchemaMissingID,
			Message:  "artifact record is missing",
			Severity: severity,
		}}
	}

	if strings.TrimSpace(artifact.ID) == "" {
		issues = append(issues, types.ValidationIssue{
			Code:     CodeSchemaMissingID,
			Message:  "artifact id must not be empty",
			Severity: severity,
		})
	}

	if strings.TrimSpace(artifact.Producer) == "" {
		issues = append(issues, types.ValidationIssue{
			Code:     CodeSchemaMissingProducer,
			Message:  "artifact producer must not be empty",
			Severity: severity,
		})
	}

	if artifact.Version < 1 {
		issues = append(issues, types.ValidationIssue{
			Code:     CodeSchemaInvalidVersion,
			Message:  "artifact version must be >= 1",
			Severity: severity,
		})
	}

	if !artifact.Type.IsValid() {
		issues = append(issues, types.ValidationIssue{
			Code:     CodeSchemaUnknownType,
			Message:  "artifact type is not a known type",
			Severity: types.SeverityWarning,
		})
	}

	return issues
}

// ValidateIntegrity is stage 3: recompute the content hash and compare
// against ExpectedHash when supplied; independently scan for corruption
// markers, which runs regardless of whether a hash was supplied.
func (v *Validator) ValidateIntegrity(content string, opts *Options) []types.ValidationIssue {
	opts = v.normalize(opts)
	var issues []types.ValidationIssue

	if opts.ExpectedHash != "" {
		actual := ComputeContentHash(content, opts.HashAlgorithm)
		if actual != opts.ExpectedHash {
			issues = append(issues, types.ValidationIssue{
				Code:     CodeIntegrityMismatch,
				Message:  "content hash does not match the expected hash",
				Severity: types.SeverityError,
				Context: map[string]any{
					"expected": opts.ExpectedHash,
					"actual":   actual,
				},
			})
		}
	}

	if strings.ContainsRune(content, '�') || strings.ContainsRune(content, '\x00') {
		issues = append(issues, types.ValidationIssue{
			Code:     CodeContentCorruption,
			Message:  "content contains corruption markers (replacement character or NUL byte)",
			Severity: types.SeverityWarning,
		})
	}

	return issues
}

// runRules is stage 4: every enabled, type-applicable registered rule,
// highest priority first. Rule failures are isolated; rules never
// participate in the fail-fast short-circuit.
func (v *Validator) runRules(artifact *types.Artifact, content string, opts *Options) []types.ValidationIssue {
	v.mu.RLock()
	rules := make([]*Rule, len(v.rules))
	copy(rules, v.rules)
	v.mu.RUnlock()

	artifactType := types.ArtifactType("")
	if artifact != nil {
		artifactType = artifact.Type
	}

	input := RuleInput{
		Artifact:       artifact,
		Content:        content,
		Options:        opts,
		IsRevalidation: opts.IsRevalidation,
	}

	var issues []types.ValidationIssue
	for _, rule := range rules {
		if !rule.Enabled || !rule.appliesTo(artifactType) {
			continue
		}
		if issue := runRule(rule, input); issue != nil {
			issues = append(issues, *issue)
		}
	}
	return issues
}

// finalize assembles the result, updates statistics and metrics, and
// emits the terminal event.
func (v *Validator) finalize(artifact *types.Artifact, issues []types.ValidationIssue, started time.Time) *types.ValidationResult {
	artifactID := ""
	artifactType := types.ArtifactType("")
	if artifact != nil {
		artifactID = artifact.ID
		artifactType = artifact.Type
	}

	result := &types.ValidationResult{
		Valid:      !hasError(issues),
		Issues:     issues,
		ArtifactID: artifactID,
		Timestamp:  v.now().UnixMilli(),
	}

	duration := v.now().Sub(started)
	v.stats.record(artifactType, result, float64(duration.Microseconds())/1000.0)

	if v.collector != nil {
		v.collector.RecordValidation(string(artifactType), result.Valid, duration.Seconds())
		for _, issue := range issues {
			v.collector.RecordValidationIssue(issue.Code, string(issue.Severity))
		}
	}

	if result.Valid {
		v.emit(Event{Type: EventValidationCompleted, ArtifactID: artifactID, Result: result})
	} else {
		v.logger.Debug("artifact validation failed",
			zap.String("id", artifactID),
			zap.String("type", string(artifactType)),
			zap.Int("issues", len(issues)),
		)
		v.emit(Event{Type: EventValidationFailed, ArtifactID: artifactID, Result: result})
	}

	return result
}

// IsValid is a boolean wrapper around ValidateArtifact.
func (v *Validator) IsValid(artifact *types.Artifact, content string, opts *Options) bool {
	return v.ValidateArtifact(artifact, content, opts).Valid
}

// ValidateBeforeDownstream is the gate downstream agents must pass
// before consuming an artifact: it returns a single aggregated error
// joining all error-severity messages with "; " when validation fails.
func (v *Validator) ValidateBeforeDownstream(artifact *types.Artifact, content string) error {
	result := v.ValidateArtifact(artifact, content, nil)
	if result.Valid {
		return nil
	}

	id := ""
	if artifact != nil {
		id = artifact.ID
	}
	return types.NewError(types.ErrValidationFailed, result.ErrorSummary()).WithArtifactID(id)
}

// TypedValidation carries the structural findings plus lightweight
// metadata extracted for the artifact type.
type TypedValidation struct {
	Issues        []types.ValidationIssue `json:"issues"`
	FilesAffected []string                `json:"files_affected,omitempty"`
	TestsPassed   int                     `json:"tests_passed,omitempty"`
	TestsFailed   int                     `json:"tests_failed,omitempty"`
	TestsSkipped  int                     `json:"tests_skipped,omitempty"`
	IssuesFound   int                     `json:"issues_found,omitempty"`
}

// GetTypedValidation runs only the structural check plus lightweight
// metadata extraction: file lists for code, pass/fail counts for test
// results, issue counts for review reports.
func (v *Validator) GetTypedValidation(artifactType types.ArtifactType, content string) TypedValidation {
	out := TypedValidation{Issues: structuralIssues(artifactType, content)}

	switch artifactType {
	case types.ArtifactTypeCode:
		out.FilesAffected = summarize.ExtractFilePaths(content)
	case types.ArtifactTypeTestResults:
		out.TestsPassed, out.TestsFailed, out.TestsSkipped = summarize.TestCounts(content)
	case types.ArtifactTypeReviewReport:
		out.IssuesFound = summarize.CountIssueMarkers(content)
	}

	return out
}

// GetStatistics returns a snapshot of the running counters.
func (v *Validator) GetStatistics() Statistics {
	return v.stats.snapshot()
}

// ResetStatistics zeroes the running counters.
func (v *Validator) ResetStatistics() {
	v.stats.reset()
}

func hasError(issues []types.ValidationIssue) bool {
	for _, issue := range issues {
		if issue.Severity == types.SeverityError {
			return true
		}
	}
	return false
}

func containsType(set []types.ArtifactType, t types.ArtifactType) bool {
	for _, candidate := range set {
		if candidate == t {
			return true
		}
	}
	return false
}
