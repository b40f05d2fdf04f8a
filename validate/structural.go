package validate

import (
	"regexp"
	"strings"

	"github.com/BaSui01/artifactflow/types"
)

var (
	headingPattern      = regexp.MustCompile(`(?m)^#{1,6}\s+\S`)
	sectionKeywords     = regexp.MustCompile(`(?i)\b(overview|implementation|steps|approach)\b`)
	fileRefPattern      = regexp.MustCompile(`(?i)\bfile:`)
	codeTokenPattern    = regexp.MustCompile(`[{}]|\b(function|class|interface)\b`)
	doubledBracePattern = regexp.MustCompile(`\{\{|\}\}`)
	doubledSemiPattern  = regexp.MustCompile(`;;`)
	todoPattern         = regexp.MustCompile(`\b(TODO|FIXME)\b`)
	severityKeyword     = regexp.MustCompile(`(?i)\b(critical|major|minor|high|medium|low|severity)\b`)
	verdictKeyword      = regexp.MustCompile(`(?i)\b(approved|rejected|needs[- ]revision)\b`)
	testIndicator       = regexp.MustCompile(`(?i)\b(pass|fail)\b|✓|✗`)
	errorIndicator      = regexp.MustCompile(`(?i)\b(error|exception|stack)\b`)
)

// structuralIssues runs the type-specific structural check. All findings
// are advisory (warning or info) and never block validity on their own.
func structuralIssues(artifactType types.ArtifactType, content string) []types.ValidationIssue {
	var issues []types.ValidationIssue

	add := func(code, message string, severity types.Severity) {
		issues = append(issues, types.ValidationIssue{
			Code:     code,
			Message:  message,
			Severity: severity,
		})
	}

	switch artifactType {
	case types.ArtifactTypeImplementationPlan:
		if !headingPattern.MatchString(content) {
			add(CodePlanNoHeadings, "implementation plan has no markdown headings", types.SeverityWarning)
		}
		if !sectionKeywords.MatchString(content) {
			add(CodePlanNoSections, "implementation plan has no recognized section (overview/implementation/steps/approach)", types.SeverityInfo)
		}

	case types.ArtifactTypePseudocode:
		if !fileRefPattern.MatchString(content) {
			add(CodePseudocodeNoFiles, "pseudocode has no file: reference", types.SeverityWarning)
		}
		if !codeTokenPattern.MatchString(content) {
			add(CodePseudocodeNoStructure, "pseudocode has no code-like tokens", types.SeverityInfo)
		}

	case types.ArtifactTypeCode:
		if doubledBracePattern.MatchString(content) {
			add(CodeCodeDoubledBraces, "code contains doubled braces", types.SeverityWarning)
		}
		if doubledSemiPattern.MatchString(content) {
			add(CodeCodeDoubledSemicolons, "code contains doubled semicolons", types.SeverityWarning)
		}
		if todoPattern.MatchString(content) {
			add(CodeCodeTodoPresent, "code contains TODO or FIXME markers", types.SeverityInfo)
		}

	case types.ArtifactTypeReviewReport:
		if !severityKeyword.MatchString(content) {
			add(CodeReviewNoSeverity, "review report has no severity keyword", types.SeverityInfo)
		}
		if !verdictKeyword.MatchString(content) {
			add(CodeReviewNoVerdict, "review report has no verdict (approved/rejected/needs revision)", types.SeverityWarning)
		}

	case types.ArtifactTypeDocumentation:
		if !headingPattern.MatchString(content) {
			add(CodeDocNoHeadings, "documentation has no headings", types.SeverityInfo)
		}
		if strings.Count(content, "```")%2 != 0 {
			add(CodeDocUnmatchedFences, "documentation has an unmatched code fence", types.SeverityWarning)
		}

	case types.ArtifactTypeTestResults:
		if !testIndicator.MatchString(content) {
			add(CodeTestNoIndicators, "test results contain no pass/fail indicators", types.SeverityWarning)
		}

	case types.ArtifactTypeUserTask:
		if len(strings.TrimSpace(content)) < 10 {
			add(CodeTaskTooShort, "user task description is shorter than 10 characters", types.SeverityWarning)
		}

	case types.ArtifactTypeErrorReport:
		if !errorIndicator.MatchString(content) {
			add(CodeErrorNoIndicators, "error report has no error/exception/stack indicator", types.SeverityInfo)
		}
	}

	return issues
}
