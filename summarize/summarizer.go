// Copyright (c) ArtifactFlow Authors.
// Licensed under the MIT License.

package summarize

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/BaSui01/artifactflow/types"
)

// Extraction caps, identical across artifact types.
const (
	DefaultMaxBriefLength = 100
	maxKeyPointLength     = 100
	maxCodePointLength    = 80
	maxFilesAffected      = 20
)

// Summarizer generates an ArtifactSummary from raw content. It is pure
// and deterministic: no I/O, no state beyond the configured brief cap,
// and it never fails — unknown types fall back to a generic strategy.
type Summarizer struct {
	maxBriefLength int
}

// New creates a Summarizer with the given brief length cap. A
// non-positive cap falls back to DefaultMaxBriefLength.
func New(maxBriefLength int) *Summarizer {
	if maxBriefLength <= 0 {
		maxBriefLength = DefaultMaxBriefLength
	}
	return &Summarizer{maxBriefLength: maxBriefLength}
}

// GenerateSummary builds the summary for the declared artifact type.
func (s *Summarizer) GenerateSummary(artifactType types.ArtifactType, content string) types.ArtifactSummary {
	switch artifactType {
	case types.ArtifactTypeImplementationPlan:
		return s.summarizePlan(content)
	case types.ArtifactTypeDocumentation:
		return s.summarizeDocumentation(content)
	case types.ArtifactTypePseudocode:
		return s.summarizePseudocode(content)
	case types.ArtifactTypeCode:
		return s.summarizeCode(content)
	case types.ArtifactTypeReviewReport:
		return s.summarizeReview(content)
	case types.ArtifactTypeTestResults:
		return s.summarizeTestResults(content)
	case types.ArtifactTypeErrorReport:
		return s.summarizeErrorReport(content)
	default:
		// user_task and any unrecognized type share the generic strategy.
		return s.summarizeGeneric(content)
	}
}

// summarizeGeneric: first line as brief, first lines as key points,
// file-like tokens as filesAffected.
func (s *Summarizer) summarizeGeneric(content string) types.ArtifactSummary {
	return types.ArtifactSummary{
		Brief:         s.truncate(firstNonEmptyLine(content)),
		KeyPoints:     firstNonEmptyLines(content, 5),
		FilesAffected: ExtractFilePaths(content),
	}
}

func (s *Summarizer) summarizePlan(content string) types.ArtifactSummary {
	return types.ArtifactSummary{
		Brief:         s.truncate(firstNonEmptyLine(content)),
		KeyPoints:     extractHeadings(content, 5),
		FilesAffected: ExtractFilePaths(content),
		Metrics:       &types.SummaryMetrics{LinesOfCode: countLines(content)},
	}
}

func (s *Summarizer) summarizeDocumentation(content string) types.ArtifactSummary {
	return types.ArtifactSummary{
		Brief:         s.truncate(firstNonEmptyLine(content)),
		KeyPoints:     extractHeadings(content, 5),
		FilesAffected: ExtractFilePaths(content),
	}
}

func (s *Summarizer) summarizePseudocode(content string) types.ArtifactSummary {
	files := extractFileMarkers(content)
	brief := "Pseudocode structure"
	if len(files) > 0 {
		brief = fmt.Sprintf("%d files with pseudocode", len(files))
	}

	var points []string
	for _, name := range extractStructureNames(content, 10) {
		points = append(points, "Structure: "+name)
	}

	return types.ArtifactSummary{
		Brief:         s.truncate(brief),
		KeyPoints:     points,
		FilesAffected: files,
		Metrics:       &types.SummaryMetrics{LinesOfCode: countLines(content)},
	}
}

func (s *Summarizer) summarizeCode(content string) types.ArtifactSummary {
	brief := "Code implementation"
	var files []string
	if path := extractCodeFileComment(content); path != "" {
		brief = "Code for " + path
		files = []string{path}
	} else {
		files = ExtractFilePaths(content)
	}

	return types.ArtifactSummary{
		Brief:         s.truncate(brief),
		KeyPoints:     extractDeclarations(content, 10),
		FilesAffected: files,
		Metrics:       &types.SummaryMetrics{LinesOfCode: countLines(content)},
	}
}

func (s *Summarizer) summarizeReview(content string) types.ArtifactSummary {
	issues := extractIssueFragments(content)
	brief := "Review completed"
	if len(issues) > 0 {
		brief = fmt.Sprintf("%d issues found in review", len(issues))
	}

	points := issues
	if len(points) > 5 {
		points = points[:5]
	}

	return types.ArtifactSummary{
		Brief:     s.truncate(brief),
		KeyPoints: points,
		Metrics:   &types.SummaryMetrics{IssuesFound: len(issues)},
	}
}

func (s *Summarizer) summarizeTestResults(content string) types.ArtifactSummary {
	passed := extractCount(content, passedPattern)
	failed := extractCount(content, failedPattern)
	skipped := extractCount(content, skippedPattern)

	brief := fmt.Sprintf("Tests: %d passed, %d failed", passed, failed)
	if skipped > 0 {
		brief += fmt.Sprintf(", %d skipped", skipped)
	}

	return types.ArtifactSummary{
		Brief:     s.truncate(brief),
		KeyPoints: extractFailedTests(content, 5),
		Metrics:   &types.SummaryMetrics{TestsCount: passed + failed + skipped},
	}
}

func (s *Summarizer) summarizeErrorReport(content string) types.ArtifactSummary {
	return types.ArtifactSummary{
		Brief:     s.truncate(firstNonEmptyLine(content)),
		KeyPoints: extractErrorFragments(content, 5),
	}
}

// truncate caps s at the configured brief length, appending an ellipsis
// when anything was cut.
func (s *Summarizer) truncate(text string) string {
	return truncateTo(text, s.maxBriefLength)
}

func truncateTo(text string, max int) string {
	if len(text) <= max {
		return text
	}
	// Back up to a rune boundary so the cut never splits a multibyte
	// character.
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}

func countLines(content string) int {
	if content == "" {
		return 0
	}
	return strings.Count(content, "\n") + 1
}

func firstNonEmptyLine(content string) string {
	for _, line := range strings.Split(content, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func firstNonEmptyLines(content string, max int) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		out = append(out, truncateTo(trimmed, maxKeyPointLength))
		if len(out) >= max {
			break
		}
	}
	return out
}

var headingPattern = regexp.MustCompile(`^(#{1,3})\s+(.+)$`)

// extractHeadings returns up to max markdown heading texts (levels 1-3)
// with the heading markers stripped.
func extractHeadings(content string, max int) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		m := headingPattern.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		out = append(out, truncateTo(strings.TrimSpace(m[2]), maxKeyPointLength))
		if len(out) >= max {
			break
		}
	}
	return out
}

// filePathPattern matches relative, absolute and Windows paths plus bare
// name.ext tokens. Extensions start with a letter so version numbers like
// "1.2" are not picked up.
var filePathPattern = regexp.MustCompile(`(?:[A-Za-z]:[\\/]|\.{1,2}/|/)?(?:[\w.-]+[\\/])+[\w.-]+\.[A-Za-z]\w{0,4}|\b[\w-]+\.[A-Za-z]\w{0,4}\b`)

// ExtractFilePaths returns deduplicated file-like tokens, capped at
// maxFilesAffected. Exported because typed validation reuses the same
// extraction.
func ExtractFilePaths(content string) []string {
	matches := filePathPattern.FindAllString(content, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	var out []string
	for _, m := range matches {
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
		if len(out) >= maxFilesAffected {
			break
		}
	}
	return out
}

var fileMarkerPattern = regexp.MustCompile(`(?m)^\s*[Ff]ile:\s*(\S+)`)

// extractFileMarkers collects the targets of "File:" / "file:" lines.
func extractFileMarkers(content string) []string {
	matches := fileMarkerPattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	var out []string
	for _, m := range matches {
		if _, dup := seen[m[1]]; dup {
			continue
		}
		seen[m[1]] = struct{}{}
		out = append(out, m[1])
		if len(out) >= maxFilesAffected {
			break
		}
	}
	return out
}

var codeFileCommentPattern = regexp.MustCompile(`(?:^|\n)\s*(?://|/\*)\s*File:\s*(\S+?)(?:\s*\*/)?\s*(?:\n|$)`)

// extractCodeFileComment finds a "// File: path" or "/* File: path */"
// comment and returns the path, or "".
func extractCodeFileComment(content string) string {
	if m := codeFileCommentPattern.FindStringSubmatch(content); m != nil {
		return m[1]
	}
	return ""
}

var (
	funcNamePattern  = regexp.MustCompile(`\b(?:function|func|def)\s+([A-Za-z_]\w*)`)
	classNamePattern = regexp.MustCompile(`\b(?:class|interface)\s+([A-Za-z_]\w*)`)
)

// extractStructureNames returns up to max declared function/class names
// in order of appearance.
func extractStructureNames(content string, max int) []string {
	type hit struct {
		pos  int
		name string
	}
	var hits []hit
	for _, p := range []*regexp.Regexp{funcNamePattern, classNamePattern} {
		for _, m := range p.FindAllStringSubmatchIndex(content, -1) {
			hits = append(hits, hit{pos: m[0], name: content[m[2]:m[3]]})
		}
	}
	// In-order, deduplicated by name.
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j-1].pos > hits[j].pos; j-- {
			hits[j-1], hits[j] = hits[j], hits[j-1]
		}
	}
	seen := make(map[string]struct{}, len(hits))
	var out []string
	for _, h := range hits {
		if _, dup := seen[h.name]; dup {
			continue
		}
		seen[h.name] = struct{}{}
		out = append(out, h.name)
		if len(out) >= max {
			break
		}
	}
	return out
}

var declarationPattern = regexp.MustCompile(`^\s*(?:export\s+)?(?:async\s+)?(?:(?:function|func|def|class|interface)\s+\w+.*|const\s+\w+\s*=\s*(?:async\s*)?\(.*)$`)

// extractDeclarations returns up to max function/class/const-arrow
// declaration fragments, each truncated to 80 chars.
func extractDeclarations(content string, max int) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		if !declarationPattern.MatchString(line) {
			continue
		}
		out = append(out, truncateTo(strings.TrimSpace(line), maxCodePointLength))
		if len(out) >= max {
			break
		}
	}
	return out
}

var (
	issueLinePattern    = regexp.MustCompile(`(?i)\bissue:\s*(.+)`)
	numberedItemPattern = regexp.MustCompile(`^\s*\d+\.\s+(.+)$`)
	issueHeadingPattern = regexp.MustCompile(`^###\s+Issue\b[:\s]*(.*)$`)
)

// extractIssueFragments collects issue description fragments from review
// content: "issue:" lines, numbered list items, and "### Issue" headings.
func extractIssueFragments(content string) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		var text string
		switch {
		case issueLinePattern.MatchString(line):
			text = issueLinePattern.FindStringSubmatch(line)[1]
		case issueHeadingPattern.MatchString(strings.TrimSpace(line)):
			text = issueHeadingPattern.FindStringSubmatch(strings.TrimSpace(line))[1]
			if text == "" {
				text = strings.TrimSpace(line)
			}
		case numberedItemPattern.MatchString(line):
			text = numberedItemPattern.FindStringSubmatch(line)[1]
		default:
			continue
		}
		out = append(out, truncateTo(strings.TrimSpace(text), maxKeyPointLength))
	}
	return out
}

var (
	passedPattern  = regexp.MustCompile(`(?i)(\d+)\s+passed`)
	failedPattern  = regexp.MustCompile(`(?i)(\d+)\s+failed`)
	skippedPattern = regexp.MustCompile(`(?i)(\d+)\s+skipped`)

	failedTestPattern = regexp.MustCompile(`(?i)^\s*(?:✗|✘|x\s|FAIL[:\s]+|failed[:\s]+)\s*(.+)$`)
)

func extractCount(content string, pattern *regexp.Regexp) int {
	if m := pattern.FindStringSubmatch(content); m != nil {
		var n int
		fmt.Sscanf(m[1], "%d", &n)
		return n
	}
	return 0
}

// extractFailedTests returns up to max failed-test name fragments.
func extractFailedTests(content string, max int) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		m := failedTestPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		out = append(out, truncateTo(strings.TrimSpace(m[1]), maxKeyPointLength))
		if len(out) >= max {
			break
		}
	}
	return out
}

// TestCounts extracts the passed/failed/skipped counts from test result
// content. Absent counts default to 0.
func TestCounts(content string) (passed, failed, skipped int) {
	return extractCount(content, passedPattern),
		extractCount(content, failedPattern),
		extractCount(content, skippedPattern)
}

// CountIssueMarkers counts the issue markers in review content.
func CountIssueMarkers(content string) int {
	return len(extractIssueFragments(content))
}

var (
	errorLinePattern  = regexp.MustCompile(`(?i)\berror:\s*.+`)
	stackFramePattern = regexp.MustCompile(`^\s+at\s+\S+`)
)

// extractErrorFragments returns up to max "Error:" lines and stack frame
// fragments from an error report.
func extractErrorFragments(content string, max int) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		if !errorLinePattern.MatchString(line) && !stackFramePattern.MatchString(line) {
			continue
		}
		out = append(out, truncateTo(strings.TrimSpace(line), maxKeyPointLength))
		if len(out) >= max {
			break
		}
	}
	return out
}
