package validate

import (
	"fmt"
	"sort"

	"github.com/BaSui01/artifactflow/types"
)

// RuleInput is the context handed to a registered validation rule.
type RuleInput struct {
	Artifact       *types.Artifact
	Content        string
	Options        *Options
	IsRevalidation bool
}

// Rule is a pluggable, priority-ordered, type-scoped check executed
// during the custom-rules stage. Rules are advisory or blocking
// depending on the severity of the issues they return, but a rule that
// fails to execute never blocks: its failure is downgraded to a
// warning.
type Rule struct {
	// ID uniquely identifies the rule for removal.
	ID string

	// Name is a human-readable label used in failure messages.
	Name string

	// Priority orders execution; higher runs first.
	Priority int

	// Enabled gates execution without unregistering the rule.
	Enabled bool

	// AppliesTo scopes the rule to artifact types. Empty means all.
	AppliesTo []types.ArtifactType

	// Check inspects the artifact and returns an issue, or nil when the
	// rule passes. A returned error (or panic) is isolated and reported
	// as a RULE_EXECUTION_ERROR warning.
	Check func(input RuleInput) (*types.ValidationIssue, error)
}

// appliesTo reports whether the rule covers the given artifact type.
func (r *Rule) appliesTo(artifactType types.ArtifactType) bool {
	if len(r.AppliesTo) == 0 {
		return true
	}
	for _, t := range r.AppliesTo {
		if t == artifactType {
			return true
		}
	}
	return false
}

// sortRules orders rules by descending priority, stable for equal
// priorities.
func sortRules(rules []*Rule) {
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority > rules[j].Priority
	})
}

// runRule executes one rule, converting a panic or returned error into
// a warning-severity RULE_EXECUTION_ERROR issue. The engine never
// aborts on a bad rule.
func runRule(rule *Rule, input RuleInput) (issue *types.ValidationIssue) {
	defer func() {
		if r := recover(); r != nil {
			issue = &types.ValidationIssue{
				Code:     CodeRuleExecutionError,
				Message:  fmt.Sprintf("rule %q panicked: %v", rule.Name, r),
				Severity: types.SeverityWarning,
			}
		}
	}()

	result, err := rule.Check(input)
	if err != nil {
		return &types.ValidationIssue{
			Code:     CodeRuleExecutionError,
			Message:  fmt.Sprintf("rule %q failed: %v", rule.Name, err),
			Severity: types.SeverityWarning,
		}
	}
	return result
}
