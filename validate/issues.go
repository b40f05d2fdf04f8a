package validate

// Stable issue codes emitted by the content, schema and integrity stages.
const (
	CodeContentTooLarge    = "CONTENT_TOO_LARGE"
	CodeContentTooShort    = "CONTENT_TOO_SHORT"
	CodeContentEmpty       = "CONTENT_EMPTY"
	CodeIntegrityMismatch  = "INTEGRITY_MISMATCH"
	CodeContentCorruption  = "CONTENT_CORRUPTION"
	CodeRuleExecutionError = "RULE_EXECUTION_ERROR"
)

// Schema stage issue codes.
const (
	CodeSchemaMissingID       = "SCHEMA_MISSING_ID"
	CodeSchemaMissingProducer = "SCHEMA_MISSING_PRODUCER"
	CodeSchemaInvalidVersion  = "SCHEMA_INVALID_VERSION"
	CodeSchemaUnknownType     = "SCHEMA_UNKNOWN_TYPE"
)

// Structural check issue codes. Structural findings are advisory: they
// never block validity on their own.
const (
	CodePlanNoHeadings        = "PLAN_NO_HEADINGS"
	CodePlanNoSections        = "PLAN_NO_SECTIONS"
	CodePseudocodeNoFiles     = "PSEUDOCODE_NO_FILES"
	CodePseudocodeNoStructure = "PSEUDOCODE_NO_STRUCTURE"
	CodeCodeDoubledBraces     = "CODE_DOUBLED_BRACES"
	CodeCodeDoubledSemicolons = "CODE_DOUBLED_SEMICOLONS"
	CodeCodeTodoPresent       = "CODE_TODO_PRESENT"
	CodeReviewNoSeverity      = "REVIEW_NO_SEVERITY"
	CodeReviewNoVerdict       = "REVIEW_NO_VERDICT"
	CodeDocNoHeadings         = "DOC_NO_HEADINGS"
	CodeDocUnmatchedFences    = "DOC_UNMATCHED_FENCES"
	CodeTestNoIndicators      = "TEST_NO_INDICATORS"
	CodeTaskTooShort          = "TASK_TOO_SHORT"
	CodeErrorNoIndicators     = "ERROR_NO_INDICATORS"
)
