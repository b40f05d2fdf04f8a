package validate

import "github.com/BaSui01/artifactflow/types"

// Defaults for validation options.
const (
	DefaultMaxContentSizeBytes = 10 * 1024 * 1024 // 10 MiB
	DefaultMinContentLength    = 1
	DefaultHashAlgorithm       = "sha256"
)

// ContentRule is a per-call custom check run at the end of the content
// stage. Types scopes the rule; empty means all types.
type ContentRule struct {
	Types []types.ArtifactType
	Check func(content string, artifactType types.ArtifactType) *types.ValidationIssue
}

// Options configures one validation call.
type Options struct {
	// MaxContentSizeBytes caps the content byte size. Zero means
	// DefaultMaxContentSizeBytes.
	MaxContentSizeBytes int64 `json:"max_content_size_bytes" yaml:"max_content_size_bytes"`

	// MinContentLength is the minimum content length. Zero means
	// DefaultMinContentLength.
	MinContentLength int `json:"min_content_length" yaml:"min_content_length"`

	// ValidateStructure enables the type-specific structural check.
	// Nil means enabled; use Bool(false) to switch it off.
	ValidateStructure *bool `json:"validate_structure,omitempty" yaml:"validate_structure,omitempty"`

	// Strict promotes schema findings to error severity. Nil means
	// strict; use Bool(false) for lenient schema checks.
	Strict *bool `json:"strict,omitempty" yaml:"strict,omitempty"`

	// FailFast returns after the content or schema stage as soon as an
	// error-severity issue has accumulated; integrity and custom rules
	// are skipped in that case.
	FailFast bool `json:"fail_fast" yaml:"fail_fast"`

	// ExpectedHash, when set, is compared against the recomputed
	// content hash during the integrity stage.
	ExpectedHash string `json:"expected_hash,omitempty" yaml:"expected_hash,omitempty"`

	// HashAlgorithm selects the integrity hash (sha256, sha1, md5).
	// Empty means DefaultHashAlgorithm.
	HashAlgorithm string `json:"hash_algorithm,omitempty" yaml:"hash_algorithm,omitempty"`

	// CustomRules are per-call content checks, run after the
	// structural check inside the content stage.
	CustomRules []ContentRule `json:"-" yaml:"-"`

	// IsRevalidation is passed through to registered validation rules.
	IsRevalidation bool `json:"is_revalidation" yaml:"is_revalidation"`
}

// Bool returns a pointer to b, for the tri-state Options fields.
func Bool(b bool) *bool {
	return &b
}

// DefaultOptions returns the default validation options: structural
// checks on, strict schema, no fail-fast.
func DefaultOptions() *Options {
	return &Options{
		MaxContentSizeBytes: DefaultMaxContentSizeBytes,
		MinContentLength:    DefaultMinContentLength,
		ValidateStructure:   Bool(true),
		Strict:              Bool(true),
		HashAlgorithm:       DefaultHashAlgorithm,
	}
}

// normalized returns a copy of opts with unset values replaced by
// defaults, so a partially specified Options keeps the default
// strictness and structural checking. A nil opts yields
// DefaultOptions.
func (o *Options) normalized() *Options {
	if o == nil {
		return DefaultOptions()
	}
	out := *o
	if out.MaxContentSizeBytes <= 0 {
		out.MaxContentSizeBytes = DefaultMaxContentSizeBytes
	}
	if out.MinContentLength <= 0 {
		out.MinContentLength = DefaultMinContentLength
	}
	if out.ValidateStructure == nil {
		out.ValidateStructure = Bool(true)
	}
	if out.Strict == nil {
		out.Strict = Bool(true)
	}
	if out.HashAlgorithm == "" {
		out.HashAlgorithm = DefaultHashAlgorithm
	}
	return &out
}
