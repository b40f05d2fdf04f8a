package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/BaSui01/artifactflow/types"
)

// TestProperty_HashDeterminism 同一内容与算法的哈希结果必须恒定，
// 且不同内容几乎必然得到不同哈希。
func TestProperty_HashDeterminism(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		content := rapid.String().Draw(rt, "content")
		algorithm := rapid.SampledFrom([]string{"sha256", "sha1", "md5"}).Draw(rt, "algorithm")

		first := ComputeContentHash(content, algorithm)
		second := ComputeContentHash(content, algorithm)
		assert.Equal(rt, first, second, "hashing must be deterministic")

		// 哈希输出总是小写十六进制
		assert.Regexp(rt, `^[0-9a-f]+$`, first)

		other := rapid.String().Draw(rt, "other")
		if other != content {
			assert.NotEqual(rt, ComputeContentHash(other, algorithm), first,
				"distinct content should not collide")
		}
	})
}

// TestProperty_ValidationIdempotent 对任意产物与内容，重复校验
// 必须得到相同的判定与相同的问题码序列。
func TestProperty_ValidationIdempotent(t *testing.T) {
	v := NewValidator(nil, nil)

	rapid.Check(t, func(rt *rapid.T) {
		artifact := &types.Artifact{
			ID:       rapid.StringMatching(`[a-z]{1,8}_\d{1,13}_[0-9a-f]{8}`).Draw(rt, "id"),
			Type:     rapid.SampledFrom(types.AllArtifactTypes()).Draw(rt, "type"),
			Producer: rapid.StringMatching(`[a-z_]{0,12}`).Draw(rt, "producer"),
			Version:  rapid.IntRange(0, 3).Draw(rt, "version"),
		}
		content := rapid.String().Draw(rt, "content")

		first := v.ValidateArtifact(artifact, content, nil)
		second := v.ValidateArtifact(artifact, content, nil)

		require.Equal(rt, first.Valid, second.Valid)
		require.Equal(rt, len(first.Issues), len(second.Issues))
		for i := range first.Issues {
			assert.Equal(rt, first.Issues[i].Code, second.Issues[i].Code)
			assert.Equal(rt, first.Issues[i].Severity, second.Issues[i].Severity)
		}
	})
}

// TestProperty_StructuralAdvisoryOnly 结构性检查永远不单独导致无效：
// 任何仅含结构性发现的结果必须保持 Valid。
func TestProperty_StructuralAdvisoryOnly(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		typ := rapid.SampledFrom(types.AllArtifactTypes()).Draw(rt, "type")
		content := rapid.String().Draw(rt, "content")

		for _, issue := range structuralIssues(typ, content) {
			assert.NotEqual(rt, types.SeverityError, issue.Severity,
				"structural issue %s must be advisory", issue.Code)
		}
	})
}
