package artifactflow

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/artifactflow/config"
	"github.com/BaSui01/artifactflow/storage"
	"github.com/BaSui01/artifactflow/store"
	"github.com/BaSui01/artifactflow/types"
)

// TestNew tests end-to-end assembly from configuration
func TestNew(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Storage.RootDir = t.TempDir()
	cfg.Log.Level = "error"

	st, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	artifact, err := st.StoreArtifact(ctx, store.StoreArtifactOptions{
		Type:     types.ArtifactTypeUserTask,
		Producer: "user",
		Content:  "wire everything together",
	})
	require.NoError(t, err)

	content, err := st.LoadArtifactContent(ctx, artifact.ID)
	require.NoError(t, err)
	assert.Equal(t, "wire everything together", content)
}

// TestNewRejectsInvalidConfig tests that config validation gates assembly
func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Cache.Backend = "bogus"

	_, err := New(context.Background(), cfg)
	require.Error(t, err)
}

// TestNewAppliesValidationConfig tests that configured validator limits
// reach the assembled store
func TestNewAppliesValidationConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Storage.RootDir = t.TempDir()
	cfg.Log.Level = "error"
	cfg.Validation.MaxContentSizeBytes = 8

	st, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer st.Close()
	ctx := context.Background()

	_, err = st.StoreValidatedArtifact(ctx, store.StoreArtifactOptions{
		Type:     types.ArtifactTypeCode,
		Producer: "coder_agent",
		Content:  strings.Repeat("x", 1000),
	}, nil)
	require.Error(t, err)
	assert.Equal(t, types.ErrValidationFailed, types.GetErrorCode(err))
	assert.Empty(t, st.GetArtifactsByType(types.ArtifactTypeCode),
		"rejected artifact must not be persisted")

	_, err = st.StoreValidatedArtifact(ctx, store.StoreArtifactOptions{
		Type:     types.ArtifactTypeCode,
		Producer: "coder_agent",
		Content:  "x = 1",
	}, nil)
	require.NoError(t, err)
}

// TestNewAppliesArchiveConfig tests that the configured archive age is
// the default cutoff for archive batches
func TestNewAppliesArchiveConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Storage.RootDir = t.TempDir()
	cfg.Log.Level = "error"

	st, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer st.Close()
	ctx := context.Background()

	a, err := st.StoreArtifact(ctx, store.StoreArtifactOptions{
		Type: types.ArtifactTypeCode, Producer: "coder_agent", Content: "fresh",
	})
	require.NoError(t, err)
	_, err = st.UpdateStatus(ctx, a.ID, types.StatusCompleted)
	require.NoError(t, err)

	result, err := st.ArchiveOldArtifacts(ctx, storage.ArchiveOptions{})
	require.NoError(t, err)
	assert.Zero(t, result.ArchivedCount,
		"fresh artifacts stay inside the configured archive age")
}

// TestNewFromFile tests the yaml entry point
func TestNewFromFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	yaml := "storage:\n  root_dir: " + filepath.Join(dir, "data") + "\nlog:\n  level: error\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(yaml), 0644))

	st, err := NewFromFile(context.Background(), cfgPath)
	require.NoError(t, err)
	defer st.Close()

	assert.NotNil(t, st.Validator())
}
