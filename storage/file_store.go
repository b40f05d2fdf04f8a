package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/artifactflow/types"
)

const (
	contentDirName  = "content"
	metadataDirName = "metadata"
	archiveDirName  = "archive"

	metadataExt = ".json"
	contentExt  = ".content"
)

// FileStore 是基于本地文件系统的 Store 实现。
// 适合单节点部署：metadata/{id}.json 存放元数据，content/{id}.content
// 存放原始内容，archive/ 存放已归档产物。
type FileStore struct {
	root        string
	contentDir  string
	metadataDir string
	archiveDir  string
	logger      *zap.Logger
	now         func() time.Time
}

// NewFileStore 创建文件存储并幂等地初始化目录结构。
func NewFileStore(root string, logger *zap.Logger) (*FileStore, error) {
	if root == "" {
		return nil, fmt.Errorf("storage root: %w", ErrInvalidInput)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &FileStore{
		root:        root,
		contentDir:  filepath.Join(root, contentDirName),
		metadataDir: filepath.Join(root, metadataDirName),
		archiveDir:  filepath.Join(root, archiveDirName),
		logger:      logger.With(zap.String("component", "artifact_storage")),
		now:         time.Now,
	}

	for _, dir := range []string{root, s.contentDir, s.metadataDir, s.archiveDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory %s: %w", dir, err)
		}
	}

	return s, nil
}

// SaveMetadata 将产物元数据以带缩进的 JSON 全量覆盖写入。
func (s *FileStore) SaveMetadata(ctx context.Context, artifact *types.Artifact) error {
	if artifact == nil || artifact.ID == "" {
		return ErrInvalidInput
	}

	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal artifact metadata: %w", err)
	}

	path := s.metadataPath(artifact.ID)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write metadata %s: %w", path, err)
	}

	return nil
}

// SaveContent 写入原始内容并返回定位符、SHA-256 与字节数。
// 同一 id 的内容写入同一文件（覆盖而非追加）。
func (s *FileStore) SaveContent(ctx context.Context, id, content string) (ContentInfo, error) {
	if id == "" {
		return ContentInfo{}, ErrInvalidInput
	}

	contentRef := id + contentExt
	path := filepath.Join(s.contentDir, contentRef)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return ContentInfo{}, fmt.Errorf("failed to write content %s: %w", path, err)
	}

	hash := sha256.Sum256([]byte(content))
	return ContentInfo{
		ContentRef: contentRef,
		Hash:       hex.EncodeToString(hash[:]),
		Size:       int64(len(content)),
	}, nil
}

// LoadMetadata 读取元数据；文件不存在返回 ErrNotFound，其余 I/O 错误原样上抛。
func (s *FileStore) LoadMetadata(ctx context.Context, id string) (*types.Artifact, error) {
	data, err := os.ReadFile(s.metadataPath(id))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata for %s: %w", id, err)
	}

	var artifact types.Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("failed to parse metadata for %s: %w", id, err)
	}

	return &artifact, nil
}

// LoadContent 按定位符读取内容，not-found 语义与 LoadMetadata 一致。
func (s *FileStore) LoadContent(ctx context.Context, contentRef string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.contentDir, contentRef))
	if os.IsNotExist(err) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read content %s: %w", contentRef, err)
	}

	return string(data), nil
}

// Delete 删除元数据与内容文件；单个文件缺失忽略，其余错误上抛。
func (s *FileStore) Delete(ctx context.Context, artifact *types.Artifact) error {
	if artifact == nil || artifact.ID == "" {
		return ErrInvalidInput
	}

	if err := os.Remove(s.metadataPath(artifact.ID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete metadata for %s: %w", artifact.ID, err)
	}

	if artifact.ContentRef != "" {
		path := filepath.Join(s.contentDir, artifact.ContentRef)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete content for %s: %w", artifact.ID, err)
		}
	}

	return nil
}

// ArchiveOldArtifacts 将候选集中 updated_at 早于截止时间且状态在
// 允许列表内的产物移入归档目录。逐个处理：单个产物失败只记录日志并
// 跳过，不中断整个批次。
func (s *FileStore) ArchiveOldArtifacts(ctx context.Context, artifacts []*types.Artifact, opts ArchiveOptions) (ArchiveResult, error) {
	statuses := opts.Statuses
	if len(statuses) == 0 {
		statuses = DefaultArchivableStatuses()
	}
	allowed := make(map[types.ArtifactStatus]struct{}, len(statuses))
	for _, st := range statuses {
		allowed[st] = struct{}{}
	}

	cutoff := s.now().Add(-opts.OlderThan).UnixMilli()
	result := ArchiveResult{ArchivedIDs: []string{}}

	for _, artifact := range artifacts {
		if artifact.UpdatedAt >= cutoff {
			continue
		}
		if _, ok := allowed[artifact.Status]; !ok {
			continue
		}

		if err := s.archiveOne(artifact); err != nil {
			// 部分失败:记录并跳过,继续处理批次其余部分
			s.logger.Warn("failed to archive artifact",
				zap.String("id", artifact.ID),
				zap.Error(err),
			)
			continue
		}

		result.ArchivedCount++
		result.ArchivedIDs = append(result.ArchivedIDs, artifact.ID)
	}

	if result.ArchivedCount > 0 {
		s.logger.Info("archived artifacts",
			zap.Int("count", result.ArchivedCount),
			zap.Duration("older_than", opts.OlderThan),
		)
	}

	return result, nil
}

// archiveOne 移动单个产物的内容与元数据文件。内容文件缺失不算失败：
// 元数据仍然归档。
func (s *FileStore) archiveOne(artifact *types.Artifact) error {
	if artifact.ContentRef != "" {
		src := filepath.Join(s.contentDir, artifact.ContentRef)
		dst := filepath.Join(s.archiveDir, artifact.ContentRef)
		if err := os.Rename(src, dst); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to move content: %w", err)
		}
	}

	src := s.metadataPath(artifact.ID)
	dst := filepath.Join(s.archiveDir, artifact.ID+metadataExt)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("failed to move metadata: %w", err)
	}

	return nil
}

// LoadAllMetadata 枚举 metadata/ 下的全部 *.json 并解析。
// 解析失败的文件记录日志后跳过，用于启动时重建索引与全量扫描。
func (s *FileStore) LoadAllMetadata(ctx context.Context) ([]*types.Artifact, error) {
	entries, err := os.ReadDir(s.metadataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list metadata directory: %w", err)
	}

	artifacts := make([]*types.Artifact, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), metadataExt) {
			continue
		}

		id := strings.TrimSuffix(entry.Name(), metadataExt)
		artifact, err := s.LoadMetadata(ctx, id)
		if err != nil {
			s.logger.Warn("skipping unreadable metadata file",
				zap.String("file", entry.Name()),
				zap.Error(err),
			)
			continue
		}
		artifacts = append(artifacts, artifact)
	}

	return artifacts, nil
}

// GetStorageStats 返回产物总数、内容总字节数(尽力而为,缺失文件计 0)
// 与最早/最新的创建时间。
func (s *FileStore) GetStorageStats(ctx context.Context) (*Stats, error) {
	artifacts, err := s.LoadAllMetadata(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{TotalArtifacts: len(artifacts)}
	for _, artifact := range artifacts {
		if artifact.ContentRef != "" {
			if info, err := os.Stat(filepath.Join(s.contentDir, artifact.ContentRef)); err == nil {
				stats.TotalContentBytes += info.Size()
			}
		}

		if stats.OldestCreatedAt == 0 || artifact.CreatedAt < stats.OldestCreatedAt {
			stats.OldestCreatedAt = artifact.CreatedAt
		}
		if artifact.CreatedAt > stats.NewestCreatedAt {
			stats.NewestCreatedAt = artifact.CreatedAt
		}
	}

	return stats, nil
}

// Clear 递归删除并重建 content/ 与 metadata/，archive/ 保持不动。
func (s *FileStore) Clear(ctx context.Context) error {
	for _, dir := range []string{s.contentDir, s.metadataDir} {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("failed to clear %s: %w", dir, err)
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to recreate %s: %w", dir, err)
		}
	}

	s.logger.Info("storage cleared", zap.String("root", s.root))
	return nil
}

func (s *FileStore) metadataPath(id string) string {
	return filepath.Join(s.metadataDir, id+metadataExt)
}

// 确保 FileStore 实现 Store 接口
var _ Store = (*FileStore)(nil)
