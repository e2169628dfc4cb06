package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"portfolio/internal/config"
)

// LocalStore 将对象写入本地磁盘，由反向代理或静态路由对外提供。
// 与 MinIO 驱动共用同一接口，对象键同时充当相对路径与删除句柄。
type LocalStore struct {
	baseDir string
	baseURL string
}

// NewLocalStore 校验并创建根目录，返回磁盘驱动。
func NewLocalStore(cfg config.LocalConfig) (*LocalStore, error) {
	baseDir, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("resolve storage dir: %w", err)
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &LocalStore{
		baseDir: baseDir,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}, nil
}

// Dir 返回存储根目录，供静态文件路由挂载。
func (s *LocalStore) Dir() string { return s.baseDir }

// Upload 将对象写入磁盘并返回其 URL。
func (s *LocalStore) Upload(_ context.Context, objectKey string, reader io.Reader, _ int64, _ string) (string, error) {
	path, err := s.resolve(objectKey)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create object dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create object %q: %w", objectKey, err)
	}
	if _, err := io.Copy(f, reader); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write object %q: %w", objectKey, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close object %q: %w", objectKey, err)
	}

	return s.baseURL + "/" + objectKey, nil
}

// Delete 删除指定对象，文件缺失视为成功（幂等）。
func (s *LocalStore) Delete(_ context.Context, objectKey string) error {
	objectKey = strings.TrimSpace(objectKey)
	if objectKey == "" {
		return nil
	}
	path, err := s.resolve(objectKey)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove object %q: %w", objectKey, err)
	}
	return nil
}

// Open 读取对象内容；文件缺失时返回 ErrNotExist。
func (s *LocalStore) Open(_ context.Context, objectKey string) (io.ReadCloser, error) {
	path, err := s.resolve(objectKey)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotExist
		}
		return nil, fmt.Errorf("open object %q: %w", objectKey, err)
	}
	return f, nil
}

// resolve 拒绝越出根目录的对象键。
func (s *LocalStore) resolve(objectKey string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(objectKey))
	if cleaned == "." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid object key %q", objectKey)
	}
	return filepath.Join(s.baseDir, cleaned), nil
}
