package assets

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"portfolio/internal/storage"
)

// Upload 描述一份待写入某 Slot 的二进制内容。
// Open 必须每次返回一个新的读取器：扫描与上传各消费一遍。
type Upload struct {
	Open        func() (io.ReadCloser, error)
	Size        int64
	ContentType string
	// FileName 是客户端提交的原始文件名，仅用于推断扩展名与默认展示名。
	FileName string
	// DisplayName 是可选的自定义展示名（CV 的 customName）。
	DisplayName string
}

// Manager 负责保证每个 Slot 在存储端至多有一个在用对象，
// 且内容库的引用相对存储端永不过期。
//
// Replace 的顺序固定为：先上传新对象，再换引用，最后删旧对象。
// 中途崩溃最多留下一个可人工清理的孤儿对象，绝不会让引用指向已删除的资产。
type Manager struct {
	store   storage.ObjectStore
	scanner Scanner
	logger  *slog.Logger
	now     func() time.Time
}

// NewManager 构造生命周期管理器；scanner 传 nil 表示禁用病毒扫描。
func NewManager(store storage.ObjectStore, scanner Scanner, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:   store,
		scanner: scanner,
		logger:  logger,
		now:     time.Now,
	}
}

// Replace 校验并上传新内容，替换 Slot 的当前引用，并尽力删除旧对象。
// 旧对象删除失败只记日志：引用已正确指向新资产，孤儿优于不一致。
func (m *Manager) Replace(ctx context.Context, slot Slot, refs ReferenceStore, up Upload) (*Reference, error) {
	rule, ok := RuleFor(slot)
	if !ok {
		return nil, fmt.Errorf("unknown slot %q", slot)
	}

	if err := validateUpload(rule, up); err != nil {
		return nil, err
	}

	if m.scanner != nil {
		if err := m.scan(ctx, up); err != nil {
			return nil, err
		}
	}

	now := m.now()
	objectKey := buildObjectKey(rule, up.FileName, now)

	reader, err := up.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	url, uploadErr := m.store.Upload(ctx, objectKey, reader, up.Size, up.ContentType)
	reader.Close()
	if uploadErr != nil {
		return nil, &StoreError{Op: "upload", Key: objectKey, Err: uploadErr}
	}

	prior, err := refs.Current(ctx)
	if err != nil {
		// 新对象已上传但引用未更新，留作孤儿待人工清理。
		m.logger.Warn("orphaned upload after reference read failure",
			slog.String("slot", string(slot)),
			slog.String("object_key", objectKey),
		)
		return nil, err
	}

	ref := &Reference{
		DisplayName: displayName(up),
		FileName:    path.Base(objectKey),
		ObjectKey:   objectKey,
		URL:         url,
		UploadedAt:  now,
	}
	if err := refs.Swap(ctx, ref); err != nil {
		m.logger.Warn("orphaned upload after reference write failure",
			slog.String("slot", string(slot)),
			slog.String("object_key", objectKey),
		)
		return nil, &PersistError{Key: objectKey, Err: err}
	}

	if prior != nil && prior.ObjectKey != "" {
		if err := m.store.Delete(ctx, prior.ObjectKey); err != nil {
			m.logger.Error("delete stale asset failed",
				slog.String("slot", string(slot)),
				slog.String("object_key", prior.ObjectKey),
				slog.String("error", err.Error()),
			)
		}
	}

	return ref, nil
}

// Clear 删除 Slot 当前资产并清空引用；空 Slot 直接成功（幂等）。
func (m *Manager) Clear(ctx context.Context, slot Slot, refs ReferenceStore) error {
	current, err := refs.Current(ctx)
	if err != nil {
		return err
	}
	if current == nil || current.ObjectKey == "" {
		return nil
	}

	if err := m.store.Delete(ctx, current.ObjectKey); err != nil {
		return &StoreError{Op: "delete", Key: current.ObjectKey, Err: err}
	}
	if err := refs.Swap(ctx, nil); err != nil {
		return &PersistError{Key: current.ObjectKey, Err: err}
	}
	return nil
}

// Rename 仅更新 CV 这类携带展示名的 Slot 的展示名，不触碰存储端。
func (m *Manager) Rename(ctx context.Context, refs ReferenceStore, name string) (*Reference, error) {
	current, err := refs.Current(ctx)
	if err != nil {
		return nil, err
	}
	if current == nil || current.ObjectKey == "" {
		return nil, ErrSlotEmpty
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidUpload)
	}

	renamed := *current
	renamed.DisplayName = ensurePDFExt(name)
	if err := refs.Swap(ctx, &renamed); err != nil {
		return nil, &PersistError{Key: current.ObjectKey, Err: err}
	}
	return &renamed, nil
}

func (m *Manager) scan(ctx context.Context, up Upload) error {
	reader, err := up.Open()
	if err != nil {
		return fmt.Errorf("open upload for scan: %w", err)
	}
	defer reader.Close()
	return m.scanner.Scan(ctx, reader)
}

func validateUpload(rule Rule, up Upload) error {
	if up.Open == nil || up.Size <= 0 {
		return fmt.Errorf("%w: no file received", ErrInvalidUpload)
	}
	if up.Size > rule.MaxBytes {
		return fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidUpload, rule.MaxBytes)
	}

	contentType := normalizeMIME(up.ContentType)
	for _, allowed := range rule.AllowedMIMEs {
		if contentType == allowed {
			return nil
		}
	}
	return fmt.Errorf("%w: content type %q is not allowed", ErrInvalidUpload, contentType)
}

// buildObjectKey 生成带时间戳的对象键，避免同名覆盖。
func buildObjectKey(rule Rule, fileName string, now time.Time) string {
	return fmt.Sprintf("%s/%s_%d%s", rule.Folder, rule.Prefix, now.UnixMilli(), fileExt(rule, fileName))
}

func fileExt(rule Rule, fileName string) string {
	if len(rule.AllowedMIMEs) == 1 && rule.AllowedMIMEs[0] == "application/pdf" {
		return ".pdf"
	}
	ext := strings.ToLower(path.Ext(fileName))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
		return ext
	}
	return ".png"
}

func displayName(up Upload) string {
	if name := strings.TrimSpace(up.DisplayName); name != "" {
		return ensurePDFExt(name)
	}
	return up.FileName
}

func ensurePDFExt(name string) string {
	if strings.HasSuffix(strings.ToLower(name), ".pdf") {
		return name
	}
	return name + ".pdf"
}

func normalizeMIME(contentType string) string {
	contentType = strings.TrimSpace(strings.ToLower(contentType))
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	return contentType
}
