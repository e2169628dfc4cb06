package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotExist 表示指定对象在存储端不存在。
var ErrNotExist = errors.New("object does not exist")

// ObjectStore 是资产存储的统一抽象：上传返回持久 URL，
// 删除以对象键（删除句柄）定位且幂等，Open 用于回源下载。
// 具体后端由配置决定（MinIO 或本地磁盘），路由逻辑不感知差异。
type ObjectStore interface {
	Upload(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, objectKey string) error
	Open(ctx context.Context, objectKey string) (io.ReadCloser, error)
}
