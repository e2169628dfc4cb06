package assets

import (
	"errors"
	"fmt"
)

// ErrInvalidUpload 表示上传内容违反 Slot 约束（类型/大小），在任何存储交互前拒绝。
var ErrInvalidUpload = errors.New("invalid upload")

// ErrSlotEmpty 表示操作要求 Slot 非空（如重命名）但当前没有资产。
var ErrSlotEmpty = errors.New("slot is empty")

// StoreError 表示对资产存储的调用失败。
// 上传失败会向调用方暴露；替换流程中旧资产的滞后删除失败只记日志。
type StoreError struct {
	Op  string
	Key string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("asset store %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// PersistError 表示上传成功后内容库写入失败：
// 新对象此时已成为孤儿，需要外部清理，错误必须上报。
type PersistError struct {
	Key string
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist reference for %q: %v", e.Key, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }
