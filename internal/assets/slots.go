package assets

import (
	"context"
	"time"
)

// Slot 标识一个单资产挂载点：头像、CV、某个项目的配图。
type Slot string

const (
	SlotPhoto        Slot = "photo"
	SlotCV           Slot = "cv"
	SlotProjectImage Slot = "project-image"
)

// Rule 描述某个 Slot 的上传约束与存储布局。
type Rule struct {
	MaxBytes     int64
	AllowedMIMEs []string
	Folder       string
	Prefix       string
}

// 每个 Slot 的约束集中在一张表里，上传路径只有一条，按表参数化。
var slotRules = map[Slot]Rule{
	SlotPhoto: {
		MaxBytes:     5 << 20,
		AllowedMIMEs: []string{"image/jpeg", "image/png", "image/webp"},
		Folder:       "photos",
		Prefix:       "photo",
	},
	SlotCV: {
		MaxBytes:     10 << 20,
		AllowedMIMEs: []string{"application/pdf"},
		Folder:       "cv",
		Prefix:       "cv",
	},
	SlotProjectImage: {
		MaxBytes:     5 << 20,
		AllowedMIMEs: []string{"image/jpeg", "image/png", "image/webp"},
		Folder:       "projects",
		Prefix:       "project",
	},
}

// RuleFor 返回 Slot 的约束；未知 Slot 返回 false。
func RuleFor(slot Slot) (Rule, bool) {
	rule, ok := slotRules[slot]
	return rule, ok
}

// Reference 是内容库中某个 Slot 当前资产的完整引用。
// 不变式：要么全空（无资产），要么全量填充，绝不出现半填充状态。
type Reference struct {
	// DisplayName 仅对携带展示名的 Slot 有意义（CV）。
	DisplayName string
	// FileName 是存储端生成的文件名。
	FileName string
	// ObjectKey 是删除句柄，同时定位存储端对象。
	ObjectKey string
	// URL 是对外暴露的持久访问地址。
	URL string
	// UploadedAt 记录上传时间。
	UploadedAt time.Time
}

// ReferenceStore 把某个具体 Slot 绑定到内容库：
// Current 返回当前引用（空 Slot 返回 nil），Swap 整体替换（nil 表示清空）。
type ReferenceStore interface {
	Current(ctx context.Context) (*Reference, error)
	Swap(ctx context.Context, ref *Reference) error
}
