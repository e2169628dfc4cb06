package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"portfolio/internal/database"
)

// ErrNotFound 表示目标实体不存在。
var ErrNotFound = errors.New("not found")

// SkillCategory 是一组技能及其分类标签。
type SkillCategory struct {
	Category string   `json:"category"`
	Items    []string `json:"items"`
}

// Experience 是一段工作/实习经历。
type Experience struct {
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	Location    string   `json:"location"`
	Period      string   `json:"period"`
	Description string   `json:"description"`
	Tech        []string `json:"tech"`
}

// Formation 是一段教育经历。
type Formation struct {
	Title       string `json:"title"`
	School      string `json:"school"`
	Location    string `json:"location"`
	Period      string `json:"period"`
	Description string `json:"description"`
}

// Contact 是一条联系方式。
type Contact struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Icon  string `json:"icon"`
	URL   string `json:"url"`
}

// Repository 持久化唯一的 Profile 文档与 Project 集合。
type Repository struct {
	db *gorm.DB
}

// NewRepository 构造内容库。
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetOrCreateProfile 返回唯一的 Profile 记录；
// 不存在时用默认文档创建（首次访问惰性初始化，之后幂等）。
func (r *Repository) GetOrCreateProfile(ctx context.Context) (*database.Profile, error) {
	var profile database.Profile
	err := r.db.WithContext(ctx).First(&profile).Error
	if err == nil {
		return &profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("query profile: %w", err)
	}

	profile = defaultProfile()
	if err := r.db.WithContext(ctx).Create(&profile).Error; err != nil {
		return nil, fmt.Errorf("create default profile: %w", err)
	}
	return &profile, nil
}

// ProfileInfoUpdate 承载基础信息的可选字段更新。
type ProfileInfoUpdate struct {
	Name        *string
	Title       *string
	Description *string
}

// UpdateProfileInfo 更新姓名/头衔/描述中被提交的字段，返回完整文档。
func (r *Repository) UpdateProfileInfo(ctx context.Context, update ProfileInfoUpdate) (*database.Profile, error) {
	profile, err := r.GetOrCreateProfile(ctx)
	if err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if update.Name != nil {
		changes["name"] = *update.Name
	}
	if update.Title != nil {
		changes["title"] = *update.Title
	}
	if update.Description != nil {
		changes["description"] = *update.Description
	}
	if len(changes) == 0 {
		return profile, nil
	}

	if err := r.db.WithContext(ctx).Model(profile).Updates(changes).Error; err != nil {
		return nil, fmt.Errorf("update profile info: %w", err)
	}

	if update.Name != nil {
		profile.Name = *update.Name
	}
	if update.Title != nil {
		profile.Title = *update.Title
	}
	if update.Description != nil {
		profile.Description = *update.Description
	}
	return profile, nil
}

// ReplaceSkills 整体替换技能集合。
func (r *Repository) ReplaceSkills(ctx context.Context, skills []SkillCategory) error {
	return r.replaceCollection(ctx, "skills", skills)
}

// ReplaceExperiences 整体替换经历集合。
func (r *Repository) ReplaceExperiences(ctx context.Context, experiences []Experience) error {
	return r.replaceCollection(ctx, "experiences", experiences)
}

// ReplaceFormations 整体替换教育经历集合。
func (r *Repository) ReplaceFormations(ctx context.Context, formations []Formation) error {
	return r.replaceCollection(ctx, "formations", formations)
}

// ReplaceContacts 整体替换联系方式集合。
func (r *Repository) ReplaceContacts(ctx context.Context, contacts []Contact) error {
	return r.replaceCollection(ctx, "contacts", contacts)
}

// replaceCollection 把命名集合整列覆盖；没有逐项 patch 语义，
// 调用方必须提交完整的替换集合。
func (r *Repository) replaceCollection(ctx context.Context, column string, value any) error {
	profile, err := r.GetOrCreateProfile(ctx)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", column, err)
	}

	if err := r.db.WithContext(ctx).Model(profile).
		Update(column, datatypes.JSON(raw)).Error; err != nil {
		return fmt.Errorf("replace %s: %w", column, err)
	}
	return nil
}

func mustJSON(value any) datatypes.JSON {
	raw, err := json.Marshal(value)
	if err != nil {
		panic(err)
	}
	return datatypes.JSON(raw)
}
