package content

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"portfolio/internal/database"
)

// ProjectInput 承载新项目的全部可写字段。
type ProjectInput struct {
	Title        string
	Description  string
	Technologies []string
	GithubURL    string
	LiveURL      string
	Category     string
	SortOrder    int
}

// ProjectPatch 承载项目更新中被提交的字段；nil 表示不修改。
type ProjectPatch struct {
	Title        *string
	Description  *string
	Technologies *[]string
	GithubURL    *string
	LiveURL      *string
	Category     *string
	SortOrder    *int
}

// ListProjects 返回全部项目：显式顺序升序，同序号按创建时间降序。
func (r *Repository) ListProjects(ctx context.Context) ([]database.Project, error) {
	var projects []database.Project
	if err := r.db.WithContext(ctx).
		Order("sort_order ASC, created_at DESC").
		Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// GetProject 按 id 查询项目；缺失返回 ErrNotFound。
func (r *Repository) GetProject(ctx context.Context, id uint) (*database.Project, error) {
	var project database.Project
	if err := r.db.WithContext(ctx).First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query project %d: %w", id, err)
	}
	return &project, nil
}

// CreateProject 新建项目记录。
func (r *Repository) CreateProject(ctx context.Context, input ProjectInput) (*database.Project, error) {
	category := input.Category
	if category == "" {
		category = "web"
	}
	if input.Technologies == nil {
		input.Technologies = []string{}
	}

	project := database.Project{
		Title:        input.Title,
		Description:  input.Description,
		Technologies: mustJSON(input.Technologies),
		GithubURL:    input.GithubURL,
		LiveURL:      input.LiveURL,
		Category:     category,
		SortOrder:    input.SortOrder,
	}
	if err := r.db.WithContext(ctx).Create(&project).Error; err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return &project, nil
}

// UpdateProject 更新被提交的字段；缺失 id 返回 ErrNotFound。
func (r *Repository) UpdateProject(ctx context.Context, id uint, patch ProjectPatch) (*database.Project, error) {
	project, err := r.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if patch.Title != nil {
		changes["title"] = *patch.Title
	}
	if patch.Description != nil {
		changes["description"] = *patch.Description
	}
	if patch.Technologies != nil {
		changes["technologies"] = mustJSON(*patch.Technologies)
	}
	if patch.GithubURL != nil {
		changes["github_url"] = *patch.GithubURL
	}
	if patch.LiveURL != nil {
		changes["live_url"] = *patch.LiveURL
	}
	if patch.Category != nil {
		changes["category"] = *patch.Category
	}
	if patch.SortOrder != nil {
		changes["sort_order"] = *patch.SortOrder
	}
	if len(changes) == 0 {
		return project, nil
	}

	if err := r.db.WithContext(ctx).Model(project).Updates(changes).Error; err != nil {
		return nil, fmt.Errorf("update project %d: %w", id, err)
	}

	if patch.Title != nil {
		project.Title = *patch.Title
	}
	if patch.Description != nil {
		project.Description = *patch.Description
	}
	if patch.Technologies != nil {
		project.Technologies = mustJSON(*patch.Technologies)
	}
	if patch.GithubURL != nil {
		project.GithubURL = *patch.GithubURL
	}
	if patch.LiveURL != nil {
		project.LiveURL = *patch.LiveURL
	}
	if patch.Category != nil {
		project.Category = *patch.Category
	}
	if patch.SortOrder != nil {
		project.SortOrder = *patch.SortOrder
	}
	return project, nil
}

// DeleteProject 删除项目；缺失 id 返回 ErrNotFound。
func (r *Repository) DeleteProject(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&database.Project{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete project %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
