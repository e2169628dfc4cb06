package content

import (
	"context"
	"fmt"
	"time"

	"portfolio/internal/assets"
	"portfolio/internal/database"
)

// PhotoSlot 把头像 Slot 绑定到 Profile 记录。
func (r *Repository) PhotoSlot() assets.ReferenceStore {
	return photoSlot{repo: r}
}

// CVSlot 把 CV Slot 绑定到 Profile 记录。
func (r *Repository) CVSlot() assets.ReferenceStore {
	return cvSlot{repo: r}
}

// ProjectImageSlot 把配图 Slot 绑定到指定项目。
func (r *Repository) ProjectImageSlot(projectID uint) assets.ReferenceStore {
	return projectImageSlot{repo: r, projectID: projectID}
}

type photoSlot struct {
	repo *Repository
}

func (s photoSlot) Current(ctx context.Context) (*assets.Reference, error) {
	profile, err := s.repo.GetOrCreateProfile(ctx)
	if err != nil {
		return nil, err
	}
	if profile.PhotoURL == "" && profile.PhotoObjectKey == "" {
		return nil, nil
	}
	return &assets.Reference{
		URL:       profile.PhotoURL,
		ObjectKey: profile.PhotoObjectKey,
	}, nil
}

func (s photoSlot) Swap(ctx context.Context, ref *assets.Reference) error {
	profile, err := s.repo.GetOrCreateProfile(ctx)
	if err != nil {
		return err
	}

	changes := map[string]any{"photo_url": "", "photo_object_key": ""}
	if ref != nil {
		changes["photo_url"] = ref.URL
		changes["photo_object_key"] = ref.ObjectKey
	}
	if err := s.repo.db.WithContext(ctx).Model(profile).Updates(changes).Error; err != nil {
		return fmt.Errorf("swap photo reference: %w", err)
	}
	return nil
}

type cvSlot struct {
	repo *Repository
}

func (s cvSlot) Current(ctx context.Context) (*assets.Reference, error) {
	profile, err := s.repo.GetOrCreateProfile(ctx)
	if err != nil {
		return nil, err
	}
	if profile.CVObjectKey == "" && profile.CVURL == "" {
		return nil, nil
	}

	var uploadedAt time.Time
	if profile.CVUploadedAt != nil {
		uploadedAt = *profile.CVUploadedAt
	}
	return &assets.Reference{
		DisplayName: profile.CVOriginalName,
		FileName:    profile.CVFileName,
		ObjectKey:   profile.CVObjectKey,
		URL:         profile.CVURL,
		UploadedAt:  uploadedAt,
	}, nil
}

func (s cvSlot) Swap(ctx context.Context, ref *assets.Reference) error {
	profile, err := s.repo.GetOrCreateProfile(ctx)
	if err != nil {
		return err
	}

	changes := map[string]any{
		"cv_file_name":     "",
		"cv_original_name": "",
		"cv_url":           "",
		"cv_object_key":    "",
		"cv_uploaded_at":   nil,
	}
	if ref != nil {
		changes["cv_file_name"] = ref.FileName
		changes["cv_original_name"] = ref.DisplayName
		changes["cv_url"] = ref.URL
		changes["cv_object_key"] = ref.ObjectKey
		changes["cv_uploaded_at"] = ref.UploadedAt
	}
	if err := s.repo.db.WithContext(ctx).Model(profile).Updates(changes).Error; err != nil {
		return fmt.Errorf("swap cv reference: %w", err)
	}
	return nil
}

type projectImageSlot struct {
	repo      *Repository
	projectID uint
}

func (s projectImageSlot) Current(ctx context.Context) (*assets.Reference, error) {
	project, err := s.repo.GetProject(ctx, s.projectID)
	if err != nil {
		return nil, err
	}
	if project.ImageURL == "" && project.ImageObjectKey == "" {
		return nil, nil
	}
	return &assets.Reference{
		URL:       project.ImageURL,
		ObjectKey: project.ImageObjectKey,
	}, nil
}

func (s projectImageSlot) Swap(ctx context.Context, ref *assets.Reference) error {
	changes := map[string]any{"image_url": "", "image_object_key": ""}
	if ref != nil {
		changes["image_url"] = ref.URL
		changes["image_object_key"] = ref.ObjectKey
	}

	result := s.repo.db.WithContext(ctx).
		Model(&database.Project{}).
		Where("id = ?", s.projectID).
		Updates(changes)
	if result.Error != nil {
		return fmt.Errorf("swap project image reference: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
