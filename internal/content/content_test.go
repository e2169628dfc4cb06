package content

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"portfolio/internal/database"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&database.Profile{}, &database.Project{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestGetOrCreateProfile_CreatesExactlyOnce(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))

	first, err := repo.GetOrCreateProfile(ctx)
	if err != nil {
		t.Fatalf("first get: %v", err)
	}
	if first.Name == "" || len(first.Skills) == 0 {
		t.Fatalf("default document not seeded: %+v", first)
	}

	second, err := repo.GetOrCreateProfile(ctx)
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected the same record, got %d and %d", first.ID, second.ID)
	}

	var count int64
	if err := repo.db.Model(&database.Profile{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one profile record, got %d", count)
	}
}

func TestUpdateProfileInfo_PartialFields(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))

	original, err := repo.GetOrCreateProfile(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	name := "New Name"
	updated, err := repo.UpdateProfileInfo(ctx, ProfileInfoUpdate{Name: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "New Name" {
		t.Fatalf("name not updated: %q", updated.Name)
	}
	if updated.Title != original.Title {
		t.Fatalf("title must be untouched: %q", updated.Title)
	}

	reloaded, err := repo.GetOrCreateProfile(ctx)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Name != "New Name" {
		t.Fatalf("update not persisted: %q", reloaded.Name)
	}
}

func TestReplaceSkills_WholeCollection(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))

	replacement := []SkillCategory{{Category: "Go", Items: []string{"gin", "gorm"}}}
	if err := repo.ReplaceSkills(ctx, replacement); err != nil {
		t.Fatalf("replace skills: %v", err)
	}

	profile, err := repo.GetOrCreateProfile(ctx)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	var stored []SkillCategory
	if err := json.Unmarshal(profile.Skills, &stored); err != nil {
		t.Fatalf("unmarshal skills: %v", err)
	}
	if len(stored) != 1 || stored[0].Category != "Go" || len(stored[0].Items) != 2 {
		t.Fatalf("collection not replaced wholesale: %+v", stored)
	}
}
