package content

import (
	"context"
	"errors"
	"testing"
	"time"

	"portfolio/internal/database"
)

func seedProject(t *testing.T, repo *Repository, title string, order int, createdAt time.Time) *database.Project {
	t.Helper()
	project, err := repo.CreateProject(context.Background(), ProjectInput{
		Title:       title,
		Description: "desc",
		SortOrder:   order,
	})
	if err != nil {
		t.Fatalf("create project %q: %v", title, err)
	}
	if err := repo.db.Model(project).Update("created_at", createdAt).Error; err != nil {
		t.Fatalf("set created_at for %q: %v", title, err)
	}
	return project
}

func TestListProjects_OrderAscending(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	seedProject(t, repo, "second", 2, base)
	seedProject(t, repo, "zero", 0, base.Add(time.Hour))
	seedProject(t, repo, "first", 1, base.Add(2*time.Hour))

	projects, err := repo.ListProjects(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	var titles []string
	for _, p := range projects {
		titles = append(titles, p.Title)
	}
	want := []string{"zero", "first", "second"}
	for i := range want {
		if titles[i] != want[i] {
			t.Fatalf("order mismatch: got %v want %v", titles, want)
		}
	}
}

func TestListProjects_TieBreakMostRecentFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	seedProject(t, repo, "older", 0, base)
	seedProject(t, repo, "newer", 0, base.Add(time.Hour))

	projects, err := repo.ListProjects(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(projects) != 2 || projects[0].Title != "newer" || projects[1].Title != "older" {
		t.Fatalf("tie-break must favor most recent: %+v", projects)
	}
}

func TestProjectCRUD_MissingID(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))

	if _, err := repo.UpdateProject(ctx, 42, ProjectPatch{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update missing: expected ErrNotFound, got %v", err)
	}
	if err := repo.DeleteProject(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete missing: expected ErrNotFound, got %v", err)
	}
}

func TestProjectImageSlot_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))
	project := seedProject(t, repo, "p", 0, time.Now())

	slot := repo.ProjectImageSlot(project.ID)
	current, err := slot.Current(ctx)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if current != nil {
		t.Fatalf("fresh project must have an empty slot, got %+v", current)
	}

	missing := repo.ProjectImageSlot(999)
	if _, err := missing.Current(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing project slot: expected ErrNotFound, got %v", err)
	}
}
