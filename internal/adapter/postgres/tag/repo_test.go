package tag_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/ideaflow-backend/internal/adapter/postgres/tag"
	"github.com/heartmarshall/ideaflow-backend/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/ideaflow-backend/internal/domain"
)

func newRepo(t *testing.T) (*tag.Repo, *pgxpool.Pool) {
	t.Helper()
	pool := testhelper.SetupTestDB(t)
	return tag.New(pool), pool
}

func TestRepo_CreateAndGetByName(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)
	ctx := context.Background()

	name := "shopping-" + testhelper.UniqueSuffix()

	created, err := repo.Create(ctx, name, "#ff0000")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Name != name || created.Color != "#ff0000" {
		t.Errorf("created = %+v", created)
	}

	got, err := repo.GetByName(ctx, name)
	if err != nil {
		t.Fatalf("GetByName: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("id = %s, want %s", got.ID, created.ID)
	}
}

func TestRepo_Create_DefaultColor(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)

	created, err := repo.Create(context.Background(), "plain-"+testhelper.UniqueSuffix(), "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Color != domain.DefaultTagColor {
		t.Errorf("color = %q, want %q", created.Color, domain.DefaultTagColor)
	}
}

func TestRepo_Create_Duplicate(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)
	ctx := context.Background()

	name := "dup-" + testhelper.UniqueSuffix()
	if _, err := repo.Create(ctx, name, ""); err != nil {
		t.Fatalf("Create first: %v", err)
	}

	_, err := repo.Create(ctx, name, "")
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("Create duplicate: got %v, want ErrAlreadyExists", err)
	}
}

func TestRepo_GetByName_NotFound(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)

	_, err := repo.GetByName(context.Background(), "missing-"+testhelper.UniqueSuffix())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetByName: got %v, want ErrNotFound", err)
	}
}

func TestRepo_AttachToIdea_Idempotent(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	seeded := testhelper.SeedIdea(t, pool, uuid.New(), "buy milk")
	tg, err := repo.Create(ctx, "groceries-"+testhelper.UniqueSuffix(), "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := repo.AttachToIdea(ctx, seeded.ID, tg.ID); err != nil {
			t.Fatalf("AttachToIdea #%d: %v", i+1, err)
		}
	}

	if n := testhelper.CountRows(t, pool, "idea_tags", "idea_id = $1", seeded.ID); n != 1 {
		t.Errorf("idea_tags rows = %d, want 1", n)
	}

	tags, err := repo.ListByIdea(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("ListByIdea: %v", err)
	}
	if len(tags) != 1 || tags[0].ID != tg.ID {
		t.Errorf("ListByIdea = %+v", tags)
	}
}

func TestRepo_AttachToIdea_MissingIdea(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)
	ctx := context.Background()

	tg, err := repo.Create(ctx, "orphan-"+testhelper.UniqueSuffix(), "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	err = repo.AttachToIdea(ctx, uuid.New(), tg.ID)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("AttachToIdea: got %v, want ErrNotFound", err)
	}
}
