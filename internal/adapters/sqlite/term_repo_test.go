package sqlite_test

import (
	"context"
	"testing"

	"github.com/example/wixport/internal/adapters/sqlite"
	"github.com/example/wixport/internal/ports/secondary"
)

func TestTermCreateAndGet(t *testing.T) {
	conn := setupTestDB(t)
	repo := sqlite.NewTermRepository(conn)
	ctx := context.Background()

	id, err := repo.Create(ctx, &secondary.TermRecord{
		Name:        "News",
		Slug:        "news",
		Description: "Site news",
		Taxonomy:    secondary.TaxonomyCategory,
	})
	if err != nil {
		t.Fatalf("failed to create term: %v", err)
	}
	if id == 0 {
		t.Fatal("expected non-zero term id")
	}

	got, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("failed to get term: %v", err)
	}
	if got.Name != "News" || got.Slug != "news" || got.Taxonomy != secondary.TaxonomyCategory {
		t.Errorf("unexpected term record: %+v", got)
	}
	if got.Description != "Site news" {
		t.Errorf("expected description preserved, got %q", got.Description)
	}
}

func TestTermUpdate(t *testing.T) {
	conn := setupTestDB(t)
	repo := sqlite.NewTermRepository(conn)
	ctx := context.Background()

	id, err := repo.Create(ctx, &secondary.TermRecord{
		Name:     "News",
		Slug:     "news",
		Taxonomy: secondary.TaxonomyCategory,
	})
	if err != nil {
		t.Fatalf("failed to create term: %v", err)
	}

	err = repo.Update(ctx, &secondary.TermRecord{
		ID:       id,
		Name:     "Latest News",
		Slug:     "news",
		Taxonomy: secondary.TaxonomyCategory,
	})
	if err != nil {
		t.Fatalf("failed to update term: %v", err)
	}

	got, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("failed to get term: %v", err)
	}
	if got.Name != "Latest News" {
		t.Errorf("expected updated name, got %q", got.Name)
	}
}

func TestTermUpdateMissing(t *testing.T) {
	conn := setupTestDB(t)
	repo := sqlite.NewTermRepository(conn)

	err := repo.Update(context.Background(), &secondary.TermRecord{
		ID:       999,
		Name:     "Ghost",
		Slug:     "ghost",
		Taxonomy: secondary.TaxonomyPostTag,
	})
	if err == nil {
		t.Fatal("expected error updating missing term")
	}
}

func TestTermListFiltersByTaxonomy(t *testing.T) {
	conn := setupTestDB(t)
	repo := sqlite.NewTermRepository(conn)
	ctx := context.Background()

	if _, err := repo.Create(ctx, &secondary.TermRecord{Name: "News", Slug: "news", Taxonomy: secondary.TaxonomyCategory}); err != nil {
		t.Fatalf("failed to create category: %v", err)
	}
	if _, err := repo.Create(ctx, &secondary.TermRecord{Name: "golang", Slug: "golang", Taxonomy: secondary.TaxonomyPostTag}); err != nil {
		t.Fatalf("failed to create tag: %v", err)
	}

	cats, err := repo.List(ctx, secondary.TaxonomyCategory)
	if err != nil {
		t.Fatalf("failed to list categories: %v", err)
	}
	if len(cats) != 1 || cats[0].Name != "News" {
		t.Errorf("unexpected category list: %+v", cats)
	}
}
