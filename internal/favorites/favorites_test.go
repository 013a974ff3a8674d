package favorites

import (
	"context"
	"errors"
	"testing"

	"loft_back_end/internal/models"
	"loft_back_end/internal/repository"
)

func setup(t *testing.T) (*Service, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	return NewService(store.Favorites(), store.Products()), store
}

func TestToggleTwiceRestoresState(t *testing.T) {
	ctx := context.Background()
	svc, store := setup(t)
	p := &models.Product{Title: "Canapé", Slug: "canape", Price: 100, Quantity: 3}
	if err := store.Products().Create(ctx, p); err != nil {
		t.Fatalf("seed produit: %v", err)
	}

	added, err := svc.Toggle(ctx, "user-1", "canape")
	if err != nil {
		t.Fatalf("premier toggle: %v", err)
	}
	if !added {
		t.Fatal("le premier toggle doit ajouter le favori")
	}

	list, _ := svc.List(ctx, "user-1")
	if len(list) != 1 {
		t.Fatalf("un favori attendu, obtenu %d", len(list))
	}

	added, err = svc.Toggle(ctx, "user-1", "canape")
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if added {
		t.Fatal("le second toggle doit retirer le favori")
	}

	list, _ = svc.List(ctx, "user-1")
	if len(list) != 0 {
		t.Fatalf("état initial attendu après double toggle, obtenu %d favoris", len(list))
	}
}

func TestToggleUnknownProduct(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)

	_, err := svc.Toggle(ctx, "user-1", "fantome")
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("attendu ErrProductNotFound, obtenu %v", err)
	}
}

func TestTogglesAreScopedPerUser(t *testing.T) {
	ctx := context.Background()
	svc, store := setup(t)
	p := &models.Product{Title: "Table", Slug: "table", Price: 50, Quantity: 1}
	store.Products().Create(ctx, p)

	if _, err := svc.Toggle(ctx, "user-1", "table"); err != nil {
		t.Fatalf("toggle user-1: %v", err)
	}
	if _, err := svc.Toggle(ctx, "user-2", "table"); err != nil {
		t.Fatalf("toggle user-2: %v", err)
	}
	// retirer pour user-2 ne touche pas user-1
	if _, err := svc.Toggle(ctx, "user-2", "table"); err != nil {
		t.Fatalf("second toggle user-2: %v", err)
	}

	list, err := svc.List(ctx, "user-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Slug != "table" {
		t.Fatalf("liste inattendue pour user-1: %+v", list)
	}
	list2, _ := svc.List(ctx, "user-2")
	if len(list2) != 0 {
		t.Fatalf("user-2 ne doit plus avoir de favoris, obtenu %d", len(list2))
	}
}
