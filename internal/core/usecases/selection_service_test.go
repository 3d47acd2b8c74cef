package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/samirrijal/demfetch/internal/core/domain"
	"github.com/samirrijal/demfetch/internal/core/usecases"
)

func TestSelectionService_Select_Manual(t *testing.T) {
	store := newMockSelectionStore()
	svc := usecases.NewSelectionService(store)

	sel, err := svc.Select(context.Background(), "s1", domain.ManualSelection("40.0", "41.0", "-74.0", "-73.0"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := domain.BoundingBox{South: 40, North: 41, West: -74, East: -73}
	if sel.Box != want {
		t.Errorf("expected %v, got %v", want, sel.Box)
	}
	if sel.Source != domain.SourceManual {
		t.Errorf("expected manual source, got %s", sel.Source)
	}

	cur, err := svc.Current(context.Background(), "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cur.Box != want {
		t.Errorf("stored box mismatch: %v", cur.Box)
	}
}

func TestSelectionService_LastWriteWins(t *testing.T) {
	store := newMockSelectionStore()
	svc := usecases.NewSelectionService(store)
	ctx := context.Background()

	if _, err := svc.Select(ctx, "s1", domain.ManualSelection("40", "41", "-74", "-73")); err != nil {
		t.Fatalf("manual select: %v", err)
	}
	if _, err := svc.Select(ctx, "s1", domain.DrawnSelection(rectangle(10, 11, 20, 21))); err != nil {
		t.Fatalf("drawn select: %v", err)
	}

	cur, err := svc.Current(ctx, "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := domain.BoundingBox{South: 10, North: 11, West: 20, East: 21}
	if cur.Box != want {
		t.Errorf("expected %v, got %v", want, cur.Box)
	}
	if cur.Source != domain.SourceDrawn {
		t.Errorf("expected drawn source, got %s", cur.Source)
	}

	// and back again
	if _, err := svc.Select(ctx, "s1", domain.ManualSelection("1", "2", "3", "4")); err != nil {
		t.Fatalf("manual select: %v", err)
	}
	cur, _ = svc.Current(ctx, "s1")
	if cur.Box != (domain.BoundingBox{South: 1, North: 2, West: 3, East: 4}) {
		t.Errorf("manual selection did not override drawn one: %v", cur.Box)
	}
}

func TestSelectionService_InvalidLeavesStoredBox(t *testing.T) {
	store := newMockSelectionStore()
	svc := usecases.NewSelectionService(store)
	ctx := context.Background()

	if _, err := svc.Select(ctx, "s1", domain.ManualSelection("40", "41", "-74", "-73")); err != nil {
		t.Fatalf("select: %v", err)
	}

	_, err := svc.Select(ctx, "s1", domain.ManualSelection("40", "abc", "-74", "-73"))
	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	_, err = svc.Select(ctx, "s1", domain.DrawnSelection(domain.Shape{Type: "Point"}))
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	if store.saves != 1 {
		t.Errorf("expected exactly 1 save, got %d", store.saves)
	}
	cur, _ := svc.Current(ctx, "s1")
	if cur.Box != (domain.BoundingBox{South: 40, North: 41, West: -74, East: -73}) {
		t.Errorf("stored box changed: %v", cur.Box)
	}
}

func TestSelectionService_SessionsAreIsolated(t *testing.T) {
	svc := usecases.NewSelectionService(newMockSelectionStore())
	ctx := context.Background()

	_, _ = svc.Select(ctx, "a", domain.ManualSelection("1", "2", "3", "4"))

	if _, err := svc.Current(ctx, "b"); !errors.Is(err, domain.ErrNoSelection) {
		t.Errorf("expected ErrNoSelection for other session, got %v", err)
	}
}

func TestSelectionService_Clear(t *testing.T) {
	svc := usecases.NewSelectionService(newMockSelectionStore())
	ctx := context.Background()

	_, _ = svc.Select(ctx, "s1", domain.ManualSelection("1", "2", "3", "4"))
	if err := svc.Clear(ctx, "s1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := svc.Current(ctx, "s1"); !errors.Is(err, domain.ErrNoSelection) {
		t.Errorf("expected ErrNoSelection after clear, got %v", err)
	}
}

func TestSelectionService_StoreFailure(t *testing.T) {
	store := newMockSelectionStore()
	store.saveErr = errors.New("valkey down")
	svc := usecases.NewSelectionService(store)

	_, err := svc.Select(context.Background(), "s1", domain.ManualSelection("1", "2", "3", "4"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, store.saveErr) {
		t.Errorf("expected wrapped store error, got %v", err)
	}
}
