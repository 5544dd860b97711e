// ABOUTME: Tests for the block registry
// ABOUTME: Covers title normalization, dedup, and conflict recovery path
package sqlite

import "testing"

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	storage, err := NewStorageInMemory()
	if err != nil {
		t.Fatalf("NewStorageInMemory() error: %v", err)
	}
	t.Cleanup(func() { _ = storage.Close() })
	return storage
}

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Семья ", "семья"},
		{"семья", "семья"},
		{"  РАБОТА  ", "работа"},
		{"12 шагов", "12 шагов"},
	}
	for _, tt := range tests {
		if got := NormalizeTitle(tt.in); got != tt.want {
			t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGetOrCreate_DedupesByNormalizedTitle(t *testing.T) {
	storage := newTestStorage(t)

	first, err := storage.Blocks.GetOrCreate("Семья ")
	if err != nil {
		t.Fatalf("GetOrCreate error: %v", err)
	}
	second, err := storage.Blocks.GetOrCreate("семья")
	if err != nil {
		t.Fatalf("GetOrCreate error: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("expected one block, got ids %d and %d", first.ID, second.ID)
	}
	if first.Title != "семья" {
		t.Errorf("Title = %q, want normalized %q", first.Title, "семья")
	}

	blocks, err := storage.Blocks.All()
	if err != nil {
		t.Fatalf("All() error: %v", err)
	}
	if len(blocks) != 1 {
		t.Errorf("expected 1 block total, got %d", len(blocks))
	}
}

func TestGetOrCreate_EmptyTitle(t *testing.T) {
	storage := newTestStorage(t)

	if _, err := storage.Blocks.GetOrCreate("   "); err == nil {
		t.Error("expected error for whitespace-only title")
	}
}

func TestGetByTitle_Missing(t *testing.T) {
	storage := newTestStorage(t)

	block, err := storage.Blocks.GetByTitle("нет такого")
	if err != nil {
		t.Fatalf("GetByTitle error: %v", err)
	}
	if block != nil {
		t.Errorf("expected nil for missing title, got %+v", block)
	}
}
