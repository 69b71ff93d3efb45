package ingest

import (
	"testing"

	"vittrack/internal/core"
)

func seededCategories() []core.Category {
	return []core.Category{
		{ID: 1, Name: "Groceries"},
		{ID: 2, Name: "Entertainment"},
		{ID: 3, Name: "Transport"},
		{ID: 4, Name: "Bills"},
		{ID: 5, Name: "Shopping"},
		{ID: 6, Name: "Miscellaneous"},
	}
}

func TestNewRegistry_RequiresDefaultCategory(t *testing.T) {
	if _, err := NewRegistry([]core.Category{{ID: 1, Name: "Groceries"}}); err == nil {
		t.Fatal("NewRegistry accepted a registry without the default category")
	}

	if _, err := NewRegistry(seededCategories()); err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
}

func TestRegistry_Resolve(t *testing.T) {
	registry, err := NewRegistry(seededCategories())
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	tests := []struct {
		name         string
		lookup       string
		wantID       int64
		wantFallback bool
	}{
		{name: "exact match", lookup: "Transport", wantID: 3, wantFallback: false},
		{name: "default itself", lookup: "Miscellaneous", wantID: 6, wantFallback: false},
		{name: "unknown name", lookup: "Snacks", wantID: 6, wantFallback: true},
		{name: "case mismatch falls back", lookup: "transport", wantID: 6, wantFallback: true},
		{name: "empty name", lookup: "", wantID: 6, wantFallback: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			category, fellBack := registry.Resolve(tt.lookup)
			if category.ID != tt.wantID {
				t.Errorf("Resolve(%q).ID = %d, want %d", tt.lookup, category.ID, tt.wantID)
			}
			if fellBack != tt.wantFallback {
				t.Errorf("Resolve(%q) fallback = %v, want %v", tt.lookup, fellBack, tt.wantFallback)
			}
		})
	}
}

func TestRegistry_Names(t *testing.T) {
	registry, _ := NewRegistry(seededCategories())

	names := registry.Names()
	if len(names) != 6 || names[0] != "Groceries" || names[5] != "Miscellaneous" {
		t.Errorf("Names() = %v", names)
	}
}
