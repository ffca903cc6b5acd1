package mapping

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultCatalog(t *testing.T) {
	catalog := DefaultCatalog()

	if len(catalog) != 10 {
		t.Fatalf("expected 10 catalog fields, got %d", len(catalog))
	}

	required := RequiredFields(catalog)
	want := []string{"id", "title", "price", "currency", "category", "link"}
	if len(required) != len(want) {
		t.Fatalf("expected %d required fields, got %v", len(want), required)
	}
	for i := range want {
		if required[i] != want[i] {
			t.Errorf("required field %d: expected %q, got %q", i, want[i], required[i])
		}
	}

	if catalog[3].Name != "price" || catalog[3].Type != TypeNumber {
		t.Errorf("expected price typed number, got %+v", catalog[3])
	}
}

func writeCatalogFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write catalog file: %v", err)
	}
	return path
}

func TestLoadCatalog(t *testing.T) {
	path := writeCatalogFile(t, `
fields:
  - name: sku
    type: string
    required: true
  - name: amount
    type: number
  - name: label
    description: display label
`)

	catalog, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(catalog) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(catalog))
	}
	if !catalog[0].Required {
		t.Errorf("expected sku required")
	}
	if catalog[2].Type != TypeString {
		t.Errorf("expected empty type to default to string, got %q", catalog[2].Type)
	}
}

func TestLoadCatalog_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no fields", "fields: []"},
		{"duplicate name", "fields:\n  - name: a\n  - name: a"},
		{"empty name", "fields:\n  - name: \"\""},
		{"bad type", "fields:\n  - name: a\n    type: decimal"},
		{"malformed yaml", "fields: ["},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeCatalogFile(t, tc.content)
			if _, err := LoadCatalog(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadCatalog_MissingFile(t *testing.T) {
	if _, err := LoadCatalog(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
