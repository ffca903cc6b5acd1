package schema

import (
	"reflect"
	"testing"
)

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		name      string
		source    string
		format    CategoryFormat
		separator string
		want      string
	}{
		{
			name:      "hierarchical with default separator",
			source:    "Electronics > Audio > Headphones",
			format:    FormatHierarchical,
			separator: " > ",
			want:      "Electronics > Audio > Headphones",
		},
		{
			name:      "hierarchical with slash separator",
			source:    "A > B > C",
			format:    FormatHierarchical,
			separator: "/",
			want:      "A/B/C",
		},
		{
			name:      "hierarchical trims ragged whitespace",
			source:    "  A >B>  C ",
			format:    FormatHierarchical,
			separator: " / ",
			want:      "A / B / C",
		},
		{
			name:      "flat keeps last segment",
			source:    "A > B > C",
			format:    FormatFlat,
			separator: " > ",
			want:      "C",
		},
		{
			name:      "flat on single segment",
			source:    "Shoes",
			format:    FormatFlat,
			separator: " > ",
			want:      "Shoes",
		},
		{
			name:      "single segment hierarchical",
			source:    "Shoes",
			format:    FormatHierarchical,
			separator: "/",
			want:      "Shoes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeCategory(tt.source, tt.format, tt.separator)
			if got != tt.want {
				t.Errorf("NormalizeCategory(%q) = %q, want %q", tt.source, got, tt.want)
			}
		})
	}
}

func TestAutoGenerateCategories(t *testing.T) {
	sources := []string{"A > B", "C", "A > B", ""}

	got := AutoGenerateCategories(sources, nil, FormatFlat, " > ")
	want := []CategoryMapping{
		{SourceCategory: "A > B", TargetCategory: "B"},
		{SourceCategory: "C", TargetCategory: "C"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("AutoGenerateCategories = %+v, want %+v", got, want)
	}
}

func TestAutoGenerateCategoriesPreservesEdits(t *testing.T) {
	existing := []CategoryMapping{
		{SourceCategory: "A > B", TargetCategory: "Custom Target"},
	}

	got := AutoGenerateCategories([]string{"A > B", "C > D"}, existing, FormatHierarchical, "/")

	if got[0].TargetCategory != "Custom Target" {
		t.Errorf("edited target overwritten: got %q", got[0].TargetCategory)
	}
	if got[1].TargetCategory != "C/D" {
		t.Errorf("new source target = %q, want %q", got[1].TargetCategory, "C/D")
	}
}

func TestAutoGenerateCategoriesDropsStaleSources(t *testing.T) {
	existing := []CategoryMapping{
		{SourceCategory: "Gone", TargetCategory: "Gone"},
		{SourceCategory: "Kept", TargetCategory: "Renamed"},
	}

	got := AutoGenerateCategories([]string{"Kept"}, existing, FormatHierarchical, " > ")
	want := []CategoryMapping{{SourceCategory: "Kept", TargetCategory: "Renamed"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("AutoGenerateCategories = %+v, want %+v", got, want)
	}
}
