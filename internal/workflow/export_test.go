package workflow

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/feedflow/feedflow/internal/feed"
	"github.com/feedflow/feedflow/internal/mapping"
	"github.com/feedflow/feedflow/internal/schema"
)

func exportSchema() schema.Schema {
	return schema.Schema{
		Name:              "Feed",
		CategoryFormat:    schema.FormatHierarchical,
		CategorySeparator: " > ",
		Fields: []schema.Field{
			{Name: "id", Type: mapping.TypeString, Required: true, SourceField: "sku"},
			{Name: "title", Type: mapping.TypeString, Required: true, SourceField: "name"},
			{Name: "category", Type: mapping.TypeString, Required: true, SourceField: "cat"},
			{Name: "brand", Type: mapping.TypeString},
		},
		CategoryMappings: []schema.CategoryMapping{
			{SourceCategory: "Home>Kitchen", TargetCategory: "Kitchenware"},
		},
	}
}

func exportDataset() *feed.Dataset {
	return &feed.Dataset{
		Table: feed.Table{
			Headers: []string{"sku", "name", "cat"},
			Rows: []feed.Record{
				{"sku": "1", "name": "Widget", "cat": "Home>Kitchen"},
				{"sku": "2", "name": "Gadget", "cat": "Home > Office"},
				{"sku": "3", "name": "Cable", "cat": ""},
			},
		},
		FileName: "products.csv",
		FileType: feed.FileTypeCSV,
	}
}

func TestTransform(t *testing.T) {
	headers, rows := Transform(exportDataset(), exportSchema())

	if want := []string{"id", "title", "category", "brand"}; !reflect.DeepEqual(headers, want) {
		t.Fatalf("headers = %v, want %v", headers, want)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}

	// Known source categories go through the mapping table.
	if rows[0]["category"] != "Kitchenware" {
		t.Errorf("mapped category = %q, want Kitchenware", rows[0]["category"])
	}
	// Unknown ones are normalized on the fly.
	if rows[1]["category"] != "Home > Office" {
		t.Errorf("fallback category = %q", rows[1]["category"])
	}
	// Unsourced fields stay empty.
	if rows[0]["brand"] != "" {
		t.Errorf("unsourced field = %q, want empty", rows[0]["brand"])
	}
	if rows[2]["category"] != "" {
		t.Errorf("empty source category = %q, want empty", rows[2]["category"])
	}
}

func TestWriteCSV(t *testing.T) {
	headers, rows := Transform(exportDataset(), exportSchema())
	data, err := WriteCSV(headers, rows)
	if err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want header + 3 rows:\n%s", len(lines), data)
	}
	if lines[0] != "id,title,category,brand" {
		t.Errorf("header line = %q", lines[0])
	}
	if lines[1] != "1,Widget,Kitchenware," {
		t.Errorf("first row = %q", lines[1])
	}
}

func TestWriteJSON(t *testing.T) {
	_, rows := Transform(exportDataset(), exportSchema())
	data, err := WriteJSON(rows)
	if err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var decoded []map[string]string
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if len(decoded) != 3 {
		t.Fatalf("got %d objects, want 3", len(decoded))
	}
	if decoded[0]["id"] != "1" || decoded[0]["category"] != "Kitchenware" {
		t.Errorf("first object = %v", decoded[0])
	}
}
