package feed

import (
	"reflect"
	"testing"
)

func TestParseJSON_ArrayOfObjects(t *testing.T) {
	table := ParseJSON(`[{"a":1,"b":2},{"a":3}]`)

	if !reflect.DeepEqual(table.Headers, []string{"a", "b"}) {
		t.Fatalf("expected headers [a b] in first-seen order, got %v", table.Headers)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(table.Rows))
	}
	if table.Rows[0]["a"] != "1" || table.Rows[0]["b"] != "2" {
		t.Errorf("unexpected row 0: %v", table.Rows[0])
	}
	if table.Rows[1]["b"] != "" {
		t.Errorf("expected missing key to be empty string, got %q", table.Rows[1]["b"])
	}
}

func TestParseJSON_KeyOrderAcrossElements(t *testing.T) {
	// Keys discovered in later elements append after earlier ones.
	table := ParseJSON(`[{"z":1},{"a":2,"z":3},{"m":4}]`)

	want := []string{"z", "a", "m"}
	if !reflect.DeepEqual(table.Headers, want) {
		t.Errorf("expected headers %v, got %v", want, table.Headers)
	}
}

func TestParseJSON_SingleObject(t *testing.T) {
	table := ParseJSON(`{"name":"Widget","price":9.99}`)

	if !reflect.DeepEqual(table.Headers, []string{"name", "price"}) {
		t.Fatalf("unexpected headers: %v", table.Headers)
	}
	if len(table.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(table.Rows))
	}
	if table.Rows[0]["price"] != "9.99" {
		t.Errorf("expected price '9.99', got %q", table.Rows[0]["price"])
	}
}

func TestParseJSON_ValueCoercion(t *testing.T) {
	table := ParseJSON(`[{"s":"text","n":1.50,"b":true,"nil":null,"obj":{"x": 1},"arr":[1, 2]}]`)

	row := table.Rows[0]
	tests := []struct {
		key  string
		want string
	}{
		{"s", "text"},
		{"n", "1.50"},
		{"b", "true"},
		{"nil", ""},
		{"obj", `{"x":1}`},
		{"arr", "[1,2]"},
	}
	for _, tc := range tests {
		if got := row[tc.key]; got != tc.want {
			t.Errorf("key %q: expected %q, got %q", tc.key, tc.want, got)
		}
	}
}

func TestParseJSON_DegradesToEmpty(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed", `{"a":`},
		{"empty array", `[]`},
		{"scalar", `42`},
		{"string", `"hello"`},
		{"null", `null`},
		{"empty input", ``},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if table := ParseJSON(tc.content); !table.Empty() {
				t.Errorf("expected empty table, got headers=%v rows=%d", table.Headers, len(table.Rows))
			}
		})
	}
}

func TestParseJSON_NonObjectElementsKeepRowCount(t *testing.T) {
	table := ParseJSON(`[{"a":1},2,{"a":3}]`)

	if len(table.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(table.Rows))
	}
	if table.Rows[1]["a"] != "" {
		t.Errorf("expected non-object row to hold empty values, got %v", table.Rows[1])
	}
}
