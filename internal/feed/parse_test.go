package feed

import (
	"errors"
	"strings"
	"testing"
)

func TestDetectFileType(t *testing.T) {
	tests := []struct {
		fileName string
		want     FileType
	}{
		{"feed.csv", FileTypeCSV},
		{"feed.CSV", FileTypeCSV},
		{"products.json", FileTypeJSON},
		{"catalog.xml", FileTypeXML},
		{"export.txt", FileTypeOther},
		{"noextension", FileTypeOther},
	}

	for _, tc := range tests {
		if got := DetectFileType(tc.fileName); got != tc.want {
			t.Errorf("DetectFileType(%q): expected %q, got %q", tc.fileName, tc.want, got)
		}
	}
}

func TestParseFile_DispatchByExtension(t *testing.T) {
	ds, err := ParseFile("feed.json", []byte(`[{"id":"1"}]`), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ds.FileType != FileTypeJSON {
		t.Errorf("expected fileType json, got %q", ds.FileType)
	}
	if len(ds.Rows) != 1 || ds.Rows[0]["id"] != "1" {
		t.Errorf("unexpected rows: %v", ds.Rows)
	}
}

func TestParseFile_SniffsUnknownExtension(t *testing.T) {
	tests := []struct {
		name    string
		content string
		header  string
	}{
		{"sniff json object", `{"id":"1"}`, "id"},
		{"sniff json array", `[{"id":"1"}]`, "id"},
		{"sniff xml", `<r><row><id>1</id></row></r>`, "id"},
		{"fallback csv", "id\n1", "id"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ds, err := ParseFile("feed.dat", []byte(tc.content), 0)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ds.FileType != FileTypeOther {
				t.Errorf("expected extension-derived fileType 'other', got %q", ds.FileType)
			}
			if len(ds.Headers) != 1 || ds.Headers[0] != tc.header {
				t.Errorf("expected header %q, got %v", tc.header, ds.Headers)
			}
		})
	}
}

func TestParseFile_SizeLimit(t *testing.T) {
	content := []byte(strings.Repeat("a", 100))

	_, err := ParseFile("big.csv", content, 50)
	if err == nil {
		t.Fatal("expected size limit error")
	}

	var tooLarge *FileTooLargeError
	if !errors.As(err, &tooLarge) {
		t.Fatalf("expected *FileTooLargeError, got %T", err)
	}
	if tooLarge.Size != 100 || tooLarge.Limit != 50 {
		t.Errorf("unexpected error fields: %+v", tooLarge)
	}
}

func TestParseFile_AttachesProvenance(t *testing.T) {
	ds, err := ParseFile("products.csv", []byte("id\n1\n2"), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ds.FileName != "products.csv" {
		t.Errorf("expected fileName recorded, got %q", ds.FileName)
	}
	if ds.FileSize != int64(len("id\n1\n2")) {
		t.Errorf("expected fileSize %d, got %d", len("id\n1\n2"), ds.FileSize)
	}
}

func TestDistinctValues(t *testing.T) {
	table := ParseCSV("category\nA\nB\nA\n\nC")

	got := table.DistinctValues("category")
	want := []string{"A", "B", "C"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}
