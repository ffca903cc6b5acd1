package workflow

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/feedflow/feedflow/internal/history"
	"github.com/feedflow/feedflow/internal/mapping"
	"github.com/feedflow/feedflow/internal/schema"
)

const sampleCSV = `id,title,price,currency,category,link
1,Widget,9.99,USD,Home > Kitchen,http://shop/1
2,Gadget,19.99,USD,Home > Office,http://shop/2
3,Cable,4.99,USD,Home > Kitchen,http://shop/3`

func newTestService() (*Service, *history.Memory) {
	repo := history.NewMemory()
	return NewService(repo, mapping.DefaultCatalog(), Config{KeepFullRows: true}), repo
}

func TestServiceSessionLifecycle(t *testing.T) {
	svc, _ := newTestService()

	sess := svc.CreateSession()
	if sess.ID == "" {
		t.Fatal("session has no id")
	}

	got, err := svc.Session(sess.ID)
	if err != nil || got != sess {
		t.Fatalf("Session(%s) = %v, %v", sess.ID, got, err)
	}

	if err := svc.RemoveSession(sess.ID); err != nil {
		t.Fatalf("RemoveSession: %v", err)
	}
	if _, err := svc.Session(sess.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("removed session lookup = %v, want ErrSessionNotFound", err)
	}
	if err := svc.RemoveSession(sess.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("second remove = %v, want ErrSessionNotFound", err)
	}
}

func TestSessionHappyPath(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()
	sess := svc.CreateSession()

	if sess.State() != StateEmpty {
		t.Fatalf("initial state = %v", sess.State())
	}

	dataset, err := sess.Upload(ctx, "products.csv", []byte(sampleCSV))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if len(dataset.Rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(dataset.Rows))
	}
	if sess.State() != StateFieldsDrafted {
		t.Fatalf("state after upload = %v", sess.State())
	}

	// Schema generation is gated on validation.
	if _, err := sess.GenerateSchema("", ""); !errors.Is(err, ErrNotValidated) {
		t.Fatalf("GenerateSchema before validation = %v, want ErrNotValidated", err)
	}

	mappings, err := sess.AutoMap()
	if err != nil {
		t.Fatalf("AutoMap: %v", err)
	}
	if mappings["id"] != "id" || mappings["category"] != "category" {
		t.Fatalf("auto mappings = %v", mappings)
	}

	rec, err := sess.ValidateMappings(ctx, "")
	if err != nil {
		t.Fatalf("ValidateMappings: %v", err)
	}
	if rec.ID == "" || rec.Name != "products.csv mapping" {
		t.Errorf("mapping snapshot meta = %+v", rec.Meta)
	}
	if sess.State() != StateFieldsValidated {
		t.Fatalf("state after validation = %v", sess.State())
	}

	sch, err := sess.GenerateSchema("", "")
	if err != nil {
		t.Fatalf("GenerateSchema: %v", err)
	}
	if sch.Name != "products.csv schema" {
		t.Errorf("default schema name = %q", sch.Name)
	}
	if len(sch.CategoryMappings) != 2 {
		t.Fatalf("category mappings = %+v, want 2 distinct sources", sch.CategoryMappings)
	}
	if sess.State() != StateCategoriesConfigured {
		t.Fatalf("state after schema = %v", sess.State())
	}

	if _, err := sess.Export(ctx, "csv"); !errors.Is(err, ErrNotFinalized) {
		t.Fatalf("Export before finalize = %v, want ErrNotFinalized", err)
	}

	if _, err := sess.Finalize(ctx, ""); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if sess.State() != StateFinalized {
		t.Fatalf("state after finalize = %v", sess.State())
	}

	export, err := sess.Export(ctx, "csv")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if export.RecordCount != 3 || export.FileName != "products_normalized.csv" {
		t.Errorf("export = %+v", export)
	}
	if !strings.HasPrefix(string(export.Data), "id,title,") {
		t.Errorf("export header line = %q", strings.SplitN(string(export.Data), "\n", 2)[0])
	}

	// One snapshot per stage.
	uploads, _ := repo.ListUploads(ctx)
	mappingsList, _ := repo.ListMappings(ctx)
	schemas, _ := repo.ListSchemas(ctx)
	exports, _ := repo.ListExports(ctx)
	if len(uploads) != 1 || len(mappingsList) != 1 || len(schemas) != 1 || len(exports) != 1 {
		t.Errorf("snapshot counts = %d/%d/%d/%d, want 1 each",
			len(uploads), len(mappingsList), len(schemas), len(exports))
	}
}

func TestSessionUploadRejectsEmpty(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	sess := svc.CreateSession()

	if _, err := sess.Upload(ctx, "empty.csv", []byte("")); !errors.Is(err, ErrEmptyDataset) {
		t.Errorf("empty upload = %v, want ErrEmptyDataset", err)
	}
	if sess.State() != StateEmpty {
		t.Errorf("state after rejected upload = %v", sess.State())
	}
}

func TestSessionMappingEditRegressesState(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	sess := svc.CreateSession()

	if _, err := sess.Upload(ctx, "products.csv", []byte(sampleCSV)); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if _, err := sess.AutoMap(); err != nil {
		t.Fatalf("AutoMap: %v", err)
	}
	if _, err := sess.ValidateMappings(ctx, ""); err != nil {
		t.Fatalf("ValidateMappings: %v", err)
	}
	if _, err := sess.GenerateSchema("", ""); err != nil {
		t.Fatalf("GenerateSchema: %v", err)
	}

	if err := sess.SetMapping("brand", "title"); err != nil {
		t.Fatalf("SetMapping: %v", err)
	}
	if sess.State() != StateFieldsDrafted {
		t.Errorf("state after mapping edit = %v, want fields_drafted", sess.State())
	}
	if _, err := sess.Schema(); !errors.Is(err, ErrSchemaNotGenerated) {
		t.Errorf("stale schema access = %v, want ErrSchemaNotGenerated", err)
	}
}

func TestSessionValidateReportsMissing(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	sess := svc.CreateSession()

	if _, err := sess.Upload(ctx, "partial.csv", []byte("sku,name\n1,Widget")); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	_, err := sess.ValidateMappings(ctx, "")
	var missing *mapping.MissingRequiredFieldsError
	if !errors.As(err, &missing) {
		t.Fatalf("ValidateMappings = %v, want MissingRequiredFieldsError", err)
	}
	if len(missing.Fields) == 0 {
		t.Error("missing fields list is empty")
	}
}

func TestSessionOperationsRequireDataset(t *testing.T) {
	svc, _ := newTestService()
	sess := svc.CreateSession()

	if _, err := sess.AutoMap(); !errors.Is(err, ErrNoDataset) {
		t.Errorf("AutoMap = %v, want ErrNoDataset", err)
	}
	if err := sess.SetMapping("id", "sku"); !errors.Is(err, ErrNoDataset) {
		t.Errorf("SetMapping = %v, want ErrNoDataset", err)
	}
	if _, err := sess.Dataset(); !errors.Is(err, ErrNoDataset) {
		t.Errorf("Dataset = %v, want ErrNoDataset", err)
	}
}

func TestSessionSchemaEdits(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	sess := svc.CreateSession()

	if _, err := sess.Upload(ctx, "products.csv", []byte(sampleCSV)); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if _, err := sess.AutoMap(); err != nil {
		t.Fatalf("AutoMap: %v", err)
	}
	if _, err := sess.ValidateMappings(ctx, ""); err != nil {
		t.Fatalf("ValidateMappings: %v", err)
	}
	if _, err := sess.GenerateSchema("Feed", ""); err != nil {
		t.Fatalf("GenerateSchema: %v", err)
	}

	sch, err := sess.EditSchema(func(b *schema.Builder) error {
		return b.AddField(schema.Field{Name: "warranty", Type: mapping.TypeString})
	})
	if err != nil {
		t.Fatalf("EditSchema: %v", err)
	}
	if sch.Fields[len(sch.Fields)-1].Name != "warranty" {
		t.Errorf("added field missing from %+v", sch.Fields)
	}

	// Protected-field violations surface through EditSchema unchanged.
	_, err = sess.EditSchema(func(b *schema.Builder) error {
		return b.RemoveField("id")
	})
	var prot *schema.ProtectedFieldError
	if !errors.As(err, &prot) {
		t.Errorf("RemoveField(id) via EditSchema = %v, want ProtectedFieldError", err)
	}

	// Editing after finalize reopens the schema.
	if _, err := sess.Finalize(ctx, ""); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if _, err := sess.EditSchema(func(b *schema.Builder) error {
		b.SetDescription("updated")
		return nil
	}); err != nil {
		t.Fatalf("EditSchema after finalize: %v", err)
	}
	if sess.State() != StateCategoriesConfigured {
		t.Errorf("state after post-finalize edit = %v", sess.State())
	}
}

func TestSessionRegenerateCategoriesKeepsEdits(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	sess := svc.CreateSession()

	if _, err := sess.Upload(ctx, "products.csv", []byte(sampleCSV)); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if _, err := sess.AutoMap(); err != nil {
		t.Fatalf("AutoMap: %v", err)
	}
	if _, err := sess.ValidateMappings(ctx, ""); err != nil {
		t.Fatalf("ValidateMappings: %v", err)
	}
	if _, err := sess.GenerateSchema("", ""); err != nil {
		t.Fatalf("GenerateSchema: %v", err)
	}

	if _, err := sess.EditSchema(func(b *schema.Builder) error {
		return b.SetCategoryTarget("Home > Kitchen", "Kitchenware")
	}); err != nil {
		t.Fatalf("SetCategoryTarget: %v", err)
	}

	sch, err := sess.RegenerateCategories()
	if err != nil {
		t.Fatalf("RegenerateCategories: %v", err)
	}
	for _, m := range sch.CategoryMappings {
		if m.SourceCategory == "Home > Kitchen" && m.TargetCategory != "Kitchenware" {
			t.Errorf("edited category target lost: %+v", m)
		}
	}
}

func TestSessionHistoryRestore(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	sess := svc.CreateSession()

	if _, err := sess.Upload(ctx, "products.csv", []byte(sampleCSV)); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if _, err := sess.AutoMap(); err != nil {
		t.Fatalf("AutoMap: %v", err)
	}
	mapRec, err := sess.ValidateMappings(ctx, "v1")
	if err != nil {
		t.Fatalf("ValidateMappings: %v", err)
	}
	if _, err := sess.GenerateSchema("Feed", ""); err != nil {
		t.Fatalf("GenerateSchema: %v", err)
	}
	schRec, err := sess.Finalize(ctx, "v1")
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	uploads, err := svc.History().ListUploads(ctx)
	if err != nil || len(uploads) != 1 {
		t.Fatalf("ListUploads = %v, %v", uploads, err)
	}

	// Fresh session, fully re-hydrated from snapshots.
	fresh := svc.CreateSession()
	dataset, err := fresh.LoadUpload(ctx, uploads[0].ID)
	if err != nil {
		t.Fatalf("LoadUpload: %v", err)
	}
	if len(dataset.Rows) != 3 {
		t.Errorf("re-hydrated rows = %d, want 3", len(dataset.Rows))
	}

	if _, err := fresh.LoadMapping(ctx, mapRec.ID); err != nil {
		t.Fatalf("LoadMapping: %v", err)
	}
	mappings, err := fresh.Mappings()
	if err != nil || mappings["id"] != "id" {
		t.Fatalf("restored mappings = %v, %v", mappings, err)
	}

	// A restored mapping still needs validation before the schema loads.
	if _, err := fresh.LoadSchema(ctx, schRec.ID); !errors.Is(err, ErrNotValidated) {
		t.Fatalf("LoadSchema before validation = %v, want ErrNotValidated", err)
	}
	if _, err := fresh.ValidateMappings(ctx, ""); err != nil {
		t.Fatalf("ValidateMappings: %v", err)
	}
	sch, err := fresh.LoadSchema(ctx, schRec.ID)
	if err != nil {
		t.Fatalf("LoadSchema: %v", err)
	}
	if sch.Name != "Feed" {
		t.Errorf("restored schema name = %q", sch.Name)
	}

	if _, err := fresh.LoadMapping(ctx, "missing"); !errors.Is(err, history.ErrNotFound) {
		t.Errorf("LoadMapping(missing) = %v, want history.ErrNotFound", err)
	}
}
