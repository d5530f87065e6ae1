package store

import (
	"errors"
	"path/filepath"
	"testing"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.db")
	db, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMigrateFreshJournal(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	result, err := db.Migrate()
	if err != nil {
		t.Fatal(err)
	}
	if result.From != 0 || result.Version != 2 || !result.Changed {
		t.Errorf("result = %+v, want 0 -> 2 changed", result)
	}
}

func TestMigrateIdempotent(t *testing.T) {
	db := testDB(t)

	result, err := db.Migrate()
	if err != nil {
		t.Fatal(err)
	}
	if result.Changed {
		t.Error("second Migrate() should report Changed=false")
	}
	if result.From != 2 || result.Version != 2 {
		t.Errorf("result = %+v, want 2 -> 2 (deliveries + uploads)", result)
	}
}

func TestMigrateRejectsDirtySchema(t *testing.T) {
	db := testDB(t)
	if _, err := db.Exec(`UPDATE schema_migrations SET dirty = 1`); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); !errors.Is(err, ErrDirtySchema) {
		t.Errorf("Migrate() error = %v, want ErrDirtySchema", err)
	}
}

func TestRecordDeliveryAndList(t *testing.T) {
	db := testDB(t)

	for i, d := range []Delivery{
		{EntryID: "e1", Text: "first", Timestamp: "2026-01-02 10:00:00", Via: ViaDirect, Sheet: "Notes", DeliveredAt: 1000},
		{EntryID: "e2", Text: "second", Timestamp: "2026-01-02 10:00:05", Via: ViaDrain, Sheet: "Notes", DeliveredAt: 2000},
	} {
		if err := db.RecordDelivery(d); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}

	got, err := db.RecentDeliveries(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d deliveries, want 2", len(got))
	}
	if got[0].EntryID != "e2" || got[1].EntryID != "e1" {
		t.Errorf("order = [%s %s], want newest first", got[0].EntryID, got[1].EntryID)
	}
	if got[0].Via != ViaDrain || got[0].Timestamp != "2026-01-02 10:00:05" {
		t.Errorf("delivery = %+v", got[0])
	}
}

func TestRecordDeliveryIgnoresDuplicateEntry(t *testing.T) {
	db := testDB(t)

	d := Delivery{EntryID: "dup", Text: "x", Timestamp: "2026-01-02 10:00:00", Via: ViaDrain}
	if err := db.RecordDelivery(d); err != nil {
		t.Fatal(err)
	}
	if err := db.RecordDelivery(d); err != nil {
		t.Fatal(err)
	}
	n, err := db.DeliveryCount()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}

func TestRecentDeliveriesLimit(t *testing.T) {
	db := testDB(t)

	for i, id := range []string{"a", "b", "c"} {
		if err := db.RecordDelivery(Delivery{EntryID: id, Text: id, Timestamp: "t", Via: ViaDirect, DeliveredAt: int64(i + 1)}); err != nil {
			t.Fatal(err)
		}
	}
	got, err := db.RecentDeliveries(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].EntryID != "c" {
		t.Errorf("got %+v, want [c b]", got)
	}
}

func TestUploads(t *testing.T) {
	db := testDB(t)

	if err := db.RecordUpload(Upload{FileName: "a.png", URL: "https://drive.google.com/file/d/1/view"}); err != nil {
		t.Fatal(err)
	}
	got, err := db.RecentUploads(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].FileName != "a.png" {
		t.Fatalf("got %+v", got)
	}
	if got[0].UploadedAt == 0 {
		t.Error("uploaded_at not defaulted")
	}
}

func TestOpenCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "work", "journal.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = db.Close() }()
	if db.Path() != path {
		t.Errorf("Path() = %q, want %q", db.Path(), path)
	}
	if got := db.Stats().MaxOpenConnections; got != 1 {
		t.Errorf("max open conns = %d, want 1", got)
	}
}
