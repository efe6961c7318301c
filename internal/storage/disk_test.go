package storage

import (
	"bytes"
	"context"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fleetlog-api-server/internal/apperror"
)

// uploadHeader builds a real multipart.FileHeader the way gin would
// hand it to the store.
func uploadHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("expenseBill", filename)
	if err != nil {
		t.Fatalf("CreateFormFile failed: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("write form file failed: %v", err)
	}
	mw.Close()

	form, err := multipart.NewReader(&body, mw.Boundary()).ReadForm(32 << 20)
	if err != nil {
		t.Fatalf("ReadForm failed: %v", err)
	}
	t.Cleanup(func() { form.RemoveAll() })

	return form.File["expenseBill"][0]
}

func newTestStore(t *testing.T) (*DiskStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewDiskStore(dir, "/uploads", 1)
	if err != nil {
		t.Fatalf("NewDiskStore failed: %v", err)
	}
	return store, dir
}

func TestDiskStoreSaveAndRemove(t *testing.T) {
	store, dir := newTestStore(t)

	ref, err := store.Save(context.Background(), uploadHeader(t, "bill.jpg", []byte("jpegdata")))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !strings.HasPrefix(ref, "/uploads/expense-bills/") {
		t.Fatalf("unexpected reference: %q", ref)
	}

	onDisk := filepath.Join(dir, billSubdir, filepath.Base(ref))
	data, err := os.ReadFile(onDisk)
	if err != nil {
		t.Fatalf("saved file missing: %v", err)
	}
	if string(data) != "jpegdata" {
		t.Fatalf("saved content mismatch: %q", data)
	}

	if err := store.Remove(context.Background(), ref); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := os.Stat(onDisk); !os.IsNotExist(err) {
		t.Fatal("file still present after Remove")
	}
}

func TestDiskStoreRemoveMissingIsNoError(t *testing.T) {
	store, _ := newTestStore(t)
	if err := store.Remove(context.Background(), "/uploads/expense-bills/gone.jpg"); err != nil {
		t.Fatalf("removing an already-deleted file must not fail: %v", err)
	}
}

func TestDiskStoreRejectsWrongType(t *testing.T) {
	store, dir := newTestStore(t)

	_, err := store.Save(context.Background(), uploadHeader(t, "report.exe", []byte("nope")))
	if err == nil {
		t.Fatal("expected rejection of a non image/PDF upload")
	}
	if !apperror.IsKind(err, apperror.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	entries, _ := os.ReadDir(filepath.Join(dir, billSubdir))
	if len(entries) != 0 {
		t.Fatalf("rejected upload must not leave files behind, found %d", len(entries))
	}
}

func TestDiskStoreRejectsOversize(t *testing.T) {
	store, _ := newTestStore(t) // 1 MB cap

	big := bytes.Repeat([]byte("a"), 2<<20)
	_, err := store.Save(context.Background(), uploadHeader(t, "bill.png", big))
	if err == nil {
		t.Fatal("expected rejection of an oversized upload")
	}
	if !apperror.IsKind(err, apperror.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDiskStoreRemoveRejectsTraversal(t *testing.T) {
	store, dir := newTestStore(t)

	// A sibling file outside the bill area must be unreachable.
	outside := filepath.Join(dir, "secret.txt")
	if err := os.WriteFile(outside, []byte("keep"), 0o644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	_ = store.Remove(context.Background(), "/uploads/expense-bills/../secret.txt")

	if _, err := os.Stat(outside); err != nil {
		t.Fatal("traversal reference escaped the bill area")
	}
}

func TestDiskStoreSaveMissingFile(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.Save(context.Background(), nil)
	if err == nil {
		t.Fatal("expected error for a missing file")
	}
	if !apperror.IsKind(err, apperror.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
