// server/internal/storage/disk.go
package storage

import (
	"context"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"fleetlog-api-server/internal/apperror"

	"github.com/google/uuid"
)

const billSubdir = "expense-bills"

// DiskStore keeps bills on the local filesystem under
// <dir>/expense-bills and hands out root-relative references like
// "/uploads/expense-bills/<name>". The same area is served statically
// by the router.
type DiskStore struct {
	dir      string // filesystem root of the upload area
	baseURL  string // public prefix persisted in references
	maxBytes int64
}

func NewDiskStore(dir, baseURL string, maxSizeMB int64) (*DiskStore, error) {
	if err := os.MkdirAll(filepath.Join(dir, billSubdir), 0o755); err != nil {
		return nil, apperror.Storage("failed to create upload directory", err)
	}
	return &DiskStore{
		dir:      dir,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		maxBytes: maxSizeMB << 20,
	}, nil
}

// Save writes the upload to disk under a generated name and returns its
// public reference. Nothing is persisted if validation fails.
func (s *DiskStore) Save(ctx context.Context, file *multipart.FileHeader) (string, error) {
	ext, _, err := checkFile(file, s.maxBytes)
	if err != nil {
		return "", err
	}

	src, err := openUpload(file)
	if err != nil {
		return "", err
	}
	defer src.Close()

	name := uuid.New().String() + ext
	dstPath := filepath.Join(s.dir, billSubdir, name)
	dst, err := os.Create(dstPath)
	if err != nil {
		return "", apperror.Storage("failed to store expense bill", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dstPath)
		return "", apperror.Storage("failed to store expense bill", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(dstPath)
		return "", apperror.Storage("failed to store expense bill", err)
	}

	return s.baseURL + "/" + billSubdir + "/" + name, nil
}

// Remove deletes the file behind a previously issued reference. A
// reference that does not resolve inside the bill area is rejected so a
// crafted path can never escape the upload directory.
func (s *DiskStore) Remove(ctx context.Context, ref string) error {
	name := path.Base(ref)
	if name == "." || name == "/" || strings.Contains(name, "..") {
		return apperror.Validation("invalid expense bill reference")
	}
	target := filepath.Join(s.dir, billSubdir, name)
	if err := os.Remove(target); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return apperror.Storage("failed to delete expense bill", err)
	}
	return nil
}
