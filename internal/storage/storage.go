// server/internal/storage/storage.go
package storage

import (
	"context"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"fleetlog-api-server/internal/apperror"
)

// BillStore owns the lifecycle of uploaded expense bills: save on
// create, remove on failure or replacement. The reference string it
// returns is what gets persisted on the log record.
type BillStore interface {
	Save(ctx context.Context, file *multipart.FileHeader) (string, error)
	Remove(ctx context.Context, ref string) error
}

// allowedExtensions restricts bills to images and PDFs.
var allowedExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".pdf":  "application/pdf",
}

// checkFile validates size and type before any bytes are written.
func checkFile(file *multipart.FileHeader, maxBytes int64) (ext, contentType string, err error) {
	if file == nil {
		return "", "", apperror.Validation("expense bill file is required")
	}
	if file.Size > maxBytes {
		return "", "", apperror.Validation("expense bill file exceeds the size limit")
	}
	ext = strings.ToLower(filepath.Ext(file.Filename))
	contentType, ok := allowedExtensions[ext]
	if !ok {
		return "", "", apperror.Validation("expense bill must be an image or a PDF")
	}
	return ext, contentType, nil
}

func openUpload(file *multipart.FileHeader) (io.ReadCloser, error) {
	src, err := file.Open()
	if err != nil {
		return nil, apperror.Storage("failed to read uploaded file", err)
	}
	return src, nil
}
