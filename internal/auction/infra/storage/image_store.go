package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ErrUnsafeContent means the uploaded file content is not a png or jpeg,
// whatever its extension claims.
var ErrUnsafeContent = errors.New("file content must be png or jpeg")

var allowedContentTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
}

// ImageStore keeps auction item images on local disk. It is deliberately
// thin; the auction core only ever sees the stored filename.
type ImageStore struct {
	dir string
}

func NewImageStore(dir string) (*ImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("image store: failed to create directory %s: %w", dir, err)
	}
	return &ImageStore{dir: dir}, nil
}

// Save sniffs the file content, rejects anything that is not png/jpeg and
// writes it under a generated name. Returns the stored filename.
func (s *ImageStore) Save(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("image store: failed to open upload: %w", err)
	}
	defer src.Close()

	head := make([]byte, 512)
	n, err := src.Read(head)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("image store: failed to read upload: %w", err)
	}

	ext, ok := allowedContentTypes[http.DetectContentType(head[:n])]
	if !ok {
		return "", ErrUnsafeContent
	}

	name := uuid.New().String() + ext
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("image store: failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := dst.Write(head[:n]); err != nil {
		return "", fmt.Errorf("image store: failed to write file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("image store: failed to write file: %w", err)
	}
	return name, nil
}
