package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"
)

const MaxImageSize = 5 << 20

var (
	ErrTooLarge        = errors.New("file too large")
	ErrUnsupportedType = errors.New("unsupported image type")
)

var imageExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// upload is a validated profile image ready to be written somewhere.
type upload struct {
	name        string
	contentType string
	body        []byte
}

// readUpload enforces the size cap and sniffs the content type. The new name
// is a uuid with the extension of the detected type.
func readUpload(fh *multipart.FileHeader) (*upload, error) {
	if fh.Size > MaxImageSize {
		return nil, ErrTooLarge
	}

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	body, err := io.ReadAll(io.LimitReader(src, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(body) > MaxImageSize {
		return nil, ErrTooLarge
	}

	ct := http.DetectContentType(body)
	ext, ok := imageExt[ct]
	if !ok {
		return nil, ErrUnsupportedType
	}
	return &upload{name: uuid.NewString() + ext, contentType: ct, body: body}, nil
}

// Images writes uploaded profile images to Dir. Stored references are
// relative URL paths under Prefix.
type Images struct {
	Dir    string
	Prefix string
}

func NewImages(dir string) (*Images, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Images{Dir: dir, Prefix: "uploads"}, nil
}

// Save validates fh and stores it under a fresh name. It returns the
// reference to remember on the user record.
func (s *Images) Save(_ context.Context, fh *multipart.FileHeader) (string, error) {
	up, err := readUpload(fh)
	if err != nil {
		return "", err
	}

	dst, err := os.OpenFile(filepath.Join(s.Dir, up.name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(dst, bytes.NewReader(up.body)); err != nil {
		dst.Close()
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("close file: %w", err)
	}

	return path.Join(s.Prefix, up.name), nil
}

// Remove deletes a file previously returned by Save.
func (s *Images) Remove(_ context.Context, ref string) error {
	name := path.Base(ref)
	if name == "." || name == "/" {
		return nil
	}
	err := os.Remove(filepath.Join(s.Dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
