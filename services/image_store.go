package services

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

const maxImageBytes = 5 << 20

// ImageStore writes uploaded images below Dir; they are served under URLPrefix.
type ImageStore struct {
	Dir       string
	URLPrefix string
}

func NewImageStore(dir string) *ImageStore {
	return &ImageStore{Dir: dir, URLPrefix: "/uploads"}
}

// SaveBase64 stores a base64 image (a data: URL prefix is accepted) under subdir and
// returns its public path.
func (s *ImageStore) SaveBase64(b64, subdir string) (string, error) {
	if idx := strings.Index(b64, "base64,"); idx >= 0 {
		b64 = b64[idx+7:]
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(b64))
	if err != nil {
		return "", ErrInvalidImage
	}
	if len(data) == 0 || len(data) > maxImageBytes {
		return "", ErrInvalidImage
	}
	ext, ok := imageExtensions[http.DetectContentType(data)]
	if !ok {
		return "", ErrInvalidImage
	}

	dir := filepath.Join(s.Dir, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir uploads dir: %w", err)
	}

	filename := fmt.Sprintf("%d%s", time.Now().UnixNano(), ext)
	if err := os.WriteFile(filepath.Join(dir, filename), data, 0o644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return s.URLPrefix + "/" + filepath.ToSlash(filepath.Join(subdir, filename)), nil
}

// Remove deletes an image saved by SaveBase64, given its public path.
func (s *ImageStore) Remove(publicPath string) error {
	rel, ok := strings.CutPrefix(publicPath, s.URLPrefix+"/")
	if !ok || rel == "" {
		return fmt.Errorf("not an uploaded image: %s", publicPath)
	}
	path := filepath.Join(s.Dir, filepath.FromSlash(rel))
	if !strings.HasPrefix(path, filepath.Clean(s.Dir)+string(filepath.Separator)) {
		return fmt.Errorf("not an uploaded image: %s", publicPath)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}
