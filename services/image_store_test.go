package services

import (
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// 1x1 transparent PNG
const tinyPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

func TestImageStoreSaveBase64(t *testing.T) {
	dir := t.TempDir()
	store := NewImageStore(dir)

	url, err := store.SaveBase64("data:image/png;base64,"+tinyPNG, "room")
	if err != nil {
		t.Fatalf("SaveBase64: %v", err)
	}
	if !strings.HasPrefix(url, "/uploads/room/") || !strings.HasSuffix(url, ".png") {
		t.Fatalf("url = %q", url)
	}
	if _, err := os.Stat(filepath.Join(dir, "room", filepath.Base(url))); err != nil {
		t.Fatalf("stored file: %v", err)
	}

	text := base64.StdEncoding.EncodeToString([]byte("not an image"))
	for name, in := range map[string]string{"not base64": "%%%", "not an image": text, "empty": ""} {
		if _, err := store.SaveBase64(in, "room"); !errors.Is(err, ErrInvalidImage) {
			t.Errorf("%s: got %v", name, err)
		}
	}
}

func TestImageStoreRemove(t *testing.T) {
	dir := t.TempDir()
	store := NewImageStore(dir)

	url, err := store.SaveBase64(tinyPNG, "room")
	if err != nil {
		t.Fatalf("SaveBase64: %v", err)
	}
	if err := store.Remove(url); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "room", filepath.Base(url))); !os.IsNotExist(err) {
		t.Fatalf("file still present: %v", err)
	}

	for _, bad := range []string{"/elsewhere/x.png", "/uploads/../secret.txt"} {
		if err := store.Remove(bad); err == nil {
			t.Errorf("Remove(%q) should refuse", bad)
		}
	}
}
