package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"lumafab/internal/domain"
)

func TestFileStoreWriteSanitizesKeys(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	key, err := store.Write(context.Background(), "./nested/file.png", []byte("abc"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if key != "nested/file.png" {
		t.Fatalf("key = %q, want %q", key, "nested/file.png")
	}
	data, err := os.ReadFile(filepath.Join(store.BasePath(), "nested", "file.png"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "abc" {
		t.Fatalf("data = %q", data)
	}

	if _, err := store.Write(context.Background(), "../escape.png", []byte("x")); err == nil {
		t.Fatal("expected traversal key to be rejected")
	}
}

func TestSaveDesignImageUsesMimeExtension(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	img := domain.GeneratedImage{Data: []byte{0xff, 0xd8}, MimeType: "image/jpeg"}
	key, err := store.SaveDesignImage(context.Background(), "d-1", "scene", img)
	if err != nil {
		t.Fatalf("SaveDesignImage: %v", err)
	}
	if key != "d-1/scene.jpg" {
		t.Fatalf("key = %q, want %q", key, "d-1/scene.jpg")
	}

	img = domain.GeneratedImage{Data: []byte{1}, MimeType: "application/octet-stream"}
	key, err = store.SaveDesignImage(context.Background(), "d-1", "isolated", img)
	if err != nil {
		t.Fatalf("SaveDesignImage: %v", err)
	}
	if key != "d-1/isolated.png" {
		t.Fatalf("key = %q, want %q", key, "d-1/isolated.png")
	}
}

func TestFileStoreNilSafe(t *testing.T) {
	var store *FileStore
	if got := store.BasePath(); got != "" {
		t.Fatalf("BasePath() = %q, want empty", got)
	}
	if _, err := store.Write(context.Background(), "k", nil); err == nil {
		t.Fatal("expected error from nil store")
	}
}
