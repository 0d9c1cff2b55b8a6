package source

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	f.Close()
}

func TestDirSource(t *testing.T) {
	dir := t.TempDir()
	// Written out of order; pages must come back in filename order.
	for _, i := range []int{2, 0, 1} {
		writePNG(t, filepath.Join(dir, fmt.Sprintf("scan_%02d.png", i)), 100+i, 100)
	}
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0644)

	src, err := Open(dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer src.Close()

	if src.PageCount() != 3 {
		t.Fatalf("Expected 3 pages, got %d", src.PageCount())
	}
	for i := 0; i < 3; i++ {
		img, err := src.RenderPage(i, 120)
		if err != nil {
			t.Fatalf("RenderPage(%d) failed: %v", i, err)
		}
		if img.Bounds().Dx() != 100+i {
			t.Errorf("Page %d: expected width %d, got %d", i, 100+i, img.Bounds().Dx())
		}
	}
}

func TestDirSourceSingleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.png")
	writePNG(t, path, 200, 100)

	src, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer src.Close()

	if src.PageCount() != 1 {
		t.Errorf("Expected 1 page, got %d", src.PageCount())
	}
}

func TestDirSourceEmptyDir(t *testing.T) {
	if _, err := Open(t.TempDir()); err == nil {
		t.Error("Expected error for a directory without images")
	}
}

func TestOpenMissingPath(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("Expected error for a missing path")
	}
}
