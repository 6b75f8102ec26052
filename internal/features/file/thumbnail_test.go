package file

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writeTestImage(t *testing.T, dir string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}

	path := filepath.Join(dir, "src.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create test image: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return path
}

func TestGenerateThumbnail(t *testing.T) {
	dir := t.TempDir()
	src := writeTestImage(t, dir, 640, 480)
	dst := filepath.Join(dir, "thumb.jpg")

	width, height, err := generateThumbnail(src, dst)
	if err != nil {
		t.Fatalf("generateThumbnail() error = %v", err)
	}
	if width != 640 || height != 480 {
		t.Errorf("source dimensions = %dx%d, want 640x480", width, height)
	}

	out, err := os.Open(dst)
	if err != nil {
		t.Fatalf("thumbnail not written: %v", err)
	}
	defer out.Close()

	cfg, format, err := image.DecodeConfig(out)
	if err != nil {
		t.Fatalf("failed to decode thumbnail: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("thumbnail format = %q, want jpeg", format)
	}
	if cfg.Width != thumbnailSize || cfg.Height != thumbnailSize {
		t.Errorf("thumbnail = %dx%d, want %dx%d", cfg.Width, cfg.Height, thumbnailSize, thumbnailSize)
	}
}

func TestGenerateThumbnailNotAnImage(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "not_image.txt")
	if err := os.WriteFile(src, []byte("plain text"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := generateThumbnail(src, filepath.Join(dir, "thumb.jpg")); err == nil {
		t.Error("generateThumbnail() expected error for non-image input")
	}
}

func TestIsImageMime(t *testing.T) {
	tests := []struct {
		mime string
		want bool
	}{
		{"image/png", true},
		{"image/jpeg", true},
		{"application/pdf", false},
		{"text/plain", false},
	}
	for _, tt := range tests {
		if got := isImageMime(tt.mime); got != tt.want {
			t.Errorf("isImageMime(%q) = %v, want %v", tt.mime, got, tt.want)
		}
	}
}
