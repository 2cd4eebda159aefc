package tags

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

var testJPEGData = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0, 0, 0, 0, 0, 0}
var testPNGData = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0, 0, 0, 0, 0}

func TestFindFolderArtPriority(t *testing.T) {
	dir := t.TempDir()

	// cover.jpg precedes folder.jpg in coverArtFilenames, so it wins.
	if err := os.WriteFile(filepath.Join(dir, "cover.jpg"), append([]byte{}, testJPEGData...), 0o600); err != nil {
		t.Fatalf("write cover.jpg: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "folder.jpg"), []byte("folder art bytes"), 0o600); err != nil {
		t.Fatalf("write folder.jpg: %v", err)
	}

	data, mimeType, err := FindFolderArt(dir)
	if err != nil {
		t.Fatalf("FindFolderArt: %v", err)
	}
	if !bytes.Equal(data, testJPEGData) {
		t.Error("expected cover.jpg contents, got folder.jpg")
	}
	if mimeType != "image/jpeg" {
		t.Errorf("mimeType = %q, want image/jpeg", mimeType)
	}
}

func TestFindFolderArtPNG(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "album.png"), append([]byte{}, testPNGData...), 0o600); err != nil {
		t.Fatalf("write album.png: %v", err)
	}

	data, mimeType, err := FindFolderArt(dir)
	if err != nil {
		t.Fatalf("FindFolderArt: %v", err)
	}
	if !bytes.Equal(data, testPNGData) {
		t.Error("expected album.png contents")
	}
	if mimeType != "image/png" {
		t.Errorf("mimeType = %q, want image/png", mimeType)
	}
}

func TestFindFolderArtUppercase(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "COVER.JPG"), append([]byte{}, testJPEGData...), 0o600); err != nil {
		t.Fatalf("write COVER.JPG: %v", err)
	}

	data, _, err := FindFolderArt(dir)
	if err != nil {
		t.Fatalf("FindFolderArt: %v", err)
	}
	if data == nil {
		t.Error("expected cover art data from COVER.JPG, got nil")
	}
}

func TestFindFolderArtEmptyDir(t *testing.T) {
	dir := t.TempDir()

	data, mimeType, err := FindFolderArt(dir)
	if err != nil {
		t.Fatalf("FindFolderArt: %v", err)
	}
	if data != nil {
		t.Error("expected nil data for empty dir")
	}
	if mimeType != "" {
		t.Error("expected empty mimeType for empty dir")
	}
}

func TestFlacPictureCommentRoundTrip(t *testing.T) {
	encoded, ok := encodeFlacPictureComment(testJPEGData, "image/jpeg")
	if !ok {
		t.Fatal("encodeFlacPictureComment returned ok=false")
	}

	data, mimeType, ok := decodeFlacPictureComment(encoded)
	if !ok {
		t.Fatal("decodeFlacPictureComment returned ok=false")
	}
	if !bytes.Equal(data, testJPEGData) {
		t.Errorf("decoded data = %v, want %v", data, testJPEGData)
	}
	if mimeType != "image/jpeg" {
		t.Errorf("mimeType = %q, want image/jpeg", mimeType)
	}
}

func TestFlacPictureCommentEmptyInput(t *testing.T) {
	if _, ok := encodeFlacPictureComment(nil, "image/jpeg"); ok {
		t.Error("encodeFlacPictureComment(nil) should return ok=false")
	}
}

func TestFlacPictureCommentDecodeGarbage(t *testing.T) {
	if _, _, ok := decodeFlacPictureComment("not-base64!!!"); ok {
		t.Error("decodeFlacPictureComment on garbage should return ok=false")
	}
	if _, _, ok := decodeFlacPictureComment(""); ok {
		t.Error("decodeFlacPictureComment(\"\") should return ok=false")
	}
}
