package tags

import (
	"path/filepath"
	"testing"
)

func TestReadNonexistentFile(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "missing.flac")); err == nil {
		t.Fatal("Read on a missing file: want error, got nil")
	}
}

func TestReadDispatchesByExtension(t *testing.T) {
	dir := t.TempDir()

	mp3Path := filepath.Join(dir, "song.mp3")
	createMinimalMP3(t, mp3Path)
	if _, err := Read(mp3Path); err != nil {
		t.Errorf("Read(.mp3): %v", err)
	}

	flacPath := filepath.Join(dir, "song.flac")
	buildMinimalFLAC(t, flacPath, 44100, 44100*10)
	if _, err := Read(flacPath); err != nil {
		t.Errorf("Read(.flac): %v", err)
	}

	opusPath := filepath.Join(dir, "song.opus")
	buildMinimalOpus(t, opusPath, 0, 48000*10)
	if _, err := Read(opusPath); err != nil {
		t.Errorf("Read(.opus): %v", err)
	}
}
