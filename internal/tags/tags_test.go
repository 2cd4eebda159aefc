package tags

import "testing"

func TestIsMusicFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"song.mp3", true},
		{"song.MP3", true},
		{"song.flac", true},
		{"song.FLAC", true},
		{"song.opus", true},
		{"song.m4a", true},
		{"song.wav", false},
		{"song.txt", false},
		{"song", false},
		{"/path/to/music.flac", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := IsMusicFile(tt.path); got != tt.want {
				t.Errorf("IsMusicFile(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestReadUnsupportedContainer(t *testing.T) {
	if _, err := Read("song.wav"); err == nil {
		t.Fatal("Read(song.wav) error = nil, want UnsupportedFiletype")
	}
}

func TestWriteUnsupportedContainer(t *testing.T) {
	if err := (AudioTags{Path: "song.wav"}).Write(false); err == nil {
		t.Fatal("Write() error = nil, want UnsupportedFiletype")
	}
}
