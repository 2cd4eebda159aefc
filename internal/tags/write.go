package tags

import "github.com/azuline/rose-go/internal/rose"

// Write writes t back to its container. With validate, a non-empty release
// type outside the closed set of §3, or "unknown", is rejected with
// UnsupportedTagValue before anything is touched on disk.
func (t AudioTags) Write(validate bool) error {
	if validate && !rose.IsValidReleaseType(t.ReleaseType) && t.ReleaseType != "" {
		return unsupportedTagValue(t.Path, "releasetype", string(t.ReleaseType))
	}

	ext, ok := containerFor(t.Path)
	if !ok {
		return unsupportedFiletype(t.Path)
	}
	switch ext {
	case ExtMP3:
		return writeMP3(t)
	case ExtFLAC:
		return writeFLAC(t)
	case ExtOpus:
		return writeOpus(t)
	case ExtM4A:
		return writeM4A(t)
	}
	return unsupportedFiletype(t.Path)
}
