package tags

// Read loads the canonical tag record from an audio file, dispatching on
// its container extension and hiding every per-container quirk behind
// AudioTags.
func Read(path string) (AudioTags, error) {
	ext, ok := containerFor(path)
	if !ok {
		return AudioTags{Path: path}, unsupportedFiletype(path)
	}
	switch ext {
	case ExtMP3:
		return readMP3(path)
	case ExtFLAC:
		return readFLAC(path)
	case ExtOpus:
		return readOpus(path)
	case ExtM4A:
		return readM4A(path)
	}
	return AudioTags{Path: path}, unsupportedFiletype(path)
}
