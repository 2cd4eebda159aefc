package tags

import (
	"fmt"

	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	goflac "github.com/go-flac/go-flac"
)

// writeFLAC rewrites a FLAC file's VORBIS_COMMENT block wholesale rather
// than patching in place — the same "read every existing comment, drop
// ours, re-add" approach writeVorbisStyleTags uses for the comment values
// themselves. When t carries cover art, every PICTURE block is replaced by
// a single front-cover block; without cover art the existing PICTURE
// blocks are kept.
func writeFLAC(t AudioTags) error {
	f, err := goflac.ParseFile(t.Path)
	if err != nil {
		return unsupportedFiletype(t.Path)
	}

	var vendor string
	var comments []vorbisComment
	cmtIdx := -1
	for i, meta := range f.Meta {
		if meta.Type == goflac.VorbisComment {
			if v, parsed, perr := parseVorbisCommentBlock(meta.Data); perr == nil {
				vendor, comments = v, parsed
			}
			cmtIdx = i
			break
		}
	}
	comments = writeVorbisStyleTags(comments, t)

	cmts := flacvorbis.New()
	for _, c := range comments {
		if err := cmts.Add(c.Key, c.Value); err != nil {
			return fmt.Errorf("add comment %s: %w", c.Key, err)
		}
	}
	_ = vendor // go-flac's flacvorbis.New() supplies its own vendor string
	cmtBlock := cmts.Marshal()
	if cmtIdx >= 0 {
		f.Meta[cmtIdx] = &cmtBlock
	} else {
		f.Meta = append(f.Meta, &cmtBlock)
	}

	if len(t.CoverArt) > 0 {
		kept := f.Meta[:0]
		for _, meta := range f.Meta {
			if meta.Type != goflac.Picture {
				kept = append(kept, meta)
			}
		}
		f.Meta = kept

		mime := t.CoverArtMime
		if mime == "" {
			mime = detectMimeType(t.CoverArt)
		}
		pic, err := flacpicture.NewFromImageData(flacpicture.PictureTypeFrontCover, "", t.CoverArt, mime)
		if err != nil {
			return fmt.Errorf("build picture block: %w", err)
		}
		picBlock := pic.Marshal()
		f.Meta = append(f.Meta, &picBlock)
	}

	if err := f.Save(t.Path); err != nil {
		return fmt.Errorf("save flac: %w", err)
	}
	return nil
}
