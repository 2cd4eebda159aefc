package vfs

import (
	"bytes"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/azuline/rose-go/internal/config"
	"github.com/azuline/rose-go/internal/roseerr"
	"github.com/azuline/rose-go/internal/rose"
	"github.com/azuline/rose-go/internal/store"
	"github.com/azuline/rose-go/internal/tags"
)

// Bridge is Core's one dependency on a real filesystem, per §4.8/§4.9: the
// logical core never calls the os package directly for anything a track,
// cover, or sidecar file's bytes are part of, so tests can drive every
// Open/Read/Write/Release path against a fake Bridge with no real FUSE
// mount involved.
type Bridge interface {
	// OpenHost opens the real file at hostPath with the given flags
	// (os.O_RDONLY/O_WRONLY/O_RDWR, optionally |O_CREATE|O_TRUNC) for
	// passthrough reads/writes.
	OpenHost(hostPath string, flags int, perm os.FileMode) (HostFile, error)
	// WriteHost atomically writes data as the full contents of hostPath,
	// creating or replacing it, for a buffered special op's install step.
	WriteHost(hostPath string, data []byte) error
	// RemoveHost deletes a real file, ignoring a not-exists error.
	RemoveHost(hostPath string) error
}

// HostFile is a real, already-open file descriptor a passthrough handle
// reads and writes through.
type HostFile interface {
	ReadAt(p []byte, off int64) (int, error)
	WriteAt(p []byte, off int64) (int, error)
	Close() error
}

type handleKind int

const (
	handlePassthrough handleKind = iota
	handleDevNull
	handleBufferedCoverArt
	handleBufferedPlaylistTrack
)

// Handle is an opaque logical file handle Core.Open returns; the bridge
// (C9) is responsible for mapping it to a FUSE file-handle number.
type Handle struct {
	kind handleKind
	host HostFile

	buf *bytes.Buffer

	// install context for the two buffered-write special ops.
	releaseID    string
	releaseDir   string
	playlistName string
	filename     string
}

// Open implements §4.8's open(p, flags): a plain read/write passthrough to
// the resolved real file, or — when flags carries O_CREATE — one of the
// three special operations §4.8 enumerates. A release-shaped directory's
// files mkdir'd mid collage-add protocol never reach here: the bridge
// routes them straight to /dev/null before calling Core at all.
func (c *Core) Open(p VirtualPath, flags int) (*Handle, error) {
	if flags&os.O_CREATE != 0 {
		return c.openCreate(p)
	}
	rp, err := c.Getattr(p)
	if err != nil {
		return nil, err
	}
	if rp.IsDir {
		return nil, roseerr.New(roseerr.InvalidRule, "%s is a directory", p.String())
	}
	f, err := c.Bridge.OpenHost(rp.HostPath, flags, 0o644)
	if err != nil {
		return nil, roseerr.Unexpected(err)
	}
	return &Handle{kind: handlePassthrough, host: f}, nil
}

func (c *Core) openCreate(p VirtualPath) (*Handle, error) {
	if p.IsCollages() && p.Facet != "" && p.Release != "" && isCollageAddTOML(p.File) {
		uuid, ok := parseCollageAddTOML(p.File)
		if !ok {
			return &Handle{kind: handleDevNull, buf: &bytes.Buffer{}}, nil
		}
		if err := c.AddReleaseToCollage(p.Facet, uuid); err != nil {
			return nil, err
		}
		return &Handle{kind: handleDevNull, buf: &bytes.Buffer{}}, nil
	}

	if p.IsPlaylists() && p.Facet != "" && p.File != "" {
		if isCoverArtName(c.Config, p.File) {
			return &Handle{kind: handleBufferedCoverArt, buf: &bytes.Buffer{}, playlistName: p.Facet, filename: p.File}, nil
		}
		if tags.IsMusicFile(p.File) {
			return &Handle{kind: handleBufferedPlaylistTrack, buf: &bytes.Buffer{}, playlistName: p.Facet, filename: p.File}, nil
		}
		return &Handle{kind: handleDevNull, buf: &bytes.Buffer{}}, nil
	}

	if !p.IsCollages() && !p.IsPlaylists() && p.Release != "" && !p.IsAllTracks() && p.File != "" && isCoverArtName(c.Config, p.File) {
		r, err := c.resolveRelease(p)
		if err != nil {
			return nil, err
		}
		return &Handle{kind: handleBufferedCoverArt, buf: &bytes.Buffer{}, releaseID: r.ID, releaseDir: r.SourcePath, filename: p.File}, nil
	}

	return nil, ErrPermission
}

// isCollageAddTOML reports whether name is the ".rose.<uuid>.toml" marker
// file of the add-release-to-collage protocol (§4.8 step 3).
func isCollageAddTOML(name string) bool {
	return strings.HasPrefix(name, ".rose.") && strings.HasSuffix(name, ".toml")
}

func parseCollageAddTOML(name string) (uuid string, ok bool) {
	uuid = strings.TrimSuffix(strings.TrimPrefix(name, ".rose."), ".toml")
	return uuid, uuid != ""
}

func isCoverArtName(cfg *config.Config, name string) bool {
	ext := filepath.Ext(name)
	if ext == "" || !cfg.IsArtExt(ext) {
		return false
	}
	stem := strings.ToLower(strings.TrimSuffix(name, ext))
	return stem == "cover"
}

// Read implements §4.8's read: plain passthrough for a real file handle; a
// buffered handle has nothing to read back (the kernel never reads what it
// itself just wrote through a write-only create).
func (c *Core) Read(h *Handle, buf []byte, off int64) (int, error) {
	switch h.kind {
	case handlePassthrough:
		n, err := h.host.ReadAt(buf, off)
		if err != nil && n == 0 {
			return 0, roseerr.Unexpected(err)
		}
		return n, nil
	default:
		return 0, nil
	}
}

// Write implements §4.8's write: passthrough for a real file, in-memory
// accumulation for the buffered special ops, and a discard for /dev/null
// handles.
func (c *Core) Write(h *Handle, buf []byte, off int64) (int, error) {
	switch h.kind {
	case handlePassthrough:
		n, err := h.host.WriteAt(buf, off)
		if err != nil {
			return n, roseerr.Unexpected(err)
		}
		return n, nil
	case handleBufferedCoverArt, handleBufferedPlaylistTrack:
		growBufferTo(h.buf, int(off)+len(buf))
		copy(h.buf.Bytes()[off:], buf)
		return len(buf), nil
	default: // handleDevNull
		return len(buf), nil
	}
}

func growBufferTo(b *bytes.Buffer, size int) {
	if b.Len() >= size {
		return
	}
	b.Write(make([]byte, size-b.Len()))
}

// Release implements §4.8's release(fh): closes a passthrough handle, or —
// for a buffered special op — performs the deferred install.
func (c *Core) Release(h *Handle) error {
	switch h.kind {
	case handlePassthrough:
		return h.host.Close()
	case handleBufferedCoverArt:
		if h.playlistName != "" {
			return c.installPlaylistCoverArt(h.playlistName, h.filename, h.buf.Bytes())
		}
		return c.installReleaseCoverArt(h.releaseID, h.releaseDir, h.filename, h.buf.Bytes())
	case handleBufferedPlaylistTrack:
		return c.installPlaylistTrack(h.playlistName, h.filename, h.buf.Bytes())
	}
	return nil
}

// installReleaseCoverArt writes the buffered bytes as the release's cover
// file, replacing any existing one under a different name, and points the
// cache row at it.
func (c *Core) installReleaseCoverArt(releaseID, releaseDir, filename string, data []byte) error {
	r, found, err := store.GetRelease(c.Store.DB, releaseID)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	if r.CoverImagePath != "" && filepath.Base(r.CoverImagePath) != filename {
		if err := c.Bridge.RemoveHost(r.CoverImagePath); err != nil {
			return roseerr.Unexpected(err)
		}
	}
	dest := filepath.Join(releaseDir, filename)
	if err := c.Bridge.WriteHost(dest, data); err != nil {
		return roseerr.Unexpected(err)
	}
	if err := c.Store.WithTx(func(tx *sql.Tx) error {
		return store.SetReleaseCoverImagePath(tx, releaseID, dest)
	}); err != nil {
		return err
	}
	c.Gen.Forget(facetParentKey(ViewReleases, ""))
	return nil
}

// installPlaylistCoverArt writes the buffered bytes to a temp file and
// delegates to PlaylistStore.SetCover for validation and the
// replace-any-existing-sibling-cover behavior.
func (c *Core) installPlaylistCoverArt(playlistName, filename string, data []byte) error {
	tmp, err := bufferToTempFile(filename, data)
	if err != nil {
		return roseerr.Unexpected(err)
	}
	defer os.Remove(tmp)
	return c.playlistStore().SetCover(playlistName, tmp)
}

// installPlaylistTrack writes the buffered bytes to a temp file, reads the
// ROSEID tag to identify the track, and appends it to the playlist.
func (c *Core) installPlaylistTrack(playlistName, filename string, data []byte) error {
	tmp, err := bufferToTempFile(filename, data)
	if err != nil {
		return roseerr.Unexpected(err)
	}
	defer os.Remove(tmp)

	t, err := tags.Read(tmp)
	if err != nil {
		return err
	}
	if t.ID == "" {
		return roseerr.New(roseerr.TrackDoesNotExist, "file has no rose id tag")
	}
	return c.playlistStore().AddTrack(playlistName, rose.PlaylistEntry{UUID: t.ID})
}

func bufferToTempFile(name string, data []byte) (string, error) {
	f, err := os.CreateTemp("", fmt.Sprintf("rose-vfs-*-%s", filepath.Base(name)))
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}
