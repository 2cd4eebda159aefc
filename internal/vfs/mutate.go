package vfs

import (
	"database/sql"
	"os"
	"path/filepath"
	"strconv"

	"github.com/azuline/rose-go/internal/rose"
	"github.com/azuline/rose-go/internal/roseerr"
	"github.com/azuline/rose-go/internal/store"
)

// Mkdir implements §4.8's mkdir rule: a new collage or playlist under their
// respective top-level views. Every other location is read-only — in
// particular, a release-shaped directory mkdir'd under a collage (step one
// of the add-release-to-collage protocol) never reaches here: the bridge
// (C9) intercepts it, records the in-progress addition, and reports success
// without calling into Core at all, per §4.8/§4.9.
func (c *Core) Mkdir(p VirtualPath) error {
	switch {
	case p.IsCollages() && p.Facet != "" && p.Release == "" && p.File == "":
		if err := c.collageStore().Create(p.Facet); err != nil {
			return err
		}
		c.Gen.Forget(facetParentKey(ViewCollages, ""))
		return nil

	case p.IsPlaylists() && p.Facet != "" && p.File == "":
		if err := c.playlistStore().Create(p.Facet); err != nil {
			return err
		}
		c.Gen.Forget(facetParentKey(ViewPlaylists, ""))
		return nil
	}
	return ErrPermission
}

// AddReleaseToCollage completes step three of the add-release-to-collage
// protocol (§4.8): the bridge has seen the terminal
// open(O_CREAT, ".rose.<uuid>.toml") inside the collage's pending release
// directory and parsed uuid out of the filename; this appends the release
// to the collage.
func (c *Core) AddReleaseToCollage(collage, uuid string) error {
	r, found, err := store.GetRelease(c.Store.DB, uuid)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	if err := c.collageStore().AddRelease(collage, rose.CollageEntry{UUID: r.ID}); err != nil {
		return err
	}
	c.Gen.Forget(facetParentKey(ViewCollages, collage))
	return nil
}

// Rmdir implements §4.8's rmdir rule: a collage leaf removes a release from
// the collage, a collage or playlist directory itself is deleted, and a
// release directory under any other view is deleted to trash.
func (c *Core) Rmdir(p VirtualPath) error {
	switch {
	case p.IsCollages() && p.Facet != "" && p.Release != "" && p.File == "":
		id, err := c.resolveCollageReleaseID(p)
		if err != nil {
			return err
		}
		if err := c.collageStore().RemoveRelease(p.Facet, id); err != nil {
			return err
		}
		c.Gen.Forget(facetParentKey(ViewCollages, p.Facet))
		return nil

	case p.IsCollages() && p.Facet != "" && p.Release == "":
		if err := c.collageStore().Delete(p.Facet); err != nil {
			return err
		}
		c.Gen.Forget(facetParentKey(ViewCollages, ""))
		return nil

	case p.IsPlaylists() && p.Facet != "" && p.File == "":
		if err := c.playlistStore().Delete(p.Facet); err != nil {
			return err
		}
		c.Gen.Forget(facetParentKey(ViewPlaylists, ""))
		return nil

	case !p.IsCollages() && !p.IsPlaylists() && p.Release != "" && !p.IsAllTracks() && p.File == "":
		return c.deleteReleaseToTrash(p)
	}
	return ErrPermission
}

func (c *Core) resolveCollageReleaseID(p VirtualPath) (string, error) {
	parent := facetParentKey(ViewCollages, p.Facet)
	id, ok := c.Gen.Resolve(parent, p.Release)
	if !ok {
		if _, err := c.Readdir(VirtualPath{View: ViewCollages, Facet: p.Facet}); err != nil {
			return "", err
		}
		id, ok = c.Gen.Resolve(parent, p.Release)
	}
	if !ok {
		return "", ErrNotFound
	}
	return id, nil
}

// deleteReleaseToTrash resolves the release named under p and moves its
// entire source directory to <source>/.trash, mirroring
// internal/collections' moveToTrash convention for TOML collection files.
func (c *Core) deleteReleaseToTrash(p VirtualPath) error {
	r, err := c.resolveRelease(p)
	if err != nil {
		return err
	}
	if err := moveReleaseToTrash(c.Config.MusicSourceDir, r.SourcePath); err != nil {
		return roseerr.Unexpected(err)
	}
	if err := c.Store.WithTx(func(tx *sql.Tx) error {
		return store.DeleteRelease(tx, r.ID)
	}); err != nil {
		return err
	}
	c.Gen.Forget(facetParentKey(p.View, p.Facet))
	return nil
}

func moveReleaseToTrash(sourceDir, releaseDir string) error {
	trashDir := filepath.Join(sourceDir, ".trash")
	if err := os.MkdirAll(trashDir, 0o755); err != nil {
		return err
	}
	base := filepath.Base(releaseDir)
	dest := filepath.Join(trashDir, base)
	for i := 2; dirExists(dest); i++ {
		dest = filepath.Join(trashDir, base+" ["+strconv.Itoa(i)+"]")
	}
	return os.Rename(releaseDir, dest)
}

func dirExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Rename implements §4.8's rename rule: a same-type rename of a collage or
// a playlist. Any other rename (including cross-type, or anything touching
// a release/track leaf) is read-only.
func (c *Core) Rename(oldPath, newPath VirtualPath) error {
	switch {
	case oldPath.IsCollages() && newPath.IsCollages() &&
		oldPath.Facet != "" && oldPath.Release == "" &&
		newPath.Facet != "" && newPath.Release == "":
		if err := c.collageStore().Rename(oldPath.Facet, newPath.Facet); err != nil {
			return err
		}
		c.Gen.Forget(facetParentKey(ViewCollages, ""))
		return nil

	case oldPath.IsPlaylists() && newPath.IsPlaylists() &&
		oldPath.Facet != "" && oldPath.File == "" &&
		newPath.Facet != "" && newPath.File == "":
		if err := c.playlistStore().Rename(oldPath.Facet, newPath.Facet); err != nil {
			return err
		}
		c.Gen.Forget(facetParentKey(ViewPlaylists, ""))
		return nil
	}
	return ErrPermission
}

// Unlink implements §4.8's unlink rule: under a playlist, a file leaf
// removes the named track (or clears the cover); everywhere else unlink is
// a no-op so that a recursive "rm -r" can still succeed via rmdir alone.
func (c *Core) Unlink(p VirtualPath) error {
	if !p.IsPlaylists() || p.Facet == "" || p.File == "" {
		return nil
	}

	if cover, ok, err := store.PlaylistCoverImagePath(c.Store.DB, p.Facet); err == nil && ok && cover != "" {
		if p.File == "cover"+filepath.Ext(cover) {
			return c.playlistStore().ClearCover(p.Facet)
		}
	}

	parent := facetParentKey(ViewPlaylists, p.Facet)
	id, ok := c.Gen.Resolve(parent, p.File)
	if !ok {
		if _, err := c.Readdir(VirtualPath{View: ViewPlaylists, Facet: p.Facet}); err != nil {
			return err
		}
		id, ok = c.Gen.Resolve(parent, p.File)
	}
	if !ok {
		return nil
	}
	if err := c.playlistStore().RemoveTrack(p.Facet, id); err != nil {
		return err
	}
	c.Gen.Forget(parent)
	return nil
}
