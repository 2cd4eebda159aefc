package vfs

import (
	"path/filepath"

	"github.com/azuline/rose-go/internal/rose"
	"github.com/azuline/rose-go/internal/store"
)

// ResolvedPath is what Getattr resolves a VirtualPath down to: either a
// plain directory (every view/facet/release/playlist level down to, but
// not including, a file leaf) or a real file, identified by its absolute
// host path so the bridge can stat/open/read/write it directly.
type ResolvedPath struct {
	IsDir    bool
	HostPath string // set only when IsDir is false
}

// Getattr validates p layer by layer and resolves it to either a directory
// or a real file, per §4.8's "validates existence layer by layer" rule: a
// release leaf is looked up via the name cache, retrying a parent readdir
// once on a miss, and a track under a facet view additionally has its
// release's facet membership re-checked (via resolveRelease).
func (c *Core) Getattr(p VirtualPath) (ResolvedPath, error) {
	if p.IsRoot() {
		return ResolvedPath{IsDir: true}, nil
	}
	if _, ok := viewByName(string(p.View)); !ok {
		return ResolvedPath{}, ErrNotFound
	}

	switch {
	case p.IsPlaylists():
		return c.getattrPlaylist(p)
	case p.IsCollages():
		return c.getattrCollage(p)
	case p.HasFacet() && p.Facet == "":
		return ResolvedPath{IsDir: true}, nil // the faceted view's own root
	case releaseFamilyViews[p.View] || p.HasFacet():
		return c.getattrReleaseFamily(p)
	}
	return ResolvedPath{}, ErrNotFound
}

func (c *Core) getattrCollage(p VirtualPath) (ResolvedPath, error) {
	if p.Facet == "" {
		return ResolvedPath{IsDir: true}, nil
	}
	names, err := c.collageStore().List()
	if err != nil {
		return ResolvedPath{}, err
	}
	if !containsFold(names, p.Facet) {
		return ResolvedPath{}, ErrNotFound
	}
	return c.getattrReleaseFamily(p)
}

func (c *Core) getattrReleaseFamily(p VirtualPath) (ResolvedPath, error) {
	if p.Release == "" {
		return ResolvedPath{IsDir: true}, nil
	}
	if p.IsAllTracks() {
		if p.File == "" {
			return ResolvedPath{IsDir: true}, nil
		}
		return c.resolveAllTracksFile(p)
	}
	r, err := c.resolveRelease(p)
	if err != nil {
		return ResolvedPath{}, err
	}
	if p.File == "" {
		return ResolvedPath{IsDir: true}, nil
	}
	return c.resolveReleaseContentsFile(p, r)
}

func (c *Core) getattrPlaylist(p VirtualPath) (ResolvedPath, error) {
	if p.Facet == "" {
		return ResolvedPath{IsDir: true}, nil
	}
	names, err := c.playlistStore().List()
	if err != nil {
		return ResolvedPath{}, err
	}
	if !containsFold(names, p.Facet) {
		return ResolvedPath{}, ErrNotFound
	}
	if p.File == "" {
		return ResolvedPath{IsDir: true}, nil
	}
	return c.resolvePlaylistFile(p)
}

func containsFold(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// resolveAllTracksFile finds the real file a rendered filename under an
// "!All Tracks" pseudo-directory names, retrying a readdir once on a
// name-cache miss.
func (c *Core) resolveAllTracksFile(p VirtualPath) (ResolvedPath, error) {
	parent := facetParentKey(p.View, p.Facet) + "/" + AllTracksName
	id, ok := c.Gen.Resolve(parent, p.File)
	if !ok {
		if _, err := c.Readdir(VirtualPath{View: p.View, Facet: p.Facet, Release: AllTracksName}); err != nil {
			return ResolvedPath{}, err
		}
		id, ok = c.Gen.Resolve(parent, p.File)
	}
	if !ok {
		return ResolvedPath{}, ErrNotFound
	}
	t, found, err := store.GetTrack(c.Store.DB, id)
	if err != nil {
		return ResolvedPath{}, err
	}
	if !found {
		return ResolvedPath{}, ErrNotFound
	}
	return ResolvedPath{HostPath: t.SourcePath}, nil
}

// resolveReleaseContentsFile finds the real file (track or cover art) a
// rendered filename under a release directory names.
func (c *Core) resolveReleaseContentsFile(p VirtualPath, r rose.Release) (ResolvedPath, error) {
	if r.CoverImagePath != "" && p.File == "cover"+filepath.Ext(r.CoverImagePath) {
		return ResolvedPath{HostPath: r.CoverImagePath}, nil
	}

	parent := facetParentKey(p.View, p.Facet) + "/" + p.Release
	id, ok := c.Gen.Resolve(parent, p.File)
	if !ok {
		if _, err := c.Readdir(VirtualPath{View: p.View, Facet: p.Facet, Release: p.Release}); err != nil {
			return ResolvedPath{}, err
		}
		id, ok = c.Gen.Resolve(parent, p.File)
	}
	if !ok {
		return ResolvedPath{}, ErrNotFound
	}
	t, found, err := store.GetTrack(c.Store.DB, id)
	if err != nil {
		return ResolvedPath{}, err
	}
	if !found {
		return ResolvedPath{}, ErrNotFound
	}
	return ResolvedPath{HostPath: t.SourcePath}, nil
}

func (c *Core) resolvePlaylistFile(p VirtualPath) (ResolvedPath, error) {
	if cover, ok, err := store.PlaylistCoverImagePath(c.Store.DB, p.Facet); err == nil && ok && cover != "" {
		if p.File == "cover"+filepath.Ext(cover) {
			return ResolvedPath{HostPath: cover}, nil
		}
	}

	parent := facetParentKey(ViewPlaylists, p.Facet)
	id, ok := c.Gen.Resolve(parent, p.File)
	if !ok {
		if _, err := c.Readdir(VirtualPath{View: ViewPlaylists, Facet: p.Facet}); err != nil {
			return ResolvedPath{}, err
		}
		id, ok = c.Gen.Resolve(parent, p.File)
	}
	if !ok {
		return ResolvedPath{}, ErrNotFound
	}
	t, found, err := store.GetTrack(c.Store.DB, id)
	if err != nil {
		return ResolvedPath{}, err
	}
	if !found {
		return ResolvedPath{}, ErrNotFound
	}
	return ResolvedPath{HostPath: t.SourcePath}, nil
}
