package vfs

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/azuline/rose-go/internal/rose"
	"github.com/azuline/rose-go/internal/store"
)

// DirEntry is one readdir result row.
type DirEntry struct {
	Name  string
	IsDir bool
}

// Readdir enumerates p's children. Per §4.8, the bridge is responsible for
// prepending "." and "..": Core only returns the listing-call entries.
func (c *Core) Readdir(p VirtualPath) ([]DirEntry, error) {
	switch {
	case p.IsRoot():
		return rootEntries(), nil

	case p.IsPlaylists():
		return c.readdirPlaylists(p)

	case p.HasFacet() && p.Facet == "":
		return c.readdirFacetNames(p.View)

	case p.IsCollages() && p.Facet == "":
		return c.readdirCollageNames()

	case p.Release == "":
		return c.readdirReleases(p)

	case p.IsAllTracks():
		return c.readdirAllTracks(p)

	case p.File == "":
		return c.readdirReleaseContents(p)
	}
	return nil, ErrNotFound
}

func rootEntries() []DirEntry {
	out := make([]DirEntry, len(TopLevelViews))
	for i, v := range TopLevelViews {
		out[i] = DirEntry{Name: string(v), IsDir: true}
	}
	return out
}

func (c *Core) readdirCollageNames() ([]DirEntry, error) {
	names, err := c.collageStore().List()
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	out := make([]DirEntry, len(names))
	for i, n := range names {
		out[i] = DirEntry{Name: n, IsDir: true}
	}
	return out, nil
}

func (c *Core) readdirPlaylists(p VirtualPath) ([]DirEntry, error) {
	if p.Facet == "" {
		names, err := c.playlistStore().List()
		if err != nil {
			return nil, err
		}
		sort.Strings(names)
		out := make([]DirEntry, len(names))
		for i, n := range names {
			out[i] = DirEntry{Name: n, IsDir: true}
		}
		return out, nil
	}

	ids, err := store.ListPlaylistTrackIDs(c.Store.DB, p.Facet)
	if err != nil {
		return nil, err
	}
	parent := facetParentKey(ViewPlaylists, p.Facet)
	used := map[string]struct{}{}
	var out []DirEntry
	for i, id := range ids {
		t, ok, err := store.GetTrack(c.Store.DB, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		r, ok, err := store.GetRelease(c.Store.DB, t.ReleaseID)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		name, err := c.renderTrackName(parent, t, r, ViewPlaylists, false, used)
		if err != nil {
			return nil, err
		}
		numbered := numberedPrefix(i, name)
		c.Gen.Remember(parent, numbered, id)
		out = append(out, DirEntry{Name: numbered})
	}
	if cover, ok, err := store.PlaylistCoverImagePath(c.Store.DB, p.Facet); err == nil && ok && cover != "" {
		out = append(out, DirEntry{Name: "cover" + filepath.Ext(cover)})
	}
	return out, nil
}

// readdirFacetNames lists the distinct facet values (artist/genre/
// descriptor/label names) directly under a faceted view's root, applying
// the configured whitelist/blacklist and hide-with-only-new-releases rules.
func (c *Core) readdirFacetNames(view View) ([]DirEntry, error) {
	var names []string
	var err error
	var hideOnlyNew bool
	var whitelist, blacklist []string

	switch view {
	case ViewArtists:
		names, err = store.ListDistinctArtistNames(c.Store.DB)
		hideOnlyNew, whitelist, blacklist = c.Config.VFS.HideArtistsWithOnlyNewReleases, c.Config.VFS.ArtistsWhitelist, c.Config.VFS.ArtistsBlacklist
	case ViewGenres:
		names, err = store.ListDistinctGenreNames(c.Store.DB)
		hideOnlyNew, whitelist, blacklist = c.Config.VFS.HideGenresWithOnlyNewReleases, c.Config.VFS.GenresWhitelist, c.Config.VFS.GenresBlacklist
	case ViewDescriptors:
		names, err = store.ListDistinctDescriptorNames(c.Store.DB)
		whitelist, blacklist = c.Config.VFS.DescriptorsWhitelist, c.Config.VFS.DescriptorsBlacklist
	case ViewLabels:
		names, err = store.ListDistinctLabelNames(c.Store.DB)
		hideOnlyNew, whitelist, blacklist = c.Config.VFS.HideLabelsWithOnlyNewReleases, c.Config.VFS.LabelsWhitelist, c.Config.VFS.LabelsBlacklist
	default:
		return nil, fmt.Errorf("vfs: %q is not a faceted view", view)
	}
	if err != nil {
		return nil, err
	}

	names = applyFacetFilter(names, whitelist, blacklist)
	if hideOnlyNew {
		names, err = c.dropAllNewFacets(view, names)
		if err != nil {
			return nil, err
		}
	}

	out := make([]DirEntry, len(names))
	for i, n := range names {
		out[i] = DirEntry{Name: n, IsDir: true}
	}
	return out, nil
}

func (c *Core) dropAllNewFacets(view View, names []string) ([]string, error) {
	var kept []string
	for _, name := range names {
		ids, err := c.facetReleaseIDsFor(view, name)
		if err != nil {
			return nil, err
		}
		if allReleasesNew(c.Store, ids) {
			continue
		}
		kept = append(kept, name)
	}
	return kept, nil
}

func allReleasesNew(s *store.Store, ids []string) bool {
	if len(ids) == 0 {
		return false
	}
	for _, id := range ids {
		r, ok, err := store.GetRelease(s.DB, id)
		if err != nil || !ok || !r.New {
			return false
		}
	}
	return true
}

func applyFacetFilter(names, whitelist, blacklist []string) []string {
	if len(whitelist) > 0 {
		allow := toLowerSet(whitelist)
		names = filterStrings(names, func(n string) bool { return allow[strings.ToLower(n)] })
	}
	if len(blacklist) > 0 {
		deny := toLowerSet(blacklist)
		names = filterStrings(names, func(n string) bool { return !deny[strings.ToLower(n)] })
	}
	return names
}

func toLowerSet(in []string) map[string]bool {
	out := make(map[string]bool, len(in))
	for _, s := range in {
		out[strings.ToLower(s)] = true
	}
	return out
}

func filterStrings(in []string, keep func(string) bool) []string {
	var out []string
	for _, s := range in {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}

// facetReleaseIDs resolves the release ids belonging under a facet view's
// named directory (or, for the Releases family and Collages, the view/
// collage itself).
func (c *Core) facetReleaseIDs(p VirtualPath) ([]string, error) {
	return c.facetReleaseIDsFor(p.View, p.Facet)
}

func (c *Core) facetReleaseIDsFor(view View, facet string) ([]string, error) {
	switch view {
	case ViewReleases:
		return store.ListAllReleaseIDs(c.Store.DB)
	case ViewReleasesNew:
		return store.ListNewReleaseIDs(c.Store.DB)
	case ViewReleasesAddedOn:
		return store.ListReleaseIDsByAddedAt(c.Store.DB)
	case ViewReleasesReleasedOn:
		return store.ListReleaseIDsByReleaseDate(c.Store.DB)
	case ViewArtists:
		return store.ListReleaseIDsByArtist(c.Store.DB, facet)
	case ViewGenres:
		return store.ListReleaseIDsByGenre(c.Store.DB, facet)
	case ViewDescriptors:
		return store.ListReleaseIDsByDescriptor(c.Store.DB, facet)
	case ViewLabels:
		return store.ListReleaseIDsByLabel(c.Store.DB, facet)
	case ViewCollages:
		return store.ListCollageReleaseIDs(c.Store.DB, facet)
	}
	return nil, fmt.Errorf("vfs: %q does not list releases", view)
}

func (c *Core) readdirReleases(p VirtualPath) ([]DirEntry, error) {
	ids, err := c.facetReleaseIDsFor(p.View, p.Facet)
	if err != nil {
		return nil, err
	}
	parent := facetParentKey(p.View, p.Facet)
	used := map[string]struct{}{}
	out := []DirEntry{{Name: AllTracksName, IsDir: true}}
	for i, id := range ids {
		r, ok, err := store.GetRelease(c.Store.DB, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		name, err := c.renderReleaseName(parent, r, p.View, used)
		if err != nil {
			return nil, err
		}
		if p.IsCollages() {
			name = numberedPrefix(i, name)
			c.Gen.Remember(parent, name, id)
		}
		out = append(out, DirEntry{Name: name, IsDir: true})
	}
	return out, nil
}

func (c *Core) readdirAllTracks(p VirtualPath) ([]DirEntry, error) {
	ids, err := c.facetReleaseIDsFor(p.View, p.Facet)
	if err != nil {
		return nil, err
	}
	parent := facetParentKey(p.View, p.Facet) + "/" + AllTracksName
	used := map[string]struct{}{}
	var out []DirEntry
	for _, releaseID := range ids {
		r, ok, err := store.GetRelease(c.Store.DB, releaseID)
		if err != nil || !ok {
			continue
		}
		tracks, err := store.ListTracksForRelease(c.Store.DB, releaseID)
		if err != nil {
			return nil, err
		}
		for _, t := range tracks {
			name, err := c.renderTrackName(parent, t, r, p.View, true, used)
			if err != nil {
				return nil, err
			}
			out = append(out, DirEntry{Name: name})
		}
	}
	return out, nil
}

func (c *Core) readdirReleaseContents(p VirtualPath) ([]DirEntry, error) {
	r, err := c.resolveRelease(p)
	if err != nil {
		return nil, err
	}
	tracks, err := store.ListTracksForRelease(c.Store.DB, r.ID)
	if err != nil {
		return nil, err
	}
	parent := facetParentKey(p.View, p.Facet) + "/" + p.Release
	used := map[string]struct{}{}
	var out []DirEntry
	for _, t := range tracks {
		name, err := c.renderTrackName(parent, t, r, p.View, false, used)
		if err != nil {
			return nil, err
		}
		out = append(out, DirEntry{Name: name})
	}
	if r.CoverImagePath != "" {
		out = append(out, DirEntry{Name: "cover" + filepath.Ext(r.CoverImagePath)})
	}
	return out, nil
}

// resolveRelease looks up the release a release-bearing VirtualPath names,
// via the name cache first and falling back to a parent readdir-and-retry
// per §4.7/§9.
func (c *Core) resolveRelease(p VirtualPath) (rose.Release, error) {
	parent := facetParentKey(p.View, p.Facet)
	id, ok := c.Gen.Resolve(parent, p.Release)
	if !ok {
		if _, err := c.Readdir(VirtualPath{View: p.View, Facet: p.Facet}); err != nil {
			return rose.Release{}, err
		}
		id, ok = c.Gen.Resolve(parent, p.Release)
	}
	if !ok {
		return rose.Release{}, ErrNotFound
	}
	r, found, err := store.GetRelease(c.Store.DB, id)
	if err != nil {
		return rose.Release{}, err
	}
	if !found {
		return rose.Release{}, ErrNotFound
	}
	if p.HasFacet() && !releaseBelongsToFacet(p.View, p.Facet, r) {
		return rose.Release{}, ErrNotFound
	}
	return r, nil
}

func releaseBelongsToFacet(view View, facet string, r rose.Release) bool {
	switch view {
	case ViewGenres:
		return contains(r.Genres, facet) || contains(r.SecondaryGenres, facet) ||
			contains(r.ParentGenres, facet) || contains(r.ParentSecondaryGenres, facet)
	case ViewDescriptors:
		return contains(r.Descriptors, facet)
	case ViewLabels:
		return contains(r.Labels, facet)
	case ViewArtists:
		for _, a := range r.ReleaseArtists.All() {
			if a.Name == facet {
				return true
			}
		}
		return false
	}
	return true
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func numberedPrefix(i int, name string) string {
	return fmt.Sprintf("%02d. %s", i+1, name)
}
