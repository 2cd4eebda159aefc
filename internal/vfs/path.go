// Package vfs implements the VFS logical core (component C8) and the FUSE
// bridge that exposes it (component C9), per §4.8/§4.9. Core is entirely
// FUSE-agnostic: it resolves VirtualPath values against the cache store,
// the collage/playlist stores, and the virtual-name generator, and talks to
// real files only through the Bridge interface (open.go). The FUSE-facing
// adapter lives in bridge_fuse.go, built on hanwen/go-fuse's node-based fs
// package (which owns inode allocation itself) and layering on top of it
// only the two short-TTL caches §4.9 describes that the library doesn't
// already provide: in-progress collage additions and ghost files. Tests
// drive Core directly against a fake Bridge, with no real FUSE mount
// involved.
package vfs

import (
	"strings"

	"github.com/azuline/rose-go/internal/roseerr"
)

// View is one of the ten fixed top-level directories of §4.8.
type View string

const (
	ViewReleases           View = "1. Releases"
	ViewReleasesNew        View = "1. Releases - New"
	ViewReleasesAddedOn    View = "1. Releases - Added On"
	ViewReleasesReleasedOn View = "1. Releases - Released On"
	ViewArtists            View = "2. Artists"
	ViewGenres             View = "3. Genres"
	ViewDescriptors        View = "4. Descriptors"
	ViewLabels             View = "5. Labels"
	ViewCollages           View = "6. Collages"
	ViewPlaylists          View = "7. Playlists"
)

// TopLevelViews lists the ten root directories in display order.
var TopLevelViews = []View{
	ViewReleases, ViewReleasesNew, ViewReleasesAddedOn, ViewReleasesReleasedOn,
	ViewArtists, ViewGenres, ViewDescriptors, ViewLabels, ViewCollages, ViewPlaylists,
}

// AllTracksName is the pseudo-directory sentinel every view except
// Playlists exposes alongside its release directories, per §4.8.
const AllTracksName = "!All Tracks"

// facetedViews are the views whose second path segment is a facet name
// (artist/genre/descriptor/label) under which releases are filtered, as
// opposed to the Releases family (no facet segment) and Collages/Playlists
// (facet segment is the collage/playlist name itself).
var facetedViews = map[View]bool{
	ViewArtists: true, ViewGenres: true, ViewDescriptors: true, ViewLabels: true,
}

var releaseFamilyViews = map[View]bool{
	ViewReleases: true, ViewReleasesNew: true, ViewReleasesAddedOn: true, ViewReleasesReleasedOn: true,
}

func viewByName(name string) (View, bool) {
	for _, v := range TopLevelViews {
		if string(v) == name {
			return v, true
		}
	}
	return "", false
}

// VirtualPath is a parsed path under the mount root, per §4.8: at most one
// of the facet-bearing fields is meaningful for a given View, an optional
// Release segment (which may be the AllTracksName sentinel), and an
// optional File leaf.
type VirtualPath struct {
	View    View
	Facet   string // artist/genre/descriptor/label/collage/playlist display name
	Release string // release (or playlist-track-bearing) directory display name
	File    string // filename inside Release
}

// IsRoot reports whether p names the mount root itself.
func (p VirtualPath) IsRoot() bool { return p.View == "" }

// IsAllTracks reports whether p's Release segment is the "!All Tracks"
// pseudo-directory.
func (p VirtualPath) IsAllTracks() bool { return p.Release == AllTracksName }

// HasFacet reports whether p.View carries a facet segment (artist, genre,
// descriptor, or label).
func (p VirtualPath) HasFacet() bool { return facetedViews[p.View] }

// IsCollages and IsPlaylists report whether p sits under the corresponding
// top-level view.
func (p VirtualPath) IsCollages() bool  { return p.View == ViewCollages }
func (p VirtualPath) IsPlaylists() bool { return p.View == ViewPlaylists }

// ErrNotFound and ErrPermission are Core's two sentinel outcomes; the FUSE
// bridge maps them to ENOENT/EACCES, and a fake Bridge in tests can compare
// against them directly with errors.Is.
var (
	ErrNotFound   = roseerr.New(roseerr.ReleaseDoesNotExist, "not found")
	ErrPermission = roseerr.New(roseerr.InvalidRule, "operation not permitted")
)

// Parse splits an absolute, mount-relative path (as delivered by the
// bridge, e.g. "/3. Genres/House/Some Album") into a VirtualPath. The root
// path "/" parses to the zero VirtualPath.
func Parse(path string) (VirtualPath, error) {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return VirtualPath{}, nil
	}
	segments := strings.Split(trimmed, "/")

	view, ok := viewByName(segments[0])
	if !ok {
		return VirtualPath{}, notFound("unknown top-level view %q", segments[0])
	}
	rest := segments[1:]

	switch {
	case releaseFamilyViews[view]:
		return parseReleaseFamily(view, rest)
	case facetedViews[view]:
		return parseFaceted(view, rest)
	case view == ViewCollages:
		return parseFaceted(view, rest) // collage name plays the role of facet, release dirs beneath it
	case view == ViewPlaylists:
		return parsePlaylist(rest)
	}
	return VirtualPath{}, notFound("unhandled view %q", segments[0])
}

// parsePlaylist handles Playlists: facet = playlist name, and (unlike every
// other view) the entries directly beneath it are files (tracks, or a
// cover image), not release directories — there is no Release layer.
func parsePlaylist(rest []string) (VirtualPath, error) {
	switch len(rest) {
	case 0:
		return VirtualPath{View: ViewPlaylists}, nil
	case 1:
		return VirtualPath{View: ViewPlaylists, Facet: rest[0]}, nil
	default:
		return VirtualPath{View: ViewPlaylists, Facet: rest[0], File: strings.Join(rest[1:], "/")}, nil
	}
}

func parseReleaseFamily(view View, rest []string) (VirtualPath, error) {
	switch len(rest) {
	case 0:
		return VirtualPath{View: view}, nil
	case 1:
		return VirtualPath{View: view, Release: rest[0]}, nil
	default:
		return VirtualPath{View: view, Release: rest[0], File: strings.Join(rest[1:], "/")}, nil
	}
}

func parseFaceted(view View, rest []string) (VirtualPath, error) {
	switch len(rest) {
	case 0:
		return VirtualPath{View: view}, nil
	case 1:
		return VirtualPath{View: view, Facet: rest[0]}, nil
	case 2:
		return VirtualPath{View: view, Facet: rest[0], Release: rest[1]}, nil
	default:
		return VirtualPath{View: view, Facet: rest[0], Release: rest[1], File: strings.Join(rest[2:], "/")}, nil
	}
}

// String renders p back into an absolute, mount-relative path.
func (p VirtualPath) String() string {
	if p.IsRoot() {
		return "/"
	}
	parts := []string{string(p.View)}
	if p.Facet != "" {
		parts = append(parts, p.Facet)
	}
	if p.Release != "" {
		parts = append(parts, p.Release)
	}
	if p.File != "" {
		parts = append(parts, p.File)
	}
	return "/" + strings.Join(parts, "/")
}

// facetParentKey builds the Generator/Sanitizer parent key for the
// directory immediately beneath view (or view+facet), the level at which
// release/track virtual names are rendered and cached.
func facetParentKey(view View, facet string) string {
	if facet == "" {
		return "/" + string(view)
	}
	return "/" + string(view) + "/" + facet
}

func notFound(format string, args ...any) error {
	return roseerr.New(roseerr.ReleaseDoesNotExist, format, args...)
}
