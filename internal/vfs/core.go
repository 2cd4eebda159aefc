package vfs

import (
	"time"

	"github.com/azuline/rose-go/internal/collections"
	"github.com/azuline/rose-go/internal/config"
	"github.com/azuline/rose-go/internal/rose"
	"github.com/azuline/rose-go/internal/store"
	"github.com/azuline/rose-go/internal/updater"
	"github.com/azuline/rose-go/internal/vname"
)

// nameCacheTTL is the virtual-name generator's grace period (§4.7
// suggests ~2h) so a file handle opened against a since-renamed entity
// keeps resolving for a while.
const nameCacheTTL = 2 * time.Hour

// Core is the VFS logical core (C8): it resolves VirtualPath values
// against the cache store, the collage/playlist stores, and the
// virtual-name generator/sanitizer (C7), performing real file I/O only
// through a Bridge. It knows nothing about FUSE wire types — that
// translation is bridge_fuse.go's job (C9).
type Core struct {
	Store   *store.Store
	Config  *config.Config
	Updater *updater.Updater
	Gen     *vname.Generator
	San     *vname.Sanitizer
	Bridge  Bridge
}

// NewCore constructs a Core with the default path-template evaluator. The
// in-progress add-release-to-collage bookkeeping (§4.8's step one) lives in
// the FUSE bridge (C9), not here: Core only ever sees the protocol's
// terminal .rose.<uuid>.toml create.
func NewCore(s *store.Store, cfg *config.Config, u *updater.Updater, bridge Bridge) *Core {
	gen := vname.NewGenerator(vname.DefaultEvaluator{}, nameCacheTTL, cfg.MaxFilenameBytes)
	return &Core{
		Store:   s,
		Config:  cfg,
		Updater: u,
		Gen:     gen,
		San:     vname.NewSanitizer(),
		Bridge:  bridge,
	}
}

func (c *Core) collageStore() *collections.CollageStore {
	return &collections.CollageStore{SourceDir: c.Config.MusicSourceDir, LocksDir: c.Config.LocksDir()}
}

func (c *Core) playlistStore() *collections.PlaylistStore {
	return &collections.PlaylistStore{
		SourceDir:    c.Config.MusicSourceDir,
		LocksDir:     c.Config.LocksDir(),
		ValidArtExts: c.Config.ValidArtExts,
	}
}

// viewTemplates resolves the release/track/all-tracks template strings for
// view, falling back field-by-field to path_templates.default when the
// view-specific template string is unset.
func (c *Core) viewTemplates(view View) config.ViewTemplates {
	def := c.Config.PathTemplates.Default
	var vt config.ViewTemplates
	switch view {
	case ViewArtists:
		vt = c.Config.PathTemplates.Artists
	case ViewGenres:
		vt = c.Config.PathTemplates.Genres
	case ViewDescriptors:
		vt = c.Config.PathTemplates.Descriptors
	case ViewLabels:
		vt = c.Config.PathTemplates.Labels
	case ViewCollages:
		vt = c.Config.PathTemplates.Collages
	default:
		vt = c.Config.PathTemplates.Releases
	}
	if vt.Release == "" {
		vt.Release = def.Release
	}
	if vt.Track == "" {
		vt.Track = def.Track
	}
	if vt.AllTracks == "" {
		vt.AllTracks = def.AllTracks
	}
	return vt
}

// playlistTrackTemplate resolves the single template string playlist track
// entries render with, falling back to the default track template.
func (c *Core) playlistTrackTemplate() string {
	if t := c.Config.PathTemplates.PlaylistsFolder; t != "" {
		return t
	}
	return c.Config.PathTemplates.Default.Track
}

func pathContextFor(p VirtualPath) vname.PathContext {
	ctx := vname.PathContext{View: string(p.View)}
	switch p.View {
	case ViewArtists:
		ctx.Artist = p.Facet
	case ViewGenres:
		ctx.Genre = p.Facet
	case ViewDescriptors:
		ctx.Descriptor = p.Facet
	case ViewLabels:
		ctx.Label = p.Facet
	case ViewCollages:
		ctx.Collage = p.Facet
	case ViewPlaylists:
		ctx.Playlist = p.Facet
	}
	return ctx
}

// renderReleaseName renders a release's virtual directory name under p's
// parent (view [+ facet]), resolving collisions against used.
func (c *Core) renderReleaseName(parent string, r rose.Release, view View, used map[string]struct{}) (string, error) {
	vt := c.viewTemplates(view)
	ctx := pathContextFor(VirtualPath{View: view})
	name, err := c.Gen.Render(parent, r.ID, vt.Release, releaseEntity(r), ctx, used)
	if err != nil {
		return "", err
	}
	c.San.Record(parent, name, name)
	return name, nil
}

// renderTrackName renders a track's virtual filename under parent.
func (c *Core) renderTrackName(parent string, t rose.Track, r rose.Release, view View, allTracks bool, used map[string]struct{}) (string, error) {
	vt := c.viewTemplates(view)
	template := vt.Track
	if allTracks {
		template = vt.AllTracks
	}
	ctx := pathContextFor(VirtualPath{View: view})
	return c.Gen.Render(parent, t.ID, template, trackEntity(t, r), ctx, used)
}
