// Package config loads Rosé's TOML configuration file and exposes the
// fields the core reads. Uses koanf v2 with the toml parser and file
// provider, a cwd-then-home search path, and a `~` expansion helper.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/azuline/rose-go/internal/roseerr"
)

// PathTemplates holds the per-view release/track/all-tracks templates plus
// the playlist template, per §6/§4.7.
type PathTemplates struct {
	Default         ViewTemplates `koanf:"default"`
	Releases        ViewTemplates `koanf:"releases"`
	Artists         ViewTemplates `koanf:"artists"`
	Genres          ViewTemplates `koanf:"genres"`
	Descriptors     ViewTemplates `koanf:"descriptors"`
	Labels          ViewTemplates `koanf:"labels"`
	Collages        ViewTemplates `koanf:"collages"`
	PlaylistsFolder string        `koanf:"playlist"`
}

// ViewTemplates is the set of templates a single view renders from.
type ViewTemplates struct {
	Release   string `koanf:"release"`
	Track     string `koanf:"track"`
	AllTracks string `koanf:"all_tracks"`
}

// VFSConfig is the `[vfs]` table of §6: mount point, per-facet
// whitelist/blacklist, and the three "hide with only new releases" flags.
type VFSConfig struct {
	MountDir                        string   `koanf:"mount_dir"`
	ArtistsWhitelist                []string `koanf:"artists_whitelist"`
	ArtistsBlacklist                []string `koanf:"artists_blacklist"`
	GenresWhitelist                 []string `koanf:"genres_whitelist"`
	GenresBlacklist                 []string `koanf:"genres_blacklist"`
	DescriptorsWhitelist            []string `koanf:"descriptors_whitelist"`
	DescriptorsBlacklist            []string `koanf:"descriptors_blacklist"`
	LabelsWhitelist                 []string `koanf:"labels_whitelist"`
	LabelsBlacklist                 []string `koanf:"labels_blacklist"`
	HideArtistsWithOnlyNewReleases  bool     `koanf:"hide_artists_with_only_new_releases"`
	HideGenresWithOnlyNewReleases   bool     `koanf:"hide_genres_with_only_new_releases"`
	HideLabelsWithOnlyNewReleases   bool     `koanf:"hide_labels_with_only_new_releases"`
}

// Config is the value threaded through every core operation, per §9's
// "explicit Config value, no module-level mutable state" design note.
type Config struct {
	MusicSourceDir          string            `koanf:"music_source_dir"`
	CacheDir                string            `koanf:"cache_dir"`
	MaxProc                 int               `koanf:"max_proc"`
	MaxFilenameBytes        int               `koanf:"max_filename_bytes"`
	IgnoreReleaseDirectories []string         `koanf:"ignore_release_directories"`
	CoverArtStems           []string          `koanf:"cover_art_stems"`
	ValidArtExts            []string          `koanf:"valid_art_exts"`
	RenameSourceFiles       bool              `koanf:"rename_source_files"`
	WriteParentGenres       bool              `koanf:"write_parent_genres"`
	ArtistAliasesMap        map[string][]string `koanf:"artist_aliases_map"`
	PathTemplates           PathTemplates     `koanf:"path_templates"`
	StoredMetadataRules     []string          `koanf:"stored_metadata_rules"`
	VFS                     VFSConfig         `koanf:"vfs"`

	// ArtistAliasParentsMap is derived from ArtistAliasesMap: alias -> real
	// names, the inverse direction used when expanding a matcher against
	// aliased artists.
	ArtistAliasParentsMap map[string][]string `koanf:"-"`
}

// DefaultConfig returns a Config populated with Rosé's shipped defaults.
func DefaultConfig() Config {
	return Config{
		CacheDir:         defaultCacheDir(),
		MaxProc:          8,
		MaxFilenameBytes: 180,
		CoverArtStems:    []string{"cover", "folder", "art", "front"},
		ValidArtExts:     []string{"jpg", "jpeg", "png"},
		RenameSourceFiles: false,
		WriteParentGenres: false,
		PathTemplates: PathTemplates{
			Default: ViewTemplates{
				Release:   "{releasedate} - {releaseartists.all} - {releasetitle}",
				Track:     "{tracknumber}. {trackartists.all} - {tracktitle}",
				AllTracks: "{releaseartists.all} - {releasetitle} - {tracktitle}",
			},
		},
	}
}

func defaultCacheDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".cache", "rose")
	}
	return ".rose-cache"
}

// Load reads config.toml from the conventional search paths (cwd, then
// ~/.config/rose/config.toml), applying defaults for anything unset.
func Load() (*Config, error) {
	k := koanf.New(".")

	found := false
	for _, path := range searchPaths() {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, roseerr.Wrap(err, roseerr.ConfigDecode, "parse config file %s", path)
		}
		found = true
	}
	if !found {
		return nil, roseerr.New(roseerr.ConfigNotFound, "no config.toml found in %v", searchPaths())
	}

	cfg := DefaultConfig()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, roseerr.Wrap(err, roseerr.ConfigDecode, "unmarshal config")
	}

	if cfg.MusicSourceDir == "" {
		return nil, roseerr.New(roseerr.MissingConfigKey, "music_source_dir is required")
	}
	cfg.MusicSourceDir = expandPath(cfg.MusicSourceDir)
	cfg.CacheDir = expandPath(cfg.CacheDir)

	cfg.ArtistAliasParentsMap = invertAliasMap(cfg.ArtistAliasesMap)

	return &cfg, nil
}

func searchPaths() []string {
	paths := []string{"config.toml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "rose", "config.toml"))
	}
	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// invertAliasMap turns {real: [alias1, alias2]} into {alias1: [real],
// alias2: [real]}, so that a rule matching an alias can be expanded to also
// match the canonical artist name.
func invertAliasMap(m map[string][]string) map[string][]string {
	out := make(map[string][]string, len(m))
	for real, aliases := range m {
		for _, alias := range aliases {
			out[alias] = append(out[alias], real)
		}
	}
	return out
}

// LocksDir is the directory advisory lock files live under, per §9's
// "advisory locks as files" design note.
func (c *Config) LocksDir() string {
	return filepath.Join(c.CacheDir, "locks")
}

// IsArtExt reports whether ext (without a leading dot, case-insensitive)
// is a configured cover-art extension.
func (c *Config) IsArtExt(ext string) bool {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, e := range c.ValidArtExts {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}
