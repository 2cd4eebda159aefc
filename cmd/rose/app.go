package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/azuline/rose-go/internal/collections"
	"github.com/azuline/rose-go/internal/config"
	"github.com/azuline/rose-go/internal/rulesengine"
	"github.com/azuline/rose-go/internal/store"
	"github.com/azuline/rose-go/internal/updater"
)

// app bundles the pieces every verb's RunE needs, assembled fresh per
// invocation the way a short-lived CLI process should (no long-held global
// state between commands).
type app struct {
	Config    *config.Config
	Store     *store.Store
	Updater   *updater.Updater
	Engine    *rulesengine.Engine
	Collages  *collections.CollageStore
	Playlists *collections.PlaylistStore
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	s, err := store.Open(cfg.CacheDir)
	if err != nil {
		return nil, err
	}
	u := updater.New(s, cfg)
	return &app{
		Config:  cfg,
		Store:   s,
		Updater: u,
		Engine:  rulesengine.New(s, cfg, u),
		Collages: &collections.CollageStore{
			SourceDir: cfg.MusicSourceDir,
			LocksDir:  cfg.LocksDir(),
		},
		Playlists: &collections.PlaylistStore{
			SourceDir:    cfg.MusicSourceDir,
			LocksDir:     cfg.LocksDir(),
			ValidArtExts: cfg.ValidArtExts,
		},
	}, nil
}

func (a *app) Close() error { return a.Store.Close() }

// runWith is the RunE every verb wires up: build the app, run fn against
// it, close the store, and hand any error to main's exit() for
// classification into §6's exit codes.
func runWith(fn func(a *app, args []string) error) func(cmd *cobra.Command, args []string) {
	return func(cmd *cobra.Command, args []string) {
		a, err := newApp()
		if err != nil {
			exit(err)
		}
		defer a.Close()
		if err := fn(a, args); err != nil {
			exit(err)
		}
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
