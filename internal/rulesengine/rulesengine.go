// Package rulesengine implements the rules engine: given a Rule, find its
// candidate tracks via the FTS index, verify them precisely against the
// full tag set, evaluate the rule's actions against an in-memory copy of
// each track's tags, diff against the original, and (unless dry_run)
// flush the changes back to disk and trigger a targeted cache refresh.
package rulesengine

import (
	l "github.com/sirupsen/logrus"

	"github.com/azuline/rose-go/internal/config"
	"github.com/azuline/rose-go/internal/store"
	"github.com/azuline/rose-go/internal/updater"
)

var log = l.WithFields(l.Fields{"component": "rulesengine"})

// Engine runs rules against a cache store and source tree, and triggers a
// targeted cache refresh once changes are flushed to disk.
type Engine struct {
	Store  *store.Store
	Config *config.Config

	// Updater is called after a successful flush to refresh the cache rows
	// of every release touched by the run, and by CreateSingleRelease to
	// both index the new release and default it to not-new. May be nil for
	// callers (tests, dry-run-only flows) that never call Flush or
	// CreateSingleRelease.
	Updater *updater.Updater
}

// New builds an Engine.
func New(s *store.Store, cfg *config.Config, u *updater.Updater) *Engine {
	return &Engine{Store: s, Config: cfg, Updater: u}
}
