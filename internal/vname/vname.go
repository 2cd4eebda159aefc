// Package vname implements the virtual-name generator and sanitizer:
// deterministic, collision-resolving virtual names for the VFS, rendered
// from path templates, plus the reverse (parent, name) -> entity-id map
// the VFS bridge depends on.
//
// Path-template *rendering* is an external collaborator's responsibility:
// the core depends only on the Evaluator interface below.
// defaulttemplate.go supplies a concrete segment-based implementation so
// the package is runnable standalone, but any Evaluator can be
// substituted.
package vname

import (
	"sync"
	"time"
)

// Entity is anything a template can render a name for: a release, a track,
// a collage, or a playlist. The concrete field set is provided by the
// caller (rulesengine/updater) as a map, keeping this package decoupled
// from the domain model.
type Entity = map[string]any

// PathContext is the parent view's facet context passed to the template,
// per §4.7: the unsanitized genre/descriptor/label/artist/collage/playlist
// name the parent directory represents, plus the view name.
type PathContext struct {
	View       string
	Artist     string
	Genre      string
	Descriptor string
	Label      string
	Collage    string
	Playlist   string
}

// Evaluator renders a template against an entity and a PathContext into a
// filename string (without sanitization — that's this package's job).
type Evaluator interface {
	Evaluate(template string, entity Entity, ctx PathContext) (string, error)
}

// nameCacheEntry is one row of the generator's (parent, name) -> id map.
type nameCacheEntry struct {
	id        string
	expiresAt time.Time
}

// Generator renders virtual names and remembers the name -> id mapping for
// a configurable grace period (§4.7: "so that file handles opened against a
// now-renamed entity continue to resolve").
type Generator struct {
	eval   Evaluator
	ttl    time.Duration
	maxLen int

	mu    sync.Mutex
	cache map[string]map[string]nameCacheEntry // parent -> name -> entry
}

// NewGenerator creates a Generator with the given TTL (§4.7 suggests 2h)
// and max filename byte length (§6 max_filename_bytes).
func NewGenerator(eval Evaluator, ttl time.Duration, maxFilenameBytes int) *Generator {
	return &Generator{
		eval:   eval,
		ttl:    ttl,
		maxLen: maxFilenameBytes,
		cache:  make(map[string]map[string]nameCacheEntry),
	}
}

// Render renders a single entity's virtual name against template/ctx,
// sanitizes it, and resolves collisions against the names already produced
// for this parent+listing pass (via the used set the caller maintains), per
// §4.7's " [2]"/" [3]" collision rule. It records (parent, name) -> id on
// success.
func (g *Generator) Render(parent, id, template string, entity Entity, ctx PathContext, used map[string]struct{}) (string, error) {
	raw, err := g.eval.Evaluate(template, entity, ctx)
	if err != nil {
		return "", err
	}
	name := Sanitize(raw, g.maxLen)
	if name == "" {
		name = "untitled"
	}

	final := name
	for n := 2; ; n++ {
		if _, taken := used[final]; !taken {
			break
		}
		final = appendSuffix(name, n, g.maxLen)
	}
	used[final] = struct{}{}
	g.remember(parent, final, id)
	return final, nil
}

func appendSuffix(name string, n int, maxLen int) string {
	suffix := suffixFor(n)
	name = truncateForSuffix(name, suffix, maxLen)
	return name + suffix
}

func suffixFor(n int) string {
	const digits = "0123456789"
	s := " ["
	if n == 0 {
		s += "0"
	} else {
		var d []byte
		for n > 0 {
			d = append([]byte{digits[n%10]}, d...)
			n /= 10
		}
		s += string(d)
	}
	return s + "]"
}

func truncateForSuffix(name, suffix string, maxLen int) string {
	if maxLen <= 0 {
		return name
	}
	budget := maxLen - len(suffix)
	if budget < 0 {
		budget = 0
	}
	if len(name) <= budget {
		return name
	}
	return name[:budget]
}

func (g *Generator) remember(parent, name, id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	m, ok := g.cache[parent]
	if !ok {
		m = make(map[string]nameCacheEntry)
		g.cache[parent] = m
	}
	m[name] = nameCacheEntry{id: id, expiresAt: time.Now().Add(g.ttl)}
}

// Resolve looks up (parent, name) -> id, returning ok=false on a miss or an
// expired entry.
func (g *Generator) Resolve(parent, name string) (id string, ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	m, exists := g.cache[parent]
	if !exists {
		return "", false
	}
	entry, exists := m[name]
	if !exists || time.Now().After(entry.expiresAt) {
		return "", false
	}
	return entry.id, true
}

// Remember directly records a (parent, name) -> id mapping without
// rendering or sanitizing anything, for callers that post-process a
// rendered name (e.g. prefixing a collage/playlist position number) and
// need the final displayed string to resolve back to id.
func (g *Generator) Remember(parent, name, id string) {
	g.remember(parent, name, id)
}

// Forget drops every cached name for a parent, used when a directory's
// contents are known to have changed (an explicit mutation, not a passive
// TTL expiry).
func (g *Generator) Forget(parent string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.cache, parent)
}
