package vname

import (
	"fmt"
	"strings"
)

// DefaultEvaluator is the built-in Evaluator. It resolves each placeholder
// against an Entity field map using the tag vocabulary (tracktitle,
// releasetitle, tracknumber, releasedate, ... plus
// "<role-prefix>artists.<role-or-all>" for the seven artist roles) and
// falls back to the view's PathContext for facet placeholders
// (artist, genre, descriptor, label, collage, playlist).
type DefaultEvaluator struct{}

// Evaluate renders template against entity and ctx.
func (DefaultEvaluator) Evaluate(template string, entity Entity, ctx PathContext) (string, error) {
	segments := parseTemplate(template)
	var b strings.Builder
	for _, seg := range segments {
		if !seg.isPlaceholder {
			b.WriteString(seg.value)
			continue
		}
		b.WriteString(resolvePlaceholder(seg.value, entity, ctx))
	}
	return b.String(), nil
}

func resolvePlaceholder(name string, entity Entity, ctx PathContext) string {
	switch name {
	case "artist":
		if ctx.Artist != "" {
			return ctx.Artist
		}
	case "genre":
		if ctx.Genre != "" {
			return ctx.Genre
		}
	case "descriptor":
		if ctx.Descriptor != "" {
			return ctx.Descriptor
		}
	case "label":
		if ctx.Label != "" {
			return ctx.Label
		}
	case "collage":
		if ctx.Collage != "" {
			return ctx.Collage
		}
	case "playlist":
		if ctx.Playlist != "" {
			return ctx.Playlist
		}
	}

	v, ok := entity[name]
	if !ok {
		return ""
	}
	return stringify(v)
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []string:
		return strings.Join(t, "; ")
	case fmt.Stringer:
		return t.String()
	case int:
		return fmt.Sprintf("%d", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
