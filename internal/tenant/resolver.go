package tenant

import (
	"log/slog"
	"strings"
)

// fuzzyThreshold is the minimum similarity score (exclusive) for a fuzzy
// match to be accepted.
const fuzzyThreshold = 0.6

// Resolver matches free-text cooperative input against a Registry.
// It is pure aside from debug tracing.
type Resolver struct {
	registry *Registry
	logger   *slog.Logger
}

// NewResolver creates a Resolver over the given registry.
func NewResolver(registry *Registry, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{registry: registry, logger: logger}
}

// Normalize uppercases the input and strips every character outside [A-Z0-9].
func Normalize(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	for _, r := range strings.ToUpper(input) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Resolve maps raw user input to a tenant slug. Matching strategies are tried
// in order, first success wins: exact alias match, containment in either
// direction, then fuzzy matching with a similarity threshold. Containment and
// fuzzy ties resolve to the first alias in registration order.
// Returns ("", false) when nothing matches.
func (r *Resolver) Resolve(raw string) (string, bool) {
	if strings.TrimSpace(raw) == "" {
		return "", false
	}

	normalized := Normalize(raw)
	r.logger.Debug("resolving cooperative input", "input", raw, "normalized", normalized)

	if slug, ok := r.registry.Slug(normalized); ok {
		r.logger.Debug("exact match", "alias", normalized, "slug", slug)
		return slug, true
	}

	for _, alias := range r.registry.keys {
		if strings.Contains(normalized, alias) || strings.Contains(alias, normalized) {
			slug, _ := r.registry.Slug(alias)
			r.logger.Debug("containment match", "input", normalized, "alias", alias, "slug", slug)
			return slug, true
		}
	}

	bestScore := 0.0
	bestAlias := ""
	for _, alias := range r.registry.keys {
		score := Similarity(normalized, alias)
		if score > fuzzyThreshold && score > bestScore {
			bestScore = score
			bestAlias = alias
		}
	}
	if bestAlias != "" {
		slug, _ := r.registry.Slug(bestAlias)
		r.logger.Debug("fuzzy match", "input", normalized, "alias", bestAlias, "score", bestScore, "slug", slug)
		return slug, true
	}

	r.logger.Debug("no cooperative match", "input", raw)
	return "", false
}
