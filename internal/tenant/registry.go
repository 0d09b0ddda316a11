// Package tenant resolves free-text cooperative names to the canonical tenant
// slugs used in identity provider API calls.
package tenant

// Registry is an immutable mapping from canonical uppercase alias to tenant
// slug. Iteration order is registration order, which containment and fuzzy
// matching depend on for stable tie-breaking.
type Registry struct {
	keys  []string
	slugs map[string]string
}

// NewRegistry builds a registry from alias/slug pairs, preserving order.
// Later registrations of an existing alias are ignored.
func NewRegistry(pairs ...[2]string) *Registry {
	r := &Registry{slugs: make(map[string]string, len(pairs))}
	for _, p := range pairs {
		alias, slug := p[0], p[1]
		if _, ok := r.slugs[alias]; ok {
			continue
		}
		r.keys = append(r.keys, alias)
		r.slugs[alias] = slug
	}
	return r
}

// Aliases returns registry aliases in registration order. The returned slice
// is a copy.
func (r *Registry) Aliases() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Slug returns the slug for an exact alias.
func (r *Registry) Slug(alias string) (string, bool) {
	slug, ok := r.slugs[alias]
	return slug, ok
}

// Default returns the registry of supported cooperatives.
func Default() *Registry {
	return NewRegistry(
		[2]string{"TESTING", "testing"},
		[2]string{"NSCDCKWACOOP", "nscdckwacoop"},
		[2]string{"NSCDCJOS", "nscdcjos"},
		[2]string{"CTLS", "ctls"},
		[2]string{"FUSION", "fusion"},
		[2]string{"LIFELINEMCS", "lifelinemcs"},
		[2]string{"TFC", "tfc"},
		[2]string{"IMMIGRATION", "immigrationmcs"},
		[2]string{"IMMIGRATIONMCS", "immigrationmcs"},
		[2]string{"OCTICS", "octics"},
		[2]string{"MILLY", "milly"},
		[2]string{"AVIATIONABJ", "aviationabj"},
		[2]string{"FCDAMCS", "fcdamcs"},
		[2]string{"INECBAUCHI", "inecbauchi"},
		[2]string{"INECKWARA", "ineckwara"},
		[2]string{"GPMS", "gpms"},
		[2]string{"INECHQMCS", "inechqmcs"},
		[2]string{"NNMCSL", "nnmcsl"},
		[2]string{"INECSMCS", "inecsmcs"},
		[2]string{"MODACS", "modacs"},
		[2]string{"NCCMCS", "nccmcs"},
		[2]string{"NICNMCS", "nicnmcs"},
		[2]string{"OAGF", "oagf"},
		[2]string{"SAMCOS", "samcos"},
		[2]string{"VALGEECS", "valgeecs"},
	)
}
