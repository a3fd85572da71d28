package profile

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps canonical provider ids and their aliases to profiles.
type Registry struct {
	byID     map[string]*Profile
	profiles []*Profile
}

// New builds a registry. Ids and aliases are normalized; an id or alias
// claimed by two profiles is an error.
func New(profiles ...Profile) (*Registry, error) {
	r := &Registry{byID: make(map[string]*Profile, len(profiles)*2)}

	for _, p := range profiles {
		cp := p.clone()
		if cp.ID == "" {
			return nil, fmt.Errorf("provider profile has empty id")
		}
		if _, exists := r.byID[cp.ID]; exists {
			return nil, fmt.Errorf("provider profile %q registered twice", cp.ID)
		}
		stored := &cp
		r.byID[cp.ID] = stored
		r.profiles = append(r.profiles, stored)
	}

	// Aliases never shadow a canonical id.
	for _, p := range r.profiles {
		for _, alias := range p.Aliases {
			if alias == "" || alias == p.ID {
				continue
			}
			if existing, exists := r.byID[alias]; exists && existing != p {
				return nil, fmt.Errorf("alias %q of provider %q already resolves to %q", alias, p.ID, existing.ID)
			}
			r.byID[alias] = p
		}
	}

	sort.Slice(r.profiles, func(i, j int) bool {
		return r.profiles[i].ID < r.profiles[j].ID
	})
	return r, nil
}

// MustNew is New for fixed tables that are known to be valid.
func MustNew(profiles ...Profile) *Registry {
	r, err := New(profiles...)
	if err != nil {
		panic(err)
	}
	return r
}

// Get resolves id (trimmed, case-insensitive, aliases followed) to its
// profile. It returns nil when the provider is unknown. The returned
// profile is shared and must not be modified.
func (r *Registry) Get(id string) *Profile {
	if r == nil {
		return nil
	}
	return r.byID[NormalizeID(id)]
}

// Profiles returns every canonical profile sorted by id.
func (r *Registry) Profiles() []*Profile {
	if r == nil {
		return nil
	}
	out := make([]*Profile, len(r.profiles))
	copy(out, r.profiles)
	return out
}

// Len returns the number of canonical profiles.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.profiles)
}

var builtinRegistry = sync.OnceValue(func() *Registry {
	return MustNew(Builtin()...)
})

// Default returns the process-wide registry built from the builtin table.
func Default() *Registry {
	return builtinRegistry()
}

// Merge returns base with every overlay profile added, replacing base
// profiles that share its canonical id.
func Merge(base, overlay []Profile) []Profile {
	index := make(map[string]int, len(base))
	out := make([]Profile, 0, len(base)+len(overlay))
	for _, p := range base {
		index[NormalizeID(p.ID)] = len(out)
		out = append(out, p)
	}
	for _, p := range overlay {
		if i, ok := index[NormalizeID(p.ID)]; ok {
			out[i] = p
			continue
		}
		index[NormalizeID(p.ID)] = len(out)
		out = append(out, p)
	}
	return out
}
