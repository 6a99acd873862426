package roster

import (
	"fmt"
	"sort"
	"strings"
)

// Registry tracks identifiers, emails, and person names already used
// anywhere in the current run. The generator has no memory between calls,
// so the orchestration seeds new requests with avoid-lists drawn from here
// and rejects any response that collides with an earlier one.
type Registry struct {
	ids        map[string]struct{}
	emails     map[string]struct{}
	firstNames map[string]struct{}
	lastNames  map[string]struct{}
}

// NewRegistry returns an empty run-scoped registry.
func NewRegistry() *Registry {
	return &Registry{
		ids:        make(map[string]struct{}),
		emails:     make(map[string]struct{}),
		firstNames: make(map[string]struct{}),
		lastNames:  make(map[string]struct{}),
	}
}

// Stage opens a staging area for one generation payload. Claims made on the
// stage see both the committed registry and earlier claims on the same
// stage, but nothing reaches the registry until Commit. A validation
// failure simply drops the stage, so a rejected payload leaves no residue.
func (r *Registry) Stage() *Stage {
	return &Stage{
		parent:     r,
		ids:        make(map[string]struct{}),
		emails:     make(map[string]struct{}),
		firstNames: make(map[string]struct{}),
		lastNames:  make(map[string]struct{}),
	}
}

// FirstNames returns all committed first names, sorted.
func (r *Registry) FirstNames() []string { return sortedKeys(r.firstNames) }

// LastNames returns all committed last names, sorted.
func (r *Registry) LastNames() []string { return sortedKeys(r.lastNames) }

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Stage is an uncommitted set of uniqueness claims on top of a Registry.
type Stage struct {
	parent     *Registry
	ids        map[string]struct{}
	emails     map[string]struct{}
	firstNames map[string]struct{}
	lastNames  map[string]struct{}
}

// ClaimID records an identifier, failing if it was seen anywhere this run.
func (s *Stage) ClaimID(id string) error {
	return claim("identifier", id, s.parent.ids, s.ids)
}

// ClaimEmail records an email address, case-insensitively.
func (s *Stage) ClaimEmail(email string) error {
	return claim("email", strings.ToLower(email), s.parent.emails, s.emails)
}

// ClaimName records a first/last name pair. The pair is claimed atomically:
// a collision on either half stages neither. Middle names are not tracked.
func (s *Stage) ClaimName(first, last string) error {
	f, l := strings.ToLower(first), strings.ToLower(last)
	if err := check("first name", f, s.parent.firstNames, s.firstNames); err != nil {
		return err
	}
	if err := check("last name", l, s.parent.lastNames, s.lastNames); err != nil {
		return err
	}
	s.firstNames[f] = struct{}{}
	s.lastNames[l] = struct{}{}
	return nil
}

func check(kind, key string, committed, staged map[string]struct{}) error {
	if _, ok := committed[key]; ok {
		return fmt.Errorf("duplicate %s %q", kind, key)
	}
	if _, ok := staged[key]; ok {
		return fmt.Errorf("duplicate %s %q", kind, key)
	}
	return nil
}

func claim(kind, key string, committed, staged map[string]struct{}) error {
	if err := check(kind, key, committed, staged); err != nil {
		return err
	}
	staged[key] = struct{}{}
	return nil
}

// Commit folds the stage into the registry. The stage must not be reused.
func (s *Stage) Commit() {
	for k := range s.ids {
		s.parent.ids[k] = struct{}{}
	}
	for k := range s.emails {
		s.parent.emails[k] = struct{}{}
	}
	for k := range s.firstNames {
		s.parent.firstNames[k] = struct{}{}
	}
	for k := range s.lastNames {
		s.parent.lastNames[k] = struct{}{}
	}
}
