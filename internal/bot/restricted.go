package bot

import "strings"

// RestrictedSet is the immutable set of account IDs that may never be added
// to a ticket. The zero value is an empty set.
type RestrictedSet struct {
	ids map[string]struct{}
}

// NewRestrictedSet builds a set from ids, ignoring surrounding blanks and empty entries.
func NewRestrictedSet(ids []string) RestrictedSet {
	set := RestrictedSet{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			set.ids[id] = struct{}{}
		}
	}
	return set
}

// Contains reports whether id is restricted.
func (r RestrictedSet) Contains(id string) bool {
	_, ok := r.ids[id]
	return ok
}

// Len returns the number of restricted IDs.
func (r RestrictedSet) Len() int {
	return len(r.ids)
}
