package roiform

import "strings"

// SessionStore is the slice of page session storage the kit is allowed
// to clean. Implementations wrap whatever the embedding environment
// provides.
type SessionStore interface {
	Keys() []string
	Remove(key string)
}

// KeyPredicate decides whether a session key should be removed.
type KeyPredicate func(key string) bool

// HasSubstring matches keys containing any of the given fragments,
// case-insensitively.
func HasSubstring(fragments ...string) KeyPredicate {
	lowered := make([]string, len(fragments))
	for i, f := range fragments {
		lowered[i] = strings.ToLower(f)
	}
	return func(key string) bool {
		k := strings.ToLower(key)
		for _, f := range lowered {
			if f != "" && strings.Contains(k, f) {
				return true
			}
		}
		return false
	}
}

// CleanSessionState removes every key matched by pred and reports how
// many were removed. Best effort: the key set is read once and
// removals are not verified.
func CleanSessionState(store SessionStore, pred KeyPredicate) int {
	if store == nil || pred == nil {
		return 0
	}
	removed := 0
	for _, key := range store.Keys() {
		if pred(key) {
			store.Remove(key)
			removed++
		}
	}
	return removed
}
