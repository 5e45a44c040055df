package utils

import "sync"

// KeySet is a thread-safe set of comparable keys.
type KeySet[K comparable] struct {
	mu   sync.RWMutex
	seen map[K]struct{}
}

// NewKeySet creates a KeySet holding the given keys.
func NewKeySet[K comparable](keys ...K) *KeySet[K] {
	s := &KeySet[K]{seen: make(map[K]struct{}, len(keys))}
	for _, k := range keys {
		s.seen[k] = struct{}{}
	}
	return s
}

// Add returns true if the key was newly added, false if already present.
func (s *KeySet[K]) Add(key K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.seen[key]; exists {
		return false
	}
	s.seen[key] = struct{}{}
	return true
}

// Size returns the number of keys tracked.
func (s *KeySet[K]) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seen)
}
