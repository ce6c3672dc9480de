package ecs

import "sort"

// Removable is implemented by every component store so World can drop an
// entity's data from all of them on destroy.
type Removable interface {
	Remove(id EntityID)
}

// Store keeps one component type keyed by entity. Iteration via Each is in
// ascending id order so a tick processes agents in the same order every run.
type Store[T any] struct {
	data map[EntityID]*T
	ids  []EntityID // sorted lazily
	// dirty is set when ids no longer mirrors data.
	dirty bool
}

func NewStore[T any]() *Store[T] {
	return &Store[T]{data: make(map[EntityID]*T, 32)}
}

func (s *Store[T]) Set(id EntityID, c *T) {
	if _, ok := s.data[id]; !ok {
		s.dirty = true
	}
	s.data[id] = c
}

func (s *Store[T]) Get(id EntityID) (*T, bool) {
	c, ok := s.data[id]
	return c, ok
}

func (s *Store[T]) Remove(id EntityID) {
	if _, ok := s.data[id]; ok {
		delete(s.data, id)
		s.dirty = true
	}
}

func (s *Store[T]) Has(id EntityID) bool {
	_, ok := s.data[id]
	return ok
}

func (s *Store[T]) Len() int {
	return len(s.data)
}

// IDs returns the stored entity ids in ascending order. The slice is shared;
// callers must not modify it.
func (s *Store[T]) IDs() []EntityID {
	if s.dirty {
		s.ids = s.ids[:0]
		for id := range s.data {
			s.ids = append(s.ids, id)
		}
		sort.Slice(s.ids, func(i, j int) bool { return s.ids[i] < s.ids[j] })
		s.dirty = false
	}
	return s.ids
}

// Each visits components in ascending id order. fn may remove the visited
// entity but must not add new ones.
func (s *Store[T]) Each(fn func(EntityID, *T)) {
	ids := append([]EntityID(nil), s.IDs()...)
	for _, id := range ids {
		if c, ok := s.data[id]; ok {
			fn(id, c)
		}
	}
}

// Each2 visits entities present in both stores, in the order of sa.
func Each2[A, B any](sa *Store[A], sb *Store[B], fn func(EntityID, *A, *B)) {
	sa.Each(func(id EntityID, a *A) {
		if b, ok := sb.data[id]; ok {
			fn(id, a, b)
		}
	})
}
