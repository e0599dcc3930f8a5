package models

import "iter"

// handle addresses an arena slot. gen guards against a stale handle
// reaching a slot that has since been freed and reused.
type handle struct {
	index uint32
	gen   uint32
}

type slot[T any] struct {
	key  string
	gen  uint32
	live bool
	val  T
}

// arena is a dense slot slice with a free list, indexed by external key.
// Iteration follows slot order, so it is deterministic for a given edit history.
type arena[T any] struct {
	slots []slot[T]
	free  []uint32
	index map[string]handle
}

func newArena[T any]() arena[T] {
	return arena[T]{index: make(map[string]handle)}
}

func (a *arena[T]) len() int {
	return len(a.index)
}

func (a *arena[T]) has(key string) bool {
	_, ok := a.index[key]
	return ok
}

// insert stores val under key, overwriting an existing entry in place.
func (a *arena[T]) insert(key string, val T) {
	if a.index == nil {
		a.index = make(map[string]handle)
	}
	if h, ok := a.index[key]; ok {
		a.slots[h.index].val = val
		return
	}
	if n := len(a.free); n > 0 {
		i := a.free[n-1]
		a.free = a.free[:n-1]
		s := &a.slots[i]
		s.key, s.live, s.val = key, true, val
		a.index[key] = handle{index: i, gen: s.gen}
		return
	}
	a.slots = append(a.slots, slot[T]{key: key, live: true, val: val})
	a.index[key] = handle{index: uint32(len(a.slots) - 1)}
}

func (a *arena[T]) remove(key string) bool {
	h, ok := a.index[key]
	if !ok {
		return false
	}
	s := &a.slots[h.index]
	var zero T
	s.key, s.live, s.val = "", false, zero
	s.gen++
	a.free = append(a.free, h.index)
	delete(a.index, key)
	return true
}

func (a *arena[T]) lookup(key string) (*T, bool) {
	h, ok := a.index[key]
	if !ok {
		return nil, false
	}
	s := &a.slots[h.index]
	if !s.live || s.gen != h.gen {
		return nil, false
	}
	return &s.val, true
}

// all yields live entries in slot order. Entries inserted during iteration
// into fresh slots are visited; removals are honoured.
func (a *arena[T]) all() iter.Seq2[string, *T] {
	return func(yield func(string, *T) bool) {
		for i := 0; i < len(a.slots); i++ {
			s := &a.slots[i]
			if !s.live {
				continue
			}
			if !yield(s.key, &s.val) {
				return
			}
		}
	}
}

func (a *arena[T]) keys() []string {
	keys := make([]string, 0, len(a.index))
	for k := range a.all() {
		keys = append(keys, k)
	}
	return keys
}

// clone copies the arena; cp deep-copies each value.
func (a *arena[T]) clone(cp func(T) T) arena[T] {
	c := arena[T]{
		slots: make([]slot[T], len(a.slots)),
		free:  append([]uint32(nil), a.free...),
		index: make(map[string]handle, len(a.index)),
	}
	for i, s := range a.slots {
		if s.live {
			s.val = cp(s.val)
		}
		c.slots[i] = s
	}
	for k, h := range a.index {
		c.index[k] = h
	}
	return c
}
