package impulse

// orderedSet is a set that remembers insertion order.
type orderedSet[K comparable] struct {
	index map[K]int
	items []K
}

func (s *orderedSet[K]) add(k K) bool {
	if s.index == nil {
		s.index = make(map[K]int)
	}
	if _, ok := s.index[k]; ok {
		return false
	}
	s.index[k] = len(s.items)
	s.items = append(s.items, k)
	return true
}

func (s *orderedSet[K]) remove(k K) bool {
	i, ok := s.index[k]
	if !ok {
		return false
	}
	delete(s.index, k)
	s.items = append(s.items[:i], s.items[i+1:]...)
	for j := i; j < len(s.items); j++ {
		s.index[s.items[j]] = j
	}
	return true
}

func (s *orderedSet[K]) has(k K) bool {
	_, ok := s.index[k]
	return ok
}

func (s *orderedSet[K]) len() int {
	return len(s.items)
}

// snapshot returns a copy of the members in insertion order.
func (s *orderedSet[K]) snapshot() []K {
	if len(s.items) == 0 {
		return nil
	}
	out := make([]K, len(s.items))
	copy(out, s.items)
	return out
}
