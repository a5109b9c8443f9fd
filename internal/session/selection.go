// Package session keeps the running symptom selection of each user.
package session

// Selection is an insertion-ordered set of symptom names. The zero value is
// an empty selection ready to use.
type Selection struct {
	names []string
	seen  map[string]struct{}
}

// NewSelection returns a selection holding names, duplicates dropped.
func NewSelection(names ...string) Selection {
	var s Selection
	for _, n := range names {
		s.Add(n)
	}
	return s
}

// Add appends name. It returns false if name was already selected.
func (s *Selection) Add(name string) bool {
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	if _, ok := s.seen[name]; ok {
		return false
	}
	s.seen[name] = struct{}{}
	s.names = append(s.names, name)
	return true
}

// Remove drops name. It returns false if name was not selected.
func (s *Selection) Remove(name string) bool {
	if _, ok := s.seen[name]; !ok {
		return false
	}
	delete(s.seen, name)
	for i, n := range s.names {
		if n == name {
			s.names = append(s.names[:i], s.names[i+1:]...)
			break
		}
	}
	return true
}

// Has reports whether name is selected.
func (s *Selection) Has(name string) bool {
	_, ok := s.seen[name]
	return ok
}

// Reset empties the selection.
func (s *Selection) Reset() {
	s.names = nil
	s.seen = nil
}

// Len returns the number of selected names.
func (s *Selection) Len() int {
	return len(s.names)
}

// Names returns a copy of the selected names in the order they were added.
func (s *Selection) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}
