package model

// URLSet is a set of listing URLs. Iteration follows first insertion order,
// which keeps output deterministic; callers must not rely on it otherwise.
type URLSet struct {
	order []string
	seen  map[string]struct{}
}

// NewURLSet returns a set holding urls.
func NewURLSet(urls ...string) *URLSet {
	s := &URLSet{seen: make(map[string]struct{})}
	s.AddAll(urls)
	return s
}

// Add inserts url and reports whether it was new.
func (s *URLSet) Add(url string) bool {
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	if _, ok := s.seen[url]; ok {
		return false
	}
	s.seen[url] = struct{}{}
	s.order = append(s.order, url)
	return true
}

// AddAll inserts every url and returns how many were new.
func (s *URLSet) AddAll(urls []string) int {
	added := 0
	for _, u := range urls {
		if s.Add(u) {
			added++
		}
	}
	return added
}

// Contains reports whether url is in the set.
func (s *URLSet) Contains(url string) bool {
	_, ok := s.seen[url]
	return ok
}

// Len returns the number of URLs.
func (s *URLSet) Len() int {
	return len(s.order)
}

// URLs returns the URLs in insertion order.
func (s *URLSet) URLs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
