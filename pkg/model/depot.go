package model

// DepotKey pairs a depot ID with its decryption key. Equality is structural.
type DepotKey struct {
	DepotID       string
	DecryptionKey string
}

// DepotKeySet is an insertion-ordered set of depot keys. The same
// (depot, key) pair is never stored twice; first-seen order is preserved
// because it drives unlock-script emission order.
type DepotKeySet struct {
	keys []DepotKey
	seen map[DepotKey]struct{}
}

// NewDepotKeySet returns an empty set.
func NewDepotKeySet() *DepotKeySet {
	return &DepotKeySet{seen: make(map[DepotKey]struct{})}
}

// Add inserts the key if it has not been seen before and reports whether it
// was inserted.
func (s *DepotKeySet) Add(key DepotKey) bool {
	if _, ok := s.seen[key]; ok {
		return false
	}
	s.seen[key] = struct{}{}
	s.keys = append(s.keys, key)
	return true
}

// AddAll inserts every key in order.
func (s *DepotKeySet) AddAll(keys []DepotKey) {
	for _, k := range keys {
		s.Add(k)
	}
}

// Keys returns the collected keys in first-seen order.
func (s *DepotKeySet) Keys() []DepotKey {
	out := make([]DepotKey, len(s.keys))
	copy(out, s.keys)
	return out
}

// Len returns the number of distinct keys.
func (s *DepotKeySet) Len() int { return len(s.keys) }

// DownloadOutcome is the terminal result of one pipeline run.
type DownloadOutcome struct {
	AppID       string
	GameName    string
	Depots      []DepotKey
	OutputPath  string
	SourceRepo  string
	PassThrough bool
}
