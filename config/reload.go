package config

// Reloader re-reads a TOML file into a Store. Watcher events and explicit
// reload requests both go through HandleChange.
type Reloader[T comparable] struct {
	store    *Store[T]
	path     string
	defaults *T
}

// NewReloader creates a Reloader for path that layers the file over defaults.
func NewReloader[T comparable](store *Store[T], path string, defaults *T) *Reloader[T] {
	return &Reloader[T]{store: store, path: path, defaults: defaults}
}

// HandleChange loads the file and swaps it into the store when it differs
// from the current value, so listeners only run on real changes. Editors
// often write a file several times per save. On error the store keeps its
// current value.
func (r *Reloader[T]) HandleChange() (changed bool, err error) {
	cfg, err := LoadTOML(r.path, r.defaults)
	if err != nil {
		return false, err
	}
	if cur := r.store.Get(); cur != nil && *cur == *cfg {
		return false, nil
	}
	r.store.Swap(cfg)
	return true, nil
}
