package solver

import (
	"errors"
	"sort"
	"sync"

	cserrors "github.com/matzehuels/cellsolve/pkg/errors"
)

// ErrUnknownBackend is returned by [Lookup] for unregistered names.
var ErrUnknownBackend = errors.New("unknown solver backend")

var (
	backends   = map[string]Backend{}
	backendsMu sync.RWMutex
)

// Register makes a backend available by its name. Registering a second
// backend under the same name replaces the first.
func Register(b Backend) {
	if b == nil {
		return
	}
	backendsMu.Lock()
	defer backendsMu.Unlock()
	backends[b.Name()] = b
}

// Lookup returns the backend registered under name. Unknown names yield a
// MISSING_BACKEND error wrapping ErrUnknownBackend.
func Lookup(name string) (Backend, error) {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	if b, ok := backends[name]; ok {
		return b, nil
	}
	return nil, cserrors.Wrap(cserrors.ErrCodeMissingBackend, ErrUnknownBackend, "solver backend %q is not available", name)
}

// Backends returns the registered backend names in sorted order.
func Backends() []string {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	names := make([]string, 0, len(backends))
	for n := range backends {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
