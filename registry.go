package directory

import (
	"reflect"
	"sync"
)

var (
	registry   = make(map[reflect.Type]*tablePlan)
	registryMu sync.RWMutex
)

// planFor returns a cached table plan or builds a new one.
func planFor[T any]() (*tablePlan, error) {
	typ := reflect.TypeFor[T]()

	// Fast path: read-lock cache check
	registryMu.RLock()
	if cached, ok := registry[typ]; ok {
		registryMu.RUnlock()
		return cached, nil
	}
	registryMu.RUnlock()

	// Slow path: build and cache with write-lock
	registryMu.Lock()
	defer registryMu.Unlock()

	// Double-check pattern
	if cached, ok := registry[typ]; ok {
		return cached, nil
	}

	plan, err := buildPlan[T]()
	if err != nil {
		return nil, err
	}

	registry[typ] = plan
	return plan, nil
}

// Reset clears the plan registry.
// This is primarily useful for test isolation.
func Reset() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[reflect.Type]*tablePlan)
}
