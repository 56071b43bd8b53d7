package adapter

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"lanmap/internal/domain"
)

// liveOrder is the fixed order live adapters are reported in. The
// degradation controller relies on it for deterministic tier decisions.
var liveOrder = []domain.SourceTag{
	domain.SourceRealtime,
	domain.SourcePortConfig,
	domain.SourceLease,
	domain.SourceARP,
}

// Registry holds the configured adapter set for the engine.
type Registry struct {
	log      *logrus.Logger
	adapters map[domain.SourceTag]Adapter
}

// NewRegistry creates an empty registry.
func NewRegistry(log *logrus.Logger) *Registry {
	return &Registry{
		log:      log,
		adapters: make(map[domain.SourceTag]Adapter),
	}
}

// Register adds an adapter to the registry.
func (r *Registry) Register(a Adapter) error {
	tag := a.Tag()
	if _, exists := r.adapters[tag]; exists {
		return fmt.Errorf("adapter %s already registered", tag)
	}
	r.adapters[tag] = a
	r.log.WithField("source", tag).Info("registered adapter")
	return nil
}

// Get returns the adapter for a source tag.
func (r *Registry) Get(tag domain.SourceTag) (Adapter, bool) {
	a, ok := r.adapters[tag]
	return a, ok
}

// Live returns the registered live adapters in fixed tier order. The static
// adapter is excluded; it is fetched only as a last resort.
func (r *Registry) Live() []Adapter {
	out := make([]Adapter, 0, len(liveOrder))
	for _, tag := range liveOrder {
		if a, ok := r.adapters[tag]; ok {
			out = append(out, a)
		}
	}
	return out
}

// Static returns the static-inventory adapter, nil when none is registered.
func (r *Registry) Static() Adapter {
	return r.adapters[domain.SourceStatic]
}
