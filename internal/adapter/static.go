package adapter

import (
	"context"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"lanmap/internal/domain"
	"lanmap/internal/loader"
)

// Static serves the operator-maintained inventory. It performs no network
// I/O; the degradation controller consults it only when no live source
// responds.
type Static struct {
	store *loader.Store
	clock clockwork.Clock
	log   *logrus.Entry
}

// NewStatic creates the static-inventory adapter around a loaded store.
func NewStatic(store *loader.Store, clock clockwork.Clock, log *logrus.Logger) *Static {
	return &Static{
		store: store,
		clock: clock,
		log:   log.WithField("source", domain.SourceStatic),
	}
}

// Tag returns the source identifier.
func (a *Static) Tag() domain.SourceTag {
	return domain.SourceStatic
}

// Fetch returns one record per inventory entry. MACs were normalized at load
// time, so this never fails; an empty inventory returns an empty snapshot.
func (a *Static) Fetch(ctx context.Context) ([]domain.PartialRecord, error) {
	entries := a.store.Entries()
	now := a.clock.Now()

	records := make([]domain.PartialRecord, 0, len(entries))
	for _, e := range entries {
		records = append(records, domain.PartialRecord{
			MAC:       e.MAC,
			IP:        e.IP,
			Hostname:  e.Hostname,
			Source:    domain.SourceStatic,
			FetchedAt: now,
		})
	}
	return records, nil
}
