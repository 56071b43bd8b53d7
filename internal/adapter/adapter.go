package adapter

import (
	"context"
	"errors"
	"fmt"

	"lanmap/internal/domain"
)

// Adapter is one upstream discovery source. Fetch returns an independent
// snapshot of partial records; implementations must respect the context
// deadline and must normalize every MAC they emit.
type Adapter interface {
	// Tag returns the source identifier stamped on every record
	Tag() domain.SourceTag

	// Fetch queries the upstream collaborator and returns one partial
	// record per device it knows about. Record-level problems are skipped
	// and logged; only source-level problems return an error, always an
	// *Error so the caller can classify it.
	Fetch(ctx context.Context) ([]domain.PartialRecord, error)
}

// SwitchSource is implemented by adapters that also learn the switch/port
// structure of the network. The port-configuration adapter implements it;
// descriptors reflect the most recent successful fetch.
type SwitchSource interface {
	Switches() []domain.SwitchDescriptor
}

// ErrorKind classifies a source-level fetch failure
type ErrorKind string

const (
	// KindTimeout - the collaborator did not answer within the adapter's timeout
	KindTimeout ErrorKind = "timeout"
	// KindUnavailable - connectivity or upstream-status failure
	KindUnavailable ErrorKind = "unavailable"
	// KindMalformed - the response body could not be parsed at all
	KindMalformed ErrorKind = "malformed"
)

// Error is a per-source fetch failure. The degradation controller inspects
// Source and Kind to decide which tier a pass falls back to.
type Error struct {
	Source domain.SourceTag
	Kind   ErrorKind
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("adapter %s: %s: %v", e.Source, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// newError wraps err unless it already is an *Error for the same source.
func newError(source domain.SourceTag, kind ErrorKind, err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return &Error{Source: source, Kind: kind, Err: err}
}

// IsTimeout reports whether err is a source-level timeout.
func IsTimeout(err error) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == KindTimeout
}
