package marketdata

import (
	"context"
	"errors"
)

// MultiPublisher fans one depth message out to several publishers. A
// failing transport does not stop the others; errors are joined.
type MultiPublisher struct {
	publishers []Publisher
}

// NewMultiPublisher creates a publisher fanning out to all given targets.
func NewMultiPublisher(publishers ...Publisher) *MultiPublisher {
	return &MultiPublisher{publishers: publishers}
}

// PublishDepth publishes to every target.
func (m *MultiPublisher) PublishDepth(ctx context.Context, depth *DepthMessage) error {
	var errs []error
	for _, p := range m.publishers {
		if err := p.PublishDepth(ctx, depth); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every target.
func (m *MultiPublisher) Close() error {
	var errs []error
	for _, p := range m.publishers {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Ensure MultiPublisher implements Publisher
var _ Publisher = (*MultiPublisher)(nil)
