package storage

import (
	"context"
	"errors"
	"time"

	"github.com/platinummonkey/authgate/pkg/auth"
	"github.com/platinummonkey/authgate/pkg/observability"
)

// InstrumentedStore records Prometheus metrics around another UserStore.
// Not-found and duplicate results count as successful operations.
type InstrumentedStore struct {
	next    UserStore
	metrics *observability.Metrics
}

// NewInstrumentedStore wraps next with metrics
func NewInstrumentedStore(next UserStore, metrics *observability.Metrics) *InstrumentedStore {
	return &InstrumentedStore{next: next, metrics: metrics}
}

func (s *InstrumentedStore) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	start := time.Now()
	user, err := s.next.FindByEmail(ctx, email)
	s.record("find_by_email", start, err)
	return user, err
}

func (s *InstrumentedStore) FindByID(ctx context.Context, id string) (*auth.User, error) {
	start := time.Now()
	user, err := s.next.FindByID(ctx, id)
	s.record("find_by_id", start, err)
	return user, err
}

func (s *InstrumentedStore) Create(ctx context.Context, user *auth.User) error {
	start := time.Now()
	err := s.next.Create(ctx, user)
	s.record("create", start, err)
	return err
}

func (s *InstrumentedStore) record(operation string, start time.Time, err error) {
	if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrEmailTaken) {
		err = nil
	}
	s.metrics.RecordStoreOperation(operation, time.Since(start), err)
}
