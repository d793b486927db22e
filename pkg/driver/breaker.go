package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/cinegraph/cinegraph/pkg/types"
)

// BreakerSettings configures the circuit breaker around a GraphDriver.
type BreakerSettings struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	ReadyToTripRatio float64
}

// BreakerDriver wraps a GraphDriver with circuit breaking logic so a down
// backing store fails fast instead of piling up requests. An open breaker
// surfaces as ErrStorageUnavailable.
type BreakerDriver struct {
	inner  GraphDriver
	cb     *gobreaker.CircuitBreaker
	logger *slog.Logger
}

// NewBreakerDriver wraps driver with a circuit breaker.
func NewBreakerDriver(inner GraphDriver, cfg BreakerSettings, logger *slog.Logger) *BreakerDriver {
	if logger == nil {
		logger = slog.Default()
	}

	st := gobreaker.Settings{
		Name:        "graph-store",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= cfg.ReadyToTripRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				"breaker", name, "from", from.String(), "to", to.String())
		},
		IsSuccessful: func(err error) bool {
			// Taxonomy errors describe the request, not the store.
			return err == nil ||
				errors.Is(err, types.ErrNotFound) ||
				errors.Is(err, types.ErrInvalidInput) ||
				errors.Is(err, types.ErrConflict)
		},
	}

	return &BreakerDriver{
		inner:  inner,
		cb:     gobreaker.NewCircuitBreaker(st),
		logger: logger,
	}
}

func (d *BreakerDriver) execute(fn func() (any, error)) (any, error) {
	result, err := d.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", types.ErrStorageUnavailable, err)
	}
	return result, err
}

func (d *BreakerDriver) UpsertEntity(ctx context.Context, kind types.EntityKind, key string) error {
	_, err := d.execute(func() (any, error) {
		return nil, d.inner.UpsertEntity(ctx, kind, key)
	})
	return err
}

func (d *BreakerDriver) SetProperties(ctx context.Context, kind types.EntityKind, key string, props map[string]any) error {
	_, err := d.execute(func() (any, error) {
		return nil, d.inner.SetProperties(ctx, kind, key, props)
	})
	return err
}

func (d *BreakerDriver) GetEntity(ctx context.Context, kind types.EntityKind, key string) (types.Identifiable, error) {
	result, err := d.execute(func() (any, error) {
		return d.inner.GetEntity(ctx, kind, key)
	})
	if err != nil {
		return nil, err
	}
	return result.(types.Identifiable), nil
}

func (d *BreakerDriver) ListEntities(ctx context.Context, kind types.EntityKind) ([]types.Identifiable, error) {
	result, err := d.execute(func() (any, error) {
		return d.inner.ListEntities(ctx, kind)
	})
	if err != nil {
		return nil, err
	}
	return result.([]types.Identifiable), nil
}

func (d *BreakerDriver) DeleteEntity(ctx context.Context, kind types.EntityKind, key string) error {
	_, err := d.execute(func() (any, error) {
		return nil, d.inner.DeleteEntity(ctx, kind, key)
	})
	return err
}

func (d *BreakerDriver) UpsertRelation(ctx context.Context, rel types.Relation) error {
	_, err := d.execute(func() (any, error) {
		return nil, d.inner.UpsertRelation(ctx, rel)
	})
	return err
}

func (d *BreakerDriver) MoviesByPerson(ctx context.Context, kind types.EntityKind, name string) ([]*types.Movie, error) {
	result, err := d.execute(func() (any, error) {
		return d.inner.MoviesByPerson(ctx, kind, name)
	})
	if err != nil {
		return nil, err
	}
	return result.([]*types.Movie), nil
}

func (d *BreakerDriver) PersonsByMovie(ctx context.Context, title string, rel types.RelationKind) ([]types.Identifiable, error) {
	result, err := d.execute(func() (any, error) {
		return d.inner.PersonsByMovie(ctx, title, rel)
	})
	if err != nil {
		return nil, err
	}
	return result.([]types.Identifiable), nil
}

func (d *BreakerDriver) CollaboratorsOf(ctx context.Context, kind types.EntityKind, name string) ([]types.Identifiable, error) {
	result, err := d.execute(func() (any, error) {
		return d.inner.CollaboratorsOf(ctx, kind, name)
	})
	if err != nil {
		return nil, err
	}
	return result.([]types.Identifiable), nil
}

func (d *BreakerDriver) FindEntities(ctx context.Context, kind types.EntityKind, query string) ([]types.Identifiable, error) {
	result, err := d.execute(func() (any, error) {
		return d.inner.FindEntities(ctx, kind, query)
	})
	if err != nil {
		return nil, err
	}
	return result.([]types.Identifiable), nil
}

func (d *BreakerDriver) ApplyBatch(ctx context.Context, batch *Batch) error {
	_, err := d.execute(func() (any, error) {
		return nil, d.inner.ApplyBatch(ctx, batch)
	})
	return err
}

func (d *BreakerDriver) Clear(ctx context.Context) error {
	_, err := d.execute(func() (any, error) {
		return nil, d.inner.Clear(ctx)
	})
	return err
}

func (d *BreakerDriver) CreateIndices(ctx context.Context) error {
	_, err := d.execute(func() (any, error) {
		return nil, d.inner.CreateIndices(ctx)
	})
	return err
}

func (d *BreakerDriver) Stats(ctx context.Context) (*GraphStats, error) {
	result, err := d.execute(func() (any, error) {
		return d.inner.Stats(ctx)
	})
	if err != nil {
		return nil, err
	}
	return result.(*GraphStats), nil
}

func (d *BreakerDriver) Ping(ctx context.Context) error {
	_, err := d.execute(func() (any, error) {
		return nil, d.inner.Ping(ctx)
	})
	return err
}

func (d *BreakerDriver) Provider() GraphProvider { return d.inner.Provider() }

func (d *BreakerDriver) Close(ctx context.Context) error { return d.inner.Close(ctx) }

var _ GraphDriver = (*BreakerDriver)(nil)
