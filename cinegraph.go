// Package cinegraph catalogs movies, actors, and directors plus the
// relationships among them, stored as a deduplicated entity-relationship
// graph: who acted in what (ACTED_IN), who directed what (DIRECTED), and
// the derived collaboration edges between actors and directors
// (COOPERATED_WITH).
package cinegraph

import (
	"context"
	"log/slog"

	"github.com/cinegraph/cinegraph/pkg/driver"
)

// Client is the main implementation of the Cinegraph interface. All state
// lives in the injected storage driver; the client itself is stateless and
// safe for concurrent use.
type Client struct {
	driver driver.GraphDriver
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the structured logger used by the client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a client over the given storage driver. The driver's
// lifecycle is owned by the caller; Close releases it.
func New(d driver.GraphDriver, opts ...Option) *Client {
	c := &Client{driver: d, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Clear removes every entity and edge from the graph. Callers must
// serialize Clear against ingestion and other mutations; a failed clear
// leaves store state undefined.
func (c *Client) Clear(ctx context.Context) error {
	c.logger.Info("clearing graph")
	return c.driver.Clear(ctx)
}

// CreateIndices creates the identity indexes on Movie.title, Actor.name
// and Director.name.
func (c *Client) CreateIndices(ctx context.Context) error {
	return c.driver.CreateIndices(ctx)
}

// Stats returns entity and relation counts.
func (c *Client) Stats(ctx context.Context) (*driver.GraphStats, error) {
	return c.driver.Stats(ctx)
}

// Ping reports storage-layer reachability.
func (c *Client) Ping(ctx context.Context) error {
	return c.driver.Ping(ctx)
}

// Close releases the underlying storage driver.
func (c *Client) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}
