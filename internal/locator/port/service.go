package port

import (
	"context"

	"github.com/anthanhphan/go-token-locator/internal/locator/domain"
	"github.com/anthanhphan/go-token-locator/pkg/locator"
)

// PlacementService answers replica placement queries.
type PlacementService interface {
	// CreateKeyspace registers a keyspace with a replication strategy class.
	CreateKeyspace(ctx context.Context, ks domain.Keyspace) error

	// Keyspaces lists the configured keyspaces by name.
	Keyspaces(ctx context.Context) []domain.Keyspace

	// NaturalEndpoints returns the replicas of token in keyspace, primary first.
	NaturalEndpoints(ctx context.Context, keyspace string, token locator.Token) ([]locator.Endpoint, error)

	// EndpointsForKey hashes key to a token and returns its replicas.
	EndpointsForKey(ctx context.Context, keyspace string, key []byte) (locator.Token, []locator.Endpoint, error)

	// Ring returns the current ring.
	Ring(ctx context.Context) domain.RingView
}
