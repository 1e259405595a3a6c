package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/anthanhphan/gosdk/logger"

	"github.com/anthanhphan/go-token-locator/internal/locator/domain"
	"github.com/anthanhphan/go-token-locator/internal/locator/port"
	"github.com/anthanhphan/go-token-locator/pkg/locator"
	"github.com/anthanhphan/go-token-locator/pkg/metrics"
	"github.com/anthanhphan/go-token-locator/pkg/partitioner"
)

type keyspaceEntry struct {
	def   domain.Keyspace
	cache *locator.NaturalEndpointsCache
}

// PlacementServiceImpl resolves replicas for keyspaces over one shared ring.
type PlacementServiceImpl struct {
	tm          *locator.TokenMetadata
	registry    *locator.Registry
	partitioner *partitioner.Murmur3Partitioner
	metrics     *metrics.Metrics

	mu        sync.RWMutex
	keyspaces map[string]*keyspaceEntry
}

var _ port.PlacementService = (*PlacementServiceImpl)(nil)

// NewPlacementService creates the service. m may be nil.
func NewPlacementService(tm *locator.TokenMetadata, registry *locator.Registry, p *partitioner.Murmur3Partitioner, m *metrics.Metrics) *PlacementServiceImpl {
	return &PlacementServiceImpl{
		tm:          tm,
		registry:    registry,
		partitioner: p,
		metrics:     m,
		keyspaces:   make(map[string]*keyspaceEntry),
	}
}

func (s *PlacementServiceImpl) CreateKeyspace(ctx context.Context, ks domain.Keyspace) error {
	if ks.Name == "" {
		return fmt.Errorf("keyspace name is required")
	}
	class, err := s.registry.Resolve(ks.Class)
	if err != nil {
		return err
	}
	strategy, err := s.registry.Create(class, ks.Name, s.tm, ks.Options)
	if err != nil {
		return fmt.Errorf("failed to create strategy for keyspace %s: %w", ks.Name, err)
	}
	if err := strategy.ValidateOptions(); err != nil {
		return fmt.Errorf("keyspace %s: %w", ks.Name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.keyspaces[ks.Name]; exists {
		return fmt.Errorf("%w: %s", domain.ErrKeyspaceExists, ks.Name)
	}
	ks.Class = class
	s.keyspaces[ks.Name] = &keyspaceEntry{
		def:   ks,
		cache: locator.NewNaturalEndpointsCache(s.tm, strategy),
	}
	logger.Infow("Keyspace created", "keyspace", ks.Name, "class", class)
	return nil
}

func (s *PlacementServiceImpl) Keyspaces(ctx context.Context) []domain.Keyspace {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Keyspace, 0, len(s.keyspaces))
	for _, e := range s.keyspaces {
		out = append(out, e.def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *PlacementServiceImpl) NaturalEndpoints(ctx context.Context, keyspace string, token locator.Token) ([]locator.Endpoint, error) {
	s.mu.RLock()
	entry, ok := s.keyspaces[keyspace]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrKeyspaceNotFound, keyspace)
	}

	endpoints, err := entry.cache.GetNaturalEndpoints(token)
	if s.metrics != nil {
		s.metrics.Lookups.WithLabelValues(keyspace).Inc()
		if err != nil {
			s.metrics.LookupErrors.WithLabelValues(keyspace).Inc()
		} else {
			s.metrics.ReplicaCounts.WithLabelValues(keyspace).Observe(float64(len(endpoints)))
		}
	}
	if err != nil {
		logger.Warnw("Natural endpoints lookup failed", "keyspace", keyspace, "token", token.String(), "error", err.Error())
		return nil, err
	}
	return endpoints, nil
}

func (s *PlacementServiceImpl) EndpointsForKey(ctx context.Context, keyspace string, key []byte) (locator.Token, []locator.Endpoint, error) {
	token := s.partitioner.GetToken(key)
	endpoints, err := s.NaturalEndpoints(ctx, keyspace, token)
	return token, endpoints, err
}

func (s *PlacementServiceImpl) Ring(ctx context.Context) domain.RingView {
	version, entries := s.tm.Entries()

	view := domain.RingView{
		Version: version,
		Tokens:  make([]domain.TokenOwner, len(entries)),
	}
	for i, e := range entries {
		view.Tokens[i] = domain.TokenOwner{Token: e.Token, Endpoint: e.Endpoint}
	}
	return view
}
