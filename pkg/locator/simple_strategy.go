package locator

import (
	"fmt"
	"strconv"
)

const (
	// SimpleStrategyClass is the persisted class name of SimpleStrategy.
	SimpleStrategyClass = LocatorPackage + "SimpleStrategy"

	// ReplicationFactorOption is the only option SimpleStrategy reads.
	ReplicationFactorOption = "replication_factor"

	defaultReplicationFactor = 1
)

// SimpleStrategy places replicas on the next distinct endpoints walking the
// ring clockwise from the token. It ignores datacenters and racks.
type SimpleStrategy struct {
	baseStrategy
}

var _ ReplicationStrategy = (*SimpleStrategy)(nil)

// NewSimpleStrategy is the StrategyFactory of SimpleStrategy. Options are
// parsed lazily, so a bad replication_factor surfaces on use.
func NewSimpleStrategy(keyspace string, tm *TokenMetadata, options map[string]string) (ReplicationStrategy, error) {
	return &SimpleStrategy{baseStrategy: newBaseStrategy(keyspace, tm, options)}, nil
}

// ReplicationFactor reads replication_factor, defaulting to 1.
func (s *SimpleStrategy) ReplicationFactor() (int, error) {
	raw, ok := s.options[ReplicationFactorOption]
	if !ok {
		return defaultReplicationFactor, nil
	}
	rf, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w %q: %w", ErrInvalidReplicationFactor, raw, err)
	}
	if rf < 0 {
		return 0, fmt.Errorf("%w %q: must not be negative", ErrInvalidReplicationFactor, raw)
	}
	return rf, nil
}

// ValidateOptions reports a replication_factor that cannot be used.
func (s *SimpleStrategy) ValidateOptions() error {
	_, err := s.ReplicationFactor()
	return err
}

// CalculateNaturalEndpoints walks at most one revolution of the ring from t
// and returns up to ReplicationFactor distinct owners in visiting order.
func (s *SimpleStrategy) CalculateNaturalEndpoints(t Token) ([]Endpoint, error) {
	replicas, err := s.ReplicationFactor()
	if err != nil {
		return nil, err
	}

	st := s.tokenMetadata.snapshot()
	tokens := st.sortedTokens
	endpoints := make([]Endpoint, 0, min(replicas, len(tokens)))
	if len(tokens) == 0 {
		return endpoints, nil
	}

	idx, err := st.firstTokenIndex(t)
	if err != nil {
		return nil, err
	}

	seen := make(map[Endpoint]struct{}, cap(endpoints))
	for visited := 0; visited < len(tokens) && len(endpoints) < replicas; visited++ {
		ep, err := st.endpoint(tokens[idx])
		if err != nil {
			return nil, err
		}
		if _, dup := seen[ep]; !dup {
			seen[ep] = struct{}{}
			endpoints = append(endpoints, ep)
		}

		idx++
		if idx == len(tokens) {
			idx = 0
		}
	}
	return endpoints, nil
}
