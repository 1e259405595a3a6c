package locator

// ReplicationStrategy selects the replicas of a ring position.
type ReplicationStrategy interface {
	// CalculateNaturalEndpoints returns the replica endpoints of t,
	// primary first.
	CalculateNaturalEndpoints(t Token) ([]Endpoint, error)

	// ReplicationFactor returns the configured number of replicas.
	ReplicationFactor() (int, error)

	// ValidateOptions checks the strategy options without touching the ring.
	ValidateOptions() error

	// Keyspace returns the keyspace the strategy was built for.
	Keyspace() string
}

// StrategyFactory builds a strategy for a keyspace. Strategies keep a
// reference to tm but never modify it.
type StrategyFactory func(keyspace string, tm *TokenMetadata, options map[string]string) (ReplicationStrategy, error)

// baseStrategy holds the constructor arguments shared by all strategies.
type baseStrategy struct {
	keyspace      string
	tokenMetadata *TokenMetadata
	options       map[string]string
}

func newBaseStrategy(keyspace string, tm *TokenMetadata, options map[string]string) baseStrategy {
	opts := make(map[string]string, len(options))
	for k, v := range options {
		opts[k] = v
	}
	return baseStrategy{
		keyspace:      keyspace,
		tokenMetadata: tm,
		options:       opts,
	}
}

func (b *baseStrategy) Keyspace() string {
	return b.keyspace
}
