package locator

import (
	"math/rand/v2"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSimple(t *testing.T, tm *TokenMetadata, options map[string]string) ReplicationStrategy {
	t.Helper()
	s, err := NewSimpleStrategy("ks", tm, options)
	require.NoError(t, err)
	return s
}

func TestSimpleStrategy_CalculateNaturalEndpoints(t *testing.T) {
	ring := map[Token]Endpoint{10: "A", 20: "B", 30: "C"}

	tests := []struct {
		name  string
		rf    string
		token Token
		want  []Endpoint
	}{
		{name: "WrapsAfterLastToken", rf: "2", token: 25, want: []Endpoint{"C", "A"}},
		{name: "StopsAfterOneRevolution", rf: "5", token: 25, want: []Endpoint{"C", "A", "B"}},
		{name: "ExactTokenIsPrimary", rf: "1", token: 20, want: []Endpoint{"B"}},
		{name: "PastMaximumStartsAtFirst", rf: "2", token: 31, want: []Endpoint{"A", "B"}},
		{name: "BelowMinimumStartsAtFirst", rf: "3", token: MinToken, want: []Endpoint{"A", "B", "C"}},
		{name: "ZeroReplicas", rf: "0", token: 10, want: []Endpoint{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSimple(t, newTestRing(t, ring), map[string]string{ReplicationFactorOption: tt.rf})

			got, err := s.CalculateNaturalEndpoints(tt.token)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSimpleStrategy_DeduplicatesVirtualNodes(t *testing.T) {
	tm := newTestRing(t, map[Token]Endpoint{10: "A", 20: "A", 30: "B", 40: "A", 50: "C"})
	s := newSimple(t, tm, map[string]string{ReplicationFactorOption: "3"})

	got, err := s.CalculateNaturalEndpoints(15)
	require.NoError(t, err)
	assert.Equal(t, []Endpoint{"A", "B", "C"}, got)
}

func TestSimpleStrategy_EmptyRing(t *testing.T) {
	for _, rf := range []string{"0", "1", "3"} {
		s := newSimple(t, NewEmptyTokenMetadata(), map[string]string{ReplicationFactorOption: rf})

		got, err := s.CalculateNaturalEndpoints(42)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	}
}

func TestSimpleStrategy_ReplicationFactor(t *testing.T) {
	tests := []struct {
		name    string
		options map[string]string
		want    int
		wantErr bool
	}{
		{name: "DefaultsToOne", options: nil, want: 1},
		{name: "IgnoresUnknownOptions", options: map[string]string{"durable_writes": "true"}, want: 1},
		{name: "Parsed", options: map[string]string{ReplicationFactorOption: "3"}, want: 3},
		{name: "NotANumber", options: map[string]string{ReplicationFactorOption: "three"}, wantErr: true},
		{name: "Negative", options: map[string]string{ReplicationFactorOption: "-1"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSimple(t, NewEmptyTokenMetadata(), tt.options)

			rf, err := s.ReplicationFactor()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidReplicationFactor)
				assert.ErrorIs(t, s.ValidateOptions(), ErrInvalidReplicationFactor)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, rf)
		})
	}
}

func TestSimpleStrategy_BadReplicationFactorPropagates(t *testing.T) {
	tm := newTestRing(t, map[Token]Endpoint{10: "A"})
	s := newSimple(t, tm, map[string]string{ReplicationFactorOption: "x"})

	_, err := s.CalculateNaturalEndpoints(10)
	assert.ErrorIs(t, err, ErrInvalidReplicationFactor)
}

func TestSimpleStrategy_OptionsAreCopied(t *testing.T) {
	opts := map[string]string{ReplicationFactorOption: "2"}
	s := newSimple(t, NewEmptyTokenMetadata(), opts)
	opts[ReplicationFactorOption] = "5"

	rf, err := s.ReplicationFactor()
	require.NoError(t, err)
	assert.Equal(t, 2, rf)
}

func TestSimpleStrategy_RandomRingProperties(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for round := 0; round < 50; round++ {
		tokens := make(map[Token]Endpoint)
		nodes := 1 + rng.IntN(8)
		for i := 0; i < 1+rng.IntN(64); i++ {
			tokens[Token(rng.Int64())] = Endpoint("n" + strconv.Itoa(rng.IntN(nodes)))
		}
		tm := newTestRing(t, tokens)
		distinct := len(tm.Endpoints())

		rf := rng.IntN(10)
		s := newSimple(t, tm, map[string]string{ReplicationFactorOption: strconv.Itoa(rf)})
		query := Token(rng.Int64())

		got, err := s.CalculateNaturalEndpoints(query)
		require.NoError(t, err)

		assert.LessOrEqual(t, len(got), rf)
		assert.LessOrEqual(t, len(got), distinct)
		assert.Equal(t, min(rf, distinct), len(got))

		seen := make(map[Endpoint]bool)
		for _, ep := range got {
			assert.False(t, seen[ep], "duplicate endpoint %s", ep)
			seen[ep] = true
		}

		if rf > 0 {
			first, err := tm.FirstToken(query)
			require.NoError(t, err)
			primary, err := tm.GetEndpoint(first)
			require.NoError(t, err)
			assert.Equal(t, primary, got[0])
		}

		again, err := s.CalculateNaturalEndpoints(query)
		require.NoError(t, err)
		assert.Equal(t, got, again)
	}
}
