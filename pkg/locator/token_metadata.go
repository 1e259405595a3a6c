package locator

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/anthanhphan/gosdk/logger"
	"github.com/google/uuid"
)

// ringState is one published version of the ring. It is never mutated after
// being stored in TokenMetadata.state; writers build a new one.
type ringState struct {
	version          uint64
	tokenToEndpoint  map[Token]Endpoint
	sortedTokens     []Token // ascending keys of tokenToEndpoint
	endpointToHostID map[Endpoint]uuid.UUID
	hostIDToEndpoint map[uuid.UUID]Endpoint
	topology         Topology
}

// TokenMetadata is the authoritative token -> endpoint mapping of the ring.
//
// Readers load the current snapshot without locking, so a lookup always sees
// a token map together with the sorted token list derived from it. Writers
// are serialized by mu and publish a new snapshot when done.
type TokenMetadata struct {
	mu    sync.Mutex
	state atomic.Pointer[ringState]
}

// NewTokenMetadata builds ring metadata from a full initial mapping.
// hostIDs must be one-to-one.
func NewTokenMetadata(tokens map[Token]Endpoint, hostIDs map[Endpoint]uuid.UUID, topology Topology) (*TokenMetadata, error) {
	st := &ringState{
		tokenToEndpoint:  make(map[Token]Endpoint, len(tokens)),
		endpointToHostID: make(map[Endpoint]uuid.UUID, len(hostIDs)),
		hostIDToEndpoint: make(map[uuid.UUID]Endpoint, len(hostIDs)),
		topology:         NewTopology(topology.locations),
	}
	for t, ep := range tokens {
		st.tokenToEndpoint[t] = ep
	}
	for ep, id := range hostIDs {
		if other, exists := st.hostIDToEndpoint[id]; exists {
			return nil, fmt.Errorf("%w: %s claimed by %s and %s", ErrHostIDConflict, id, other, ep)
		}
		st.endpointToHostID[ep] = id
		st.hostIDToEndpoint[id] = ep
	}
	st.sortedTokens = sortTokens(st.tokenToEndpoint)

	tm := &TokenMetadata{}
	tm.state.Store(st)
	return tm, nil
}

// NewEmptyTokenMetadata returns metadata for a ring with no tokens.
func NewEmptyTokenMetadata() *TokenMetadata {
	tm, _ := NewTokenMetadata(nil, nil, Topology{})
	return tm
}

func (tm *TokenMetadata) snapshot() *ringState {
	return tm.state.Load()
}

// SortedTokens returns the ascending, duplicate-free list of ring tokens.
// The slice is shared with other readers and must not be modified.
func (tm *TokenMetadata) SortedTokens() []Token {
	return tm.snapshot().sortedTokens
}

// Size returns the number of tokens on the ring.
func (tm *TokenMetadata) Size() int {
	return len(tm.snapshot().sortedTokens)
}

// RingVersion increases on every published change.
func (tm *TokenMetadata) RingVersion() uint64 {
	return tm.snapshot().version
}

// UpdateNormalToken makes ep the owner of exactly t.
func (tm *TokenMetadata) UpdateNormalToken(t Token, ep Endpoint) error {
	return tm.UpdateNormalTokens(map[Endpoint][]Token{ep: {t}})
}

// UpdateNormalTokensFor makes ep the owner of exactly tokens.
func (tm *TokenMetadata) UpdateNormalTokensFor(tokens []Token, ep Endpoint) error {
	return tm.UpdateNormalTokens(map[Endpoint][]Token{ep: tokens})
}

// UpdateNormalTokens replaces, for every endpoint given, all tokens it owns
// with the new set. A token owned by another endpoint moves to the new owner.
// The update is applied as a whole or not at all.
func (tm *TokenMetadata) UpdateNormalTokens(endpointTokens map[Endpoint][]Token) error {
	if len(endpointTokens) == 0 {
		return nil
	}

	endpoints := make([]Endpoint, 0, len(endpointTokens))
	for ep, tokens := range endpointTokens {
		if len(tokens) == 0 {
			return fmt.Errorf("%w: %s", ErrEmptyTokenSet, ep)
		}
		endpoints = append(endpoints, ep)
	}
	// Deterministic last-writer-wins when two endpoints claim one token.
	sort.Slice(endpoints, func(i, j int) bool { return endpoints[i] < endpoints[j] })

	tm.mu.Lock()
	defer tm.mu.Unlock()

	cur := tm.snapshot()
	next := cur.clone()
	next.tokenToEndpoint = make(map[Token]Endpoint, len(cur.tokenToEndpoint))
	for t, ep := range cur.tokenToEndpoint {
		next.tokenToEndpoint[t] = ep
	}

	for _, ep := range endpoints {
		for t, owner := range next.tokenToEndpoint {
			if owner == ep {
				delete(next.tokenToEndpoint, t)
			}
		}
		for _, t := range endpointTokens[ep] {
			if prev, ok := next.tokenToEndpoint[t]; ok && prev != ep {
				logger.Warnw("Token changing ownership", "token", t.String(), "from", string(prev), "to", string(ep))
			}
			next.tokenToEndpoint[t] = ep
		}
	}

	if sameKeys(cur.tokenToEndpoint, next.tokenToEndpoint) {
		next.sortedTokens = cur.sortedTokens
	} else {
		next.sortedTokens = sortTokens(next.tokenToEndpoint)
	}
	next.version = cur.version + 1
	tm.state.Store(next)
	return nil
}

// FirstTokenIndex returns the index in SortedTokens of the first token >= t,
// wrapping to 0 when t is past the last token.
func (tm *TokenMetadata) FirstTokenIndex(t Token) (int, error) {
	return tm.snapshot().firstTokenIndex(t)
}

// FirstToken returns the token at FirstTokenIndex(t).
func (tm *TokenMetadata) FirstToken(t Token) (Token, error) {
	st := tm.snapshot()
	idx, err := st.firstTokenIndex(t)
	if err != nil {
		return 0, err
	}
	return st.sortedTokens[idx], nil
}

// GetEndpoint returns the owner of exactly t.
func (tm *TokenMetadata) GetEndpoint(t Token) (Endpoint, error) {
	return tm.snapshot().endpoint(t)
}

// TokensOf returns the ascending tokens owned by ep.
func (tm *TokenMetadata) TokensOf(ep Endpoint) []Token {
	st := tm.snapshot()
	var tokens []Token
	for _, t := range st.sortedTokens {
		if st.tokenToEndpoint[t] == ep {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// Endpoints returns the distinct token owners in ring order.
func (tm *TokenMetadata) Endpoints() []Endpoint {
	st := tm.snapshot()
	seen := make(map[Endpoint]struct{})
	var endpoints []Endpoint
	for _, t := range st.sortedTokens {
		ep := st.tokenToEndpoint[t]
		if _, ok := seen[ep]; !ok {
			seen[ep] = struct{}{}
			endpoints = append(endpoints, ep)
		}
	}
	return endpoints
}

// RingEntry is one token and its owner.
type RingEntry struct {
	Token    Token
	Endpoint Endpoint
}

// Entries returns the ring in token order along with its version, both read
// from the same snapshot.
func (tm *TokenMetadata) Entries() (uint64, []RingEntry) {
	st := tm.snapshot()
	entries := make([]RingEntry, len(st.sortedTokens))
	for i, t := range st.sortedTokens {
		entries[i] = RingEntry{Token: t, Endpoint: st.tokenToEndpoint[t]}
	}
	return st.version, entries
}

// TokenToEndpoint returns a copy of the token map.
func (tm *TokenMetadata) TokenToEndpoint() map[Token]Endpoint {
	st := tm.snapshot()
	m := make(map[Token]Endpoint, len(st.tokenToEndpoint))
	for t, ep := range st.tokenToEndpoint {
		m[t] = ep
	}
	return m
}

// UpdateHostID associates hostID with ep, dropping any previous association
// of either side so the mapping stays one-to-one.
func (tm *TokenMetadata) UpdateHostID(hostID uuid.UUID, ep Endpoint) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	cur := tm.snapshot()
	if id, ok := cur.endpointToHostID[ep]; ok && id == hostID {
		return
	}

	next := cur.clone()
	next.endpointToHostID = make(map[Endpoint]uuid.UUID, len(cur.endpointToHostID)+1)
	next.hostIDToEndpoint = make(map[uuid.UUID]Endpoint, len(cur.hostIDToEndpoint)+1)
	for k, v := range cur.endpointToHostID {
		next.endpointToHostID[k] = v
	}
	for k, v := range cur.hostIDToEndpoint {
		next.hostIDToEndpoint[k] = v
	}

	if prevEp, ok := next.hostIDToEndpoint[hostID]; ok {
		logger.Warnw("Host ID moving to new endpoint", "host_id", hostID.String(), "from", string(prevEp), "to", string(ep))
		delete(next.endpointToHostID, prevEp)
	}
	if prevID, ok := next.endpointToHostID[ep]; ok {
		delete(next.hostIDToEndpoint, prevID)
	}
	next.endpointToHostID[ep] = hostID
	next.hostIDToEndpoint[hostID] = ep
	next.version = cur.version + 1
	tm.state.Store(next)
}

// GetHostID returns the host id of ep.
func (tm *TokenMetadata) GetHostID(ep Endpoint) (uuid.UUID, bool) {
	id, ok := tm.snapshot().endpointToHostID[ep]
	return id, ok
}

// GetEndpointForHostID returns the endpoint associated with hostID.
func (tm *TokenMetadata) GetEndpointForHostID(hostID uuid.UUID) (Endpoint, bool) {
	ep, ok := tm.snapshot().hostIDToEndpoint[hostID]
	return ep, ok
}

// UpdateTopology records the location of ep.
func (tm *TokenMetadata) UpdateTopology(ep Endpoint, loc Location) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	cur := tm.snapshot()
	if prev, ok := cur.topology.Location(ep); ok && prev == loc {
		return
	}
	next := cur.clone()
	next.topology = cur.topology.with(ep, loc)
	next.version = cur.version + 1
	tm.state.Store(next)
}

// Topology returns the current topology annotation.
func (tm *TokenMetadata) Topology() Topology {
	return tm.snapshot().topology
}

// clone makes a shallow copy; callers replace the maps they modify.
func (st *ringState) clone() *ringState {
	c := *st
	return &c
}

func (st *ringState) firstTokenIndex(t Token) (int, error) {
	n := len(st.sortedTokens)
	if n == 0 {
		return 0, ErrEmptyRing
	}
	idx := sort.Search(n, func(i int) bool {
		return st.sortedTokens[i] >= t
	})
	if idx == n {
		idx = 0
	}
	return idx, nil
}

func (st *ringState) endpoint(t Token) (Endpoint, error) {
	ep, ok := st.tokenToEndpoint[t]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrTokenNotFound, t)
	}
	return ep, nil
}

func sortTokens(m map[Token]Endpoint) []Token {
	sorted := make([]Token, 0, len(m))
	for t := range m {
		sorted = append(sorted, t)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return sorted
}

func sameKeys(a, b map[Token]Endpoint) bool {
	if len(a) != len(b) {
		return false
	}
	for t := range b {
		if _, ok := a[t]; !ok {
			return false
		}
	}
	return true
}
