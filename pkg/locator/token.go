package locator

import (
	"math"
	"strconv"
)

// Token is a position on the ring. Ring order is the natural int64 order and
// the position after MaxToken is MinToken.
type Token int64

const (
	MinToken Token = math.MinInt64
	MaxToken Token = math.MaxInt64
)

// Compare returns -1, 0 or +1.
func (t Token) Compare(other Token) int {
	switch {
	case t < other:
		return -1
	case t > other:
		return 1
	default:
		return 0
	}
}

func (t Token) String() string {
	return strconv.FormatInt(int64(t), 10)
}

// ParseToken parses the decimal form produced by String.
func ParseToken(s string) (Token, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return Token(v), nil
}

// Endpoint identifies a physical node, usually "host:port".
type Endpoint string

// Location is the datacenter/rack annotation of an endpoint.
type Location struct {
	Datacenter string `json:"datacenter" yaml:"datacenter"`
	Rack       string `json:"rack" yaml:"rack"`
}

// Topology groups endpoints by location. It is carried by TokenMetadata for
// topology-aware strategies and treated as read-only once published.
type Topology struct {
	locations map[Endpoint]Location
}

// NewTopology copies locations into a new Topology.
func NewTopology(locations map[Endpoint]Location) Topology {
	m := make(map[Endpoint]Location, len(locations))
	for ep, loc := range locations {
		m[ep] = loc
	}
	return Topology{locations: m}
}

// Location returns the location recorded for ep.
func (t Topology) Location(ep Endpoint) (Location, bool) {
	loc, ok := t.locations[ep]
	return loc, ok
}

// Len returns the number of annotated endpoints.
func (t Topology) Len() int {
	return len(t.locations)
}

func (t Topology) with(ep Endpoint, loc Location) Topology {
	m := make(map[Endpoint]Location, len(t.locations)+1)
	for k, v := range t.locations {
		m[k] = v
	}
	m[ep] = loc
	return Topology{locations: m}
}
