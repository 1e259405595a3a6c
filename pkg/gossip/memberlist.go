package gossip

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/anthanhphan/gosdk/logger"
	"github.com/google/uuid"
	"github.com/hashicorp/memberlist"

	"github.com/anthanhphan/go-token-locator/pkg/locator"
)

// EndpointState is what a node announces about itself. Generation grows every
// time the node changes its tokens, so stale copies relayed by peers lose.
type EndpointState struct {
	Endpoint   locator.Endpoint `json:"endpoint"`
	HostID     uuid.UUID        `json:"host_id"`
	Location   locator.Location `json:"location"`
	Tokens     []locator.Token  `json:"tokens"`
	Generation int64            `json:"generation"`
}

// nodeMeta travels in memberlist node metadata, which is size-limited, so the
// token list is exchanged through push/pull state instead.
type nodeMeta struct {
	Endpoint   locator.Endpoint `json:"endpoint"`
	HostID     uuid.UUID        `json:"host_id"`
	Datacenter string           `json:"datacenter"`
	Rack       string           `json:"rack"`
}

// GossipAdapter keeps TokenMetadata in sync with cluster membership using
// memberlist.
type GossipAdapter struct {
	list *memberlist.Memberlist
	conf *memberlist.Config
	tm   *locator.TokenMetadata

	mu     sync.RWMutex
	local  locator.Endpoint
	states map[locator.Endpoint]EndpointState

	onRingUpdate func()
}

var (
	_ memberlist.Delegate      = (*GossipAdapter)(nil)
	_ memberlist.EventDelegate = (*GossipAdapter)(nil)
)

// NewGossipAdapter starts memberlist on bindAddr:bindPort and publishes local
// into tm. onRingUpdate, if set, runs after every applied token change.
func NewGossipAdapter(nodeName string, bindAddr string, bindPort int, tm *locator.TokenMetadata, local EndpointState, onRingUpdate func()) (*GossipAdapter, error) {
	config := memberlist.DefaultLANConfig()
	config.Name = nodeName
	config.BindAddr = bindAddr
	config.BindPort = bindPort
	config.AdvertisePort = bindPort
	config.LogOutput = io.Discard

	adapter := newAdapter(tm, local, onRingUpdate)
	adapter.conf = config

	config.Events = adapter
	config.Delegate = adapter

	list, err := memberlist.Create(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create memberlist: %w", err)
	}
	adapter.list = list
	return adapter, nil
}

func newAdapter(tm *locator.TokenMetadata, local EndpointState, onRingUpdate func()) *GossipAdapter {
	g := &GossipAdapter{
		tm:           tm,
		local:        local.Endpoint,
		states:       make(map[locator.Endpoint]EndpointState),
		onRingUpdate: onRingUpdate,
	}
	g.apply(local)
	return g
}

// Join joins the cluster using seed nodes.
func (g *GossipAdapter) Join(seeds []string) error {
	if len(seeds) > 0 {
		_, err := g.list.Join(seeds)
		if err != nil {
			return fmt.Errorf("failed to join cluster: %w", err)
		}
	}
	return nil
}

// Leave leaves the cluster.
func (g *GossipAdapter) Leave() error {
	if err := g.list.Leave(time.Second * 5); err != nil {
		return err
	}
	return g.list.Shutdown()
}

// SetLocalTokens replaces the tokens announced by this node.
func (g *GossipAdapter) SetLocalTokens(tokens []locator.Token) {
	g.mu.RLock()
	st := g.states[g.local]
	g.mu.RUnlock()

	st.Tokens = append([]locator.Token(nil), tokens...)
	st.Generation = nextGeneration(st.Generation)
	g.apply(st)
}

// LocalEndpointState returns the state this node announces.
func (g *GossipAdapter) LocalEndpointState() EndpointState {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.states[g.local]
}

// Members returns the known endpoint states ordered by endpoint.
func (g *GossipAdapter) Members() []EndpointState {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]EndpointState, 0, len(g.states))
	for _, st := range g.states {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Endpoint < out[j].Endpoint })
	return out
}

// NodeMeta returns the local node metadata.
func (g *GossipAdapter) NodeMeta(limit int) []byte {
	local := g.LocalEndpointState()
	data, err := json.Marshal(nodeMeta{
		Endpoint:   local.Endpoint,
		HostID:     local.HostID,
		Datacenter: local.Location.Datacenter,
		Rack:       local.Location.Rack,
	})
	if err != nil {
		logger.Warnw("failed to marshal gossip node meta", "error", err.Error())
		return nil
	}
	if len(data) > limit {
		logger.Warnw("gossip node meta exceeds limit", "size", len(data), "limit", limit)
		return nil
	}
	return data
}

// NotifyMsg and GetBroadcasts are unused; state moves through push/pull.
func (g *GossipAdapter) NotifyMsg([]byte)                           {}
func (g *GossipAdapter) GetBroadcasts(overhead, limit int) [][]byte { return nil }

// LocalState sends every endpoint state this node knows about.
func (g *GossipAdapter) LocalState(join bool) []byte {
	data, err := json.Marshal(g.Members())
	if err != nil {
		logger.Warnw("failed to marshal gossip state", "error", err.Error())
		return nil
	}
	return data
}

// MergeRemoteState applies the newer endpoint states received from a peer.
func (g *GossipAdapter) MergeRemoteState(buf []byte, join bool) {
	var states []EndpointState
	if err := json.Unmarshal(buf, &states); err != nil {
		logger.Warnw("failed to decode gossip state", "error", err.Error())
		return
	}
	for _, st := range states {
		if st.Endpoint == g.local {
			continue
		}
		g.apply(st)
	}
}

// NotifyJoin is invoked when a node joins.
func (g *GossipAdapter) NotifyJoin(node *memberlist.Node) {
	meta, ok := decodeMeta(node.Meta)
	if !ok {
		return
	}
	logger.Infow("Node joined", "name", node.Name, "endpoint", string(meta.Endpoint), "host_id", meta.HostID.String(),
		"datacenter", meta.Datacenter, "rack", meta.Rack)

	if meta.HostID != uuid.Nil {
		g.tm.UpdateHostID(meta.HostID, meta.Endpoint)
	}
	g.tm.UpdateTopology(meta.Endpoint, locator.Location{Datacenter: meta.Datacenter, Rack: meta.Rack})
}

// NotifyLeave is invoked when a node leaves. Its tokens stay on the ring
// until another endpoint claims them.
func (g *GossipAdapter) NotifyLeave(node *memberlist.Node) {
	meta, _ := decodeMeta(node.Meta)
	logger.Infow("Node left", "name", node.Name, "endpoint", string(meta.Endpoint))
}

// NotifyUpdate is invoked when a node is updated.
func (g *GossipAdapter) NotifyUpdate(node *memberlist.Node) {
	g.NotifyJoin(node)
}

// apply stores st if it is newer than what is known and pushes its tokens
// into the ring.
func (g *GossipAdapter) apply(st EndpointState) bool {
	if st.Endpoint == "" {
		return false
	}

	// Held across the ring update so concurrent generations apply in order.
	g.mu.Lock()
	defer g.mu.Unlock()

	known, exists := g.states[st.Endpoint]
	if exists && known.Generation >= st.Generation {
		return false
	}
	g.states[st.Endpoint] = st

	if st.HostID != uuid.Nil {
		g.tm.UpdateHostID(st.HostID, st.Endpoint)
	}
	if st.Location != (locator.Location{}) {
		g.tm.UpdateTopology(st.Endpoint, st.Location)
	}
	if len(st.Tokens) == 0 {
		return true
	}
	if err := g.tm.UpdateNormalTokensFor(st.Tokens, st.Endpoint); err != nil {
		logger.Warnw("failed to apply endpoint tokens", "endpoint", string(st.Endpoint), "error", err.Error())
		return false
	}
	logger.Debugw("Applied endpoint tokens", "endpoint", string(st.Endpoint), "tokens", len(st.Tokens), "generation", st.Generation)
	if g.onRingUpdate != nil {
		g.onRingUpdate()
	}
	return true
}

func decodeMeta(data []byte) (nodeMeta, bool) {
	var m nodeMeta
	if len(data) == 0 {
		return m, false
	}
	if err := json.Unmarshal(data, &m); err != nil {
		logger.Warnw("failed to decode node metadata", "error", err.Error())
		return m, false
	}
	return m, m.Endpoint != ""
}

func nextGeneration(prev int64) int64 {
	now := time.Now().UnixNano()
	if now <= prev {
		return prev + 1
	}
	return now
}
