package gossip

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/hashicorp/memberlist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anthanhphan/go-token-locator/pkg/locator"
)

func localState(ep locator.Endpoint, tokens ...locator.Token) EndpointState {
	return EndpointState{
		Endpoint:   ep,
		HostID:     uuid.New(),
		Location:   locator.Location{Datacenter: "dc1", Rack: "r1"},
		Tokens:     tokens,
		Generation: 1,
	}
}

func TestDecodeMeta(t *testing.T) {
	id := uuid.New()
	data, _ := json.Marshal(map[string]interface{}{
		"endpoint":   "10.0.0.1:9042",
		"host_id":    id.String(),
		"datacenter": "dc1",
		"rack":       "r2",
	})

	meta, ok := decodeMeta(data)
	require.True(t, ok)
	assert.Equal(t, locator.Endpoint("10.0.0.1:9042"), meta.Endpoint)
	assert.Equal(t, id, meta.HostID)
	assert.Equal(t, "r2", meta.Rack)

	_, ok = decodeMeta(nil)
	assert.False(t, ok)
	_, ok = decodeMeta([]byte("{"))
	assert.False(t, ok)
}

func TestGossipAdapter_NodeMeta(t *testing.T) {
	g := newAdapter(locator.NewEmptyTokenMetadata(), localState("a:1", 10), nil)

	data := g.NodeMeta(memberlist.MetaMaxSize)
	meta, ok := decodeMeta(data)
	require.True(t, ok)
	assert.Equal(t, locator.Endpoint("a:1"), meta.Endpoint)
	assert.Equal(t, "dc1", meta.Datacenter)

	assert.Nil(t, g.NodeMeta(4))
}

func TestGossipAdapter_PublishesLocalTokens(t *testing.T) {
	tm := locator.NewEmptyTokenMetadata()
	local := localState("a:1", 10, 20)

	newAdapter(tm, local, nil)

	assert.Equal(t, []locator.Token{10, 20}, tm.TokensOf("a:1"))
	id, ok := tm.GetHostID("a:1")
	require.True(t, ok)
	assert.Equal(t, local.HostID, id)
}

func TestGossipAdapter_MergeRemoteState(t *testing.T) {
	tmA := locator.NewEmptyTokenMetadata()
	tmB := locator.NewEmptyTokenMetadata()
	updates := 0
	a := newAdapter(tmA, localState("a:1", 10), func() { updates++ })
	b := newAdapter(tmB, localState("b:1", 20, 30), nil)

	a.MergeRemoteState(b.LocalState(false), false)
	b.MergeRemoteState(a.LocalState(false), false)

	assert.Equal(t, []locator.Token{10, 20, 30}, tmA.SortedTokens())
	assert.Equal(t, tmA.TokenToEndpoint(), tmB.TokenToEndpoint())
	assert.Equal(t, 2, updates)
	assert.Len(t, a.Members(), 2)
}

func TestGossipAdapter_IgnoresStaleGenerations(t *testing.T) {
	tm := locator.NewEmptyTokenMetadata()
	g := newAdapter(tm, localState("a:1", 10), nil)

	fresh := localState("b:1", 20)
	fresh.Generation = 5
	stale := fresh
	stale.Tokens = []locator.Token{99}
	stale.Generation = 4

	data, _ := json.Marshal([]EndpointState{fresh})
	g.MergeRemoteState(data, false)
	data, _ = json.Marshal([]EndpointState{stale})
	g.MergeRemoteState(data, false)

	assert.Equal(t, []locator.Token{20}, tm.TokensOf("b:1"))
}

func TestGossipAdapter_IgnoresRemoteCopyOfLocal(t *testing.T) {
	tm := locator.NewEmptyTokenMetadata()
	g := newAdapter(tm, localState("a:1", 10), nil)

	remote := localState("a:1", 77)
	remote.Generation = 100
	data, _ := json.Marshal([]EndpointState{remote})
	g.MergeRemoteState(data, false)

	assert.Equal(t, []locator.Token{10}, tm.TokensOf("a:1"))
}

func TestGossipAdapter_SetLocalTokensReplaces(t *testing.T) {
	tm := locator.NewEmptyTokenMetadata()
	g := newAdapter(tm, localState("a:1", 10, 20), nil)
	before := g.LocalEndpointState().Generation

	g.SetLocalTokens([]locator.Token{30})

	assert.Equal(t, []locator.Token{30}, tm.TokensOf("a:1"))
	assert.Greater(t, g.LocalEndpointState().Generation, before)
}

func TestGossipAdapter_NotifyJoinRecordsTopology(t *testing.T) {
	tm := locator.NewEmptyTokenMetadata()
	g := newAdapter(tm, localState("a:1", 10), nil)

	id := uuid.New()
	meta, _ := json.Marshal(nodeMeta{Endpoint: "b:1", HostID: id, Datacenter: "dc2", Rack: "r9"})
	g.NotifyJoin(&memberlist.Node{Name: "b", Meta: meta})

	ep, ok := tm.GetEndpointForHostID(id)
	require.True(t, ok)
	assert.Equal(t, locator.Endpoint("b:1"), ep)
	loc, ok := tm.Topology().Location("b:1")
	require.True(t, ok)
	assert.Equal(t, "dc2", loc.Datacenter)
}
