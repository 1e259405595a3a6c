package app

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anthanhphan/go-token-locator/pkg/gossip"
	"github.com/anthanhphan/go-token-locator/pkg/locator"
)

func TestPublishLocal(t *testing.T) {
	tm := locator.NewEmptyTokenMetadata()
	st := gossip.EndpointState{
		Endpoint: "10.0.0.1:9042",
		HostID:   uuid.New(),
		Location: locator.Location{Datacenter: "dc1", Rack: "r1"},
		Tokens:   []locator.Token{5, -5},
	}

	require.NoError(t, publishLocal(tm, st))

	assert.Equal(t, []locator.Token{-5, 5}, tm.SortedTokens())
	id, ok := tm.GetHostID("10.0.0.1:9042")
	require.True(t, ok)
	assert.Equal(t, st.HostID, id)
}

func TestPublishLocal_NoTokens(t *testing.T) {
	err := publishLocal(locator.NewEmptyTokenMetadata(), gossip.EndpointState{Endpoint: "a", HostID: uuid.New()})
	assert.ErrorIs(t, err, locator.ErrEmptyTokenSet)
}
