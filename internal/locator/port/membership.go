package port

import (
	"github.com/anthanhphan/go-token-locator/pkg/gossip"
	"github.com/anthanhphan/go-token-locator/pkg/locator"
)

// MembershipPort defines cluster membership as seen by the locator.
type MembershipPort interface {
	// Join joins an existing cluster using a list of seed nodes.
	Join(seeds []string) error

	// Leave gracefully leaves the cluster.
	Leave() error

	// SetLocalTokens announces new tokens for the local node.
	SetLocalTokens(tokens []locator.Token)

	// Members returns every endpoint state known to this node.
	Members() []gossip.EndpointState
}
