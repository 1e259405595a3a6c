package domain

import (
	"github.com/google/uuid"

	"github.com/anthanhphan/go-token-locator/pkg/locator"
)

// LocalNodeState is what a node persists about itself across restarts.
type LocalNodeState struct {
	HostID uuid.UUID
	Tokens []locator.Token
}

// Keyspace describes the replication settings of one keyspace.
type Keyspace struct {
	Name    string            `json:"name"`
	Class   string            `json:"class"`
	Options map[string]string `json:"options"`
}

// TokenOwner is one ring entry.
type TokenOwner struct {
	Token    locator.Token    `json:"token,string"`
	Endpoint locator.Endpoint `json:"endpoint"`
}

// RingView is a consistent listing of the ring at one version.
type RingView struct {
	Version uint64       `json:"version"`
	Tokens  []TokenOwner `json:"tokens"`
}
