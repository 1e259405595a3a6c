package port

import (
	"context"

	"github.com/anthanhphan/go-token-locator/internal/locator/domain"
)

//go:generate mockgen -destination=../service/mocks/store_mock.go -package=mocks -source=store.go

// NodeStateStore persists the local node's host id and tokens.
type NodeStateStore interface {
	// LoadLocalState returns domain.ErrStateNotFound when nothing was saved.
	LoadLocalState(ctx context.Context) (domain.LocalNodeState, error)

	// SaveLocalState overwrites the saved state.
	SaveLocalState(ctx context.Context, state domain.LocalNodeState) error
}
