package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthanhphan/gosdk/logger"
	"github.com/google/uuid"

	"github.com/anthanhphan/go-token-locator/internal/locator/domain"
	"github.com/anthanhphan/go-token-locator/internal/locator/port"
	"github.com/anthanhphan/go-token-locator/pkg/locator"
	"github.com/anthanhphan/go-token-locator/pkg/partitioner"
)

// BootstrapOptions selects the tokens of a node starting for the first time.
type BootstrapOptions struct {
	InitialTokens []locator.Token
	NumTokens     int
}

// BootstrapService decides which tokens the local node owns. Saved state
// wins over configuration so a restarted node keeps its ring position.
type BootstrapService struct {
	store       port.NodeStateStore
	partitioner *partitioner.Murmur3Partitioner
}

// NewBootstrapService creates the service. store may be nil, in which case
// nothing is loaded or saved.
func NewBootstrapService(store port.NodeStateStore, p *partitioner.Murmur3Partitioner) *BootstrapService {
	return &BootstrapService{store: store, partitioner: p}
}

func (b *BootstrapService) Bootstrap(ctx context.Context, opts BootstrapOptions) (domain.LocalNodeState, error) {
	var state domain.LocalNodeState

	if b.store != nil {
		saved, err := b.store.LoadLocalState(ctx)
		switch {
		case err == nil && len(saved.Tokens) > 0:
			logger.Infow("Using saved local tokens", "host_id", saved.HostID.String(), "tokens", len(saved.Tokens))
			return saved, nil
		case err == nil:
			state.HostID = saved.HostID
		case !errors.Is(err, domain.ErrStateNotFound):
			return state, fmt.Errorf("failed to load local state: %w", err)
		}
	}

	if state.HostID == uuid.Nil {
		state.HostID = uuid.New()
	}

	if len(opts.InitialTokens) > 0 {
		state.Tokens = append([]locator.Token(nil), opts.InitialTokens...)
	} else {
		n := opts.NumTokens
		if n <= 0 {
			n = 1
		}
		state.Tokens = b.partitioner.RandomTokens(n)
	}
	logger.Infow("Generated local tokens", "host_id", state.HostID.String(), "tokens", len(state.Tokens))

	if b.store != nil {
		if err := b.store.SaveLocalState(ctx, state); err != nil {
			return state, fmt.Errorf("failed to save local state: %w", err)
		}
	}
	return state, nil
}
