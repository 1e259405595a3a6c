package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/anthanhphan/go-token-locator/internal/locator/domain"
	"github.com/anthanhphan/go-token-locator/internal/locator/service/mocks"
	"github.com/anthanhphan/go-token-locator/pkg/locator"
	"github.com/anthanhphan/go-token-locator/pkg/partitioner"
)

func TestBootstrapService_Bootstrap(t *testing.T) {
	savedID := uuid.New()

	tests := []struct {
		name       string
		opts       BootstrapOptions
		setupMocks func(store *mocks.MockNodeStateStore)
		wantTokens []locator.Token
		wantCount  int
		wantHostID uuid.UUID
		wantErr    bool
	}{
		{
			name: "UsesSavedTokens",
			opts: BootstrapOptions{InitialTokens: []locator.Token{1}},
			setupMocks: func(store *mocks.MockNodeStateStore) {
				store.EXPECT().LoadLocalState(gomock.Any()).
					Return(domain.LocalNodeState{HostID: savedID, Tokens: []locator.Token{7, 8}}, nil)
				store.EXPECT().SaveLocalState(gomock.Any(), gomock.Any()).Times(0)
			},
			wantTokens: []locator.Token{7, 8},
			wantHostID: savedID,
		},
		{
			name: "InitialTokensOnFirstStart",
			opts: BootstrapOptions{InitialTokens: []locator.Token{100, 200}, NumTokens: 16},
			setupMocks: func(store *mocks.MockNodeStateStore) {
				store.EXPECT().LoadLocalState(gomock.Any()).Return(domain.LocalNodeState{}, domain.ErrStateNotFound)
				store.EXPECT().SaveLocalState(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantTokens: []locator.Token{100, 200},
		},
		{
			name: "RandomTokensKeepSavedHostID",
			opts: BootstrapOptions{NumTokens: 4},
			setupMocks: func(store *mocks.MockNodeStateStore) {
				store.EXPECT().LoadLocalState(gomock.Any()).Return(domain.LocalNodeState{HostID: savedID}, nil)
				store.EXPECT().SaveLocalState(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantCount:  4,
			wantHostID: savedID,
		},
		{
			name: "LoadFailure",
			opts: BootstrapOptions{NumTokens: 4},
			setupMocks: func(store *mocks.MockNodeStateStore) {
				store.EXPECT().LoadLocalState(gomock.Any()).Return(domain.LocalNodeState{}, errors.New("redis down"))
			},
			wantErr: true,
		},
		{
			name: "SaveFailure",
			opts: BootstrapOptions{NumTokens: 1},
			setupMocks: func(store *mocks.MockNodeStateStore) {
				store.EXPECT().LoadLocalState(gomock.Any()).Return(domain.LocalNodeState{}, domain.ErrStateNotFound)
				store.EXPECT().SaveLocalState(gomock.Any(), gomock.Any()).Return(errors.New("redis down"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			store := mocks.NewMockNodeStateStore(ctrl)
			tt.setupMocks(store)

			svc := NewBootstrapService(store, partitioner.NewMurmur3Partitioner())
			state, err := svc.Bootstrap(context.Background(), tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, state.HostID)
			if tt.wantHostID != uuid.Nil {
				assert.Equal(t, tt.wantHostID, state.HostID)
			}
			if tt.wantTokens != nil {
				assert.Equal(t, tt.wantTokens, state.Tokens)
			}
			if tt.wantCount > 0 {
				assert.Len(t, state.Tokens, tt.wantCount)
			}
		})
	}
}

func TestBootstrapService_WithoutStore(t *testing.T) {
	svc := NewBootstrapService(nil, partitioner.NewMurmur3Partitioner())

	state, err := svc.Bootstrap(context.Background(), BootstrapOptions{})
	require.NoError(t, err)
	assert.Len(t, state.Tokens, 1)
	assert.NotEqual(t, uuid.Nil, state.HostID)
}
