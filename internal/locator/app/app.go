package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/anthanhphan/gosdk/logger"
	"github.com/redis/go-redis/v9"

	httpHandler "github.com/anthanhphan/go-token-locator/internal/locator/adapter/inbound/http"
	"github.com/anthanhphan/go-token-locator/internal/locator/adapter/outbound/redisstore"
	"github.com/anthanhphan/go-token-locator/internal/locator/config"
	"github.com/anthanhphan/go-token-locator/internal/locator/domain"
	"github.com/anthanhphan/go-token-locator/internal/locator/port"
	"github.com/anthanhphan/go-token-locator/internal/locator/service"
	"github.com/anthanhphan/go-token-locator/pkg/gossip"
	"github.com/anthanhphan/go-token-locator/pkg/locator"
	"github.com/anthanhphan/go-token-locator/pkg/metrics"
	"github.com/anthanhphan/go-token-locator/pkg/partitioner"
)

type App struct {
	cfg       *config.Config
	server    *httpHandler.Server
	gossip    port.MembershipPort
	redis     *redis.Client
	placement *service.PlacementServiceImpl
}

func New(configPath string) (*App, error) {
	// 1. Load Config
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 2. Initialize Logger
	logger.InitLogger(&cfg.Logger)

	// 3. Ring metadata, seeded from a static ring file when configured
	tm := locator.NewEmptyTokenMetadata()
	if cfg.Ring.File != "" {
		tm, err = locator.LoadRingFile(cfg.Ring.File)
		if err != nil {
			return nil, fmt.Errorf("failed to load ring file: %w", err)
		}
		logger.Infow("Loaded ring file", "path", cfg.Ring.File, "tokens", tm.Size())
	}

	// 4. Strategy registry and metrics
	registry := locator.NewDefaultRegistry()
	m := metrics.New(tm)
	p := partitioner.NewMurmur3Partitioner()

	// 5. Local node state, persisted in Redis when enabled
	var (
		store       port.NodeStateStore
		redisClient *redis.Client
	)
	endpoint := locator.Endpoint(cfg.Node.Endpoint)
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		store = redisstore.NewRedisStore(redisClient, endpoint)
	}

	initial := make([]locator.Token, len(cfg.Node.InitialTokens))
	for i, t := range cfg.Node.InitialTokens {
		initial[i] = locator.Token(t)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	local, err := service.NewBootstrapService(store, p).Bootstrap(ctx, service.BootstrapOptions{
		InitialTokens: initial,
		NumTokens:     cfg.Node.NumTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to bootstrap local tokens: %w", err)
	}

	// 6. Gossip, which also publishes the local tokens into the ring
	var membership port.MembershipPort
	localState := gossip.EndpointState{
		Endpoint:   endpoint,
		HostID:     local.HostID,
		Location:   locator.Location{Datacenter: cfg.Node.Datacenter, Rack: cfg.Node.Rack},
		Tokens:     local.Tokens,
		Generation: time.Now().UnixNano(),
	}
	if cfg.Gossip.Enabled {
		nodeName := cfg.Node.Name
		if nodeName == "" {
			nodeName = local.HostID.String()
		}
		membership, err = gossip.NewGossipAdapter(nodeName, cfg.Gossip.BindAddr, cfg.Gossip.Port, tm, localState, m.RingUpdates.Inc)
		if err != nil {
			return nil, fmt.Errorf("failed to init gossip: %w", err)
		}
	} else {
		if err := publishLocal(tm, localState); err != nil {
			return nil, err
		}
	}

	// 7. Keyspaces
	placement := service.NewPlacementService(tm, registry, p, m)
	for _, ks := range cfg.Keyspaces {
		if err := placement.CreateKeyspace(ctx, domain.Keyspace{Name: ks.Name, Class: ks.Class, Options: ks.Options}); err != nil {
			return nil, fmt.Errorf("failed to create keyspace %s: %w", ks.Name, err)
		}
	}

	// 8. HTTP API
	server := httpHandler.NewServer(cfg.Server.Addr, placement, m.Registry)

	return &App{
		cfg:       cfg,
		server:    server,
		gossip:    membership,
		redis:     redisClient,
		placement: placement,
	}, nil
}

// publishLocal puts the local node on the ring when gossip is disabled.
func publishLocal(tm *locator.TokenMetadata, st gossip.EndpointState) error {
	tm.UpdateHostID(st.HostID, st.Endpoint)
	tm.UpdateTopology(st.Endpoint, st.Location)
	if err := tm.UpdateNormalTokensFor(st.Tokens, st.Endpoint); err != nil {
		return fmt.Errorf("failed to publish local tokens: %w", err)
	}
	return nil
}

func (a *App) Run() error {
	if a.gossip != nil {
		seeds := make([]string, 0, len(a.cfg.Gossip.Seeds))
		selfSeedSuffix := fmt.Sprintf(":%d", a.cfg.Gossip.Port)
		for _, seed := range a.cfg.Gossip.Seeds {
			if seed == "" {
				continue
			}
			if strings.HasSuffix(seed, selfSeedSuffix) && strings.Contains(seed, a.cfg.Gossip.BindAddr) {
				continue
			}
			seeds = append(seeds, seed)
		}

		if len(seeds) > 0 {
			var joinErr error
			for i := 0; i < 5; i++ {
				joinErr = a.gossip.Join(seeds)
				if joinErr == nil {
					break
				}
				logger.Warnw("Failed to join cluster, retrying...", "attempt", i+1, "error", joinErr.Error())
				time.Sleep(2 * time.Second)
			}
			if joinErr != nil {
				logger.Errorw("Failed to join cluster after retries", "error", joinErr.Error())
			}
		}
	}

	logger.Infow("Locator node starting",
		"endpoint", a.cfg.Node.Endpoint,
		"addr", a.cfg.Server.Addr,
		"gossip", a.cfg.Gossip.Port,
		"keyspaces", len(a.cfg.Keyspaces))

	serverErrCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			serverErrCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	var runErr error
	select {
	case sig := <-stop:
		logger.Infow("Shutdown signal received", "signal", sig.String())
	case err := <-serverErrCh:
		runErr = fmt.Errorf("HTTP server failed: %w", err)
		logger.Errorw("Locator HTTP server exited unexpectedly", "error", err.Error())
	}

	logger.Info("Shutting down locator services")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.server.Stop(ctx); err != nil {
		logger.Warnw("HTTP server stop failed", "error", err.Error())
	}
	if a.gossip != nil {
		if err := a.gossip.Leave(); err != nil {
			logger.Warnw("Gossip leave failed", "error", err.Error())
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			logger.Warnw("Redis close failed", "error", err.Error())
		}
	}

	return runErr
}
