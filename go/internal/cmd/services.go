package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"

	"github.com/mattcreaser/typerace/go/internal/game"
	"github.com/mattcreaser/typerace/go/internal/gateway"
	"github.com/mattcreaser/typerace/go/internal/leaderboard"
	"github.com/mattcreaser/typerace/go/internal/relay"
	"github.com/mattcreaser/typerace/go/internal/words"
)

type Services struct {
	Engine      *game.Engine
	Leaderboard *leaderboard.App
	Connections *gateway.ConnectionManager
	WSHandler   *gateway.WebSocketHandler
	Relay       *relay.Publisher
}

func setupServices(ctx context.Context, config *Config, pool *pgxpool.Pool) (*Services, error) {
	// Wire up the dependency chain:
	// word source → broadcasters → leaderboard → engine → gateway

	source, err := words.Load(config.Game.WordListPath)
	if err != nil {
		return nil, err
	}

	connections := gateway.NewConnectionManager(gateway.DefaultConnectionConfig())
	broadcasters := game.MultiBroadcaster{connections}

	var relayPub *relay.Publisher
	if config.Relay.Enabled {
		relayConfig := relay.DefaultConfig()
		relayConfig.URL = getEnv("NATS_URL", relayConfig.URL)
		relayConfig.SubjectPrefix = config.Relay.SubjectPrefix
		relayPub, err = relay.NewPublisher(relayConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to start event relay: %w", err)
		}
		broadcasters = append(broadcasters, relayPub)
	}

	repo := leaderboard.NewRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	leaderboardApp := leaderboard.NewApp(repo, broadcasters)

	engineConfig := game.EngineConfig{
		RoundDuration: config.roundDuration(),
		Cooldown:      config.cooldownDuration(),
	}
	engine := game.NewEngine(engineConfig, source, leaderboardApp, broadcasters, clockwork.NewRealClock())

	return &Services{
		Engine:      engine,
		Leaderboard: leaderboardApp,
		Connections: connections,
		WSHandler:   gateway.NewWebSocketHandler(connections, engine),
		Relay:       relayPub,
	}, nil
}
