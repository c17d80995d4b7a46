package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tbxark/tripagent/agent"
	"github.com/tbxark/tripagent/config"
	"github.com/tbxark/tripagent/itinerary"
	"github.com/tbxark/tripagent/llm"
	"github.com/tbxark/tripagent/progress"
	"github.com/tbxark/tripagent/structured"
	"github.com/tbxark/tripagent/types"
)

type app struct {
	conversation *agent.Conversation
	tracker      *progress.Tracker
	language     types.Language
	closers      []io.Closer
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			slog.Warn("close resource failed", "error", err)
		}
	}
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{
		tracker:  progress.NewTracker(),
		language: types.ParseLanguage(cfg.Language),
	}
	reporter := progress.Multi{a.tracker, progress.Logger{}}

	cm, err := llm.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if c, ok := cm.(io.Closer); ok {
		a.closers = append(a.closers, c)
	}
	client := structured.NewClient(cm,
		structured.WithReporter(reporter),
		structured.WithRetries(cfg.Retries),
		structured.WithToolMode(cfg.UseToolMode()),
	)

	opts := []agent.FlowOption{
		agent.WithMaxTurns(cfg.MaxTurns),
		agent.WithLanguage(a.language),
	}
	if cfg.Planner == config.PlannerModel {
		opts = append(opts, agent.WithPlanner(itinerary.NewToolBasedPlanner(client)))
	}
	flow := agent.NewToolBasedTripFlow(client, reporter, opts...)

	states, err := a.newStates(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.conversation = agent.NewConversation(flow, states, nil)
	return a, nil
}

func (a *app) newStates(ctx context.Context, cfg *config.Config) (agent.StateReadWriter, error) {
	if cfg.Store != config.StoreRedis {
		return agent.NewMemoryStateReadWriter(cfg.Model), nil
	}
	rc := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
	}
	a.closers = append(a.closers, rc)
	ttl := time.Duration(cfg.SessionTTL) * time.Second
	return agent.NewCacheStateReadWriter(agent.NewRedisCache[*agent.ConversationState](rc, ttl), cfg.Model), nil
}
