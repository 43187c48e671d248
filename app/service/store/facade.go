package store

import (
	"context"
	"log/slog"
	"time"

	"scamtrap/app/config"

	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
)

const connectTimeout = 5 * time.Second

var _ Store = (*Facade)(nil)
var _ do.Shutdownable = (*Facade)(nil)

// Facade picks the active backend once at construction: redis when the initial
// ping succeeds, otherwise a pure LocalStore for the rest of the process's
// life. There is no retry loop; a redis that comes up later is never adopted.
type Facade struct {
	active Store
	client redis.UniversalClient
}

func New(di *do.Injector) (*Facade, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return NewFacade(cfg.Redis), nil
}

func NewFacade(cfg config.Redis) *Facade {
	if cfg.Disabled {
		slog.Info("Redis disabled, using in-memory conversation store")
		return &Facade{active: NewLocalStore()}
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		slog.Warn("Invalid redis url, using in-memory conversation store",
			"error", err)
		return &Facade{active: NewLocalStore()}
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err = client.Ping(ctx).Err(); err != nil {
		slog.Warn("Failed to connect to redis, using in-memory conversation store",
			"error", err,
			"telegram", true)
		_ = client.Close()
		return &Facade{active: NewLocalStore()}
	}

	slog.Info("Connected to redis conversation store")

	ttl := time.Duration(cfg.TTLSeconds) * time.Second

	return &Facade{
		active: NewRedisStore(client, ttl),
		client: client,
	}
}

func (f *Facade) Get(ctx context.Context, id string) (*Conversation, error) {
	return f.active.Get(ctx, id)
}

func (f *Facade) Save(ctx context.Context, conversation *Conversation) error {
	return f.active.Save(ctx, conversation)
}

func (f *Facade) AppendTurn(ctx context.Context, id string, turn Turn) error {
	return f.active.AppendTurn(ctx, id, turn)
}

func (f *Facade) UpdateAgentState(ctx context.Context, id string, state AgentState) error {
	return f.active.UpdateAgentState(ctx, id, state)
}

// HealthCheck reflects only the currently active top-level backend.
func (f *Facade) HealthCheck(ctx context.Context) error {
	return f.active.HealthCheck(ctx)
}

func (f *Facade) Shutdown() error {
	if f.client != nil {
		return f.client.Close()
	}

	return nil
}
