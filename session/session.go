package session

import (
	"context"
	"fmt"

	"github.com/wanirfan/atlast/internal/agent/config"
	"github.com/wanirfan/atlast/internal/agent/core"
	"github.com/wanirfan/atlast/session/inmemory"
	"github.com/wanirfan/atlast/session/redisstore"
)

// Store keeps per-session, per-domain conversation history. History is
// append-only; the engine receives it by value and never writes it.
type Store interface {
	History(ctx context.Context, sessionID string, domain core.Domain) ([]core.Message, error)
	Append(ctx context.Context, sessionID string, domain core.Domain, msgs ...core.Message) error
	Clear(ctx context.Context, sessionID string, domain core.Domain) error
}

// NewStore builds the configured history store
func NewStore(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Type {
	case "inmemory":
		return inmemory.NewStore(cfg.HistoryTTL), nil
	case "redis":
		client, err := redisstore.Conn(ctx, cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Timeout)
		if err != nil {
			return nil, err
		}
		return redisstore.NewStore(client, cfg.HistoryTTL), nil
	default:
		return nil, fmt.Errorf("unsupported store type: %s", cfg.Type)
	}
}
