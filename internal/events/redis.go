package events

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"

	"github.com/redis/go-redis/v9"

	"thermarun/internal/config"
	"thermarun/internal/logger"
	"thermarun/internal/network"
)

// RedisSink appends events to a bounded Redis list: RPUSH followed by LTRIM
// so the list never grows past MaxLen entries.
type RedisSink struct {
	client *redis.Client
	key    string
	maxLen int64

	mu     sync.Mutex
	closed bool
}

// NewRedisSink creates a Redis sink from the configuration.
func NewRedisSink(cfg config.RedisSinkConfig, socksCfg config.SOCKSConfig) (*RedisSink, error) {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	if dialFunc := network.DialerFunc(socksCfg.Host, socksCfg.Port); dialFunc != nil {
		opts.Dialer = func(ctx context.Context, netw, addr string) (net.Conn, error) {
			return dialFunc(netw, addr)
		}
	}

	log := logger.WithComponent("redis-sink")
	log.Info().
		Str("addr", cfg.Addr).
		Str("key", cfg.Key).
		Int64("max_len", cfg.MaxLen).
		Msg("Redis sink initialized")

	return &RedisSink{
		client: redis.NewClient(opts),
		key:    cfg.Key,
		maxLen: cfg.MaxLen,
	}, nil
}

// Emit appends one JSON-encoded event and trims the list.
func (s *RedisSink) Emit(ctx context.Context, ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("sink is closed")
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, s.key, data)
	if s.maxLen > 0 {
		pipe.LTrim(ctx, s.key, -s.maxLen, -1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append event to %s: %w", s.key, err)
	}
	return nil
}

// Close releases the Redis connection.
func (s *RedisSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.client.Close()
}
