package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	goredis "github.com/go-redis/redis/v8"
)

// RedisConfig configures the Redis snapshot store.
type RedisConfig struct {
	Addr     string `json:"addr" yaml:"addr"` // e.g. "localhost:6379"
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	DB       int    `json:"db" yaml:"db"`
	Prefix   string `json:"prefix" yaml:"prefix"` // key prefix, default "papertrader"
}

// Redis keeps the two snapshot documents under <prefix>:portfolio and
// <prefix>:risk, written together in one MULTI/EXEC.
type Redis struct {
	client *goredis.Client
	prefix string
}

// NewRedis connects and pings the server.
func NewRedis(cfg RedisConfig) (*Redis, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "papertrader"
	}
	log.Printf("[store] redis connected to %s (prefix %q)", cfg.Addr, prefix)
	return &Redis{client: client, prefix: prefix}, nil
}

func (r *Redis) portfolioKey() string { return r.prefix + ":portfolio" }
func (r *Redis) riskKey() string      { return r.prefix + ":risk" }

func (r *Redis) Load(ctx context.Context) (Snapshot, error) {
	vals, err := r.client.MGet(ctx, r.portfolioKey(), r.riskKey()).Result()
	if err != nil {
		return Snapshot{}, fmt.Errorf("redis load: %w", err)
	}

	var s Snapshot
	if err := decodeRedis(vals[0], &s.Portfolio); err != nil {
		return Snapshot{}, err
	}
	if err := decodeRedis(vals[1], &s.Risk); err != nil && !errors.Is(err, ErrNoState) {
		return Snapshot{}, err
	}
	return s, nil
}

func decodeRedis(v any, out any) error {
	if v == nil {
		return ErrNoState
	}
	str, ok := v.(string)
	if !ok {
		return fmt.Errorf("redis load: unexpected value type %T", v)
	}
	if err := json.Unmarshal([]byte(str), out); err != nil {
		return fmt.Errorf("redis decode: %w", err)
	}
	return nil
}

func (r *Redis) Save(ctx context.Context, s Snapshot) error {
	pf, err := json.Marshal(s.Portfolio)
	if err != nil {
		return err
	}
	rs, err := json.Marshal(s.Risk)
	if err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.Set(ctx, r.portfolioKey(), pf, 0)
		p.Set(ctx, r.riskKey(), rs, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save: %w", err)
	}
	return nil
}

// Reset deletes both keys.
func (r *Redis) Reset(ctx context.Context) error {
	return r.client.Del(ctx, r.portfolioKey(), r.riskKey()).Err()
}

func (r *Redis) Close() error { return r.client.Close() }
