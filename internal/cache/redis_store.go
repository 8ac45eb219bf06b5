package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/andresuchdata/shelfstock/backend-go/internal/config"
	"github.com/redis/go-redis/v9"
)

const (
	defaultCacheTTL = time.Minute
	keyNamespace    = "shelfstock"
	scanBatchSize   = 100
)

// jsonStore keeps JSON documents under one key prefix with a shared TTL.
type jsonStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// newJSONStore connects to redis and namespaces every key under shelfstock:<area>.
func newJSONStore(cfg config.CacheConfig, area string) (*jsonStore, error) {
	opts, err := buildRedisOptions(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	ttl := time.Duration(cfg.DashboardTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	return &jsonStore{client: client, prefix: keyNamespace + ":" + area, ttl: ttl}, nil
}

func (s *jsonStore) key(suffix string) string {
	return s.prefix + ":" + suffix
}

// get decodes the document at suffix into out. It reports false on a miss.
func (s *jsonStore) get(ctx context.Context, suffix string, out any) (bool, error) {
	payload, err := s.client.Get(ctx, s.key(suffix)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed: %w", err)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return false, fmt.Errorf("decode %s: %w", s.key(suffix), err)
	}
	return true, nil
}

func (s *jsonStore) set(ctx context.Context, suffix string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.key(suffix), err)
	}
	if err := s.client.Set(ctx, s.key(suffix), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// clear unlinks every key under the store prefix, one SCAN page at a time.
func (s *jsonStore) clear(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, s.prefix+":*", scanBatchSize).Iterator()
	batch := make([]string, 0, scanBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := s.client.Unlink(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("redis unlink failed: %w", err)
		}
		batch = batch[:0]
		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan failed: %w", err)
	}
	return flush()
}

func (s *jsonStore) Close() error {
	return s.client.Close()
}

func buildRedisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opt, nil
	}

	host := cfg.RedisHost
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.RedisPort
	if port == "" {
		port = "6379"
	}

	return &redis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}
