// Package redisstore keeps SyncUp sessions in Redis so several client
// processes can share one login.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "syncup"

// Namespaces never contain ':' or glob metacharacters, so one namespace's
// SCAN pattern cannot reach into another.
var namespacePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// ErrInvalidNamespace is returned for namespaces outside [A-Za-z0-9_.-]
var ErrInvalidNamespace = errors.New("redisstore: invalid namespace")

// Store implements syncauth.Store on a Redis namespace
type Store struct {
	client    redis.UniversalClient
	namespace string
}

// Options configures a Store
type Options struct {
	Addr      string
	Password  string
	DB        int
	Namespace string // Separates profiles sharing one Redis; defaults to "default"
}

// New connects to Redis and verifies the connection
func New(ctx context.Context, opts Options) (*Store, error) {
	if err := ValidateNamespace(opts.Namespace); err != nil {
		return nil, err
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return NewWithClient(client, opts.Namespace)
}

// NewWithClient wraps an existing client. An empty namespace means "default".
func NewWithClient(client redis.UniversalClient, namespace string) (*Store, error) {
	if err := ValidateNamespace(namespace); err != nil {
		return nil, err
	}
	if namespace == "" {
		namespace = "default"
	}
	return &Store{client: client, namespace: namespace}, nil
}

// ValidateNamespace reports whether namespace is usable; empty is allowed
func ValidateNamespace(namespace string) error {
	if namespace == "" || namespacePattern.MatchString(namespace) {
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidNamespace, namespace)
}

func (s *Store) key(k string) string {
	return keyPrefix + ":" + s.namespace + ":" + k
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, s.key(key), value, 0).Err()
}

func (s *Store) Remove(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}

// Clear deletes every key in the store's namespace and nothing else
func (s *Store) Clear(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, s.key("*"), 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

// Close releases the underlying client
func (s *Store) Close() error {
	return s.client.Close()
}
