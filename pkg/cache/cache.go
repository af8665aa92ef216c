package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

var (
	ErrCacheMiss = errors.New("cache: key not found")
)

// Service defines cache operations interface.
type Service interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	// DeleteByPattern removes keys matching a glob; only trailing '*' is portable.
	DeleteByPattern(ctx context.Context, pattern string) error
	Close() error
}

// GenerateKeyWithParams creates a cache key with multiple parameters.
func GenerateKeyWithParams(prefix string, params ...interface{}) string {
	key := prefix
	for _, param := range params {
		key = fmt.Sprintf("%s:%v", key, param)
	}
	return key
}

// HashKey generates MD5 hash of a key.
func HashKey(b []byte) string {
	sum := md5.Sum(b)
	return hex.EncodeToString(sum[:])
}

// BuildPattern creates a pattern matching every key under prefix.
func BuildPattern(prefix string) string {
	return fmt.Sprintf("%s*", prefix)
}
