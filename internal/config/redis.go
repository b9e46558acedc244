package config

// This file defines the Redis client constructor.  Redis is the shared
// counting store behind the sliding-window rate limiter.  If the connection
// cannot be established at startup, the constructor returns nil and the
// limiter degrades to fail-open: requests pass through unthrottled rather
// than the whole service refusing traffic.

import (
    "context"
    "os"
    "strconv"
    "time"

    "github.com/redis/go-redis/v9"
)

// NewRedisClient instantiates a Redis client from environment variables:
//
//	REDIS_URL               – full redis:// URL (takes precedence)
//	REDIS_HOST / REDIS_PORT – hostname and port (default localhost:6379)
//	REDIS_PASSWORD          – optional password
//	REDIS_DB                – database number (default 0)
//
// The returned client may be nil if a connection cannot be established;
// callers must treat nil as "counting store unavailable".
func NewRedisClient() *redis.Client {
    var opts *redis.Options
    if url := os.Getenv("REDIS_URL"); url != "" {
        parsed, err := redis.ParseURL(url)
        if err != nil {
            return nil
        }
        opts = parsed
    } else {
        addr := "localhost:6379"
        if host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT"); host != "" && port != "" {
            addr = host + ":" + port
        }
        dbNum := 0
        if s := os.Getenv("REDIS_DB"); s != "" {
            if n, err := strconv.Atoi(s); err == nil {
                dbNum = n
            }
        }
        opts = &redis.Options{Addr: addr, Password: os.Getenv("REDIS_PASSWORD"), DB: dbNum}
    }

    client := redis.NewClient(opts)
    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    if err := client.Ping(ctx).Err(); err != nil {
        return nil
    }
    return client
}
