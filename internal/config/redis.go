package config

import (
	"context"
	"crypto/tls"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to the Redis instance backing the rate
// limiter and the response cache. Redis is optional: when the server
// cannot be reached the function returns nil, and the middleware treats
// a nil client as "run without Redis".
//
// Environment variables:
//
//	REDIS_ADDR       host:port (or REDIS_HOST + REDIS_PORT, which win)
//	REDIS_PASSWORD   optional password
//	REDIS_DB         database number, default 0
//	REDIS_POOL_SIZE  connection pool size, default per go-redis
//	REDIS_TLS        "true" or "1" to enable TLS
func NewRedisClient() *redis.Client {
	opts := &redis.Options{
		Addr:     redisAddr(),
		Password: os.Getenv("REDIS_PASSWORD"),
	}
	if n, err := strconv.Atoi(os.Getenv("REDIS_DB")); err == nil {
		opts.DB = n
	}
	if n, err := strconv.Atoi(os.Getenv("REDIS_POOL_SIZE")); err == nil && n > 0 {
		opts.PoolSize = n
	}
	if v := os.Getenv("REDIS_TLS"); v == "1" || strings.EqualFold(v, "true") {
		opts.TLSConfig = &tls.Config{InsecureSkipVerify: true}
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil
	}
	return client
}

func redisAddr() string {
	host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT")
	if host != "" && port != "" {
		return host + ":" + port
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		return addr
	}
	return "localhost:6379"
}
