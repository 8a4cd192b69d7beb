// Package cache keeps read-heavy dashboard snapshots in Redis. Every function
// degrades to a cache miss when Redis is not configured or unreachable.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	dashboardKeyFmt = "dashboard:%s:%s"
	dashboardTTL    = 5 * time.Minute
)

type Cache struct {
	client *redis.Client
}

// New connects to addr. An empty addr or a failed ping returns a disabled cache
// together with the ping error.
func New(addr, password string, db int) (*Cache, error) {
	if addr == "" {
		return &Cache{}, nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return &Cache{}, err
	}
	return &Cache{client: client}, nil
}

func (c *Cache) Enabled() bool { return c != nil && c.client != nil }

func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

func DashboardKey(ownerID, date string) string {
	return fmt.Sprintf(dashboardKeyFmt, ownerID, date)
}

// GetDashboard returns the cached JSON for one owner and date.
func (c *Cache) GetDashboard(ctx context.Context, ownerID, date string) ([]byte, bool) {
	if !c.Enabled() {
		return nil, false
	}
	data, err := c.client.Get(ctx, DashboardKey(ownerID, date)).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

func (c *Cache) SetDashboard(ctx context.Context, ownerID, date string, data []byte) {
	if !c.Enabled() {
		return
	}
	if err := c.client.Set(ctx, DashboardKey(ownerID, date), data, dashboardTTL).Err(); err != nil {
		slog.Warn("dashboard cache write failed", "owner", ownerID, "err", err)
	}
}

// InvalidateDashboards drops every cached date of one owner.
func (c *Cache) InvalidateDashboards(ctx context.Context, ownerID string) {
	if !c.Enabled() {
		return
	}
	var keys []string
	iter := c.client.Scan(ctx, 0, DashboardKey(ownerID, "*"), 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		slog.Warn("dashboard cache scan failed", "owner", ownerID, "err", err)
		return
	}
	if len(keys) > 0 {
		c.client.Del(ctx, keys...)
	}
}
