package redis

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"
)

// Client 是 go-redis 的轻量封装，内置一个按名字索引的 Lua 脚本注册表。
// 脚本在适配器初始化时登记一次，之后通过 RunScript 按名执行，
// go-redis 的 Script 会自动走 EVALSHA 并在缓存缺失时回退 EVAL。
type Client struct {
	client  *goredis.Client
	scripts map[string]*goredis.Script
	mu      sync.RWMutex
}

// NewClient 创建并连通一个 Redis 客户端。
func NewClient(ctx context.Context, addr string) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to connect to redis at %s", addr)
	}
	return &Client{
		client:  rdb,
		scripts: make(map[string]*goredis.Script),
	}, nil
}

// LoadScriptFromContent 登记一段 Lua 脚本。
func (c *Client) LoadScriptFromContent(name, content string) error {
	if content == "" {
		return errors.Errorf("script %s has empty content", name)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scripts[name] = goredis.NewScript(content)
	return nil
}

// RunScript 执行一段已登记的脚本。
func (c *Client) RunScript(ctx context.Context, name string, keys []string, args ...interface{}) (interface{}, error) {
	c.mu.RLock()
	script, ok := c.scripts[name]
	c.mu.RUnlock()
	if !ok {
		return nil, errors.Errorf("script %s is not registered", name)
	}
	return script.Run(ctx, c.client, keys, args...).Result()
}

// GetClient 暴露底层客户端，用于脚本之外的普通命令。
func (c *Client) GetClient() *goredis.Client {
	return c.client
}

// Close 关闭底层连接。
func (c *Client) Close() error {
	return c.client.Close()
}
