package infrastructure

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"

	"skypark/internal/pkg/redis"
	"skypark/internal/service/admission/domain"
)

const (
	occupancyKeyPrefix = "skypark:occupancy:"

	enterScriptName = "occupancy_enter"
	leaveScriptName = "occupancy_leave"
)

// enterScript 原子地执行“检查并自增”：
// 只有当前人数小于容量才加一并返回新值，否则返回 -1 表示已满。
const enterScript = `
local occupancy = tonumber(redis.call('GET', KEYS[1]) or '0')
local capacity = tonumber(ARGV[1])
if occupancy >= capacity then
    return -1
end
return redis.call('INCR', KEYS[1])
`

// leaveScript 自减一个名额，下限为 0。
const leaveScript = `
local occupancy = tonumber(redis.call('GET', KEYS[1]) or '0')
if occupancy <= 0 then
    redis.call('SET', KEYS[1], '0')
    return 0
end
return redis.call('DECR', KEYS[1])
`

// RedisOccupancyAdapter 用 Redis Lua 脚本实现 OccupancyController。
// 并发入场时容量判断和计数自增在 Redis 侧单线程执行，不存在竞态窗口。
type RedisOccupancyAdapter struct {
	client *redis.Client
}

func NewRedisOccupancyAdapter(client *redis.Client) (*RedisOccupancyAdapter, error) {
	if err := client.LoadScriptFromContent(enterScriptName, enterScript); err != nil {
		return nil, err
	}
	if err := client.LoadScriptFromContent(leaveScriptName, leaveScript); err != nil {
		return nil, err
	}
	return &RedisOccupancyAdapter{client: client}, nil
}

func occupancyKey(attraction string) string {
	return fmt.Sprintf("%s%s", occupancyKeyPrefix, attraction)
}

func (a *RedisOccupancyAdapter) Enter(ctx context.Context, attraction string, capacity int) (int64, error) {
	result, err := a.client.RunScript(ctx, enterScriptName, []string{occupancyKey(attraction)}, capacity)
	if err != nil {
		return 0, errors.Wrap(err, "failed to run occupancy enter script")
	}
	count, ok := result.(int64)
	if !ok {
		return 0, errors.Errorf("unexpected occupancy script result: %v", result)
	}
	if count < 0 {
		return 0, domain.ErrCapacityExceeded
	}
	return count, nil
}

func (a *RedisOccupancyAdapter) Leave(ctx context.Context, attraction string) (int64, error) {
	result, err := a.client.RunScript(ctx, leaveScriptName, []string{occupancyKey(attraction)})
	if err != nil {
		return 0, errors.Wrap(err, "failed to run occupancy leave script")
	}
	count, ok := result.(int64)
	if !ok {
		return 0, errors.Errorf("unexpected occupancy script result: %v", result)
	}
	return count, nil
}

func (a *RedisOccupancyAdapter) Current(ctx context.Context, attraction string) (int64, error) {
	count, err := a.client.GetClient().Get(ctx, occupancyKey(attraction)).Int64()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return 0, nil
		}
		return 0, errors.Wrap(err, "failed to read occupancy")
	}
	return count, nil
}
