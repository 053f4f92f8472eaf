// Package lock 用 redis 保证同一地点同一时间只有一个排班任务在执行
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrLocked = errors.New("该地点正在排班中，请稍后再试")

// 只有持有者才能释放锁
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type Locker struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(rdb *redis.Client, ttl time.Duration) *Locker {
	return &Locker{
		rdb: rdb,
		ttl: ttl,
	}
}

func key(locationID int64) string {
	return fmt.Sprintf("solve_lock_location_%d", locationID)
}

// Acquire 获取锁，成功时返回用于释放锁的函数
func (l *Locker) Acquire(ctx context.Context, locationID int64) (func(context.Context) error, error) {
	token := uuid.NewString()

	ok, err := l.rdb.SetNX(ctx, key(locationID), token, l.ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLocked
	}

	release := func(ctx context.Context) error {
		return releaseScript.Run(ctx, l.rdb, []string{key(locationID)}, token).Err()
	}
	return release, nil
}
