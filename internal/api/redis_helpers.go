package api

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisCounter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// incrWithTTL 自增计数并在首次创建时设置过期时间。
func incrWithTTL(ctx context.Context, client redisCounter, key string, ttl time.Duration) (int64, error) {
	count, err := client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		_ = client.Expire(ctx, key, ttl).Err()
	}
	return count, nil
}

// lockActive 判断锁定键是否仍在生效；Redis 不可达时放行而非阻断登录。
func lockActive(ctx context.Context, client redis.UniversalClient, key string) bool {
	ttl, err := client.TTL(ctx, key).Result()
	return err == nil && ttl > 0
}

// registerLoginFailure 累计登录失败次数，达到阈值后临时锁定该邮箱。
func registerLoginFailure(ctx context.Context, client redis.UniversalClient, email string, threshold int, lockTTL time.Duration) error {
	count, err := incrWithTTL(ctx, client, "lock:login:fail:"+email, lockTTL)
	if err != nil {
		return err
	}
	if threshold > 0 && count >= int64(threshold) {
		_ = client.Set(ctx, "lock:login:"+email, "1", lockTTL).Err()
	}
	return nil
}
