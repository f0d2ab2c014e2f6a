package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"review-scheduler/core/constants"
	"review-scheduler/core/errors"
	"review-scheduler/core/logger"
	"review-scheduler/core/utils"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// Locker serializes booking mutations per reviewer-day. Acquire blocks
// until the key is free or the wait deadline passes.
type Locker interface {
	Acquire(ctx context.Context, key string) (func(), *errors.AppError)
}

// LockKey builds the reviewer-day key shared by every mutation that can
// touch the same calendar window.
func LockKey(reviewerID uuid.UUID, day time.Time) string {
	return fmt.Sprintf("sched:lock:%s:%s", reviewerID.String(), day.Format(time.DateOnly))
}

// RedisLocker holds locks as volatile keys so a crashed holder cannot
// wedge a reviewer's calendar past the TTL.
type RedisLocker struct {
	Client *goredis.Client
}

func NewRedisLocker(client *goredis.Client) *RedisLocker {
	return &RedisLocker{Client: client}
}

// release only deletes the key if it still carries our token, an expired
// lock reacquired by someone else must not be removed under them.
var releaseScript = goredis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	end
	return 0
`)

func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), *errors.AppError) {
	token := utils.GenerateID()
	deadline := time.Now().Add(constants.LockWaitTimeout)

	for {
		ok, err := l.Client.SetNX(ctx, key, token, constants.LockTTL).Result()
		if err != nil {
			logger.Error("RedisLocker:Acquire", err)
			return nil, errors.NewAppError(errors.ErrInternalServer, "failed to acquire scheduling lock", err.Error())
		}
		if ok {
			return func() {
				releaseCtx, cancel := context.WithTimeout(context.Background(), constants.DefaultTimeout)
				defer cancel()
				if err := releaseScript.Run(releaseCtx, l.Client, []string{key}, token).Err(); err != nil && err != goredis.Nil {
					logger.Warn("RedisLocker:Release", "key", key, "error", err.Error())
				}
			}, nil
		}

		if time.Now().After(deadline) {
			logger.Warn("RedisLocker:Acquire:Timeout", "key", key)
			return nil, errors.NewAppError(errors.ErrResourceBusy, "scheduling is busy for this reviewer, please retry", nil)
		}

		select {
		case <-ctx.Done():
			return nil, errors.NewAppError(errors.ErrResourceBusy, "scheduling is busy for this reviewer, please retry", ctx.Err().Error())
		case <-time.After(constants.LockRetryInterval):
		}
	}
}

// MemoryLocker is the single-process implementation used by tests and
// deployments without redis.
type MemoryLocker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{slots: make(map[string]chan struct{})}
}

func (l *MemoryLocker) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[key]
	if !ok {
		s = make(chan struct{}, 1)
		l.slots[key] = s
	}
	return s
}

func (l *MemoryLocker) Acquire(ctx context.Context, key string) (func(), *errors.AppError) {
	s := l.slot(key)
	select {
	case s <- struct{}{}:
		return func() { <-s }, nil
	case <-ctx.Done():
		return nil, errors.NewAppError(errors.ErrResourceBusy, "scheduling is busy for this reviewer, please retry", ctx.Err().Error())
	case <-time.After(constants.LockWaitTimeout):
		return nil, errors.NewAppError(errors.ErrResourceBusy, "scheduling is busy for this reviewer, please retry", nil)
	}
}
