package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// TableLocker serialises booking attempts per table. The returned unlock
// func must be called exactly once.
type TableLocker interface {
	Lock(ctx context.Context, tableID uint) (unlock func(), err error)
}

// LocalLocker is an in-process keyed mutex. Waiters honour ctx.
type LocalLocker struct {
	mu    sync.Mutex
	slots map[uint]*lockSlot
}

type lockSlot struct {
	ch   chan struct{}
	refs int
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{slots: make(map[uint]*lockSlot)}
}

func (l *LocalLocker) Lock(ctx context.Context, tableID uint) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[tableID]
	if !ok {
		slot = &lockSlot{ch: make(chan struct{}, 1)}
		l.slots[tableID] = slot
	}
	slot.refs++
	l.mu.Unlock()

	select {
	case slot.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(tableID, slot)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-slot.ch
			l.release(tableID, slot)
		})
	}, nil
}

func (l *LocalLocker) release(tableID uint, slot *lockSlot) {
	l.mu.Lock()
	slot.refs--
	if slot.refs == 0 {
		delete(l.slots, tableID)
	}
	l.mu.Unlock()
}

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker holds "restobook:lock:table:<id>" with SET NX PX so that every
// API replica shares the same per-table lock.
type RedisLocker struct {
	rdb   *redis.Client
	TTL   time.Duration
	Retry time.Duration
	Wait  time.Duration
}

func NewRedisLocker(rdb *redis.Client) *RedisLocker {
	return &RedisLocker{
		rdb:   rdb,
		TTL:   10 * time.Second,
		Retry: 25 * time.Millisecond,
		Wait:  5 * time.Second,
	}
}

var errLockTimeout = errors.New("timed out waiting for table lock")

func (l *RedisLocker) Lock(ctx context.Context, tableID uint) (func(), error) {
	key := fmt.Sprintf("restobook:lock:table:%d", tableID)
	token := uuid.NewString()
	deadline := time.Now().Add(l.Wait)

	for {
		ok, err := l.rdb.SetNX(ctx, key, token, l.TTL).Result()
		if err != nil {
			return nil, fmt.Errorf("redis lock %s: %w", key, err)
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return nil, errLockTimeout
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.Retry):
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// background ctx: the request may already be cancelled
			rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = releaseScript.Run(rctx, l.rdb, []string{key}, token).Err()
		})
	}, nil
}
