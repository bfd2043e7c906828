// Package userlock serializes slot-mutating work per user.
package userlock

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrTimeout is returned when the lock could not be acquired before the
// context expired.
var ErrTimeout = errors.New("timed out waiting for user lock")

// Locker grants exclusive access to one user's data. The returned unlock is
// safe to call more than once.
type Locker interface {
	Lock(ctx context.Context, userID int64) (unlock func(), err error)
}

// KeyedMutex is an in-process Locker. Entries are created on demand and
// dropped once nobody holds or waits for them.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[int64]*keyLock
}

type keyLock struct {
	ch   chan struct{}
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[int64]*keyLock)}
}

func (k *KeyedMutex) Lock(ctx context.Context, userID int64) (func(), error) {
	k.mu.Lock()
	l, ok := k.locks[userID]
	if !ok {
		l = &keyLock{ch: make(chan struct{}, 1)}
		k.locks[userID] = l
	}
	l.refs++
	k.mu.Unlock()

	select {
	case l.ch <- struct{}{}:
	case <-ctx.Done():
		k.release(userID, l)
		return nil, fmt.Errorf("%w: user %d: %v", ErrTimeout, userID, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-l.ch
			k.release(userID, l)
		})
	}, nil
}

func (k *KeyedMutex) release(userID int64, l *keyLock) {
	k.mu.Lock()
	defer k.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(k.locks, userID)
	}
}

// size reports how many users currently have a lock entry.
func (k *KeyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}

type chain []Locker

// Chain acquires every locker in order and releases them in reverse. Use it
// to take the cheap local lock before the cross-instance one.
func Chain(lockers ...Locker) Locker {
	return chain(lockers)
}

func (c chain) Lock(ctx context.Context, userID int64) (func(), error) {
	unlocks := make([]func(), 0, len(c))
	releaseAll := func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}

	for _, l := range c {
		unlock, err := l.Lock(ctx, userID)
		if err != nil {
			releaseAll()
			return nil, err
		}
		unlocks = append(unlocks, unlock)
	}

	var once sync.Once
	return func() { once.Do(releaseAll) }, nil
}
