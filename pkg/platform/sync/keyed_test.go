package sync

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutex_LockUnlock(t *testing.T) {
	m := NewKeyedMutex()

	m.Lock("room-1")
	m.Unlock("room-1")

	// Empty key is a valid key.
	m.Lock("")
	m.Unlock("")
}

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	m := NewKeyedMutex()

	var active int32
	var maxActive int32
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Lock("room-1")
			defer m.Unlock("room-1")

			n := atomic.AddInt32(&active, 1)
			for {
				prev := atomic.LoadInt32(&maxActive)
				if n <= prev || atomic.CompareAndSwapInt32(&maxActive, prev, n) {
					break
				}
			}
			atomic.AddInt32(&active, -1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&maxActive), "same key must never run concurrently")
}

func TestKeyedMutex_DifferentKeysIndependent(t *testing.T) {
	m := NewKeyedMutex()

	m.Lock("room-1")
	done := make(chan struct{})
	go func() {
		m.Lock("room-2")
		m.Unlock("room-2")
		close(done)
	}()
	<-done // would deadlock if room-2 waited on room-1
	m.Unlock("room-1")
}

func TestKeyedMutex_EntriesReleased(t *testing.T) {
	m := NewKeyedMutex()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := string(rune('a' + i%26))
			m.Lock(key)
			m.Unlock(key)
		}(i)
	}
	wg.Wait()

	m.mu.Lock()
	defer m.mu.Unlock()
	assert.Empty(t, m.locks, "lock table must not retain idle keys")
}
