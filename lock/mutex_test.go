package lock

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances only when the mutex sleeps.
type fakeClock struct {
	now    time.Time
	sleeps int
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(d time.Duration) {
	c.sleeps++
	c.now = c.now.Add(d)
}

func TestMutex_InitialState(t *testing.T) {
	m := New()
	owner, locked := m.State()
	assert.Equal(t, TagNone, owner)
	assert.False(t, locked)
	assert.Equal(t, TagNone, m.LastOwner())
}

func TestMutex_LockUnlock(t *testing.T) {
	m := New()

	m.Lock(TagMain)
	owner, locked := m.State()
	assert.Equal(t, TagMain, owner)
	assert.True(t, locked)

	assert.False(t, m.TryLock(TagDebug))
	assert.False(t, m.TryLockAlternate(TagDebug))

	// A non-owner cannot force the lock open.
	m.Unlock(TagDebug)
	owner, _ = m.State()
	assert.Equal(t, TagMain, owner)

	m.Unlock(TagMain)
	owner, locked = m.State()
	assert.Equal(t, TagNone, owner)
	assert.False(t, locked)
	assert.Equal(t, TagMain, m.LastOwner())

	// Unlocking an unlocked mutex is a no-op.
	m.Unlock(TagMain)
	_, locked = m.State()
	assert.False(t, locked)
}

// The second TryLock by the owner releases the mutex. This is load-bearing
// behavior callers use as a yield point, not a bug.
func TestMutex_TryLockTogglesOwnLock(t *testing.T) {
	m := New()

	require.True(t, m.TryLock(TagMain))
	_, locked := m.State()
	require.True(t, locked)

	require.True(t, m.TryLock(TagMain))
	owner, locked := m.State()
	assert.False(t, locked)
	assert.Equal(t, TagNone, owner)

	// And a third call takes it again.
	require.True(t, m.TryLock(TagMain))
	owner, _ = m.State()
	assert.Equal(t, TagMain, owner)
}

func TestMutex_TryLockAlternateNeverToggles(t *testing.T) {
	m := New()

	require.True(t, m.TryLockAlternate(TagDebug))
	assert.False(t, m.TryLockAlternate(TagDebug))

	owner, locked := m.State()
	assert.True(t, locked)
	assert.Equal(t, TagDebug, owner)
	assert.Equal(t, TagDebug, m.LastOwner())
}

func TestMutex_LockTimeout(t *testing.T) {
	t.Run("gives up at the deadline", func(t *testing.T) {
		clock := &fakeClock{now: time.Unix(0, 0)}
		m := New(WithPollInterval(time.Millisecond), WithClock(clock.Now, clock.Sleep))
		require.True(t, m.TryLockAlternate(TagDebug))

		assert.False(t, m.LockTimeout(TagMain, 10*time.Millisecond))
		assert.Equal(t, 10, clock.sleeps)

		owner, _ := m.State()
		assert.Equal(t, TagDebug, owner)
	})

	t.Run("zero timeout tries once", func(t *testing.T) {
		clock := &fakeClock{now: time.Unix(0, 0)}
		m := New(WithClock(clock.Now, clock.Sleep))
		require.True(t, m.TryLockAlternate(TagDebug))

		assert.False(t, m.LockTimeout(TagMain, 0))
		assert.Zero(t, clock.sleeps)
	})

	t.Run("acquires once released", func(t *testing.T) {
		m := New(WithPollInterval(100 * time.Microsecond))
		require.True(t, m.TryLockAlternate(TagDebug))

		go func() {
			time.Sleep(5 * time.Millisecond)
			m.Unlock(TagDebug)
		}()

		assert.True(t, m.LockTimeout(TagMain, 5*time.Second))
		owner, _ := m.State()
		assert.Equal(t, TagMain, owner)
	})

	t.Run("owner toggles off", func(t *testing.T) {
		m := New()
		m.Lock(TagMain)

		assert.True(t, m.LockTimeout(TagMain, time.Second))
		_, locked := m.State()
		assert.False(t, locked)
	})
}

func TestMutex_Exclusion(t *testing.T) {
	type acquire func(m *Mutex, tag Tag)

	blocking := func(m *Mutex, tag Tag) { m.Lock(tag) }
	// Each tag is held by a single goroutine, so polling TryLock only runs
	// while the tag is not the owner and never toggles the lock off.
	pollTry := func(m *Mutex, tag Tag) {
		for !m.TryLock(tag) {
			runtime.Gosched()
		}
	}
	pollAlternate := func(m *Mutex, tag Tag) {
		for !m.TryLockAlternate(tag) {
			runtime.Gosched()
		}
	}

	tests := []struct {
		name        string
		main, debug acquire
	}{
		{"lock vs alternate", blocking, pollAlternate},
		{"try lock vs lock", pollTry, blocking},
		{"try lock vs try lock", pollTry, pollTry},
		{"try lock vs alternate", pollTry, pollAlternate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New()

			var holders atomic.Int32
			var violations atomic.Int32
			var wg sync.WaitGroup

			worker := func(tag Tag, acq acquire) {
				defer wg.Done()
				for i := 0; i < 2000; i++ {
					acq(m, tag)

					if holders.Add(1) != 1 {
						violations.Add(1)
					}
					if owner, locked := m.State(); !locked || owner != tag {
						violations.Add(1)
					}
					holders.Add(-1)

					m.Unlock(tag)
				}
			}

			wg.Add(2)
			go worker(TagMain, tt.main)
			go worker(TagDebug, tt.debug)
			wg.Wait()

			assert.Zero(t, violations.Load())
			_, locked := m.State()
			assert.False(t, locked)
		})
	}
}

func TestMutex_TagNonePanics(t *testing.T) {
	m := New()
	assert.Panics(t, func() { m.Lock(TagNone) })
	assert.Panics(t, func() { m.TryLock(TagNone) })
	assert.Panics(t, func() { m.TryLockAlternate(TagNone) })
	assert.Panics(t, func() { m.LockTimeout(TagNone, time.Millisecond) })
}

func TestTag_String(t *testing.T) {
	assert.Equal(t, "none", TagNone.String())
	assert.Equal(t, "main", TagMain.String())
	assert.Equal(t, "debug", TagDebug.String())
	assert.Equal(t, "tag(9)", Tag(9).String())
}
