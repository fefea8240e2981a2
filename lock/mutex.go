package lock

import (
	"fmt"
	"runtime"
	"sync/atomic"
	"time"
)

// Tag identifies an execution domain.
type Tag uint32

const (
	// TagNone is never a valid owner; it encodes the unlocked state.
	TagNone Tag = iota
	// TagMain is the main vision-processing context.
	TagMain
	// TagDebug is the secondary context servicing the host debug link.
	TagDebug
)

func (t Tag) String() string {
	switch t {
	case TagNone:
		return "none"
	case TagMain:
		return "main"
	case TagDebug:
		return "debug"
	default:
		return fmt.Sprintf("tag(%d)", uint32(t))
	}
}

const (
	// DefaultPollInterval is the sleep between LockTimeout attempts.
	DefaultPollInterval = time.Millisecond

	// spinsPerYield bounds how long Lock spins before handing the processor back.
	spinsPerYield = 64
)

// Mutex is an exclusive-access lock owned by a Tag.
// The zero value is unusable; create one with New.
type Mutex struct {
	// owner is TagNone while unlocked, so locked == (owner != TagNone)
	// holds by construction.
	owner     atomic.Uint32
	lastOwner atomic.Uint32

	pollInterval time.Duration
	now          func() time.Time
	sleep        func(time.Duration)
}

// Option configures a Mutex.
type Option func(*Mutex)

// WithPollInterval sets how long LockTimeout waits between attempts.
func WithPollInterval(d time.Duration) Option {
	return func(m *Mutex) {
		if d > 0 {
			m.pollInterval = d
		}
	}
}

// WithClock replaces the monotonic clock and the wait used by LockTimeout.
func WithClock(now func() time.Time, sleep func(time.Duration)) Option {
	return func(m *Mutex) {
		if now != nil {
			m.now = now
		}
		if sleep != nil {
			m.sleep = sleep
		}
	}
}

// New creates an unlocked Mutex.
func New(opts ...Option) *Mutex {
	m := &Mutex{
		pollInterval: DefaultPollInterval,
		now:          time.Now,
		sleep:        time.Sleep,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Lock blocks until tag owns the mutex. It never gives up, so it must not be
// called from a context that cannot tolerate an unbounded wait.
func (m *Mutex) Lock(tag Tag) {
	mustBeValid(tag)
	for spins := 1; !m.acquire(tag); spins++ {
		if spins%spinsPerYield == 0 {
			runtime.Gosched()
		}
	}
}

// TryLock attempts to take the mutex once.
//
// If tag already owns the mutex, TryLock releases it instead and reports
// true: a second TryLock by the owner toggles the lock off. Callers rely on
// this as a cooperative yield point, so it must stay.
func (m *Mutex) TryLock(tag Tag) bool {
	mustBeValid(tag)
	if Tag(m.owner.Load()) == tag {
		m.Unlock(tag)
		return true
	}
	return m.acquire(tag)
}

// TryLockAlternate attempts to take the mutex once and never toggles.
// It is the entry point for the secondary arbitration path.
func (m *Mutex) TryLockAlternate(tag Tag) bool {
	mustBeValid(tag)
	return m.acquire(tag)
}

// LockTimeout retries TryLock, sleeping between attempts, until it succeeds or
// timeout elapses on the monotonic clock. It inherits TryLock's toggle: an
// owner calling LockTimeout releases the mutex and gets true.
func (m *Mutex) LockTimeout(tag Tag, timeout time.Duration) bool {
	mustBeValid(tag)
	start := m.now()
	for {
		if m.TryLock(tag) {
			return true
		}
		elapsed := m.now().Sub(start)
		if elapsed >= timeout {
			return false
		}
		m.sleep(min(m.pollInterval, timeout-elapsed))
	}
}

// Unlock releases the mutex if tag owns it. A non-owner's Unlock is ignored.
func (m *Mutex) Unlock(tag Tag) {
	m.owner.CompareAndSwap(uint32(tag), uint32(TagNone))
}

// State reports the current owner and whether the mutex is held.
func (m *Mutex) State() (owner Tag, locked bool) {
	owner = Tag(m.owner.Load())
	return owner, owner != TagNone
}

// LastOwner returns the most recent tag to acquire the mutex.
func (m *Mutex) LastOwner() Tag {
	return Tag(m.lastOwner.Load())
}

func (m *Mutex) acquire(tag Tag) bool {
	if !m.owner.CompareAndSwap(uint32(TagNone), uint32(tag)) {
		return false
	}
	m.lastOwner.Store(uint32(tag))
	return true
}

func mustBeValid(tag Tag) {
	if tag == TagNone {
		panic("lock: TagNone cannot own the mutex")
	}
}
