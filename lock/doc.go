// Package lock implements the cross-domain mutex that arbitrates the frame
// buffer between the main vision context and an interrupting secondary
// context such as the host debug link.
//
// # State Machine
//
//	UNLOCKED --Lock/TryLock/TryLockAlternate(tag)--> LOCKED(tag)
//	LOCKED(tag) --Unlock(tag)--------------------> UNLOCKED
//	LOCKED(tag) --TryLock(tag)-------------------> UNLOCKED   (toggle)
//	LOCKED(tag) --Unlock(other)------------------> LOCKED(tag) (ignored)
//
// The toggle on TryLock is intentional: callers use a second TryLock by the
// owner as a cooperative yield point. TryLockAlternate never toggles and is
// the entry for paths that must not release a lock they already hold.
//
// # Guarantees
//
// At most one tag owns the mutex at any instant. Every transition is a
// sequentially consistent atomic operation, so either domain always observes
// a consistent owner/locked pair. There is no fairness: a contender may
// starve. Lock spins; LockTimeout sleeps between polls and gives up at its
// deadline.
package lock
