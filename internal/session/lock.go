package session

import "sync"

// Locker hands out one mutex per conversation so that a conversation's
// events are processed one at a time while other conversations proceed.
// Entries are reference-counted and removed once nobody holds them.
type Locker struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func NewLocker() *Locker {
	return &Locker{locks: make(map[string]*keyLock)}
}

// Lock blocks until conversationID is free and returns the matching unlock.
func (l *Locker) Lock(conversationID string) (unlock func()) {
	l.mu.Lock()
	kl, ok := l.locks[conversationID]
	if !ok {
		kl = &keyLock{}
		l.locks[conversationID] = kl
	}
	kl.refs++
	l.mu.Unlock()

	kl.mu.Lock()

	return func() {
		kl.mu.Unlock()

		l.mu.Lock()
		kl.refs--
		if kl.refs == 0 {
			delete(l.locks, conversationID)
		}
		l.mu.Unlock()
	}
}

// size is the number of conversations with a pending or held lock.
func (l *Locker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
