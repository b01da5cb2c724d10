package session

import "sync"

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

// KeyedMutex mengunci per chat id. Chat berbeda tidak saling menunggu.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[int64]*keyedEntry
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[int64]*keyedEntry)}
}

// Lock mengunci chatID dan mengembalikan fungsi pelepasnya.
func (k *KeyedMutex) Lock(chatID int64) (unlock func()) {
	k.mu.Lock()
	e, ok := k.locks[chatID]
	if !ok {
		e = &keyedEntry{}
		k.locks[chatID] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, chatID)
		}
		k.mu.Unlock()
	}
}
