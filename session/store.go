// Package session menyimpan state percakapan per chat di memori.
package session

import "sync"

// Store menyimpan satu nilai per chat id.
type Store[T any] interface {
	Get(chatID int64) (T, bool)
	Set(chatID int64, value T)
	Delete(chatID int64)
}

// MemoryStore adalah Store berbasis map. Hilang saat proses restart.
type MemoryStore[T any] struct {
	mu    sync.RWMutex
	items map[int64]T
}

func NewMemoryStore[T any]() *MemoryStore[T] {
	return &MemoryStore[T]{items: make(map[int64]T)}
}

func (s *MemoryStore[T]) Get(chatID int64) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[chatID]
	return v, ok
}

func (s *MemoryStore[T]) Set(chatID int64, value T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[chatID] = value
}

func (s *MemoryStore[T]) Delete(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, chatID)
}

// Len dipakai untuk metrik sesi aktif.
func (s *MemoryStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
