package telegram

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/yeremiapane/kasir-bot/bot"
)

// Sequencer menjalankan update per chat secara FIFO sesuai urutan Submit. Setiap
// chat punya paling banyak satu worker; chat berbeda tetap berjalan paralel.
// Worker berhenti sendiri saat antreannya kosong.
type Sequencer struct {
	h  Handler
	mu sync.Mutex
	// queues hanya berisi chat yang worker-nya sedang berjalan
	queues map[int64][]tgbotapi.Update
	wg     sync.WaitGroup
}

func NewSequencer(h Handler) *Sequencer {
	return &Sequencer{h: h, queues: make(map[int64][]tgbotapi.Update)}
}

// Submit mengantrekan update. Harus dipanggil dari satu goroutine (loop update)
// supaya urutan kedatangan terjaga.
func (s *Sequencer) Submit(ctx context.Context, u tgbotapi.Update) {
	ev, ok := ToEvent(u)
	if !ok {
		return
	}
	chatID := chatOf(ev)

	s.mu.Lock()
	queue, running := s.queues[chatID]
	s.queues[chatID] = append(queue, u)
	s.mu.Unlock()

	if running {
		return
	}
	s.wg.Add(1)
	go s.drain(ctx, chatID)
}

func (s *Sequencer) drain(ctx context.Context, chatID int64) {
	defer s.wg.Done()
	for {
		s.mu.Lock()
		queue := s.queues[chatID]
		if len(queue) == 0 {
			delete(s.queues, chatID)
			s.mu.Unlock()
			return
		}
		u := queue[0]
		s.queues[chatID] = queue[1:]
		s.mu.Unlock()

		Dispatch(ctx, s.h, u)
	}
}

// Wait menunggu semua worker selesai.
func (s *Sequencer) Wait() {
	s.wg.Wait()
}

// Run membaca updates sampai channel ditutup atau ctx selesai.
func (s *Sequencer) Run(ctx context.Context, updates <-chan tgbotapi.Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			s.Submit(ctx, u)
		}
	}
}

func chatOf(ev bot.Event) int64 {
	switch e := ev.(type) {
	case bot.TextEvent:
		return e.ChatID
	case bot.CallbackEvent:
		return e.ChatID
	}
	return 0
}
