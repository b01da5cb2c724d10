package session

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type chatLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Debouncer menolak event dari chat yang sama bila datang kurang dari window
// setelah event terakhir yang diterima. Event yang ditolak tidak memakai token.
type Debouncer struct {
	mu     sync.Mutex
	window time.Duration
	chats  map[int64]*chatLimiter
	now    func() time.Time
}

func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{
		window: window,
		chats:  make(map[int64]*chatLimiter),
		now:    time.Now,
	}
}

// SetClock untuk test.
func (d *Debouncer) SetClock(now func() time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.now = now
}

// Allow melaporkan apakah event chat ini boleh diproses.
func (d *Debouncer) Allow(chatID int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	c, ok := d.chats[chatID]
	if !ok {
		c = &chatLimiter{limiter: rate.NewLimiter(rate.Every(d.window), 1)}
		d.chats[chatID] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

// Cleanup membuang limiter chat yang sudah idle lebih lama dari maxIdle.
func (d *Debouncer) Cleanup(maxIdle time.Duration) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	removed := 0
	cutoff := d.now().Add(-maxIdle)
	for id, c := range d.chats {
		if c.lastSeen.Before(cutoff) {
			delete(d.chats, id)
			removed++
		}
	}
	return removed
}

// RunCleanup menjalankan Cleanup berkala sampai stop ditutup.
func (d *Debouncer) RunCleanup(interval, maxIdle time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			d.Cleanup(maxIdle)
		case <-stop:
			return
		}
	}
}
