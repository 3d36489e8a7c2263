package service

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// Interval for cleaning up stale booking mutexes
	lockCleanupInterval = 10 * time.Minute

	// How long a mutex must be unused before cleanup
	lockStaleThreshold = 10 * time.Minute
)

// BookingLocker serializes state changes per booking ID within this process.
// Two transitions on the same booking never interleave their
// read-check-write sequence; different bookings proceed in parallel.
//
// Lock ordering: acquire the booking lock FIRST, then open the DB transaction.
type BookingLocker struct {
	log *logrus.Logger

	bookingMu sync.Map // map[uuid.UUID]*mutexWithTimestamp

	// Graceful shutdown
	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

// mutexWithTimestamp tracks mutex usage for cleanup
type mutexWithTimestamp struct {
	mu       sync.Mutex
	lastUsed atomic.Int64 // Unix timestamp
}

// NewBookingLocker starts the background cleanup goroutine.
// Call Stop() during graceful shutdown.
func NewBookingLocker(log *logrus.Logger) *BookingLocker {
	l := &BookingLocker{
		log:      log,
		stopChan: make(chan struct{}),
	}

	l.wg.Add(1)
	go l.cleanupLoop()

	return l
}

// Lock blocks until the booking's mutex is held and returns its release func.
func (l *BookingLocker) Lock(bookingID uuid.UUID) func() {
	mt := l.getBookingMutex(bookingID)
	mt.mu.Lock()
	mt.lastUsed.Store(time.Now().Unix())
	return mt.mu.Unlock
}

// Stop is safe to call multiple times.
func (l *BookingLocker) Stop() {
	if l.stopped.CompareAndSwap(false, true) {
		close(l.stopChan)
		l.wg.Wait()
		l.log.Info("BookingLocker stopped")
	}
}

func (l *BookingLocker) getBookingMutex(bookingID uuid.UUID) *mutexWithTimestamp {
	actual, _ := l.bookingMu.LoadOrStore(bookingID, &mutexWithTimestamp{})
	mt := actual.(*mutexWithTimestamp)
	mt.lastUsed.Store(time.Now().Unix())
	return mt
}

func (l *BookingLocker) cleanupLoop() {
	defer l.wg.Done()

	ticker := time.NewTicker(lockCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopChan:
			l.log.Debug("Booking lock cleanup goroutine stopping")
			return
		case <-ticker.C:
			l.cleanupStale(time.Now().Add(-lockStaleThreshold))
		}
	}
}

// cleanupStale removes mutexes unused since cutoff.
// lastUsed is checked only while holding the lock, so a mutex someone
// just fetched is never dropped.
func (l *BookingLocker) cleanupStale(cutoff time.Time) int {
	cutoffUnix := cutoff.Unix()
	var cleaned int

	l.bookingMu.Range(func(key, value any) bool {
		mt, ok := value.(*mutexWithTimestamp)
		if !ok {
			return true
		}

		if mt.mu.TryLock() {
			if mt.lastUsed.Load() < cutoffUnix {
				l.bookingMu.Delete(key)
				cleaned++
			}
			mt.mu.Unlock()
		}
		return true
	})

	if cleaned > 0 {
		l.log.Debugf("Cleaned up %d stale booking locks", cleaned)
	}
	return cleaned
}
