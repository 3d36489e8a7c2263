package service

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestBookingLocker_SerializesSameBooking(t *testing.T) {
	locker := NewBookingLocker(newTestLogger())
	defer locker.Stop()

	id := uuid.New()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locker.Lock(id)
			defer unlock()

			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
}

func TestBookingLocker_DifferentBookingsDoNotBlock(t *testing.T) {
	locker := NewBookingLocker(newTestLogger())
	defer locker.Stop()

	unlockA := locker.Lock(uuid.New())
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := locker.Lock(uuid.New())
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different booking blocked")
	}
}

func TestBookingLocker_CleanupStale(t *testing.T) {
	locker := NewBookingLocker(newTestLogger())
	defer locker.Stop()

	idle := uuid.New()
	locker.Lock(idle)()

	held := uuid.New()
	unlock := locker.Lock(held)

	// everything is older than a cutoff in the future
	cleaned := locker.cleanupStale(time.Now().Add(time.Hour))
	assert.Equal(t, 1, cleaned)

	_, idleKept := locker.bookingMu.Load(idle)
	_, heldKept := locker.bookingMu.Load(held)
	assert.False(t, idleKept)
	assert.True(t, heldKept)

	unlock()
}

func TestBookingLocker_StopIsIdempotent(t *testing.T) {
	locker := NewBookingLocker(newTestLogger())
	locker.Stop()
	assert.NotPanics(t, locker.Stop)
}
