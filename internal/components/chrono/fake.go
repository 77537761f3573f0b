package chrono

import (
	"context"
	"sync"
	"time"
)

// FakeImpl is an API whose clock only advances when Sleep is called, sleeping never blocks.
type FakeImpl struct {
	mutex  sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func NewFakeImpl(now time.Time) *FakeImpl {
	return &FakeImpl{now: now.UTC()}
}

func (f *FakeImpl) Now() time.Time {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.now
}

func (f *FakeImpl) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.sleeps = append(f.sleeps, d)
	f.now = f.now.Add(d)
	return nil
}

// Advance moves the clock forward without recording a sleep.
func (f *FakeImpl) Advance(d time.Duration) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.now = f.now.Add(d)
}

// Sleeps returns every duration Sleep was called with, in order.
func (f *FakeImpl) Sleeps() []time.Duration {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return append([]time.Duration(nil), f.sleeps...)
}
