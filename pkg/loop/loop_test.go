// Copyright © 2024 The vjailbreak authors

package loop

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	testingclock "k8s.io/utils/clock/testing"
)

func newTestLoop() (*Loop, *testingclock.FakeClock) {
	fc := testingclock.NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	return New(fc, time.Second), fc
}

func TestOneShotTimer(t *testing.T) {
	l, fc := newTestLoop()
	fired := 0
	l.AddTimer("once", 5*time.Second, func() { fired++ })

	fc.Step(4 * time.Second)
	l.RunPending()
	assert.Equal(t, 0, fired)

	fc.Step(time.Second)
	l.RunPending()
	assert.Equal(t, 1, fired)

	fc.Step(10 * time.Second)
	l.RunPending()
	assert.Equal(t, 1, fired)
	assert.Equal(t, 0, l.PendingTimers())
}

func TestPeriodicTimer(t *testing.T) {
	l, fc := newTestLoop()
	fired := 0
	id := l.AddPeriodicTimer("audit", 2*time.Second, func() { fired++ })
	for i := 0; i < 3; i++ {
		fc.Step(2 * time.Second)
		l.RunPending()
	}
	assert.Equal(t, 3, fired)

	l.CancelTimer(id)
	fc.Step(2 * time.Second)
	l.RunPending()
	assert.Equal(t, 3, fired)
}

func TestTimersFireInDeadlineOrder(t *testing.T) {
	l, fc := newTestLoop()
	var order []string
	l.AddTimer("late", 3*time.Second, func() { order = append(order, "late") })
	l.AddTimer("early", time.Second, func() { order = append(order, "early") })
	fc.Step(5 * time.Second)
	l.RunPending()
	assert.Equal(t, []string{"early", "late"}, order)
}

func TestCancelFromEarlierTimer(t *testing.T) {
	l, fc := newTestLoop()
	var second TimerID
	fired := false
	l.AddTimer("first", time.Second, func() { l.CancelTimer(second) })
	second = l.AddTimer("second", 2*time.Second, func() { fired = true })
	fc.Step(3 * time.Second)
	l.RunPending()
	assert.False(t, fired)
}

func TestPostFromOtherGoroutines(t *testing.T) {
	l, _ := newTestLoop()
	count := 0
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Post(func() { count++ })
		}()
	}
	wg.Wait()
	assert.Equal(t, 10, l.RunPending())
	assert.Equal(t, 10, count)
}

func TestPostedCallbacksMayPost(t *testing.T) {
	l, _ := newTestLoop()
	var order []int
	l.Post(func() {
		order = append(order, 1)
		l.Post(func() { order = append(order, 2) })
	})
	l.RunPending()
	assert.Equal(t, []int{1, 2}, order)
}
