// Copyright © 2024 The vjailbreak authors

// Package loop implements the single-threaded cooperative event loop that
// runs every state machine, Director and strategy callback. Backend
// goroutines hand their completions to the loop with Post; everything else,
// timers included, must only be touched from the loop goroutine.
package loop

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"k8s.io/utils/clock"
)

type TimerID uint64

// Timers is the part of the loop used by Tasks and strategy steps.
type Timers interface {
	AddTimer(name string, after time.Duration, fn func()) TimerID
	CancelTimer(id TimerID)
	Now() time.Time
}

// Poster hands a callback to the loop goroutine.
type Poster interface {
	Post(fn func())
}

// PosterFunc runs the callback through a plain function, tests use it to run
// completions inline.
type PosterFunc func(fn func())

func (p PosterFunc) Post(fn func()) {
	p(fn)
}

type timer struct {
	id       TimerID
	name     string
	deadline time.Time
	interval time.Duration
	fn       func()
}

type Loop struct {
	clock  clock.WithTicker
	tick   time.Duration
	log    *logrus.Entry
	mu     sync.Mutex
	posted []func()
	wakeup chan struct{}
	timers map[TimerID]*timer
	nextID TimerID
}

func New(c clock.WithTicker, tick time.Duration) *Loop {
	if tick <= 0 {
		tick = time.Second
	}
	return &Loop{
		clock:  c,
		tick:   tick,
		log:    logrus.WithField("component", "loop"),
		wakeup: make(chan struct{}, 1),
		timers: make(map[TimerID]*timer),
	}
}

func (l *Loop) Now() time.Time {
	return l.clock.Now()
}

func (l *Loop) Clock() clock.PassiveClock {
	return l.clock
}

// Post queues fn for the loop goroutine. Safe for concurrent use.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.posted = append(l.posted, fn)
	l.mu.Unlock()
	select {
	case l.wakeup <- struct{}{}:
	default:
	}
}

func (l *Loop) AddTimer(name string, after time.Duration, fn func()) TimerID {
	return l.addTimer(name, after, 0, fn)
}

func (l *Loop) AddPeriodicTimer(name string, interval time.Duration, fn func()) TimerID {
	return l.addTimer(name, interval, interval, fn)
}

func (l *Loop) addTimer(name string, after, interval time.Duration, fn func()) TimerID {
	l.nextID++
	t := &timer{
		id:       l.nextID,
		name:     name,
		deadline: l.clock.Now().Add(after),
		interval: interval,
		fn:       fn,
	}
	l.timers[t.id] = t
	l.log.Debugf("timer %s (%d) armed for %s", name, t.id, after)
	return t.id
}

func (l *Loop) CancelTimer(id TimerID) {
	delete(l.timers, id)
}

func (l *Loop) PendingTimers() int {
	return len(l.timers)
}

func (l *Loop) takePosted() []func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fns := l.posted
	l.posted = nil
	return fns
}

func (l *Loop) drain() int {
	n := 0
	for {
		fns := l.takePosted()
		if len(fns) == 0 {
			return n
		}
		for _, fn := range fns {
			fn()
			n++
		}
	}
}

func (l *Loop) fireTimers() int {
	now := l.clock.Now()
	var due []*timer
	for _, t := range l.timers {
		if !t.deadline.After(now) {
			due = append(due, t)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].deadline.Equal(due[j].deadline) {
			return due[i].id < due[j].id
		}
		return due[i].deadline.Before(due[j].deadline)
	})
	n := 0
	for _, t := range due {
		if _, ok := l.timers[t.id]; !ok {
			continue
		}
		if t.interval > 0 {
			t.deadline = now.Add(t.interval)
		} else {
			delete(l.timers, t.id)
		}
		t.fn()
		n++
	}
	return n
}

// RunPending runs every posted callback and every expired timer, then any
// callbacks those posted. It returns the number of callbacks run.
func (l *Loop) RunPending() int {
	n := l.drain()
	n += l.fireTimers()
	n += l.drain()
	return n
}

// Run dispatches callbacks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	ticker := l.clock.NewTicker(l.tick)
	defer ticker.Stop()
	l.log.Info("event loop started")
	for {
		select {
		case <-ctx.Done():
			l.log.Info("event loop stopped")
			return ctx.Err()
		case <-ticker.C():
			l.RunPending()
		case <-l.wakeup:
			l.drain()
		}
	}
}
