// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package scheduler provides a self-pacing repeating task runner.
//
// Unlike a ticker, the [Scheduler] measures the interval from the completion
// of the previous run: the work receives a done continuation and the next
// run is armed only after done fires. Slow runs therefore never overlap and
// never build up a backlog.
package scheduler

import (
	"context"
	"sync"
	"time"
)

// DefaultInterval is used when a non-positive interval is given to [New].
const DefaultInterval = 5 * time.Second

// Work is one unit of repeated work. It must call done exactly once when it
// has finished, successfully or not; further calls are ignored. ctx is
// cancelled when the scheduler is stopped.
type Work func(ctx context.Context, done func())

// Scheduler runs a [Work] repeatedly. The zero value is not usable; create
// instances with [New].
type Scheduler struct {
	interval time.Duration
	work     Work

	mu      sync.Mutex
	running bool
	// generation invalidates continuations that belong to a previous
	// Start/Stop cycle.
	generation uint64
	timer      *time.Timer
	ctx        context.Context
	cancel     context.CancelFunc
	// busy is set while a run is between its start and its done call.
	busy bool
}

// New creates an idle Scheduler that runs work every interval once started.
func New(interval time.Duration, work Work) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{interval: interval, work: work}
}

// Start runs the work immediately and keeps rescheduling it. Calling Start on
// a running scheduler is a no-op. If a run from before the last Stop is still
// in flight, the first run of the new cycle waits for its done call, so runs
// never overlap.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.running = true
	s.generation++
	if !s.busy {
		s.arm(s.ctx, s.generation, 0)
	}
}

// Stop cancels any pending run. Work already in flight is not interrupted
// beyond the cancellation of its context, and no further run is scheduled.
// Safe to call when the scheduler is not running.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.running = false
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.ctx = nil
}

// Running reports whether the scheduler has been started and not stopped.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Interval returns the delay between the end of one run and the start of the
// next.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// arm must be called with s.mu held.
func (s *Scheduler) arm(ctx context.Context, generation uint64, delay time.Duration) {
	s.timer = time.AfterFunc(delay, func() {
		s.invoke(ctx, generation)
	})
}

func (s *Scheduler) invoke(ctx context.Context, generation uint64) {
	s.mu.Lock()
	if !s.running || s.generation != generation || s.busy {
		s.mu.Unlock()
		return
	}
	s.busy = true
	s.mu.Unlock()

	var once sync.Once
	s.work(ctx, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()

			s.busy = false
			switch {
			case !s.running:
			case s.generation != generation:
				// restarted while this run was in flight
				s.arm(s.ctx, s.generation, 0)
			default:
				s.arm(ctx, generation, s.interval)
			}
		})
	})
}
