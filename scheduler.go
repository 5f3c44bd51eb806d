// seehuhn.de/go/pageview - render cache for paginated documents
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package pageview

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// DecodeFunc produces the bitmap for a job.  It runs inside the decode
// region.
type DecodeFunc func(ctx context.Context) (image.Image, error)

// FinishFunc receives the outcome of a decode which was not cancelled:
// either the bitmap or the decode error.  It returns true if the bitmap
// was committed.
type FinishFunc func(j *Job, img image.Image, err error) bool

// Scheduler runs render jobs in the background.
//
// Any number of jobs may be waiting at the same time, but at most one of
// them is inside the decode region, and hence calling into the page
// source, at any instant.  The region is a single-permit semaphore; it
// gives mutual exclusion but no FIFO ordering.
type Scheduler struct {
	region   *semaphore.Weighted
	debounce time.Duration
	log      *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex // guards closed and wg.Add
	closed bool

	scheduled atomic.Uint64
	decoded   atomic.Uint64
	committed atomic.Uint64
	cancelled atomic.Uint64
	failed    atomic.Uint64
}

// NewScheduler returns a Scheduler which waits for debounce before each
// job starts to contend for the decode region.
func NewScheduler(debounce time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = Logger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		region:   semaphore.NewWeighted(1),
		debounce: debounce,
		log:      logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Job is one scheduled render.  A job is cancelled either explicitly or
// when its scheduler is closed.
type Job struct {
	req    RenderRequest
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// Request returns the request the job renders.
func (j *Job) Request() RenderRequest { return j.req }

// Cancel marks the job as stale.  A decode which is already running is
// not interrupted, but its result will not be committed.
func (j *Job) Cancel() { j.cancel() }

// Cancelled reports whether Cancel was called or the scheduler closed.
func (j *Job) Cancelled() bool { return j.ctx.Err() != nil }

// Done is closed when the job has finished.
func (j *Job) Done() <-chan struct{} { return j.done }

// Err returns the outcome of a finished job: nil if the result was
// committed, context.Canceled if the job was superseded, or a
// *DecodeError.
func (j *Job) Err() error {
	<-j.done
	return j.err
}

// Schedule starts a new job for req.  The job waits for the debounce delay,
// runs decode inside the decode region and passes the result to finish.
// Cancellation is checked before entering the region, inside the region
// before decoding, and after decoding.
func (s *Scheduler) Schedule(req RenderRequest, decode DecodeFunc, finish FinishFunc) *Job {
	ctx, cancel := context.WithCancel(s.ctx)
	j := &Job{
		req:    req,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	s.scheduled.Add(1)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		cancel()
		j.err = context.Canceled
		close(j.done)
		s.cancelled.Add(1)
		return j
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer close(j.done)
		defer cancel()
		j.err = s.run(j, decode, finish)
		var decodeErr *DecodeError
		switch {
		case errors.Is(j.err, context.Canceled):
			s.cancelled.Add(1)
			s.log.Debug("render cancelled", "page", req.Page)
		case errors.As(j.err, &decodeErr):
			s.log.Warn("page rendering failed",
				"page", req.Page, "visible", req.Visible, "error", decodeErr.Err)
		}
	}()
	return j
}

func (s *Scheduler) run(j *Job, decode DecodeFunc, finish FinishFunc) error {
	ctx := j.ctx

	if s.debounce > 0 {
		t := time.NewTimer(s.debounce)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return context.Canceled
		}
	}
	if ctx.Err() != nil {
		return context.Canceled
	}

	img, started, err := s.decodeInRegion(ctx, decode)
	if !started || ctx.Err() != nil {
		return context.Canceled
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return context.Canceled
		}
		s.failed.Add(1)
		finish(j, nil, err)
		return &DecodeError{Page: j.req.Page, Err: err}
	}
	if !finish(j, img, nil) {
		return context.Canceled
	}
	s.committed.Add(1)
	return nil
}

// decodeInRegion runs decode while holding the decode region.  A panic in
// decode is turned into an error.  started is false if the job was
// cancelled before decode was called.
func (s *Scheduler) decodeInRegion(ctx context.Context, decode DecodeFunc) (img image.Image, started bool, err error) {
	if s.region.Acquire(ctx, 1) != nil {
		return nil, false, nil
	}
	defer s.region.Release(1)
	if ctx.Err() != nil {
		return nil, false, nil
	}

	s.decoded.Add(1)
	defer func() {
		if r := recover(); r != nil {
			img, started, err = nil, true, fmt.Errorf("%w: %v", ErrDecodePanic, r)
		}
	}()
	img, err = decode(ctx)
	return img, true, err
}

// Wait blocks until every scheduled job has finished.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// Close cancels all outstanding jobs and waits for them to finish.
// Jobs scheduled after Close are cancelled immediately.  Close may be
// called concurrently with Schedule.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()
	s.wg.Wait()
}

// SchedulerStats counts jobs by outcome.
type SchedulerStats struct {
	Scheduled uint64 // jobs started
	Decoded   uint64 // calls into the page source
	Committed uint64 // results stored
	Cancelled uint64 // jobs which ended as stale
	Failed    uint64 // decode errors
}

// Stats returns the current job counters.
func (s *Scheduler) Stats() SchedulerStats {
	return SchedulerStats{
		Scheduled: s.scheduled.Load(),
		Decoded:   s.decoded.Load(),
		Committed: s.committed.Load(),
		Cancelled: s.cancelled.Load(),
		Failed:    s.failed.Load(),
	}
}
