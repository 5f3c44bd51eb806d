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
	"image"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func blank(context.Context) (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, 1, 1)), nil
}

func accept(*Job, image.Image, error) bool { return true }

func TestSchedulerSerialisesDecodes(t *testing.T) {
	s := NewScheduler(0, nil)
	defer s.Close()

	var active, maxActive atomic.Int32
	decode := func(ctx context.Context) (image.Image, error) {
		n := active.Add(1)
		if n > maxActive.Load() {
			maxActive.Store(n)
		}
		time.Sleep(2 * time.Millisecond)
		active.Add(-1)
		return blank(ctx)
	}

	var jobs []*Job
	for i := range 8 {
		jobs = append(jobs, s.Schedule(fullPage(i, 10, 10, 1), decode, accept))
	}
	for _, j := range jobs {
		require.NoError(t, j.Err())
	}

	require.EqualValues(t, 1, maxActive.Load())
	st := s.Stats()
	require.EqualValues(t, 8, st.Scheduled)
	require.EqualValues(t, 8, st.Decoded)
	require.EqualValues(t, 8, st.Committed)
}

func TestSchedulerCancelDuringDebounce(t *testing.T) {
	s := NewScheduler(50*time.Millisecond, nil)
	defer s.Close()

	var decoded atomic.Bool
	decode := func(ctx context.Context) (image.Image, error) {
		decoded.Store(true)
		return blank(ctx)
	}
	j := s.Schedule(fullPage(0, 10, 10, 1), decode, accept)
	j.Cancel()

	require.ErrorIs(t, j.Err(), context.Canceled)
	require.True(t, j.Cancelled())
	require.False(t, decoded.Load())
	require.EqualValues(t, 1, s.Stats().Cancelled)
	require.EqualValues(t, 0, s.Stats().Decoded)
}

func TestSchedulerCancelDuringDecode(t *testing.T) {
	s := NewScheduler(0, nil)
	defer s.Close()

	started := make(chan struct{})
	release := make(chan struct{})
	decode := func(ctx context.Context) (image.Image, error) {
		close(started)
		<-release // the decode itself is not interrupted
		return blank(ctx)
	}
	var finished atomic.Bool
	finish := func(*Job, image.Image, error) bool {
		finished.Store(true)
		return true
	}

	j := s.Schedule(fullPage(0, 10, 10, 1), decode, finish)
	<-started
	j.Cancel()
	close(release)

	require.ErrorIs(t, j.Err(), context.Canceled)
	require.False(t, finished.Load(), "result of a cancelled job must be discarded")
	st := s.Stats()
	require.EqualValues(t, 1, st.Decoded)
	require.EqualValues(t, 0, st.Committed)
}

func TestSchedulerCancelWhileWaitingForRegion(t *testing.T) {
	s := NewScheduler(0, nil)
	defer s.Close()

	started := make(chan struct{})
	release := make(chan struct{})
	slow := func(ctx context.Context) (image.Image, error) {
		close(started)
		<-release
		return blank(ctx)
	}
	first := s.Schedule(fullPage(0, 10, 10, 1), slow, accept)
	<-started

	var decoded atomic.Bool
	second := s.Schedule(fullPage(1, 10, 10, 1), func(ctx context.Context) (image.Image, error) {
		decoded.Store(true)
		return blank(ctx)
	}, accept)
	second.Cancel()
	require.ErrorIs(t, second.Err(), context.Canceled)

	close(release)
	require.NoError(t, first.Err())
	require.False(t, decoded.Load())
}

func TestSchedulerDecodeError(t *testing.T) {
	s := NewScheduler(0, nil)
	defer s.Close()

	boom := errors.New("corrupt page")
	var gotErr error
	finish := func(_ *Job, img image.Image, err error) bool {
		gotErr = err
		return img != nil
	}
	j := s.Schedule(fullPage(4, 10, 10, 1), func(context.Context) (image.Image, error) {
		return nil, boom
	}, finish)

	err := j.Err()
	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	require.Equal(t, 4, decodeErr.Page)
	require.ErrorIs(t, err, boom)
	require.ErrorIs(t, gotErr, boom)
	require.EqualValues(t, 1, s.Stats().Failed)
}

func TestSchedulerClose(t *testing.T) {
	s := NewScheduler(time.Hour, nil)

	var jobs []*Job
	for i := range 4 {
		jobs = append(jobs, s.Schedule(fullPage(i, 10, 10, 1), blank, accept))
	}
	s.Close()

	for _, j := range jobs {
		require.ErrorIs(t, j.Err(), context.Canceled)
	}
	require.EqualValues(t, 4, s.Stats().Cancelled)

	late := s.Schedule(fullPage(0, 10, 10, 1), blank, accept)
	require.ErrorIs(t, late.Err(), context.Canceled)
}

func TestSchedulerDecodePanic(t *testing.T) {
	s := NewScheduler(0, nil)
	defer s.Close()

	var gotErr error
	finish := func(_ *Job, _ image.Image, err error) bool {
		gotErr = err
		return false
	}
	j := s.Schedule(fullPage(2, 10, 10, 1), func(context.Context) (image.Image, error) {
		panic("malformed content stream")
	}, finish)

	err := j.Err()
	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	require.Equal(t, 2, decodeErr.Page)
	require.ErrorIs(t, err, ErrDecodePanic)
	require.ErrorIs(t, gotErr, ErrDecodePanic)
	require.EqualValues(t, 1, s.Stats().Failed)

	// the region was released
	next := s.Schedule(fullPage(3, 10, 10, 1), blank, accept)
	select {
	case <-next.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("decode region still held after a panic")
	}
	require.NoError(t, next.Err())
	require.EqualValues(t, 1, s.Stats().Committed)
}

func TestSchedulerScheduleDuringClose(t *testing.T) {
	s := NewScheduler(time.Millisecond, nil)

	var wg sync.WaitGroup
	jobs := make(chan *Job, 400)
	for i := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for k := range 100 {
				jobs <- s.Schedule(fullPage(i*100+k, 10, 10, 1), blank, accept)
			}
		}()
	}
	time.Sleep(time.Millisecond)
	s.Close()
	wg.Wait()
	close(jobs)

	for j := range jobs {
		<-j.Done()
	}
	st := s.Stats()
	require.EqualValues(t, 400, st.Scheduled)
	require.EqualValues(t, 400, st.Committed+st.Cancelled)
}
