/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package eventloop

import (
	"container/heap"
	"time"
)

type timerEntry struct {
	id      TimerID
	fireAt  time.Time
	repeat  time.Duration
	cb      TimerCallback
	index   int
	pending bool // false once cancelled or fired-and-not-repeating
}

type timerHeap []*timerEntry

func (h timerHeap) Len() int { return len(h) }
func (h timerHeap) Less(i, j int) bool { return h[i].fireAt.Before(h[j].fireAt) }
func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x any) {
	e := x.(*timerEntry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// timerWheel owns the min-heap of pending timers plus the id→entry index
// that makes CancelTimer O(log n) and safe to call from within a firing
// callback: cancelling only flips the pending flag and, if the entry is
// still in the heap, removes it; an entry already popped out for firing
// (mid-dispatch) is simply never re-armed.
type timerWheel struct {
	h      timerHeap
	byID   map[TimerID]*timerEntry
	nextID TimerID
}

func newTimerWheel() *timerWheel {
	return &timerWheel{
		h:    make(timerHeap, 0, 16),
		byID: make(map[TimerID]*timerEntry),
	}
}

func (w *timerWheel) add(delay, repeat time.Duration, cb TimerCallback) TimerID {
	w.nextID++
	id := w.nextID
	e := &timerEntry{
		id:      id,
		fireAt:  time.Now().Add(delay),
		repeat:  repeat,
		cb:      cb,
		pending: true,
	}
	heap.Push(&w.h, e)
	w.byID[id] = e
	return id
}

func (w *timerWheel) cancel(id TimerID) {
	if id == 0 {
		return
	}
	e, ok := w.byID[id]
	if !ok || !e.pending {
		return
	}
	e.pending = false
	if e.index >= 0 {
		heap.Remove(&w.h, e.index)
	}
	delete(w.byID, id)
}

// nextDeadline reports the fire time of the earliest pending timer, or
// ok == false if there are none.
func (w *timerWheel) nextDeadline() (time.Time, bool) {
	if w.h.Len() == 0 {
		return time.Time{}, false
	}
	return w.h[0].fireAt, true
}

// fireDue pops and invokes every timer whose fireAt is <= now, re-arming
// repeating timers with a fresh deadline computed from now (not from the
// missed fireAt, to avoid a storm of catch-up fires after a long pause).
// Timers cancelled by an earlier callback in this same batch are skipped
// without firing, satisfying the "cancel before the loop has fired it"
// invariant even within one epoll wake-up.
func (w *timerWheel) fireDue(now time.Time) {
	for w.h.Len() > 0 && !w.h[0].fireAt.After(now) {
		e := heap.Pop(&w.h).(*timerEntry)
		if !e.pending {
			continue
		}
		if e.repeat <= 0 {
			e.pending = false
			delete(w.byID, e.id)
			e.cb(now)
			continue
		}
		// Re-arm before invoking: the callback may call CancelTimer on its
		// own id, which must then be honored for the next occurrence.
		e.fireAt = now.Add(e.repeat)
		heap.Push(&w.h, e)
		e.cb(now)
	}
}
