package engine

import (
	"container/heap"
	"time"
)

// event is a callback due at a simulated time
type event struct {
	at time.Duration
	id uint64
	fn func()
}

// eventHeap orders events by time, then by scheduling order
type eventHeap struct {
	events []*event
}

func newEventHeap() *eventHeap {
	h := &eventHeap{
		events: make([]*event, 0),
	}
	heap.Init(h)
	return h
}

// Len implements heap.Interface
func (h *eventHeap) Len() int {
	return len(h.events)
}

// Less implements heap.Interface
func (h *eventHeap) Less(i, j int) bool {
	ei, ej := h.events[i], h.events[j]
	if ei.at != ej.at {
		return ei.at < ej.at
	}
	return ei.id < ej.id
}

// Swap implements heap.Interface
func (h *eventHeap) Swap(i, j int) {
	h.events[i], h.events[j] = h.events[j], h.events[i]
}

// Push implements heap.Interface
func (h *eventHeap) Push(x interface{}) {
	h.events = append(h.events, x.(*event))
}

// Pop implements heap.Interface
func (h *eventHeap) Pop() interface{} {
	old := h.events
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	h.events = old[0 : n-1]
	return item
}

func (h *eventHeap) schedule(e *event) {
	heap.Push(h, e)
}

func (h *eventHeap) popNext() *event {
	if h.Len() == 0 {
		return nil
	}
	return heap.Pop(h).(*event)
}

func (h *eventHeap) peek() *event {
	if h.Len() == 0 {
		return nil
	}
	return h.events[0]
}
