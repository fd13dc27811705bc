package scheduler

import (
	"time"
	"wvw-dashboard/internal/api"
)

type Priority int

const (
	Low Priority = iota
	Normal
	High
)

func (p Priority) String() string {
	switch p {
	case High:
		return "high"
	case Normal:
		return "normal"
	case Low:
		return "low"
	}
	return "unknown"
}

type scheduledCall struct {
	priority   Priority
	enqueuedAt time.Time
	seq        uint64
	endpoint   api.Endpoint
	decode     DecodeFunc
	future     *Future
}

// before reports whether a is dequeued ahead of b: higher priority first,
// then older enqueue time, then lower sequence number.
func (a *scheduledCall) before(b *scheduledCall) bool {
	if a.priority != b.priority {
		return a.priority > b.priority
	}
	if !a.enqueuedAt.Equal(b.enqueuedAt) {
		return a.enqueuedAt.Before(b.enqueuedAt)
	}
	return a.seq < b.seq
}

// callQueue implements heap.Interface.
type callQueue []*scheduledCall

func (q callQueue) Len() int           { return len(q) }
func (q callQueue) Less(i, j int) bool { return q[i].before(q[j]) }
func (q callQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }

func (q *callQueue) Push(x any) {
	*q = append(*q, x.(*scheduledCall))
}

func (q *callQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}
