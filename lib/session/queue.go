package session

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

type noWaitKeyType int

var noWaitKey noWaitKeyType

// NoWait marks requests made with the returned context as exempt from the
// minimum interval between requests.
func NoWait(ctx context.Context) context.Context {
	return context.WithValue(ctx, noWaitKey, true)
}

func noWait(ctx context.Context) bool {
	v, _ := ctx.Value(noWaitKey).(bool)
	return v
}

func limitFor(interval time.Duration) rate.Limit {
	if interval <= 0 {
		return rate.Inf
	}
	return rate.Every(interval)
}

// requestQueue spaces requests at least interval apart. The slot is taken
// before the request is sent, so latency counts towards the interval.
// Callers hold the turn one at a time and get it in the order they asked
// for it, blocked channel receivers are woken first in first out.
type requestQueue struct {
	turn    chan struct{}
	limiter *rate.Limiter
}

func newRequestQueue(interval time.Duration) *requestQueue {
	q := &requestQueue{
		turn:    make(chan struct{}, 1),
		limiter: rate.NewLimiter(limitFor(interval), 1),
	}
	q.turn <- struct{}{}
	return q
}

func (q *requestQueue) wait(ctx context.Context) error {
	if noWait(ctx) {
		return nil
	}
	select {
	case <-q.turn:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { q.turn <- struct{}{} }()
	return q.limiter.Wait(ctx)
}

func (q *requestQueue) setInterval(interval time.Duration) {
	q.limiter.SetLimit(limitFor(interval))
}
