package session

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestQueryIntervalSpacesRequests(t *testing.T) {
	const interval = 25 * time.Millisecond
	const calls = 5

	transport := newFakeTransport()
	transport.page(http.MethodGet, "/", nil)
	client := newClient(t, transport, Options{QueryInterval: interval})

	start := time.Now()
	for i := 0; i < calls; i++ {
		_, err := client.Get(context.Background(), "/")
		require.NoError(t, err)
	}
	require.GreaterOrEqual(t, time.Since(start), (calls-1)*interval-time.Millisecond)
}

func TestQueryIntervalConcurrentCallers(t *testing.T) {
	const interval = 20 * time.Millisecond
	const calls = 4

	transport := newFakeTransport()
	transport.page(http.MethodGet, "/", nil)
	client := newClient(t, transport, Options{QueryInterval: interval})

	start := time.Now()
	errs := make([]error, calls)
	var wg sync.WaitGroup
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = client.Get(context.Background(), "/")
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}
	require.GreaterOrEqual(t, time.Since(start), (calls-1)*interval-time.Millisecond)
	require.Equal(t, calls, transport.count())
}

func TestNoWait(t *testing.T) {
	transport := newFakeTransport()
	transport.page(http.MethodGet, "/", nil)
	client := newClient(t, transport, Options{QueryInterval: time.Hour})

	ctx := NoWait(context.Background())
	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := client.Get(ctx, "/")
		require.NoError(t, err)
	}
	require.Less(t, time.Since(start), time.Second)
}

func TestQueueHonoursCancellation(t *testing.T) {
	transport := newFakeTransport()
	transport.page(http.MethodGet, "/", nil)
	client := newClient(t, transport, Options{QueryInterval: time.Hour})

	_, err := client.Get(context.Background(), "/")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = client.Get(ctx, "/")
	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	require.Equal(t, 1, transport.count())
}

func TestSetQueryInterval(t *testing.T) {
	transport := newFakeTransport()
	transport.page(http.MethodGet, "/", nil)
	client := newClient(t, transport, Options{QueryInterval: time.Hour})
	client.SetQueryInterval(0)

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := client.Get(context.Background(), "/")
		require.NoError(t, err)
	}
	require.Less(t, time.Since(start), time.Second)
}

func TestQueueServesInArrivalOrder(t *testing.T) {
	const interval = 30 * time.Millisecond
	const calls = 4

	transport := newFakeTransport()
	transport.page(http.MethodGet, "/", nil)
	client := newClient(t, transport, Options{QueryInterval: interval})

	var wg sync.WaitGroup
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			client.Get(context.Background(), "/?n="+strconv.Itoa(i))
		}(i)
		time.Sleep(5 * time.Millisecond)
	}
	wg.Wait()

	var order []string
	for _, req := range transport.requests {
		order = append(order, req.URL)
	}
	require.Equal(t, []string{
		DefaultBaseURL + "/?n=0",
		DefaultBaseURL + "/?n=1",
		DefaultBaseURL + "/?n=2",
		DefaultBaseURL + "/?n=3",
	}, order)
}
