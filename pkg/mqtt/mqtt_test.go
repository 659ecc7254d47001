package mqtt

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freeAddress(t *testing.T) string {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

func TestSubscriberReceivesInOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	defer func() {
		cancel()
		wg.Wait()
	}()

	addr := freeAddress(t)
	server, err := StartBroker(ctx, wg, addr)
	require.NoError(t, err)

	received := make(chan string, 10)
	sub := NewSubscriber(Options{
		Address:   addr,
		ClientID:  "test-subscriber",
		Keepalive: 10 * time.Second,
		Topic:     "p1/reading",
		QoS:       1,
	}, func(payload []byte) {
		received <- string(payload)
	})
	require.NoError(t, sub.Start(ctx, wg))

	for _, msg := range []string{"one", "two", "three"} {
		require.NoError(t, server.Publish("p1/reading", []byte(msg), false, 1))
	}
	require.NoError(t, server.Publish("other/topic", []byte("ignored"), false, 1))

	var got []string
	for len(got) < 3 {
		select {
		case msg := <-received:
			got = append(got, msg)
		case <-time.After(5 * time.Second):
			t.Fatalf("timeout waiting for messages, got %v", got)
		}
	}
	assert.Equal(t, []string{"one", "two", "three"}, got)
}

func TestSubscribeInline(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	defer func() {
		cancel()
		wg.Wait()
	}()

	server, err := StartBroker(ctx, wg, freeAddress(t))
	require.NoError(t, err)

	received := make(chan string, 1)
	err = SubscribeInline(server, "p1/#", func(payload []byte) {
		received <- string(payload)
	})
	require.NoError(t, err)

	require.NoError(t, server.Publish("p1/reading", []byte(`{}`), false, 0))
	select {
	case msg := <-received:
		assert.Equal(t, `{}`, msg)
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for inline message")
	}
}

func TestSubscriberConnectError(t *testing.T) {
	sub := NewSubscriber(Options{
		Address:  freeAddress(t),
		ClientID: "test-subscriber",
		Topic:    "p1/reading",
	}, func([]byte) {})

	err := sub.Start(context.Background(), &sync.WaitGroup{})
	assert.Error(t, err)
}
