package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/colorsort/internal/model"
	"github.com/mcoot/colorsort/internal/testutil"
)

func TestFormatMessage(t *testing.T) {
	tests := []struct {
		name      string
		eventName string
		data      string
		expected  string
	}{
		{
			name:      "single line data",
			eventName: "test-event",
			data:      "hello world",
			expected:  "event: test-event\ndata: hello world\n\n",
		},
		{
			name:      "multi-line data",
			eventName: "leaderboard-update",
			data:      "{\n  \"a\": 1\n}",
			expected:  "event: leaderboard-update\ndata: {\ndata:   \"a\": 1\ndata: }\n\n",
		},
		{
			name:      "empty data",
			eventName: "ping",
			data:      "",
			expected:  "event: ping\ndata: \n\n",
		},
		{
			name:      "trailing newline",
			eventName: "test",
			data:      "line1\n",
			expected:  "event: test\ndata: line1\n\n",
		},
		{
			name:      "data with carriage returns",
			eventName: "test",
			data:      "line1\r\nline2",
			expected:  "event: test\ndata: line1\ndata: line2\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(formatMessage(tt.eventName, tt.data)))
		})
	}
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.ClientCount() == n }, time.Second, 5*time.Millisecond)
}

func TestHub_RegisterAndBroadcast(t *testing.T) {
	hub := NewHub(testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	client := NewClient()
	require.True(t, hub.Register(client))
	waitForClients(t, hub, 1)

	hub.BroadcastEvent("test", "hello")

	select {
	case msg := <-client.send:
		assert.Equal(t, "event: test\ndata: hello\n\n", string(msg))
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for broadcast")
	}
}

func TestHub_Unregister(t *testing.T) {
	hub := NewHub(testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	client := NewClient()
	hub.Register(client)
	waitForClients(t, hub, 1)

	hub.Unregister(client)
	waitForClients(t, hub, 0)

	_, ok := <-client.send
	assert.False(t, ok, "send channel should be closed")
}

func TestHub_CloseDisconnectsClients(t *testing.T) {
	hub := NewHub(testutil.NopLogger())
	go hub.Run()

	client := NewClient()
	hub.Register(client)
	waitForClients(t, hub, 1)

	hub.Close()
	hub.Close()

	select {
	case _, ok := <-client.send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("client channel not closed")
	}
	assert.False(t, hub.Register(NewClient()))
}

func TestBroadcaster_LeaderboardEvent(t *testing.T) {
	hub := NewHub(testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	client := NewClient()
	hub.Register(client)
	waitForClients(t, hub, 1)

	b := NewBroadcaster(hub, testutil.NopLogger())
	b.BroadcastLeaderboard([]model.RankedEntry{{Rank: 1, Username: "bob", Score: 90}})

	select {
	case msg := <-client.send:
		assert.Equal(t,
			"event: leaderboard-update\ndata: {\"top_scores\":[{\"rank\":1,\"username\":\"bob\",\"score\":90}]}\n\n",
			string(msg))
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for leaderboard event")
	}
}

func TestServeSSE_StreamsEvents(t *testing.T) {
	hub := NewHub(testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		ServeSSE(rec, req, hub, formatMessage("initial", "x"))
		close(done)
	}()

	waitForClients(t, hub, 1)
	hub.BroadcastEvent("later", "y")

	// Let the stream write before disconnecting
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	body := rec.Body.String()
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(body, "event: connected\n"))
	assert.Contains(t, body, "event: initial\ndata: x\n\n")
	assert.Contains(t, body, "event: later\ndata: y\n\n")
	waitForClients(t, hub, 0)
}
