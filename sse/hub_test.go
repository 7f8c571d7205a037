package sse

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met within 1s")
		}
		time.Sleep(time.Millisecond)
	}
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	done := make(chan struct{})
	go func() {
		defer close(done)
		hub.Run()
	}()
	t.Cleanup(func() {
		hub.Stop()
		<-done
	})
	return hub
}

func TestClient_Send(t *testing.T) {
	client := NewClient("search:s1:c1")
	if !client.Send([]byte("hello")) {
		t.Fatal("expected send to succeed")
	}
	if got := string(<-client.Events()); got != "hello" {
		t.Errorf("expected 'hello', got %q", got)
	}
}

func TestClient_Send_BufferFull(t *testing.T) {
	client := NewClient("search:s1:c1")
	for i := 0; i < clientBuffer; i++ {
		client.Send([]byte("msg"))
	}
	if client.Send([]byte("overflow")) {
		t.Error("expected send to fail when the buffer is full")
	}
}

func TestClient_Close(t *testing.T) {
	client := NewClient("search:s1:c1")
	client.Close()
	if _, open := <-client.Events(); open {
		t.Error("expected channel to be closed")
	}
}

func TestClient_Metadata(t *testing.T) {
	client := NewClient("search:s1:c1", WithSessionID("s1"), WithMetadata("remote", "127.0.0.1"))
	if client.SessionID() != "s1" {
		t.Errorf("expected session s1, got %q", client.SessionID())
	}
	if client.GetMetadata("remote") != "127.0.0.1" || len(client.Metadata()) != 2 {
		t.Errorf("unexpected metadata %v", client.Metadata())
	}
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := startHub(t)
	client := NewClient("search:s1:c1")

	if !hub.Register(client) {
		t.Fatal("expected register to succeed")
	}
	waitFor(t, func() bool { return hub.ClientCount() == 1 })
	if hub.Lookup("search:s1:c1") != client {
		t.Error("expected to find registered client")
	}

	hub.Unregister(client)
	waitFor(t, func() bool { return hub.ClientCount() == 0 })
	if _, open := <-client.Events(); open {
		t.Error("expected unregister to close the client")
	}
}

func TestHub_ReplaceClientWithSameID(t *testing.T) {
	hub := startHub(t)
	first := NewClient("search:s1:c1")
	second := NewClient("search:s1:c1")
	hub.Register(first)
	hub.Register(second)
	waitFor(t, func() bool { return hub.Lookup("search:s1:c1") == second })

	if _, open := <-first.Events(); open {
		t.Error("expected replaced client to be closed")
	}
	// A late unregister of the replaced client must not remove the new one.
	hub.Unregister(first)
	hub.BroadcastToPattern("search:s1:*", []byte("x"))
	select {
	case <-second.Events():
	case <-time.After(time.Second):
		t.Fatal("expected the current client to stay registered")
	}
}

func TestHub_BroadcastToPattern(t *testing.T) {
	hub := startHub(t)
	a1 := NewClient("search:a:1")
	a2 := NewClient("search:a:2")
	b1 := NewClient("search:b:1")
	for _, c := range []*Client{a1, a2, b1} {
		hub.Register(c)
	}
	waitFor(t, func() bool { return hub.ClientCount() == 3 })

	hub.BroadcastToPattern("search:a:*", []byte(`{"query":"ma"}`))

	for _, c := range []*Client{a1, a2} {
		select {
		case msg := <-c.Events():
			if string(msg) != `{"query":"ma"}` {
				t.Errorf("%s: unexpected payload %q", c.ID(), msg)
			}
		case <-time.After(time.Second):
			t.Fatalf("%s: expected broadcast", c.ID())
		}
	}
	select {
	case msg := <-b1.Events():
		t.Errorf("client of another session received %q", msg)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestHub_StopClosesClients(t *testing.T) {
	hub := NewHub()
	done := make(chan struct{})
	go func() {
		defer close(done)
		hub.Run()
	}()

	client := NewClient("search:s1:c1")
	hub.Register(client)
	hub.Stop()
	<-done
	hub.Stop()

	if _, open := <-client.Events(); open {
		t.Error("expected client to be closed on stop")
	}
	if hub.Register(NewClient("late")) {
		t.Error("expected register after stop to fail")
	}
	hub.BroadcastToPattern("*", []byte("dropped"))
	hub.Unregister(client)
}

func TestComponent_Lifecycle(t *testing.T) {
	comp := NewComponent("/api/search/:session/stream")
	ctx := context.Background()

	if comp.Name() != "sse" {
		t.Errorf("expected name 'sse', got %q", comp.Name())
	}
	if err := comp.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	comp.Start(ctx)

	comp.Hub().Register(NewClient("search:s1:c1"))
	waitFor(t, func() bool { return comp.Hub().ClientCount() == 1 })
	health := comp.Health(ctx)
	if health.Status != "healthy" || !strings.Contains(health.Message, "1 clients") {
		t.Errorf("unexpected health %+v", health)
	}

	if err := comp.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if h := comp.Health(ctx); h.Status != "unhealthy" {
		t.Errorf("expected unhealthy after stop, got %+v", h)
	}

	desc := comp.Describe()
	if desc.Name != "SSE Hub" || desc.Type != "sse" || !strings.Contains(desc.Details, "/api/search/:session/stream") {
		t.Errorf("unexpected description %+v", desc)
	}
}

func TestServeSSE_StreamsBroadcasts(t *testing.T) {
	hub := startHub(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeSSE(hub, w, r, "search:s1:c1", WithSessionID("s1"))
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, http.NoBody)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("expected text/event-stream, got %q", ct)
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "no-cache" {
		t.Errorf("expected no-cache, got %q", cc)
	}

	reader := bufio.NewReader(resp.Body)
	readLine := func() string {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		return strings.TrimSpace(line)
	}

	if line := readLine(); line != "event: connected" {
		t.Fatalf("expected connected event, got %q", line)
	}
	if line := readLine(); !strings.Contains(line, `"session_id":"s1"`) {
		t.Errorf("expected session id in connected event, got %q", line)
	}
	readLine()

	hub.BroadcastToPattern("search:s1:*", []byte(`{"query":"mag"}`))
	if line := readLine(); line != `data: {"query":"mag"}` {
		t.Errorf("unexpected frame %q", line)
	}

	cancel()
	waitFor(t, func() bool { return hub.ClientCount() == 0 })
}

func TestServeSSE_HubStopped(t *testing.T) {
	hub := NewHub()
	hub.Stop()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	ServeSSE(hub, rec, req, "search:s1:c1")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}
