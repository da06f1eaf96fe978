package realtime

import (
	"context"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Kushagra128/LangBridge/internal/models"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(NewRegistry(), zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return hub
}

func TestHubBroadcastsPresenceToEveryone(t *testing.T) {
	hub := startHub(t)
	alice, bob := newFakeConn(), newFakeConn()

	hub.Connect("alice", alice)
	hub.Connect("bob", bob)

	waitForPresence(t, alice, []string{"alice", "bob"})
	waitForPresence(t, bob, []string{"alice", "bob"})

	hub.Disconnect("bob", bob)
	waitForPresence(t, alice, []string{"alice"})
}

func TestHubPresenceMatchesSnapshot(t *testing.T) {
	hub := startHub(t)
	conns := map[string]*fakeConn{"carol": newFakeConn(), "alice": newFakeConn(), "bob": newFakeConn()}
	for id, c := range conns {
		hub.Connect(id, c)
	}

	want := []string{"alice", "bob", "carol"}
	for _, c := range conns {
		waitForPresence(t, c, want)
	}
	if got := hub.Registry().Snapshot(); !reflect.DeepEqual(got, want) {
		t.Errorf("Snapshot() = %v, want %v", got, want)
	}
}

func TestHubReconnectClosesOldHandle(t *testing.T) {
	hub := startHub(t)
	first, second := newFakeConn(), newFakeConn()

	hub.Connect("alice", first)
	hub.Connect("alice", second)

	if !first.isClosed() {
		t.Error("replaced handle should be closed")
	}
	waitForPresence(t, second, []string{"alice"})

	// the old handle's late disconnect is a no-op
	hub.Disconnect("alice", first)
	if !hub.Online("alice") {
		t.Fatal("alice went offline after stale disconnect")
	}
}

func TestHubDropsFailingConnection(t *testing.T) {
	hub := startHub(t)
	good := newFakeConn()
	bad := newFakeConn()
	bad.broken = true

	hub.Connect("good", good)
	hub.Connect("bad", bad)

	waitForPresence(t, good, []string{"bad", "good"})
	waitForPresence(t, good, []string{"good"})

	if hub.Online("bad") {
		t.Error("failing connection should be unregistered")
	}
	if !bad.isClosed() {
		t.Error("failing connection should be closed")
	}
}

func TestHubPush(t *testing.T) {
	hub := NewHub(NewRegistry(), zerolog.Nop())
	conn := newFakeConn()

	evt := models.Event{Name: models.EventNewMessage, Data: "hello"}
	if hub.Push("alice", evt) {
		t.Fatal("push to offline user should report false")
	}

	hub.Connect("alice", conn)
	if !hub.Push("alice", evt) {
		t.Fatal("push to online user should succeed")
	}

	got := <-conn.events
	if got.Name != models.EventNewMessage || got.Data != "hello" {
		t.Errorf("received %+v", got)
	}
}

func TestHubPushFailureIsDisconnect(t *testing.T) {
	hub := NewHub(NewRegistry(), zerolog.Nop())
	conn := newFakeConn()
	hub.Connect("alice", conn)
	conn.broken = true

	if hub.Push("alice", models.Event{Name: models.EventNewMessage}) {
		t.Fatal("failed push should report false")
	}
	if hub.Online("alice") {
		t.Error("failed push should unregister the connection")
	}
	if !conn.isClosed() {
		t.Error("failed push should close the connection")
	}
}

func TestHubRunClosesConnectionsOnShutdown(t *testing.T) {
	hub := NewHub(NewRegistry(), zerolog.Nop())
	conn := newFakeConn()
	hub.Connect("alice", conn)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	cancel()
	<-done

	if !conn.isClosed() {
		t.Error("shutdown should close live connections")
	}
	if hub.Online("alice") {
		t.Error("registry should be empty after shutdown")
	}
}
