package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Kushagra128/LangBridge/internal/models"
)

type wireEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func newWSServer(t *testing.T) (*Hub, string) {
	t.Helper()
	hub := startHub(t)
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		NewWSConn(ws).Serve(hub, r.URL.Query().Get("user"))
	}))
	t.Cleanup(srv.Close)

	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url, user string) *websocket.Conn {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial(url+"?user="+user, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", user, err)
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

func readUntil(t *testing.T, ws *websocket.Conn, match func(wireEvent) bool) wireEvent {
	t.Helper()
	ws.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		var evt wireEvent
		if err := ws.ReadJSON(&evt); err != nil {
			t.Fatalf("read: %v", err)
		}
		if match(evt) {
			return evt
		}
	}
}

func presenceIs(want ...string) func(wireEvent) bool {
	return func(evt wireEvent) bool {
		if evt.Event != models.EventOnlineUsers {
			return false
		}
		var ids []string
		if err := json.Unmarshal(evt.Data, &ids); err != nil {
			return false
		}
		return reflect.DeepEqual(ids, want)
	}
}

func TestWebsocketPresenceAndPush(t *testing.T) {
	hub, url := newWSServer(t)

	alice := dial(t, url, "alice")
	readUntil(t, alice, presenceIs("alice"))

	bob := dial(t, url, "bob")
	readUntil(t, alice, presenceIs("alice", "bob"))
	readUntil(t, bob, presenceIs("alice", "bob"))

	if !hub.Push("alice", models.Event{Name: models.EventNewMessage, Data: map[string]string{"text": "hola"}}) {
		t.Fatal("push to connected user failed")
	}
	evt := readUntil(t, alice, func(e wireEvent) bool { return e.Event == models.EventNewMessage })

	var payload map[string]string
	if err := json.Unmarshal(evt.Data, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload["text"] != "hola" {
		t.Errorf("payload text = %q, want hola", payload["text"])
	}

	bob.Close()
	readUntil(t, alice, presenceIs("alice"))
	waitFor(t, func() bool { return !hub.Online("bob") })
}

func TestWebsocketReconnectReplacesOldSocket(t *testing.T) {
	hub, url := newWSServer(t)

	first := dial(t, url, "alice")
	readUntil(t, first, presenceIs("alice"))

	second := dial(t, url, "alice")
	readUntil(t, second, presenceIs("alice"))

	// the replaced socket is closed by the server
	first.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		if _, _, err := first.ReadMessage(); err != nil {
			break
		}
	}

	if !hub.Online("alice") {
		t.Fatal("alice should stay online on the new socket")
	}
	if !hub.Push("alice", models.Event{Name: models.EventNewMessage, Data: "x"}) {
		t.Fatal("push should reach the new socket")
	}
	readUntil(t, second, func(e wireEvent) bool { return e.Event == models.EventNewMessage })
}
