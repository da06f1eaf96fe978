package realtime

import (
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/Kushagra128/LangBridge/internal/models"
)

var errBroken = errors.New("broken pipe")

// fakeConn records sent events on a buffered channel.
type fakeConn struct {
	mu     sync.Mutex
	events chan models.Event
	broken bool
	closed bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{events: make(chan models.Event, 64)}
}

func (c *fakeConn) Send(evt models.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrConnClosed
	}
	if c.broken {
		return errBroken
	}
	select {
	case c.events <- evt:
		return nil
	default:
		return ErrSendQueueFull
	}
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// waitForPresence reads events from c until a presence event listing exactly
// want arrives.
func waitForPresence(t *testing.T, c *fakeConn, want []string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case evt := <-c.events:
			if evt.Name != models.EventOnlineUsers {
				continue
			}
			if reflect.DeepEqual(evt.Data, want) {
				return
			}
		case <-deadline:
			t.Fatalf("no presence event with %v", want)
		}
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
