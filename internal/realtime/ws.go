package realtime

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Kushagra128/LangBridge/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxInboundSize = 4096
	sendQueueSize  = 64
)

// WSConn is a Conn backed by a websocket. Outbound events are queued and
// written by a single writer goroutine.
type WSConn struct {
	ws        *websocket.Conn
	send      chan models.Event
	done      chan struct{}
	closeOnce sync.Once
}

// NewWSConn wraps an upgraded websocket.
func NewWSConn(ws *websocket.Conn) *WSConn {
	return &WSConn{
		ws:   ws,
		send: make(chan models.Event, sendQueueSize),
		done: make(chan struct{}),
	}
}

// Send queues evt. It fails instead of blocking when the peer is gone or
// not keeping up.
func (c *WSConn) Send(evt models.Event) error {
	select {
	case <-c.done:
		return ErrConnClosed
	default:
	}

	select {
	case c.send <- evt:
		return nil
	case <-c.done:
		return ErrConnClosed
	default:
		return ErrSendQueueFull
	}
}

// Close shuts the connection down. Safe to call more than once.
func (c *WSConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		// WriteControl may run concurrently with the write pump
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		err = c.ws.Close()
	})
	return err
}

// Serve registers the connection with hub for userID and blocks until the
// peer goes away.
func (c *WSConn) Serve(hub *Hub, userID string) {
	hub.Connect(userID, c)
	defer func() {
		hub.Disconnect(userID, c)
		_ = c.Close()
	}()

	go c.writePump()
	c.readPump()
}

// readPump drains client frames so control messages are processed. The
// protocol is push-only; inbound payloads are ignored.
func (c *WSConn) readPump() {
	c.ws.SetReadLimit(maxInboundSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *WSConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Close()
	}()

	for {
		select {
		case evt := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteJSON(evt); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
