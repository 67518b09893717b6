package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Feed is a client subscription to a gateway's /ws change feed.
type Feed struct {
	conn *websocket.Conn
	ch   chan Message

	mu  sync.Mutex
	err error
}

// DialFeed connects to the websocket feed at url ("ws://host:port/ws").
// header carries the LAN auth credentials, e.g. from http.Request.SetBasicAuth.
// The feed ends when ctx ends, the server closes the connection or Close is
// called.
func DialFeed(ctx context.Context, url string, header http.Header) (*Feed, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("failed to connect to %s: %s", url, resp.Status)
		}
		return nil, fmt.Errorf("failed to connect to %s: %w", url, err)
	}

	f := &Feed{conn: conn, ch: make(chan Message, broadcastQueue)}
	go f.readLoop(ctx)
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()
	return f, nil
}

// Messages returns the channel of received messages. It is closed when the
// feed ends.
func (f *Feed) Messages() <-chan Message {
	return f.ch
}

// Err returns the reason the feed ended, or nil for a clean close.
func (f *Feed) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Close ends the subscription.
func (f *Feed) Close() error {
	_ = f.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
	return f.conn.Close()
}

func (f *Feed) readLoop(ctx context.Context) {
	defer close(f.ch)
	for {
		var msg Message
		if err := f.conn.ReadJSON(&msg); err != nil {
			if ctx.Err() == nil && !isNormalClose(err) {
				f.mu.Lock()
				f.err = err
				f.mu.Unlock()
			}
			return
		}
		select {
		case f.ch <- msg:
		case <-ctx.Done():
			return
		}
	}
}

func isNormalClose(err error) bool {
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return true
	}
	return errors.Is(err, net.ErrClosed)
}
