package connectors

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

func TestMarkPriceStreamWatch(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ws/btcusdt@markPrice@1s" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Fatalf("upgrade: %v", err)
		}
		defer conn.Close()

		messages := []string{
			`{"e":"markPriceUpdate","E":1700000000000,"s":"BTCUSDT","p":"30000.10000000"}`,
			`not json`,
			`{"e":"markPriceUpdate","E":1700000001000,"s":"BTCUSDT","p":"30000.20000000"}`,
		}
		for _, m := range messages {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(m)); err != nil {
				return
			}
		}
		// Hold the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	stream := NewMarkPriceStream(wsURL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := make(chan decimal.Decimal, 4)
	done := make(chan error, 1)
	go func() {
		done <- stream.Watch(ctx, "BTCUSDT", out)
	}()

	want := []string{"30000.1", "30000.2"}
	for _, w := range want {
		select {
		case got := <-out:
			if !got.Equal(decimal.RequireFromString(w)) {
				t.Fatalf("expected mark %s, got %s", w, got)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for mark %s", w)
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after cancellation")
	}
}

func TestMarkPriceStreamDialFailure(t *testing.T) {
	stream := NewMarkPriceStream("ws://127.0.0.1:1")
	err := stream.Watch(context.Background(), "BTCUSDT", make(chan decimal.Decimal))
	if err == nil {
		t.Fatal("expected dial error")
	}
}
