package feed

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func wsTestServer(t *testing.T, frames [][]byte) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		for _, f := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, f); err != nil {
				return
			}
		}

		// Keep connection open
		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				return
			}
		}
	}))
}

func TestWSSource_ReceivesFrames(t *testing.T) {
	payload, err := json.Marshal(snapshotFrame{
		Mint:      "MintA",
		Price:     0.002,
		Liquidity: 20000,
		MarketCap: 60000,
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	server := wsTestServer(t, [][]byte{payload})
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	src := NewWSSource(wsURL, nil, log.New(io.Discard, "", 0))
	defer src.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go src.Start(ctx)

	select {
	case snap := <-src.Snapshots():
		if snap.Mint != "MintA" {
			t.Errorf("expected MintA, got %s", snap.Mint)
		}
		if snap.Price != 0.002 {
			t.Errorf("expected price 0.002, got %v", snap.Price)
		}
		if snap.LastUpdatedMs == 0 {
			t.Error("expected timestamp to be filled in when frame omits it")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for snapshot")
	}
}

func TestWSSource_SkipsMalformedFrames(t *testing.T) {
	good, err := json.Marshal(snapshotFrame{Mint: "MintB", Price: 1})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	server := wsTestServer(t, [][]byte{
		[]byte("{not json"),
		[]byte(`{"price": 1}`), // missing mint
		good,
	})
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	src := NewWSSource(wsURL, nil, log.New(io.Discard, "", 0))
	defer src.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go src.Start(ctx)

	select {
	case snap := <-src.Snapshots():
		if snap.Mint != "MintB" {
			t.Errorf("expected the valid frame, got %+v", snap)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for snapshot")
	}
}

func TestWSSource_Close(t *testing.T) {
	server := wsTestServer(t, nil)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	src := NewWSSource(wsURL, nil, log.New(io.Discard, "", 0))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- src.Start(ctx) }()

	time.Sleep(100 * time.Millisecond)
	if err := src.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after Close")
	}
}
