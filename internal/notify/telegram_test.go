package notify

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestParseCommand(t *testing.T) {
	cases := []struct {
		text string
		want Command
		ok   bool
	}{
		{"/start", Command{Kind: CmdStart}, true},
		{"/status", Command{Kind: CmdStatus}, true},
		{"/status@rug_surfer_bot", Command{Kind: CmdStatus}, true},
		{"/auto_on", Command{Kind: CmdAutoOn}, true},
		{"/auto_off", Command{Kind: CmdAutoOff}, true},
		{"/paper_on", Command{Kind: CmdPaperOn}, true},
		{"/sim_mode", Command{Kind: CmdPaperOn}, true},
		{"/paper_off", Command{Kind: CmdPaperOff}, true},
		{"/live_mode", Command{Kind: CmdPaperOff}, true},
		{"/track MintAbc", Command{Kind: CmdTrack, Arg: "MintAbc"}, true},
		{"/close MintAbc", Command{Kind: CmdClose, Arg: "MintAbc"}, true},
		{"/rug_risk", Command{Kind: CmdRugRisk}, true},
		{"/track", Command{}, false},
		{"/close", Command{}, false},
		{"/unknown", Command{}, false},
		{"hello", Command{}, false},
		{"", Command{}, false},
		{"  /status  ", Command{Kind: CmdStatus}, true},
	}
	for _, tc := range cases {
		got, ok := ParseCommand(tc.text)
		if ok != tc.ok {
			t.Errorf("ParseCommand(%q) ok=%v, want %v", tc.text, ok, tc.ok)
			continue
		}
		if ok && got != tc.want {
			t.Errorf("ParseCommand(%q) = %+v, want %+v", tc.text, got, tc.want)
		}
	}
}

func TestTelegramNotifier_CommandsFromUpdates(t *testing.T) {
	var served atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("/bottest-token/getUpdates", func(w http.ResponseWriter, r *http.Request) {
		if served.CompareAndSwap(false, true) {
			io.WriteString(w, `{"ok":true,"result":[
				{"update_id":1,"message":{"text":"/start","chat":{"id":42}}},
				{"update_id":2,"message":{"text":"/auto_on","chat":{"id":42}}},
				{"update_id":3,"message":{"text":"not a command","chat":{"id":42}}}
			]}`)
			return
		}
		io.WriteString(w, `{"ok":true,"result":[]}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	n := NewTelegramNotifier("test-token", log.New(io.Discard, "", 0), WithAPIBase(server.URL))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go n.Run(ctx)

	want := []CommandKind{CmdStart, CmdAutoOn}
	for _, kind := range want {
		select {
		case cmd := <-n.Commands():
			if cmd.Kind != kind {
				t.Errorf("expected command %v, got %v", kind, cmd.Kind)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("timeout waiting for command")
		}
	}

	if got := n.chatID.Load(); got != 42 {
		t.Errorf("expected chat bound to 42, got %d", got)
	}
}

func TestTelegramNotifier_SendToBoundChat(t *testing.T) {
	sent := make(chan string, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("/bottest-token/sendMessage", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		sent <- string(body)
		io.WriteString(w, `{"ok":true}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	n := NewTelegramNotifier("test-token", log.New(io.Discard, "", 0),
		WithAPIBase(server.URL), WithChatID(42))

	n.Info("hello")

	select {
	case body := <-sent:
		if body == "" {
			t.Error("expected message payload")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for sendMessage")
	}
}
