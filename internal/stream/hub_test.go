package stream

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/san-kum/broadphase/internal/sim"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func read(t *testing.T, conn *websocket.Conn) envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg envelope
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestHubStreamsSteps(t *testing.T) {
	hub := NewHub("gas", 2, nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	conn := dial(t, srv)

	msg := read(t, conn)
	if msg.Type != "hello" {
		t.Fatalf("expected hello, got %s", msg.Type)
	}
	var h hello
	if err := json.Unmarshal(msg.Payload, &h); err != nil {
		t.Fatal(err)
	}
	if h.ClientID == "" || h.Scene != "gas" {
		t.Errorf("unexpected hello %+v", h)
	}
	if hub.Len() != 1 {
		t.Fatalf("expected 1 client, got %d", hub.Len())
	}

	for i := 1; i <= 4; i++ {
		hub.OnStep(sim.StepStats{Step: i, Candidates: 10 * i})
	}

	// every second step is forwarded
	for _, want := range []int{2, 4} {
		msg := read(t, conn)
		if msg.Type != "step" {
			t.Fatalf("expected step, got %s", msg.Type)
		}
		var st sim.StepStats
		if err := json.Unmarshal(msg.Payload, &st); err != nil {
			t.Fatal(err)
		}
		if st.Step != want || st.Candidates != 10*want {
			t.Errorf("got step %+v, want step %d", st, want)
		}
	}
}

func TestHubAnswersPing(t *testing.T) {
	hub := NewHub("rain", 1, nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	conn := dial(t, srv)
	read(t, conn)

	if err := conn.WriteJSON(map[string]string{"type": "ping"}); err != nil {
		t.Fatal(err)
	}
	if msg := read(t, conn); msg.Type != "pong" {
		t.Errorf("expected pong, got %s", msg.Type)
	}
}

func TestHubForgetsClosedClients(t *testing.T) {
	hub := NewHub("grid", 1, nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	read(t, conn)
	conn.Close()

	deadline := time.Now().Add(5 * time.Second)
	for hub.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("closed client was never removed")
		}
		time.Sleep(10 * time.Millisecond)
	}
	hub.OnStep(sim.StepStats{Step: 1})
}
