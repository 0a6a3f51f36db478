package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	gorillawebsocket "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

func newTestClient(id string, topics ...string) *Client {
	return &Client{ID: id, Topics: topics, Send: make(chan []byte, 16)}
}

func TestQueueTopic(t *testing.T) {
	if got := QueueTopic("waiting-doctor"); got != "queue/waiting-doctor" {
		t.Errorf("expected queue/waiting-doctor, got %s", got)
	}
}

func TestNewEvent(t *testing.T) {
	ev, err := NewEvent("patient.updated", TopicQueue, "abc", map[string]string{"ticket": "P001"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ulid.ParseStrict(ev.ID); err != nil {
		t.Errorf("expected ULID id, got %q: %v", ev.ID, err)
	}
	if ev.Topic != TopicQueue || ev.ResourceID != "abc" {
		t.Errorf("unexpected event: %+v", ev)
	}
	var data map[string]string
	if err := json.Unmarshal(ev.Data, &data); err != nil {
		t.Fatalf("data is not JSON: %v", err)
	}
	if data["ticket"] != "P001" {
		t.Errorf("expected ticket P001, got %s", data["ticket"])
	}
}

func TestNewEvent_IDsAreOrdered(t *testing.T) {
	first, _ := NewEvent("a", TopicQueue, "", nil)
	time.Sleep(2 * time.Millisecond)
	second, _ := NewEvent("b", TopicQueue, "", nil)
	if first.ID >= second.ID {
		t.Errorf("expected %s < %s", first.ID, second.ID)
	}
	if first.Data != nil {
		t.Errorf("expected no data, got %s", first.Data)
	}
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	c := newTestClient("c1", TopicQueue)

	hub.Register(c)
	if hub.ClientCount() != 1 {
		t.Fatalf("expected 1 client, got %d", hub.ClientCount())
	}
	if hub.TopicCount(TopicQueue) != 1 {
		t.Fatalf("expected 1 subscriber, got %d", hub.TopicCount(TopicQueue))
	}

	hub.Unregister(c)
	if hub.ClientCount() != 0 {
		t.Errorf("expected 0 clients, got %d", hub.ClientCount())
	}
	if hub.TopicCount(TopicQueue) != 0 {
		t.Errorf("expected topic to be removed, got %d", hub.TopicCount(TopicQueue))
	}
	if _, ok := <-c.Send; ok {
		t.Error("expected Send channel to be closed")
	}

	// second unregister is a no-op
	hub.Unregister(c)
}

func TestHub_PublishToTopic(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	sub := newTestClient("sub", TopicSLA)
	other := newTestClient("other", TopicQueue)
	hub.Register(sub)
	hub.Register(other)

	ev, _ := NewEvent("sla.breach", TopicSLA, "p1", nil)
	if err := hub.Publish(context.Background(), ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case msg := <-sub.Send:
		var got Event
		if err := json.Unmarshal(msg, &got); err != nil {
			t.Fatalf("failed to unmarshal: %v", err)
		}
		if got.Type != "sla.breach" || got.ID != ev.ID {
			t.Errorf("unexpected event %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber did not receive event")
	}

	select {
	case <-other.Send:
		t.Fatal("client on another topic should not receive event")
	default:
	}
}

func TestHub_FullBufferDropsEvent(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	c := &Client{ID: "slow", Topics: []string{TopicQueue}, Send: make(chan []byte, 1)}
	hub.Register(c)

	ev, _ := NewEvent("x", TopicQueue, "", nil)
	hub.Broadcast(TopicQueue, ev)
	hub.Broadcast(TopicQueue, ev)

	if len(c.Send) != 1 {
		t.Errorf("expected 1 buffered message, got %d", len(c.Send))
	}
}

func TestHub_SubscribeUnsubscribe(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	c := newTestClient("c1")
	hub.Register(c)

	hub.ProcessMessage(c, ClientMessage{Action: "subscribe", Topics: []string{TopicQueue, TopicSLA, TopicQueue}})
	if len(c.Topics) != 2 {
		t.Fatalf("expected 2 topics, got %v", c.Topics)
	}
	if hub.TopicCount(TopicSLA) != 1 {
		t.Errorf("expected 1 sla subscriber, got %d", hub.TopicCount(TopicSLA))
	}

	hub.ProcessMessage(c, ClientMessage{Action: "unsubscribe", Topics: []string{TopicSLA}})
	if len(c.Topics) != 1 || c.Topics[0] != TopicQueue {
		t.Errorf("expected [queue], got %v", c.Topics)
	}
	if hub.TopicCount(TopicSLA) != 0 {
		t.Errorf("expected 0 sla subscribers, got %d", hub.TopicCount(TopicSLA))
	}

	hub.ProcessMessage(c, ClientMessage{Action: "shout"})
	if len(c.Topics) != 1 {
		t.Errorf("unknown action changed topics: %v", c.Topics)
	}
}

func TestHub_ConcurrentRegisterUnregister(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c := newTestClient("c", TopicQueue)
			hub.Register(c)
			ev, _ := NewEvent("x", TopicQueue, "", nil)
			hub.Broadcast(TopicQueue, ev)
			hub.Unregister(c)
		}(i)
	}
	wg.Wait()
	if hub.ClientCount() != 0 {
		t.Errorf("expected 0 clients, got %d", hub.ClientCount())
	}
}

func TestParseTopics(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"", nil},
		{"queue", []string{"queue"}},
		{" queue , sla,queue,", []string{"queue", "sla"}},
	}
	for _, tt := range tests {
		got := parseTopics(tt.raw)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Errorf("parseTopics(%q): expected %v, got %v", tt.raw, tt.want, got)
		}
	}
}

func TestHandler_RequiresUpgrade(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	h := NewHandler(hub, nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	_ = h.HandleConnect(c)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for plain HTTP request, got %d", rec.Code)
	}
	if hub.ClientCount() != 0 {
		t.Errorf("expected no registered clients, got %d", hub.ClientCount())
	}
}

func TestHandler_RejectsForeignOrigin(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	h := NewHandler(hub, []string{"http://painel.local"})

	e := echo.New()
	h.RegisterRoutes(e.Group(""))
	server := httptest.NewServer(e)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	header := http.Header{"Origin": []string{"http://evil.local"}}
	_, resp, err := gorillawebsocket.DefaultDialer.Dial(wsURL, header)
	if err == nil {
		t.Fatal("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403, got %v", resp)
	}
}

func TestHandler_FullUpgrade(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	h := NewHandler(hub, nil)

	e := echo.New()
	h.RegisterRoutes(e.Group(""))
	server := httptest.NewServer(e)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?topics=" + TopicQueue
	conn, resp, err := gorillawebsocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	defer conn.Close()
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("expected 101, got %d", resp.StatusCode)
	}

	deadline := time.Now().Add(time.Second)
	for hub.TopicCount(TopicQueue) != 1 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if hub.TopicCount(TopicQueue) != 1 {
		t.Fatalf("expected 1 queue subscriber, got %d", hub.TopicCount(TopicQueue))
	}

	if err := conn.WriteJSON(ClientMessage{Action: "subscribe", Topics: []string{TopicSLA}}); err != nil {
		t.Fatalf("failed to send subscribe: %v", err)
	}
	for hub.TopicCount(TopicSLA) != 1 && time.Now().Before(deadline.Add(time.Second)) {
		time.Sleep(10 * time.Millisecond)
	}

	ev, _ := NewEvent("sla.breach", TopicSLA, "p1", nil)
	_ = hub.Publish(context.Background(), ev)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got Event
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("failed to read event: %v", err)
	}
	if got.ID != ev.ID || got.ResourceID != "p1" {
		t.Errorf("unexpected event %+v", got)
	}
}

func TestHub_SubscribeDuplicateTopics(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	c := newTestClient("c1")
	hub.Register(c)

	hub.Subscribe(c, []string{TopicSLA, TopicSLA})
	if len(c.Topics) != 1 || c.Topics[0] != TopicSLA {
		t.Fatalf("expected [sla], got %v", c.Topics)
	}
	hub.Subscribe(c, []string{TopicSLA, TopicQueue, TopicQueue})
	if len(c.Topics) != 2 {
		t.Errorf("expected [sla queue], got %v", c.Topics)
	}

	ev, _ := NewEvent("x", TopicSLA, "", nil)
	hub.Broadcast(TopicSLA, ev)
	if len(c.Send) != 1 {
		t.Errorf("expected 1 delivered message, got %d", len(c.Send))
	}
}
