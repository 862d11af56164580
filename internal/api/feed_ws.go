package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Live map feed over WebSocket. The framing follows graphql-transport-ws:
// connection_init/connection_ack, ping/pong, subscribe/next/complete.

var upgrader = websocket.Upgrader{CheckOrigin: func(_ *http.Request) bool { return true }}

type wsMessage struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type subscribePayload struct {
	Topic  string `json:"topic"`
	Zone   string `json:"zone"`
	Vendor string `json:"vendor"`
}

func (p subscribePayload) topic() (string, bool) {
	switch {
	case p.Zone != "":
		return zoneTopic(p.Zone), true
	case p.Vendor != "":
		return vendorTopic(p.Vendor), true
	case p.Topic == "" || p.Topic == TopicMap:
		return TopicMap, true
	case strings.HasPrefix(p.Topic, "zone:") || strings.HasPrefix(p.Topic, "vendor:"):
		return p.Topic, true
	}
	return "", false
}

const (
	wsReadWait  = 60 * time.Second
	wsPingEvery = 20 * time.Second
)

// FeedWSHandler handles /v1/events/ws
func (s *Server) FeedWSHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer func() { _ = conn.Close() }()

	var wmu sync.Mutex
	write := func(v any) error {
		wmu.Lock()
		defer wmu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		return conn.WriteJSON(v)
	}

	type sub struct {
		topic string
		ch    chan SSEEvent
	}
	subs := map[string]sub{}
	var wg sync.WaitGroup
	done := make(chan struct{})

	conn.SetReadLimit(64 << 10)
	_ = conn.SetReadDeadline(time.Now().Add(wsReadWait))
	conn.SetPongHandler(func(string) error { return conn.SetReadDeadline(time.Now().Add(wsReadWait)) })

	acked := false
	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsReadWait))
		switch msg.Type {
		case "connection_init":
			if acked {
				continue
			}
			acked = true
			_ = write(wsMessage{Type: "connection_ack"})
			wg.Add(1)
			go func() {
				defer wg.Done()
				ticker := time.NewTicker(wsPingEvery)
				defer ticker.Stop()
				for {
					select {
					case <-done:
						return
					case <-ticker.C:
						if err := write(wsMessage{Type: "ping"}); err != nil {
							return
						}
					}
				}
			}()
		case "ping":
			_ = write(wsMessage{Type: "pong"})
		case "subscribe":
			if !acked {
				_ = write(wsMessage{Type: "error", ID: msg.ID, Payload: json.RawMessage(`{"message":"connection_init required"}`)})
				continue
			}
			if _, dup := subs[msg.ID]; dup || msg.ID == "" {
				_ = write(wsMessage{Type: "error", ID: msg.ID, Payload: json.RawMessage(`{"message":"subscription id missing or in use"}`)})
				continue
			}
			var pl subscribePayload
			_ = json.Unmarshal(msg.Payload, &pl)
			topic, ok := pl.topic()
			if !ok {
				_ = write(wsMessage{Type: "error", ID: msg.ID, Payload: json.RawMessage(`{"message":"unknown topic"}`)})
				_ = write(wsMessage{Type: "complete", ID: msg.ID})
				continue
			}
			ch := s.Broker.Subscribe(topic)
			subs[msg.ID] = sub{topic: topic, ch: ch}
			wg.Add(1)
			go func(id string, c chan SSEEvent) {
				defer wg.Done()
				for evt := range c {
					payload, _ := json.Marshal(evt)
					if err := write(wsMessage{Type: "next", ID: id, Payload: payload}); err != nil {
						return
					}
				}
				_ = write(wsMessage{Type: "complete", ID: id})
			}(msg.ID, ch)
		case "complete":
			if s0, ok := subs[msg.ID]; ok {
				s.Broker.Unsubscribe(s0.topic, s0.ch)
				delete(subs, msg.ID)
			}
		}
	}
	// Cleanup
	close(done)
	for id, s0 := range subs {
		s.Broker.Unsubscribe(s0.topic, s0.ch)
		delete(subs, id)
	}
	wg.Wait()
}
