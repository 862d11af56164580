// Package main runs a demo WebSocket client for the zone event feed.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gorilla/websocket"
)

type wsMessage struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func main() {
	topic := flag.String("topic", "map", "feed topic: map, zone:<id> or vendor:<id>")
	demo := flag.Bool("demo", false, "create a sample zone after subscribing")
	wait := flag.Duration("wait", 5*time.Second, "how long to listen")
	flag.Parse()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	base := fmt.Sprintf("http://localhost:%s", port)

	u := url.URL{Scheme: "ws", Host: "localhost:" + port, Path: "/v1/events/ws"}
	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatal("dial:", err)
	}
	defer func() { _ = c.Close() }()

	if err := c.WriteJSON(wsMessage{Type: "connection_init"}); err != nil {
		log.Fatal(err)
	}
	pl, _ := json.Marshal(map[string]string{"topic": *topic})
	if err := c.WriteJSON(wsMessage{Type: "subscribe", ID: "1", Payload: pl}); err != nil {
		log.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var m wsMessage
			if err := c.ReadJSON(&m); err != nil {
				log.Printf("read: %v", err)
				return
			}
			log.Printf("WS <- %s: %s", m.Type, string(m.Payload))
		}
	}()

	if *demo {
		time.Sleep(500 * time.Millisecond)
		body := []byte(`{"name":"Demo Zone","status":"legal","max_vendors":5,
			"polygon":[[28.6129,77.2080],[28.6129,77.2100],[28.6149,77.2100],[28.6149,77.2080]]}`)
		resp, err := http.Post(base+"/v1/zones", "application/json", bytes.NewReader(body))
		if err != nil {
			log.Printf("create zone: %v", err)
		} else {
			log.Printf("create zone: %s", resp.Status)
			_ = resp.Body.Close()
		}
	}

	select {
	case <-time.After(*wait):
	case <-done:
	}
}
