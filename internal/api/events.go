package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"vendzone/internal/engine"
)

// publishChanges turns one engine change set into feed events.
func (s *Server) publishChanges(ch engine.Changes) {
	for _, z := range ch.Zones {
		evt := SSEEvent{Type: "zone.changed", Data: map[string]any{"zone": z}}
		s.Broker.Publish(TopicMap, evt)
		s.Broker.Publish(zoneTopic(z.ID), evt)
	}
	for _, v := range ch.Vendors {
		evt := SSEEvent{Type: "vendor.changed", Data: map[string]any{"vendor": v}}
		s.Broker.Publish(TopicMap, evt)
		s.Broker.Publish(vendorTopic(v.ID), evt)
		if v.ZoneID != "" {
			s.Broker.Publish(zoneTopic(v.ZoneID), evt)
		}
	}
	for _, r := range ch.Reports {
		evt := SSEEvent{Type: "report.changed", Data: map[string]any{"report": r}}
		s.Broker.Publish(TopicMap, evt)
		if r.VendorID != "" {
			s.Broker.Publish(vendorTopic(r.VendorID), evt)
		}
	}
}

// topicOf reads the feed topic from ?zone=, ?vendor= or defaults to the whole map.
func topicOf(r *http.Request) string {
	q := r.URL.Query()
	switch {
	case q.Get("zone") != "":
		return zoneTopic(q.Get("zone"))
	case q.Get("vendor") != "":
		return vendorTopic(q.Get("vendor"))
	}
	return TopicMap
}

// EventStreamHandler streams live map changes as server-sent events on
// GET /v1/events/stream[?zone=id|?vendor=id].
func (s *Server) EventStreamHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeProblem(w, http.StatusInternalServerError, "Streaming unsupported", "", r.URL.Path)
		return
	}
	topic := topicOf(r)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := s.Broker.Subscribe(topic)
	defer s.Broker.Unsubscribe(topic, ch)

	heartbeat := func() {
		fmt.Fprintf(w, "event: heartbeat\n")
		fmt.Fprintf(w, "data: {\"topic\":%q,\"ts\":%q}\n\n", topic, s.now().UTC().Format(time.RFC3339))
		flusher.Flush()
	}
	heartbeat()

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case evt, ok := <-ch:
			if !ok {
				return
			}
			b, _ := json.Marshal(evt.Data)
			fmt.Fprintf(w, "event: %s\n", evt.Type)
			fmt.Fprintf(w, "data: %s\n\n", b)
			flusher.Flush()
		case <-ticker.C:
			heartbeat()
		}
	}
}
