package http

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"geoquiz-pipeline/internal/app"
)

// AuditStreamHandler pushes quality reports to admin dashboards over a
// websocket. Each connection gets an immediate report, periodic refreshes on
// a fixed interval, and one-off reports on request.
type AuditStreamHandler struct {
	service  *app.AuditService
	interval time.Duration
	upgrader websocket.Upgrader
}

func NewAuditStreamHandler(service *app.AuditService, interval time.Duration) *AuditStreamHandler {
	return &AuditStreamHandler{
		service:  service,
		interval: interval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type auditPayload struct {
	CountryID string `json:"countryId"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and streams quality reports. The optional
// `country` query parameter scopes the periodic reports; an empty value means
// the global report with catalog coverage.
func (h *AuditStreamHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	countryID := r.URL.Query().Get("country")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	tickerDone := make(chan struct{})

	// Single writer goroutine; the ticker and the read loop never touch the
	// connection's write side directly.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(tickerDone)
		ticker := time.NewTicker(h.interval)
		defer ticker.Stop()

		msg := h.buildReport(r, countryID)
		for {
			select {
			case send <- msg:
			case <-closeSignals:
				return
			}
			select {
			case <-ticker.C:
				msg = h.buildReport(r, countryID)
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "audit":
			var payload auditPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid audit payload"}}
				continue
			}
			send <- h.buildReport(r, payload.CountryID)
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	close(closeSignals)
	<-tickerDone
	close(send)
	<-writerDone
}

func (h *AuditStreamHandler) buildReport(r *http.Request, countryID string) outboundMessage[any] {
	report, err := h.service.Audit(r.Context(), countryID)
	if err != nil {
		return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
	}
	return outboundMessage[any]{Type: "report", Payload: report}
}
