package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"geoquiz-pipeline/internal/app"
	"geoquiz-pipeline/internal/domain"
	"geoquiz-pipeline/internal/infra/memory"
)

func newAuditHandler(t *testing.T) *AuditStreamHandler {
	t.Helper()
	facts := []domain.CountryFact{
		{ID: "ke", Name: "Kenya", Capital: "Nairobi", Continent: "Africa"},
		{ID: "fr", Name: "France", Capital: "Paris", Continent: "Europe"},
	}
	catalog, err := memory.NewStaticCatalog(facts)
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}

	store := memory.NewQuestionStore()
	seed := []domain.PersistedQuestion{
		{
			QuestionCandidate: domain.QuestionCandidate{
				CountryID:     "ke",
				Text:          "What is the capital city of Kenya?",
				Options:       []string{"Nairobi", "Paris", "Cairo", "Lima"},
				CorrectAnswer: "Nairobi",
				Explanation:   "The capital of Kenya is Nairobi.",
				Category:      domain.CategoryGeography,
				Difficulty:    domain.DifficultyEasy,
			},
			ID:        "ke-easy-geography-001",
			CreatedAt: time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			QuestionCandidate: domain.QuestionCandidate{
				CountryID:     "ke",
				Text:          "Pick option a for this nation, option b, c or d?",
				Options:       []string{"A", "B", "C", "D"},
				CorrectAnswer: "A",
				Category:      domain.CategoryGeography,
				Difficulty:    domain.DifficultyEasy,
			},
			ID:        "ke-easy-geography-002",
			CreatedAt: time.Date(2026, 2, 1, 11, 0, 0, 0, time.UTC),
		},
	}
	if err := store.Upsert(context.Background(), seed); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	service := app.NewAuditService(store, catalog, 2)
	return NewAuditStreamHandler(service, 50*time.Millisecond)
}

func dialAudit(t *testing.T, query string) *websocket.Conn {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/audit", newAuditHandler(t).ServeWS)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	u := "ws" + server.URL[len("http"):] + "/ws/audit" + query
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	return msg.Type, msg.Payload
}

func TestAuditStreamSendsScopedReport(t *testing.T) {
	conn := dialAudit(t, "?country=ke")

	typ, payload := readMessage(t, conn)
	if typ != "report" {
		t.Fatalf("expected report, got %s", typ)
	}
	if payload["countryId"] != "ke" {
		t.Fatalf("expected ke scope, got %v", payload["countryId"])
	}
	if payload["total"] != float64(2) || payload["valid"] != float64(1) {
		t.Fatalf("expected total=2 valid=1, got %v", payload)
	}
	if payload["score"] != float64(50) {
		t.Fatalf("expected score 50, got %v", payload["score"])
	}
}

func TestAuditStreamRefreshesPeriodically(t *testing.T) {
	conn := dialAudit(t, "")

	for i := 0; i < 2; i++ {
		typ, payload := readMessage(t, conn)
		if typ != "report" {
			t.Fatalf("expected report, got %s", typ)
		}
		if _, scoped := payload["countryId"]; scoped {
			t.Fatalf("expected global report, got %v", payload)
		}
	}
}

func TestAuditStreamHandlesOnDemandRequests(t *testing.T) {
	conn := dialAudit(t, "?country=fr")

	request := map[string]any{
		"type":    "audit",
		"payload": map[string]any{"countryId": "ke"},
	}
	if err := conn.WriteJSON(request); err != nil {
		t.Fatalf("write request: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		typ, payload := readMessage(t, conn)
		if typ == "report" && payload["countryId"] == "ke" {
			return
		}
	}
	t.Fatal("never saw the requested ke report")
}

func TestAuditStreamRejectsUnknownMessageType(t *testing.T) {
	conn := dialAudit(t, "?country=ke")

	if err := conn.WriteJSON(map[string]any{"type": "bogus"}); err != nil {
		t.Fatalf("write request: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		typ, payload := readMessage(t, conn)
		if typ == "error" {
			if payload["message"] != "unsupported message type" {
				t.Fatalf("unexpected error message: %v", payload["message"])
			}
			return
		}
	}
	t.Fatal("never saw the error message")
}
