package push

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func decodeMessages(t *testing.T, r *http.Request) []Message {
	t.Helper()
	var messages []Message
	if err := json.NewDecoder(r.Body).Decode(&messages); err != nil {
		t.Errorf("failed to decode request: %v", err)
	}
	return messages
}

func TestClient_SendMixedResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
		messages := decodeMessages(t, r)
		if len(messages) != 2 {
			t.Errorf("got %d messages, want 2", len(messages))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[
			{"status":"ok","id":"ticket-1"},
			{"status":"error","message":"not registered","details":{"error":"DeviceNotRegistered"}}
		]}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{URL: server.URL, AccessToken: "secret"})
	results, err := client.Send(context.Background(), []Message{
		{To: "token-a", Title: "t", Body: "b"},
		{To: "token-b", Title: "t", Body: "b"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if !results[0].OK() || results[0].TicketID != "ticket-1" {
		t.Errorf("results[0] = %+v, want ticket-1", results[0])
	}
	if results[1].OK() || results[1].Error != "DeviceNotRegistered" {
		t.Errorf("results[1] = %+v, want DeviceNotRegistered", results[1])
	}
}

func TestClient_SendChunksToMaxBatch(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		messages := decodeMessages(t, r)
		if len(messages) > 2 {
			t.Errorf("chunk of %d exceeds max batch", len(messages))
		}
		resp := ticketResponse{}
		for _, m := range messages {
			resp.Data = append(resp.Data, ticket{Status: ticketStatusOK, ID: "ticket-" + m.To})
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{URL: server.URL, MaxBatch: 2})
	results, err := client.Send(context.Background(), []Message{{To: "a"}, {To: "b"}, {To: "c"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if requests.Load() != 2 {
		t.Errorf("requests = %d, want 2", requests.Load())
	}
	want := []string{"ticket-a", "ticket-b", "ticket-c"}
	for i, w := range want {
		if results[i].TicketID != w {
			t.Errorf("results[%d].TicketID = %q, want %q", i, results[i].TicketID, w)
		}
	}
}

func TestClient_SendRetriesServerErrors(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"data":[{"status":"ok","id":"ticket-1"}]}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{URL: server.URL, MaxRetries: 3})
	results, err := client.Send(context.Background(), []Message{{To: "a"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if requests.Load() != 2 {
		t.Errorf("requests = %d, want 2", requests.Load())
	}
	if !results[0].OK() {
		t.Errorf("results[0] = %+v, want success after retry", results[0])
	}
}

func TestClient_SendDoesNotRetryClientErrors(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{URL: server.URL, MaxRetries: 3})
	results, err := client.Send(context.Background(), []Message{{To: "a"}, {To: "b"}})
	if err != nil {
		t.Fatalf("per-item failure must not be returned as error: %v", err)
	}

	if requests.Load() != 1 {
		t.Errorf("requests = %d, want 1", requests.Load())
	}
	for i, r := range results {
		if r.OK() || r.Error == "" {
			t.Errorf("results[%d] = %+v, want failure", i, r)
		}
	}
}

func TestClient_SendCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(ClientConfig{URL: server.URL, RatePerSecond: 1})
	if _, err := client.Send(ctx, []Message{{To: "a"}}); err == nil {
		t.Error("expected context error")
	}
}

func TestLogTransport_AcceptsEverything(t *testing.T) {
	results, err := NewLogTransport().Send(context.Background(), []Message{{To: "a"}, {To: "b"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, r := range results {
		if !r.OK() {
			t.Errorf("results[%d] = %+v, want ok", i, r)
		}
	}
}
