package amqp

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},  // capped at 30s
		{10, 30 * time.Second}, // capped at 30s
		{40, 30 * time.Second}, // shift overflow also caps
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			result := exponentialBackoff(tt.attempt)
			if result != tt.expected {
				t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, result, tt.expected)
			}
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connection refused", errors.New("connection refused"), true},
		{"closed connection", errors.New("connection closed"), true},
		{"EOF", errors.New("unexpected EOF"), true},
		{"broken pipe", errors.New("write: broken pipe"), true},
		{"protocol error", errors.New("PRECONDITION_FAILED"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := isConnectionError(tt.err)
			if result != tt.expected {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, result, tt.expected)
			}
		})
	}
}

func TestIsReconnectable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"closed delivery stream", errDeliveryClosed, true},
		{"wrapped delivery stream", fmt.Errorf("consume: %w", errDeliveryClosed), true},
		{"connection refused", errors.New("connection refused"), true},
		{"protocol error", errors.New("NOT_ALLOWED"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := isReconnectable(tt.err)
			if result != tt.expected {
				t.Errorf("isReconnectable(%v) = %v, want %v", tt.err, result, tt.expected)
			}
		})
	}
}

func TestReconnectStopsWhenContextEnds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := &Client{exchangeName: "laplata", queueName: "analysis_jobs"}
	err := client.Reconnect(ctx, "amqp://127.0.0.1:1")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Reconnect() = %v, want context.Canceled", err)
	}
}

func TestReconnectGivesUpOnBadURL(t *testing.T) {
	client := &Client{exchangeName: "laplata", queueName: "analysis_jobs"}
	err := client.Reconnect(context.Background(), "http://127.0.0.1:5672")
	if err == nil || errors.Is(err, context.Canceled) {
		t.Fatalf("Reconnect() = %v, want scheme error", err)
	}
}

func TestAnalysisJobMessageRoundTrip(t *testing.T) {
	msg := NewAnalysisJobMessage("job-1", JobReceipt, "image/jpeg", "cupom.jpg", "Conta Corrente")

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got, err := AnalysisJobMessageFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.JobID != "job-1" || got.Kind != JobReceipt || got.Filename != "cupom.jpg" {
		t.Fatalf("message = %+v", got)
	}
}

func TestAnalysisJobMessageRejectsBadKind(t *testing.T) {
	if _, err := AnalysisJobMessageFromJSON([]byte(`{"job_id":"j","kind":"ocr"}`)); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
	if _, err := AnalysisJobMessageFromJSON([]byte(`not json`)); err == nil {
		t.Fatalf("expected error for malformed body")
	}
}
