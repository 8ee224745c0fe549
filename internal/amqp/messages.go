package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

const (
	JobReceipt JobKind = "receipt"
	JobAudio   JobKind = "audio"
	JobFile    JobKind = "file"
)

// JobKind selects which analyzer a job exercises.
type JobKind string

var errInvalidKind = errors.New("invalid analysis job kind")

func (k JobKind) Valid() bool {
	switch k {
	case JobReceipt, JobAudio, JobFile:
		return true
	}
	return false
}

// AnalysisJobMessage asks the worker to run one analyzer pass. The
// analyzers are stand-ins that ignore the raw capture, so the message
// carries metadata only, never the bytes.
type AnalysisJobMessage struct {
	JobID       string    `json:"job_id"`
	Kind        JobKind   `json:"kind"`
	ContentType string    `json:"content_type,omitempty"`
	Filename    string    `json:"filename,omitempty"`
	Account     string    `json:"account,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

// NewAnalysisJobMessage stamps a message with the request time.
func NewAnalysisJobMessage(jobID string, kind JobKind, contentType, filename, account string) *AnalysisJobMessage {
	return &AnalysisJobMessage{
		JobID:       jobID,
		Kind:        kind,
		ContentType: contentType,
		Filename:    filename,
		Account:     account,
		RequestedAt: time.Now(),
	}
}

func (m *AnalysisJobMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func AnalysisJobMessageFromJSON(data []byte) (*AnalysisJobMessage, error) {
	var msg AnalysisJobMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if !msg.Kind.Valid() {
		return nil, errInvalidKind
	}
	return &msg, nil
}
