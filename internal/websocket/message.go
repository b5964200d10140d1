package websocket

import "time"

// Message types pushed to clients.
const (
	TypeConnection     = "connection"
	TypeUploadProgress = "upload:progress"
	TypeDatasetChanged = "dataset:changed"
	TypeError          = "error"
)

// Message is the envelope of every frame sent to a client.
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// Progress is the payload of an upload:progress message.
type Progress struct {
	Percent int    `json:"percent"`
	Message string `json:"message"`
}

// DatasetChanged is the payload of a dataset:changed message.
type DatasetChanged struct {
	Reason string `json:"reason"`
	Rows   int    `json:"rows"`
}

// ErrorPayload is the payload of an error message.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
