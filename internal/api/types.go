package api

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// SubmitResult is the Submit response.
type SubmitResult struct {
	EntryID   string `json:"entry_id"`
	Timestamp string `json:"timestamp"`
	Delivered bool   `json:"delivered"`
	// Error is the send failure that caused queuing.
	Error string `json:"error,omitempty"`
}

// DrainResult is the Drain response.
type DrainResult struct {
	Delivered int  `json:"delivered"`
	Remaining int  `json:"remaining"`
	Skipped   bool `json:"skipped"`
}

// StatusInfo is the Status response. Times are RFC 3339.
type StatusInfo struct {
	Profile       string `json:"profile"`
	State         string `json:"state"`
	Authenticated bool   `json:"authenticated"`
	Connected     bool   `json:"connected"`
	Since         string `json:"since"`
	QueueDepth    int    `json:"queue_depth"`
	Draining      bool   `json:"draining"`
	Sheet         string `json:"sheet"`
	UptimeSeconds int    `json:"uptime_seconds"`
	LastDrained   string `json:"last_drained,omitempty"`
	Deliveries    int    `json:"deliveries"`
}

// QueueItem is one pending entry.
type QueueItem struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// QueueList is the Queue response, oldest first.
type QueueList struct {
	Items []QueueItem `json:"items"`
}

// JournalItem is one journaled delivery.
type JournalItem struct {
	EntryID     string `json:"entry_id"`
	Text        string `json:"text"`
	Timestamp   string `json:"timestamp"`
	Via         string `json:"via"`
	Sheet       string `json:"sheet"`
	DeliveredAt string `json:"delivered_at"`
}

// JournalList is the Journal response, newest first.
type JournalList struct {
	Items []JournalItem `json:"items"`
}

// EventInfo is one WatchEvents message.
type EventInfo struct {
	ID     string `json:"id"`
	Kind   string `json:"kind"`
	Time   string `json:"time"`
	Text   string `json:"text,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// Encode converts a wire type to a Struct.
func Encode(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", v, err)
	}
	s := &structpb.Struct{}
	if err := protojson.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("encode %T: %w", v, err)
	}
	return s, nil
}

// Decode fills v from a Struct produced by Encode.
func Decode(s *structpb.Struct, v any) error {
	if s == nil {
		return fmt.Errorf("decode %T: empty message", v)
	}
	data, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("decode %T: %w", v, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %T: %w", v, err)
	}
	return nil
}

// Strings converts a list of strings to a ListValue.
func Strings(items []string) *structpb.ListValue {
	values := make([]*structpb.Value, len(items))
	for i, s := range items {
		values[i] = structpb.NewStringValue(s)
	}
	return &structpb.ListValue{Values: values}
}

// FromStrings reads a ListValue of strings; other values are skipped.
func FromStrings(lv *structpb.ListValue) []string {
	out := make([]string, 0, len(lv.GetValues()))
	for _, v := range lv.GetValues() {
		if s, ok := v.GetKind().(*structpb.Value_StringValue); ok {
			out = append(out, s.StringValue)
		}
	}
	return out
}
