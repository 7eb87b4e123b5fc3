package models

import (
	"encoding/json"
	"time"
)

// Slice is one named part of a journey: a flat field map merged across requests.
type Slice map[string]any

// JourneySnapshot is everything recorded for one journey identifier.
type JourneySnapshot struct {
	Slices            map[string]Slice `json:"slices"`
	InstanceUnixEpoch int64            `json:"instanceUnixEpoch"`
}

// Session is the server side state behind one session cookie.
type Session struct {
	ID          string                      `json:"id"`
	JourneyData map[string]*JourneySnapshot `json:"journeyData"`
	Flash       map[string]json.RawMessage  `json:"flash,omitempty"`
	CreatedAt   time.Time                   `json:"createdAt"`
}

func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:          id,
		JourneyData: make(map[string]*JourneySnapshot),
		Flash:       make(map[string]json.RawMessage),
		CreatedAt:   now,
	}
}

// Merge returns a copy of s with partial applied over it. A nil value removes the key.
func (s Slice) Merge(partial Slice) Slice {
	out := make(Slice, len(s)+len(partial))
	for k, v := range s {
		out[k] = v
	}
	for k, v := range partial {
		if v == nil {
			delete(out, k)
			continue
		}
		out[k] = v
	}
	return out
}

// Decode converts the slice into a typed value through its JSON form.
func (s Slice) Decode(out any) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// SliceOf converts a typed value into a slice through its JSON form.
func SliceOf(v any) (Slice, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out Slice
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s Slice) GetString(key string) string {
	if s == nil {
		return ""
	}
	if str, ok := s[key].(string); ok {
		return str
	}
	return ""
}

func (s Slice) GetInt64(key string) int64 {
	if s == nil {
		return 0
	}
	switch v := s[key].(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	case int:
		return int64(v)
	default:
		return 0
	}
}

func (s Slice) GetTime(key string) time.Time {
	if s == nil {
		return time.Time{}
	}
	switch v := s[key].(type) {
	case time.Time:
		return v
	case string:
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}
		}
		return t
	default:
		return time.Time{}
	}
}
