package consumer

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/BarkinBalci/referral-analytics-service/internal/domain"
)

// JSONEventParser implements MessageParser for JSON-formatted event messages
type JSONEventParser struct{}

// NewJSONEventParser creates a new JSON event parser
func NewJSONEventParser() *JSONEventParser {
	return &JSONEventParser{}
}

// Parse parses a JSON message body into a RawEvent
func (p *JSONEventParser) Parse(body []byte) (*domain.RawEvent, error) {
	var msgBody map[string]interface{}
	if err := json.Unmarshal(body, &msgBody); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message body: %w", err)
	}

	kind := getStringField(msgBody, "kind")
	if kind != domain.EventKindSignup && kind != domain.EventKindEarning {
		return nil, fmt.Errorf("unknown event kind: %q", kind)
	}

	userID := getStringField(msgBody, "user_id")
	if userID == "" {
		return nil, fmt.Errorf("missing user_id")
	}

	event := &domain.RawEvent{
		EventID:     getStringField(msgBody, "event_id"),
		Kind:        kind,
		UserID:      userID,
		ReferrerID:  getStringField(msgBody, "referrer_id"),
		Amount:      getFloat64Field(msgBody, "amount"),
		Timestamp:   getInt64Field(msgBody, "timestamp"),
		ProcessedAt: time.Now(),
		Version:     uint64(time.Now().UnixNano()),
	}

	return event, nil
}

// Helper functions for extracting fields from parsed JSON
func getStringField(m map[string]interface{}, key string) string {
	if val, ok := m[key].(string); ok {
		return val
	}
	return ""
}

func getInt64Field(m map[string]interface{}, key string) int64 {
	if val, ok := m[key].(float64); ok {
		return int64(val)
	}
	return 0
}

func getFloat64Field(m map[string]interface{}, key string) float64 {
	if val, ok := m[key].(float64); ok {
		return val
	}
	return 0
}
