package kafka

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Header keys carried on every published message.
const (
	HeaderEventID       = "event-id"
	HeaderEventType     = "event-type"
	HeaderSchemaVersion = "schema-version"
	HeaderSource        = "source"
)

const schemaVersion = "1"

// Message is one event bound for the claim topic. Key selects the partition;
// keying by request id keeps all events of one request in order.
type Message struct {
	Key       string
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

// NewMessage builds a message with standard headers. The payload is
// JSON-encoded; a marshal failure is returned rather than silently dropped.
func NewMessage(key, eventType, source string, payload any) (Message, error) {
	value, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}

	return Message{
		Key:   key,
		Value: value,
		Headers: map[string]string{
			HeaderEventID:       uuid.New().String(),
			HeaderEventType:     eventType,
			HeaderSchemaVersion: schemaVersion,
			HeaderSource:        source,
		},
		Timestamp: time.Now().UTC(),
	}, nil
}
