package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Topics mirror the table a change happened in.
const (
	TopicJobs         = "jobs"
	TopicApplications = "job_applications"
	TopicContracts    = "contracts"
	TopicChatMessages = "chat_messages"
	TopicInquiries    = "project_inquiries"
	TopicSubmissions  = "project_submissions"
)

type Action string

const (
	ActionInsert Action = "INSERT"
	ActionUpdate Action = "UPDATE"
)

// Event is a committed row change. Keys carries the foreign keys
// subscribers filter on, for example "contract_id".
type Event struct {
	ID         string            `json:"id"`
	Topic      string            `json:"topic"`
	Action     Action            `json:"action"`
	RecordID   string            `json:"record_id"`
	Keys       map[string]string `json:"keys,omitempty"`
	Record     json.RawMessage   `json:"record,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// NewEvent encodes record and stamps the event with a fresh id.
func NewEvent(topic string, action Action, recordID uuid.UUID, record any, keys map[string]string) (Event, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return Event{}, fmt.Errorf("encode %s record: %w", topic, err)
	}
	return Event{
		ID:         uuid.NewString(),
		Topic:      topic,
		Action:     action,
		RecordID:   recordID.String(),
		Keys:       keys,
		Record:     raw,
		OccurredAt: time.Now().UTC(),
	}, nil
}

// Predicate selects the events a subscription receives. A nil Predicate
// matches everything.
type Predicate func(Event) bool

// FieldEquals matches events whose key equals value.
func FieldEquals(key, value string) Predicate {
	return func(e Event) bool {
		return e.Keys[key] == value
	}
}

func (p Predicate) match(e Event) bool {
	return p == nil || p(e)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Subscriber hands out subscriptions that end when ctx is cancelled or
// Close is called, whichever happens first.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string, match Predicate) (*Subscription, error)
}

type Broker interface {
	Publisher
	Subscriber
	Close() error
}

// Subscription is a live event feed. Events is closed when the subscription ends.
type Subscription struct {
	Events <-chan Event
	cancel func()
}

func (s *Subscription) Close() {
	if s != nil && s.cancel != nil {
		s.cancel()
	}
}
