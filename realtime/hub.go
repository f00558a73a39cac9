package realtime

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	defaultSubscriberCapacity = 64
	defaultDedupeWindow       = 1024
)

// HubOption customizes NewHub.
type HubOption func(*Hub)

// HubWithSubscriberCapacity overrides the buffered channel size per subscriber.
func HubWithSubscriberCapacity(capacity int) HubOption {
	return func(h *Hub) {
		if capacity > 0 {
			h.capacity = capacity
		}
	}
}

// HubWithLogger replaces the global logger used for drop diagnostics.
func HubWithLogger(logger zerolog.Logger) HubOption {
	return func(h *Hub) {
		h.logger = logger
	}
}

// Hub is an in-process Broker. Each subscriber has a bounded buffer; when it
// is full the oldest queued event is dropped so a slow reader never blocks
// publishers.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[*subscriber]struct{}
	recentIDs   map[string]struct{}
	recentOrder []string
	capacity    int
	logger      zerolog.Logger
}

func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		subscribers: map[string]map[*subscriber]struct{}{},
		recentIDs:   map[string]struct{}{},
		recentOrder: make([]string, 0, defaultDedupeWindow),
		capacity:    defaultSubscriberCapacity,
		logger:      log.With().Str("component", "realtime.hub").Logger(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

func (h *Hub) Subscribe(ctx context.Context, topic string, match Predicate) (*Subscription, error) {
	sub := newSubscriber(topic, h.capacity, match, h.logger)

	h.mu.Lock()
	if h.subscribers[topic] == nil {
		h.subscribers[topic] = map[*subscriber]struct{}{}
	}
	h.subscribers[topic][sub] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	remove := func() {
		once.Do(func() { h.removeSubscriber(topic, sub) })
	}
	stop := context.AfterFunc(ctx, remove)

	return &Subscription{
		Events: sub.ch,
		cancel: func() {
			stop()
			remove()
		},
	}, nil
}

// Publish delivers event to every matching subscriber of its topic. Events
// whose id was seen recently are ignored.
func (h *Hub) Publish(_ context.Context, event Event) error {
	if event.ID != "" && h.isDuplicate(event.ID) {
		return nil
	}

	h.mu.RLock()
	live := h.subscribers[event.Topic]
	subs := make([]*subscriber, 0, len(live))
	for sub := range live {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	for _, sub := range subs {
		if sub.match.match(event) {
			sub.deliver(event)
		}
	}
	return nil
}

// Close ends every subscription.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for topic, subs := range h.subscribers {
		for sub := range subs {
			sub.close()
		}
		delete(h.subscribers, topic)
	}
	return nil
}

func (h *Hub) removeSubscriber(topic string, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs := h.subscribers[topic]; subs != nil {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(h.subscribers, topic)
		}
	}
	sub.close()
}

func (h *Hub) isDuplicate(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.recentIDs[id]; ok {
		return true
	}
	h.recentIDs[id] = struct{}{}
	h.recentOrder = append(h.recentOrder, id)
	if len(h.recentOrder) > defaultDedupeWindow {
		oldest := h.recentOrder[0]
		h.recentOrder = h.recentOrder[1:]
		delete(h.recentIDs, oldest)
	}
	return false
}

type subscriber struct {
	topic  string
	match  Predicate
	logger zerolog.Logger

	mu     sync.Mutex
	ch     chan Event
	closed bool
}

func newSubscriber(topic string, capacity int, match Predicate, logger zerolog.Logger) *subscriber {
	if capacity <= 0 {
		capacity = defaultSubscriberCapacity
	}
	return &subscriber{
		topic:  topic,
		match:  match,
		logger: logger,
		ch:     make(chan Event, capacity),
	}
}

// deliver never blocks. mu is held so close cannot race a send.
func (s *subscriber) deliver(event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for {
		select {
		case s.ch <- event:
			return
		default:
		}
		select {
		case dropped := <-s.ch:
			s.logger.Warn().
				Str("topic", s.topic).
				Str("eventID", dropped.ID).
				Msg("subscriber queue full, dropped oldest event")
		default:
		}
	}
}

func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}
