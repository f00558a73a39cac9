package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/maybepratikk/flexihub-landing-connect-sub000/errs"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/realtime"
	"github.com/rs/zerolog"
)

const defaultHeartbeat = 25 * time.Second

var contractTopics = []string{
	realtime.TopicChatMessages,
	realtime.TopicContracts,
	realtime.TopicSubmissions,
}

func streamTopics(r *http.Request) ([]string, error) {
	raw := r.URL.Query().Get("topics")
	if raw == "" {
		return contractTopics, nil
	}

	var topics []string
	for _, topic := range strings.Split(raw, ",") {
		topic = strings.TrimSpace(topic)
		known := false
		for _, t := range contractTopics {
			known = known || t == topic
		}
		if !known {
			return nil, errs.NewInvalidFieldError("topics", fmt.Sprintf("unknown topic %q", topic))
		}
		topics = append(topics, topic)
	}
	return topics, nil
}

// eventStream writes realtime events as server-sent events until the client
// goes away or the broker ends the subscriptions.
type eventStream struct {
	subscriber realtime.Subscriber
	logger     zerolog.Logger
	heartbeat  time.Duration
}

// serve returns an error only when nothing has been written yet.
func (s eventStream) serve(w http.ResponseWriter, r *http.Request, topics []string, match realtime.Predicate) error {
	if s.subscriber == nil {
		return errs.NewApiErr(http.StatusServiceUnavailable, "realtime updates are not configured")
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	merged := make(chan realtime.Event)
	for _, topic := range topics {
		sub, err := s.subscriber.Subscribe(ctx, topic, match)
		if err != nil {
			return errs.NewInternalErrorWithCause("subscribe to "+topic, err)
		}
		go func() {
			defer cancel()
			for event := range sub.Events {
				select {
				case merged <- event:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	rc := http.NewResponseController(w)
	// Streams outlive the server's write timeout.
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		s.logger.Debug().Err(err).Msg("write deadline not adjustable")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	if err := rc.Flush(); err != nil {
		s.logger.Warn().Err(err).Msg("response does not support flushing")
		return nil
	}

	heartbeat := s.heartbeat
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}
	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return nil
			}
		case event := <-merged:
			data, err := json.Marshal(event)
			if err != nil {
				s.logger.Error().Err(err).Str("eventID", event.ID).Msg("encode event")
				continue
			}
			if _, err := fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", event.ID, event.Topic, data); err != nil {
				return nil
			}
		}
		if err := rc.Flush(); err != nil {
			return nil
		}
	}
}
